// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.3
//

package sp3

import (
	"fmt"
	"strings"
	"time"
)

// Time system of the epochs of a file
type Timescale int

const (
	GPST Timescale = iota
	GLONASST
	GST
	BDT
	QZSST
	IRNSST
	TAI
	UTC
)

var timescaleNames = map[Timescale]string{
	GPST:     "GPS",
	GLONASST: "GLO",
	GST:      "GAL",
	BDT:      "BDT",
	QZSST:    "QZS",
	IRNSST:   "IRN",
	TAI:      "TAI",
	UTC:      "UTC",
}

// Offset to TAI (timescale - TAI) used by the coarse transposition.
// Leap seconds are fixed to LS.
var taiOffsets = map[Timescale]time.Duration{
	GPST:     -19 * time.Second,
	GST:      -19 * time.Second,
	QZSST:    -19 * time.Second,
	IRNSST:   -19 * time.Second,
	BDT:      -33 * time.Second,
	TAI:      0,
	UTC:      -(19 + LS) * time.Second,
	GLONASST: -(19+LS)*time.Second + 3*time.Hour,
}

// Three letter code written in the "%c" line
func (p Timescale) String() string {
	if s, ok := timescaleNames[p]; ok {
		return s
	}
	return "UNKNOWN!"
}

func ParseTimescale(s string) (Timescale, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for ts, name := range timescaleNames {
		if name == s {
			return ts, nil
		}
	}
	switch s {
	case "GPST":
		return GPST, nil
	case "BDS", "BDST":
		return BDT, nil
	case "GST":
		return GST, nil
	}
	return 0, fmt.Errorf("%w (ts=%s)", ErrUnknownTimescale, s)
}

// For command arguments
func (p *Timescale) Set(s string) error {
	ts, err := ParseTimescale(s)
	if err != nil {
		return err
	}
	*p = ts
	return nil
}

// Fixed offset from one timescale to another (label in b = label in a + offset)
func CoarseOffset(a, b Timescale) time.Duration {
	return taiOffsets[b] - taiOffsets[a]
}
