// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.3
//

package sp3

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// Type representing satellite name like "G10"
type SatType string

// Type representing satellite system like 'G'
type SysType byte

// Constellation code of a file carrying more than one system
const Mixed SysType = 'M'

// Display order of satellite systems
var sysOrder = []SysType{'G', 'J', 'E', 'R', 'C', 'I', 'S', 'L'}

// Extract satellite system from satellite name
func (p *SatType) Sys() SysType {
	return SysType((*p)[0])
}

// Extract satellite number from satellite name
func (p *SatType) Num() int {
	i, err := strconv.Atoi(string((*p)[1:]))
	if err != nil {
		return 0
	}
	return i
}

// Check validity of satellite system
func (p *SysType) IsValid() bool {
	return slices.Contains(sysOrder, *p)
}

func (p SysType) String() string {
	switch p {
	case 'G':
		return "GPS"
	case 'R':
		return "Glonass"
	case 'E':
		return "Galileo"
	case 'C':
		return "Beidou"
	case 'J':
		return "QZSS"
	case 'I':
		return "IRNSS"
	case 'S':
		return "SBAS"
	case 'L':
		return "LEO"
	case Mixed:
		return "Mixed"
	default:
		return "UNKNOWN!"
	}
}

// Parse a 3-character satellite identifier. A blank system means GPS ("  1", " 12").
func ParseSat(s string) (SatType, error) {
	if len(s) != 3 {
		return "", fmt.Errorf("invalid satellite identifier '%s'", s)
	}
	sys := SysType(s[0])
	if sys == ' ' {
		sys = 'G'
	}
	if !sys.IsValid() {
		return "", fmt.Errorf("unknown satellite system, '%c'", s[0])
	}
	n, err := strconv.Atoi(strings.TrimSpace(s[1:]))
	if err != nil || n <= 0 {
		return "", fmt.Errorf("invalid satellite number '%s'", s)
	}
	return SatType(fmt.Sprintf("%c%02d", sys, n)), nil
}

// Unused slot of a satellite list line
func isEmptySat(s string) bool {
	t := strings.TrimSpace(s)
	return t == "" || t == "0" || t == "00" || t == "000"
}

// Single system shared by every satellite, or Mixed
func constellation(sats []SatType) SysType {
	if len(sats) == 0 {
		return Mixed
	}
	sys := sats[0].Sys()
	for _, s := range sats[1:] {
		if s.Sys() != sys {
			return Mixed
		}
	}
	return sys
}

// Sort the list of satellite names
func Sorted(s []SatType) []SatType {
	s2 := make([]SatType, len(s))
	copy(s2, s)
	slices.SortFunc(s2, func(a, b SatType) int {
		ia, ib := slices.Index(sysOrder, a.Sys()), slices.Index(sysOrder, b.Sys())
		if ia != ib {
			return ia - ib
		}
		return a.Num() - b.Num()
	})
	return s2
}
