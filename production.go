// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.10
//

package sp3

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Latency and accuracy tier of a product
type Availability int

const (
	Final Availability = iota
	Rapid
	UltraRapid
	Prediction
)

var availabilityCodes = []string{"FIN", "RAP", "ULT", "PRD"}

func (p Availability) String() string {
	if int(p) < len(availabilityCodes) {
		return availabilityCodes[p]
	}
	return "UNKNOWN!"
}

// Duration written as two digits and a unit ("15M", "01D")
type Span struct {
	N    int
	Unit byte // S, M, H, D, W, L (month), Y or U (unspecified)
}

func (p Span) String() string {
	return fmt.Sprintf("%02d%c", p.N, p.Unit)
}

// Approximate duration (months of 30 days, years of 365 days)
func (p Span) Duration() time.Duration {
	u := map[byte]time.Duration{
		'S': time.Second,
		'M': time.Minute,
		'H': time.Hour,
		'D': 24 * time.Hour,
		'W': 7 * 24 * time.Hour,
		'L': 30 * 24 * time.Hour,
		'Y': 365 * 24 * time.Hour,
	}
	return time.Duration(p.N) * u[p.Unit]
}

// Span closest to the duration with the largest unit that divides it
func spanOf(d time.Duration) Span {
	for _, c := range []struct {
		unit byte
		d    time.Duration
	}{{'W', 7 * 24 * time.Hour}, {'D', 24 * time.Hour}, {'H', time.Hour}, {'M', time.Minute}} {
		if d >= c.d && d%c.d == 0 && d/c.d < 100 {
			return Span{N: int(d / c.d), Unit: c.unit}
		}
	}
	n := int(d / time.Second)
	if n > 99 {
		return Span{N: int(d / time.Minute), Unit: 'M'}
	}
	return Span{N: n, Unit: 'S'}
}

// Attributes of a product carried by its file name, e.g. GRG0MGXFIN_20201770000_01D_15M_ORB.SP3.gz
type Production struct {
	Agency       string
	Batch        int    // Solution version
	Campaign     string // OPS, MGX, DEM, TST, TGA or Rnn
	Availability Availability
	Release      time.Time // Year, day of year, hour and minute
	Period       Span      // Time span covered
	Sampling     Span
	Content      string // ORB
	Gzip         bool
}

var productionRe = regexp.MustCompile(`^([A-Z0-9]{3})([0-9])([A-Z0-9]{3})([A-Z]{3})_([0-9]{4})([0-9]{3})([0-9]{2})([0-9]{2})_([0-9]{2})([MHDWLYU])_([0-9]{2})([SMHD])_([A-Z]{3})\.(?i:sp3)(\.(?i:gz))?$`)

func validCampaign(c string) bool {
	switch c {
	case "OPS", "MGX", "DEM", "TST", "TGA":
		return true
	}
	if c[0] == 'R' {
		_, err := strconv.Atoi(c[1:])
		return err == nil
	}
	return false
}

// Attributes from the file name, nil if the name does not follow the convention
func ParseProduction(name string) *Production {
	m := productionRe.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return nil
	}
	atoi := func(s string) int {
		i, _ := strconv.Atoi(s)
		return i
	}
	avail := -1
	for i, c := range availabilityCodes {
		if c == m[4] {
			avail = i
		}
	}
	if avail < 0 || !validCampaign(m[3]) {
		return nil
	}
	doy, hh, mm := atoi(m[6]), atoi(m[7]), atoi(m[8])
	if doy < 1 || doy > 366 || hh > 23 || mm > 59 {
		return nil
	}
	return &Production{
		Agency:       m[1],
		Batch:        atoi(m[2]),
		Campaign:     m[3],
		Availability: Availability(avail),
		Release:      time.Date(atoi(m[5]), 1, doy, hh, mm, 0, 0, time.UTC),
		Period:       Span{N: atoi(m[9]), Unit: m[10][0]},
		Sampling:     Span{N: atoi(m[11]), Unit: m[12][0]},
		Content:      m[13],
		Gzip:         m[14] != "",
	}
}

// File name following the convention
func (p *Production) Filename() string {
	doy, _ := DayOfYear(p.Release)
	s := fmt.Sprintf("%s%d%s%s_%04d%03d%02d%02d_%s_%s_%s.SP3", p.Agency, p.Batch, p.Campaign, p.Availability,
		p.Release.Year(), doy, p.Release.Hour(), p.Release.Minute(), p.Period, p.Sampling, p.Content)
	if p.Gzip {
		s += ".gz"
	}
	return s
}

func (p *Production) String() string {
	return p.Filename()
}

// File name proposed for the file. Attributes missing from the file name are
// derived from the header (first epoch, interval and span of the epochs).
func (p *SP3) StandardizedFilename() string {
	if p.Production != nil {
		return p.Production.Filename()
	}
	h := p.Header
	agency := strings.ToUpper(h.Agency)
	if len(agency) > 3 {
		agency = agency[:3]
	}
	agency += strings.Repeat("X", 3-len(agency))
	campaign := "OPS"
	if h.Constellation == Mixed {
		campaign = "MGX"
	}
	avail := Final
	if p.HasPredictions() {
		avail = Prediction
	}
	period := Span{N: 1, Unit: 'D'}
	if t0, ok := p.store.FirstEpoch(); ok {
		t1, _ := p.store.LastEpoch()
		if d := t1.Sub(t0) + h.Interval; d > 0 {
			period = spanOf(d)
		}
	}
	pr := &Production{
		Agency:       agency,
		Campaign:     campaign,
		Availability: avail,
		Release:      h.FirstEpoch.Truncate(time.Minute),
		Period:       period,
		Sampling:     spanOf(h.Interval),
		Content:      "ORB",
	}
	return pr.Filename()
}
