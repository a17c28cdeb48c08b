// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.5
//

package sp3

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ------------------------------------
// Mini functions
// ------------------------------------

func SQ(x float64) float64 {
	return x * x
}

func ToDeg(rad float64) float64 {
	return rad / math.Pi * 180.0
}

// Substring that tolerates lines shorter than the column range
func field(l string, a, b int) string {
	if a >= len(l) {
		return ""
	}
	return l[a:min(b, len(l))]
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// Parse a fixed-point field. Blank or fill characters ("999999.999999") mean "not reported".
func parseValue(s string) (v float64, ok bool, err error) {
	t := strings.TrimSpace(s)
	if t == "" || isFill(t) {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func isFill(t string) bool {
	t = strings.TrimPrefix(t, "-")
	if !strings.HasPrefix(t, "999999") {
		return false
	}
	return strings.Trim(t, "9.") == ""
}

// Parse a standard deviation exponent. Blank means not reported.
func parseSigma(s string) (int, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return NoSigma, nil
	}
	return strconv.Atoi(t)
}

// Parse decimal seconds ("   900.00000000") without going through float64
func parseSeconds(s string) (time.Duration, error) {
	t := strings.TrimSpace(s)
	neg := strings.HasPrefix(t, "-")
	t = strings.TrimPrefix(t, "-")
	ip, fp, _ := strings.Cut(t, ".")
	if ip == "" {
		ip = "0"
	}
	i, err := strconv.ParseInt(ip, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds '%s'", s)
	}
	d := time.Duration(i) * time.Second
	if len(fp) > 9 {
		fp = fp[:9]
	}
	if fp != "" {
		f, err := strconv.ParseInt(fp+strings.Repeat("0", 9-len(fp)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid seconds '%s'", s)
		}
		d += time.Duration(f)
	}
	if neg {
		d = -d
	}
	return d, nil
}

// Format seconds with 8 decimals ("900.00000000"), exact to 10 ns
func formatSeconds(d time.Duration, width int) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	d = d.Round(epochResolution)
	s := fmt.Sprintf("%s%d.%08d", sign, d/time.Second, (d%time.Second)/epochResolution)
	return fmt.Sprintf("%*s", width, s)
}

// Calendar epoch "YYYY MM DD hh mm ss.ssssssss" starting at column 3
func parseCalendar(l string) (time.Time, error) {
	var v [5]int
	cols := [5][2]int{{3, 7}, {8, 10}, {11, 13}, {14, 16}, {17, 19}}
	for i, c := range cols {
		n, err := parseInt(field(l, c[0], c[1]))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid calendar field '%s'", field(l, c[0], c[1]))
		}
		v[i] = n
	}
	sec, err := parseSeconds(field(l, 20, 31))
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(v[0], time.Month(v[1]), v[2], v[3], v[4], 0, 0, time.UTC).Add(sec), nil
}

func formatCalendar(t time.Time) string {
	return fmt.Sprintf("%4d %2d %2d %2d %2d %s", t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(),
		formatSeconds(time.Duration(t.Second())*time.Second+time.Duration(t.Nanosecond()), 11))
}

// ------------------------------------
// For command argument parsing
// ------------------------------------

type SatVar []SatType

func (p *SatVar) Set(s string) error {
	*p = []SatType{}
	for _, a := range strings.Split(s, ",") {
		sat, err := ParseSat(a)
		if err != nil {
			return err
		}
		*p = append(*p, sat)
	}
	return nil
}

func (p *SatVar) String() string {
	return ""
}

func (p *SatVar) Contains(s SatType) bool {
	for _, v := range *p {
		if s == v {
			return true
		}
	}
	return false
}

// Date and Time Parser (for command arguments)
type TimeStr time.Time

func (p *TimeStr) MarshalText() (text []byte, err error) {
	text, err = time.Time(*p).MarshalText()
	if err != nil {
		return nil, err
	}
	return text, nil
}

func (p *TimeStr) UnmarshalText(text []byte) error {
	s := string(text)
	t, err := time.Parse("2006/01/02 15:04:05", s)
	if err != nil {
		return err
	}
	*p = TimeStr(t)
	return nil
}

func NewTimeStr(t time.Time) *TimeStr {
	m := new(TimeStr)
	*m = TimeStr(t)
	return m
}

// Processing mode of the command (0: info, 1: interpolate, 2: merge, 3: transpose, 4: format)
type Mode int

const (
	INFO = iota
	INTERP
	MERGE
	TRANSPOSE
	FORMAT
)

func (p *Mode) Set(s string) error {
	i, err := strconv.ParseInt(s, 10, 0)
	if err != nil {
		return err
	}
	if i < INFO || i > FORMAT {
		return fmt.Errorf("unknown mode %d", i)
	}
	*p = Mode(i)
	return nil
}

func (p *Mode) String() string {
	switch *p {
	case INFO:
		return "INFO"
	case INTERP:
		return "INTERP"
	case MERGE:
		return "MERGE"
	case TRANSPOSE:
		return "TRANSPOSE"
	case FORMAT:
		return "FORMAT"
	default:
		return "UNKNOWN!"
	}
}
