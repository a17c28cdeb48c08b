// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.6
//

package sp3

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/slices"
)

// SP3 format specifications
// https://files.igs.org/pub/data/format/sp3c.txt
// https://files.igs.org/pub/data/format/sp3d.pdf
//

// Format revision ('c' or 'd')
type Revision byte

const (
	RevC Revision = 'c'
	RevD Revision = 'd'
)

func ParseRevision(b byte) (Revision, error) {
	switch b {
	case 'c', 'C':
		return RevC, nil
	case 'd', 'D':
		return RevD, nil
	}
	return 0, fmt.Errorf("%w (rev=%c)", ErrUnsupportedRevision, b)
}

// Contents of the records
type DataType int

const (
	Position DataType = iota
	PositionClock
	Velocity
	VelocityClock
)

// Letter written in the first line ('P' or 'V')
func (p DataType) Letter() byte {
	if p.HasVelocity() {
		return 'V'
	}
	return 'P'
}

func (p DataType) HasVelocity() bool {
	return p == Velocity || p == VelocityClock
}

func (p DataType) HasClock() bool {
	return p == PositionClock || p == VelocityClock
}

func (p DataType) withClock(clk bool) DataType {
	switch {
	case p.HasVelocity() && clk:
		return VelocityClock
	case p.HasVelocity():
		return Velocity
	case clk:
		return PositionClock
	default:
		return Position
	}
}

func (p DataType) String() string {
	switch p {
	case Position:
		return "Position"
	case PositionClock:
		return "Position+Clock"
	case Velocity:
		return "Velocity"
	case VelocityClock:
		return "Velocity+Clock"
	default:
		return "UNKNOWN!"
	}
}

// Header section of an SP3 file
type Header struct {
	Revision      Revision
	DataType      DataType
	FirstEpoch    time.Time     // Epoch of the first record (line 1)
	NumEpochs     int           // Declared number of epochs
	DataUsed      string        // Data used descriptor (e.g. "ORBIT", "u+U")
	CoordSystem   string        // Coordinate system (e.g. "IGS20")
	OrbitType     string        // Orbit type (FIT, EXT, BCT, BHN, HLM)
	Agency        string        // Producing agency
	Time          GTime         // GNSS week and seconds of week of the first epoch
	MJD           int           // Modified Julian Day of the first epoch
	MJDFrac       float64       // Fractional day
	Interval      time.Duration // Sampling interval
	FileType      SysType       // System declared in the "%c" line
	Timescale     Timescale     // Time system of every epoch
	Constellation SysType       // Derived from Satellites: a single system or Mixed
	Satellites    []SatType     // Declared satellites in file order
	Accuracy      map[SatType]int
	PosBase       float64  // Floating point base for position/velocity sigma
	ClkBase       float64  // Floating point base for clock/rate sigma
	Comments      []string // Comment lines without the "/*" prefix
}

// Deep copy
func (h *Header) Clone() *Header {
	c := *h
	c.Satellites = slices.Clone(h.Satellites)
	c.Comments = slices.Clone(h.Comments)
	c.Accuracy = make(map[SatType]int, len(h.Accuracy))
	for k, v := range h.Accuracy {
		c.Accuracy[k] = v
	}
	return &c
}

// Declared satellite or not
func (h *Header) HasSat(sat SatType) bool {
	return slices.Contains(h.Satellites, sat)
}

// Rewrite the first epoch and the fields derived from it
func (h *Header) setFirstEpoch(t time.Time) {
	h.FirstEpoch = t
	h.Time = *NewGTime(t)
	h.MJD, h.MJDFrac = MJD(t)
}

// Header line being read
type headerParser struct {
	h        *Header
	lineNo   int
	lines    int  // Header lines read so far
	nSat     int  // Declared number of satellites
	accSlots int  // Accuracy slots read so far
	cLines   int  // "%c" lines read so far
	fLines   int  // "%f" lines read so far
	done     bool // First body line reached
	warnings []Warning
}

func newHeaderParser() *headerParser {
	return &headerParser{
		h: &Header{
			Accuracy: map[SatType]int{},
		},
	}
}

func (p *headerParser) fail(line, fld string, err error) error {
	return &ParseError{Line: p.lineNo, Field: fld, Text: line, Err: err}
}

func (p *headerParser) warn(kind error, format string, a ...any) {
	p.warnings = append(p.warnings, Warning{Line: p.lineNo, Kind: kind, Msg: fmt.Sprintf(format, a...)})
}

// Read one header line
func (p *headerParser) parse(line string) error {
	p.lines++
	if p.lines == 1 {
		return p.parseLine1(line)
	}
	switch {
	case strings.HasPrefix(line, "##"):
		return p.parseLine2(line)
	case strings.HasPrefix(line, "++"):
		return p.parseAccuracy(line)
	case strings.HasPrefix(line, "+"):
		return p.parseSatellites(line)
	case strings.HasPrefix(line, "%c"):
		return p.parseTimeSystem(line)
	case strings.HasPrefix(line, "%f"):
		return p.parseFloatBase(line)
	case strings.HasPrefix(line, "%i"):
		return nil
	case strings.HasPrefix(line, "/*"):
		p.h.Comments = append(p.h.Comments, line[2:])
		return nil
	case strings.TrimSpace(line) == "":
		return nil
	}
	return p.fail(line, "header label", fmt.Errorf("%w: unknown header line", ErrMalformedRecord))
}

// #cP2001  8  8  0  0  0.00000000     192 ORBIT IGS97 HLM  IGS
func (p *headerParser) parseLine1(line string) error {
	if len(line) == 0 || line[0] != '#' {
		return p.fail(line, "#", fmt.Errorf("%w: not an SP3 file", ErrUnsupportedRevision))
	}
	if len(line) < 3 {
		return p.fail(line, "data type", ErrTruncatedHeaderLine)
	}
	rev, err := ParseRevision(line[1])
	if err != nil {
		return p.fail(line, "revision", err)
	}
	p.h.Revision = rev
	switch line[2] {
	case 'P', 'p':
		p.h.DataType = Position
	case 'V', 'v':
		p.h.DataType = Velocity
	default:
		return p.fail(line, "data type", fmt.Errorf("%w (typ=%c)", ErrUnsupportedDataType, line[2]))
	}
	if len(line) < minLine1 {
		return p.fail(line, "agency", ErrTruncatedHeaderLine)
	}
	t, err := parseCalendar(line)
	if err != nil {
		return p.fail(line, "first epoch", fmt.Errorf("%w: %s", ErrMalformedRecord, err.Error()))
	}
	p.h.FirstEpoch = t
	n, err := parseInt(line[32:40])
	if err != nil {
		return p.fail(line, "number of epochs", fmt.Errorf("%w: %s", ErrMalformedRecord, err.Error()))
	}
	p.h.NumEpochs = n
	p.h.DataUsed = strings.TrimSpace(line[40:45])
	p.h.CoordSystem = strings.TrimSpace(line[45:51])
	p.h.OrbitType = strings.TrimSpace(line[51:55])
	p.h.Agency = strings.TrimSpace(line[55:])
	return nil
}

// ## 1126 259200.00000000   900.00000000 52129 0.0000000000000
func (p *headerParser) parseLine2(line string) error {
	if len(line) < minLine2 {
		return p.fail(line, "fractional day", ErrTruncatedHeaderLine)
	}
	w, err := parseInt(line[2:7])
	if err != nil {
		return p.fail(line, "gps week", fmt.Errorf("%w: %s", ErrMalformedRecord, err.Error()))
	}
	sow, err := parseSeconds(line[7:23])
	if err != nil {
		return p.fail(line, "seconds of week", fmt.Errorf("%w: %s", ErrMalformedRecord, err.Error()))
	}
	dt, err := parseSeconds(line[23:38])
	if err != nil || dt <= 0 {
		return p.fail(line, "epoch interval", fmt.Errorf("%w: invalid interval '%s'", ErrMalformedRecord, line[23:38]))
	}
	mjd, err := parseInt(line[38:44])
	if err != nil {
		return p.fail(line, "mjd", fmt.Errorf("%w: %s", ErrMalformedRecord, err.Error()))
	}
	frac, ok, err := parseValue(line[44:])
	if err != nil || !ok {
		return p.fail(line, "fractional day", fmt.Errorf("%w: invalid fraction '%s'", ErrMalformedRecord, line[44:]))
	}
	p.h.Time = GTime{Week: w, Sec: sow.Seconds()}
	p.h.Interval = dt
	p.h.MJD = mjd
	p.h.MJDFrac = frac
	return nil
}

// +   26   G01G02G03...
func (p *headerParser) parseSatellites(line string) error {
	if len(line) < minSatLine {
		return p.fail(line, "satellite list", ErrTruncatedHeaderLine)
	}
	if n := strings.TrimSpace(line[1:6]); n != "" {
		ns, err := parseInt(n)
		if err != nil {
			return p.fail(line, "number of satellites", fmt.Errorf("%w: %s", ErrSatelliteCount, err.Error()))
		}
		p.nSat = ns
	}
	for j := 0; j < SatsPerLine && 9+3*j+3 <= len(line); j++ {
		s := line[9+3*j : 12+3*j]
		if isEmptySat(s) {
			continue
		}
		sat, err := ParseSat(s)
		if err != nil {
			return p.fail(line, "satellite id", fmt.Errorf("%w: %s", ErrMalformedRecord, err.Error()))
		}
		if p.h.HasSat(sat) {
			return p.fail(line, "satellite id", fmt.Errorf("%w: duplicated satellite %s", ErrSatelliteCount, sat))
		}
		p.h.Satellites = append(p.h.Satellites, sat)
	}
	return nil
}

// ++         2  2  2...
func (p *headerParser) parseAccuracy(line string) error {
	if len(line) < minSatLine {
		return p.fail(line, "accuracy", ErrTruncatedHeaderLine)
	}
	for j := 0; j < SatsPerLine && 9+3*j+3 <= len(line); j++ {
		s := strings.TrimSpace(line[9+3*j : 12+3*j])
		if p.accSlots >= len(p.h.Satellites) {
			// Unused slots beyond the satellite list
			if s != "" && s != "0" {
				return p.fail(line, "accuracy", fmt.Errorf("%w: %d satellites", ErrAccuracyCount, len(p.h.Satellites)))
			}
			continue
		}
		a := 0
		if s != "" {
			var err error
			a, err = parseInt(s)
			if err != nil {
				return p.fail(line, "accuracy", fmt.Errorf("%w: %s", ErrMalformedRecord, err.Error()))
			}
		}
		p.h.Accuracy[p.h.Satellites[p.accSlots]] = a
		p.accSlots++
	}
	return nil
}

// %c M  cc GPS ccc cccc cccc cccc cccc ccccc ccccc ccccc ccccc
func (p *headerParser) parseTimeSystem(line string) error {
	p.cLines++
	if p.cLines > 1 {
		return nil
	}
	if len(line) < 12 {
		return p.fail(line, "time system", ErrTruncatedHeaderLine)
	}
	p.h.FileType = SysType(line[3])
	if f := strings.TrimSpace(line[3:5]); f == "" || f == "cc" {
		p.h.FileType = 'G'
	}
	ts := line[9:12]
	if ts == "ccc" || strings.TrimSpace(ts) == "" {
		p.warn(ErrUnknownTimescale, "no time system, GPS assumed")
		p.h.Timescale = GPST
		return nil
	}
	t, err := ParseTimescale(ts)
	if err != nil {
		return p.fail(line, "time system", err)
	}
	p.h.Timescale = t
	return nil
}

// %f  1.2500000  1.025000000  0.00000000000  0.000000000000000
func (p *headerParser) parseFloatBase(line string) error {
	p.fLines++
	if p.fLines > 1 {
		return nil
	}
	if len(line) < 26 {
		return p.fail(line, "floating point base", ErrTruncatedHeaderLine)
	}
	pb, _, err := parseValue(line[3:13])
	if err != nil {
		return p.fail(line, "position base", fmt.Errorf("%w: %s", ErrMalformedRecord, err.Error()))
	}
	cb, _, err := parseValue(line[14:26])
	if err != nil {
		return p.fail(line, "clock base", fmt.Errorf("%w: %s", ErrMalformedRecord, err.Error()))
	}
	p.h.PosBase = pb
	p.h.ClkBase = cb
	return nil
}

// Check the header when the first epoch line is reached
func (p *headerParser) finish(line string) error {
	h := p.h
	if h.Interval == 0 {
		return p.fail(line, "##", fmt.Errorf("%w: line 2 not found", ErrTruncatedHeaderLine))
	}
	if len(h.Satellites) != p.nSat {
		return p.fail(line, "+", fmt.Errorf("%w: declared %d, listed %d", ErrSatelliteCount, p.nSat, len(h.Satellites)))
	}
	if h.Revision == RevC && p.nSat > MaxSatsRevC {
		return p.fail(line, "+", fmt.Errorf("%w: %d satellites in revision c", ErrSatelliteCount, p.nSat))
	}
	if p.accSlots != len(h.Satellites) {
		return p.fail(line, "++", fmt.Errorf("%w: %d accuracies for %d satellites", ErrAccuracyCount, p.accSlots, len(h.Satellites)))
	}
	if p.cLines == 0 {
		p.warn(ErrUnknownTimescale, "no %%c line, GPS assumed")
		h.Timescale = GPST
		h.FileType = constellation(h.Satellites)
	}
	h.Constellation = constellation(h.Satellites)
	if h.FileType != h.Constellation {
		p.warn(ErrInconsistentHeader, "file type %c, satellites %c", h.FileType, h.Constellation)
	}
	if g := NewGTime(h.FirstEpoch); !g.Equal(h.Time) {
		p.warn(ErrInconsistentHeader, "week/sow %d %.8f, first epoch %d %.8f", h.Time.Week, h.Time.Sec, g.Week, g.Sec)
	}
	p.done = true
	return nil
}
