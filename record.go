// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.6
//

package sp3

import (
	"fmt"
)

// Fields reported by the records of one satellite at one epoch
type Field uint8

const (
	HasPosition Field = 1 << iota
	HasClock
	HasVelocity
	HasClockRate
)

// Exponents of the standard deviations (NoSigma if not reported)
type Sigma struct {
	X, Y, Z, Clock int
}

var noSigma = Sigma{X: NoSigma, Y: NoSigma, Z: NoSigma, Clock: NoSigma}

type Flags struct {
	Predicted      bool // Orbit prediction
	Maneuver       bool // Orbit maneuver in the interval since the previous epoch
	ClockEvent     bool // Discontinuity of the clock
	ClockPredicted bool // Clock prediction
}

// State of one satellite at one epoch
type Entry struct {
	Position  Vector3 // [km]
	Clock     float64 // [us]
	Velocity  Vector3 // [km/s]
	ClockRate float64 // [us/s]
	Has       Field
	PosSigma  Sigma
	VelSigma  Sigma
	Flags     Flags
}

func newEntry() *Entry {
	return &Entry{PosSigma: noSigma, VelSigma: noSigma}
}

func (e *Entry) PositionKm() (Vector3, bool) {
	return e.Position, e.Has&HasPosition != 0
}

func (e *Entry) ClockUs() (float64, bool) {
	return e.Clock, e.Has&HasClock != 0
}

func (e *Entry) VelocityKms() (Vector3, bool) {
	return e.Velocity, e.Has&HasVelocity != 0
}

func (e *Entry) ClockRateUs() (float64, bool) {
	return e.ClockRate, e.Has&HasClockRate != 0
}

// Values of a record line: a vector, a scalar and their sigmas.
// A vector is absent as a whole when any of its components is missing.
type recordValues struct {
	vec    Vector3
	vecOK  bool
	scalar float64
	scOK   bool
	sigma  Sigma
}

// PG01  -7734.458980 -14425.111180 -21275.214670     24.400577  7  6  7  93 EP  MP
func parseRecordValues(l string) (rv recordValues, err error) {
	var v [3]float64
	rv.vecOK = true
	for i, c := range []int{colX, colY, colZ} {
		f, ok, err := parseValue(field(l, c, c+widthField))
		if err != nil {
			return rv, fmt.Errorf("invalid coordinate '%s'", field(l, c, c+widthField))
		}
		v[i] = f
		rv.vecOK = rv.vecOK && ok
	}
	if rv.vecOK {
		rv.vec = Vector3{X: v[0], Y: v[1], Z: v[2]}
	}
	rv.scalar, rv.scOK, err = parseValue(field(l, colClk, colClk+widthField))
	if err != nil {
		return rv, fmt.Errorf("invalid clock '%s'", field(l, colClk, colClk+widthField))
	}
	sg := [4]int{}
	for i, c := range [][2]int{{colSigX, colSigX + 2}, {colSigY, colSigY + 2}, {colSigZ, colSigZ + 2}, {colSigC, colSigC + 3}} {
		sg[i], err = parseSigma(field(l, c[0], c[1]))
		if err != nil {
			return rv, fmt.Errorf("invalid standard deviation '%s'", field(l, c[0], c[1]))
		}
	}
	rv.sigma = Sigma{X: sg[0], Y: sg[1], Z: sg[2], Clock: sg[3]}
	return rv, nil
}

// Single-character flag columns of a position record
func parseFlags(l string) (Flags, error) {
	var f Flags
	cols := []struct {
		col  int
		code byte
		set  *bool
	}{
		{colClkEvt, 'E', &f.ClockEvent},
		{colClkPred, 'P', &f.ClockPredicted},
		{colMan, 'M', &f.Maneuver},
		{colOrbPred, 'P', &f.Predicted},
	}
	for _, c := range cols {
		if c.col >= len(l) {
			continue
		}
		switch l[c.col] {
		case ' ':
		case c.code:
			*c.set = true
		default:
			return f, fmt.Errorf("%w: '%c' in column %d", ErrInvalidFlag, l[c.col], c.col+1)
		}
	}
	return f, nil
}

func (e *Entry) setPosition(rv recordValues, f Flags) {
	if rv.vecOK {
		e.Position = rv.vec
		e.Has |= HasPosition
	}
	if rv.scOK {
		e.Clock = rv.scalar
		e.Has |= HasClock
	}
	e.PosSigma = rv.sigma
	e.Flags = f
}

// Velocity records are in dm/s and 1e-4 us/s
func (e *Entry) setVelocity(rv recordValues) {
	if rv.vecOK {
		e.Velocity = rv.vec.Scale(VelUnit)
		e.Has |= HasVelocity
	}
	if rv.scOK {
		e.ClockRate = rv.scalar * RateUnit
		e.Has |= HasClockRate
	}
	e.VelSigma = rv.sigma
}
