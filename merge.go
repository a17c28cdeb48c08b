// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.9
//

package sp3

import (
	"fmt"
	"time"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats/scalar"
)

// Largest differences accepted between two samples of the same satellite at the same epoch
type MergeTolerance struct {
	Position  float64 // [km]
	Clock     float64 // [us]
	Velocity  float64 // [km/s]
	ClockRate float64 // [us/s]
}

var DefaultMergeTolerance = MergeTolerance{
	Position:  1e-6,
	Clock:     1e-6,
	Velocity:  1e-10,
	ClockRate: 1e-10,
}

type mergeConfig struct {
	tol MergeTolerance
}

type MergeOption func(*mergeConfig)

func WithTolerance(tol MergeTolerance) MergeOption {
	return func(c *mergeConfig) {
		c.tol = tol
	}
}

// Check the header fields two files must share to be merged
func compatible(a, b *Header) error {
	switch {
	case a.Revision != b.Revision:
		return fmt.Errorf("%w: revision %c and %c", ErrIncompatibleHeaders, a.Revision, b.Revision)
	case a.CoordSystem != b.CoordSystem:
		return fmt.Errorf("%w: coordinate system %s and %s", ErrIncompatibleHeaders, a.CoordSystem, b.CoordSystem)
	case a.Timescale != b.Timescale:
		return fmt.Errorf("%w: timescale %s and %s", ErrIncompatibleHeaders, a.Timescale, b.Timescale)
	case a.OrbitType != b.OrbitType:
		return fmt.Errorf("%w: orbit type %s and %s", ErrIncompatibleHeaders, a.OrbitType, b.OrbitType)
	case a.Interval != b.Interval:
		return fmt.Errorf("%w: %s and %s", ErrIncompatibleSamplingInterval, a.Interval, b.Interval)
	}
	return nil
}

// Same values within the tolerance and same flags
func (tol *MergeTolerance) agree(a, b *Entry) bool {
	vec := func(u, v Vector3, eps float64) bool {
		return scalar.EqualWithinAbs(u.X, v.X, eps) && scalar.EqualWithinAbs(u.Y, v.Y, eps) && scalar.EqualWithinAbs(u.Z, v.Z, eps)
	}
	switch {
	case a.Has != b.Has || a.Flags != b.Flags:
		return false
	case a.Has&HasPosition != 0 && !vec(a.Position, b.Position, tol.Position):
		return false
	case a.Has&HasClock != 0 && !scalar.EqualWithinAbs(a.Clock, b.Clock, tol.Clock):
		return false
	case a.Has&HasVelocity != 0 && !vec(a.Velocity, b.Velocity, tol.Velocity):
		return false
	case a.Has&HasClockRate != 0 && !scalar.EqualWithinAbs(a.ClockRate, b.ClockRate, tol.ClockRate):
		return false
	}
	return true
}

// Combine two files into one spanning the union of their epochs.
// Samples of a satellite at an epoch present in both files must agree.
// Agency and production attributes are taken from a.
func Merge(a, b *SP3, opts ...MergeOption) (*SP3, error) {
	cfg := mergeConfig{tol: DefaultMergeTolerance}
	for _, o := range opts {
		o(&cfg)
	}
	if err := compatible(a.Header, b.Header); err != nil {
		return nil, err
	}

	store := &Store{}
	ea, eb := a.store.epochs, b.store.epochs
	i, j := 0, 0
	for i < len(ea) || j < len(eb) {
		switch {
		case j == len(eb) || (i < len(ea) && ea[i].time.Before(eb[j].time)):
			store.appendCopy(ea[i], ea[i].time)
			i++
		case i == len(ea) || eb[j].time.Before(ea[i].time):
			store.appendCopy(eb[j], eb[j].time)
			j++
		default:
			if err := mergeEpoch(store, ea[i], eb[j], &cfg.tol); err != nil {
				return nil, err
			}
			i++
			j++
		}
	}

	h := a.Header.Clone()
	for _, sat := range b.Header.Satellites {
		if !h.HasSat(sat) {
			h.Satellites = append(h.Satellites, sat)
			h.Accuracy[sat] = b.Header.Accuracy[sat]
		}
	}
	for _, c := range b.Header.Comments {
		if !slices.Contains(h.Comments, c) {
			h.Comments = append(h.Comments, c)
		}
	}
	h.NumEpochs = store.NumEpochs()
	if t, ok := store.FirstEpoch(); ok {
		h.setFirstEpoch(t)
	}
	h.Constellation = constellation(h.Satellites)
	h.FileType = h.Constellation
	dt := Position
	if a.HasVelocity() || b.HasVelocity() {
		dt = Velocity
	}
	h.DataType = dt.withClock(store.hasClock())

	m := newSP3(h, store)
	m.Production = a.Production
	return m, nil
}

func mergeEpoch(store *Store, ra, rb *epochRecord, tol *MergeTolerance) error {
	e := store.appendEpoch(ra.time)
	for _, sat := range ra.sats {
		*e.add(sat) = *ra.entries[sat]
	}
	for _, sat := range rb.sats {
		eb := rb.entries[sat]
		if ea, ok := e.entries[sat]; ok {
			if !tol.agree(ea, eb) {
				return fmt.Errorf("%w: epoch %s, satellite %s", ErrConflictingSamples, ra.time.Format(time.RFC3339Nano), sat)
			}
			continue
		}
		*e.add(sat) = *eb
	}
	return nil
}
