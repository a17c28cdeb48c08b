// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.13
//

package sp3

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
)

// Every epoch is one interval after the previous one
func (p *SP3) HasSteadySampling() bool {
	es := p.store.epochs
	for i := 1; i < len(es); i++ {
		if es[i].time.Sub(es[i-1].time) != p.Header.Interval {
			return false
		}
	}
	return true
}

// New file with the records selected by keep
func (p *SP3) filter(keep func(time.Time) bool) *SP3 {
	store := &Store{}
	for _, e := range p.store.epochs {
		if keep(e.time) {
			store.appendCopy(e, e.time)
		}
	}
	return p.rebuild(p.Header.Clone(), store)
}

// New file from the store, with the header fields derived from the records updated
func (p *SP3) rebuild(h *Header, store *Store) *SP3 {
	h.NumEpochs = store.NumEpochs()
	if t, ok := store.FirstEpoch(); ok {
		h.setFirstEpoch(t)
	}
	dt := Position
	if h.DataType.HasVelocity() || store.hasVelocity() {
		dt = Velocity
	}
	h.DataType = dt.withClock(store.hasClock())
	m := newSP3(h, store)
	m.Production = p.Production
	return m
}

// Copy of every record, rewritten by fix. Entries come in time order.
func (p *SP3) rework(fix func(t time.Time, sat SatType, e *Entry)) *SP3 {
	store := &Store{}
	for _, e := range p.store.epochs {
		r := store.appendEpoch(e.time)
		for _, sat := range e.sats {
			ent := r.add(sat)
			*ent = *e.entries[sat]
			fix(e.time, sat, ent)
		}
	}
	return p.rebuild(p.Header.Clone(), store)
}

// Velocities by finite difference of positions where they are not reported.
// The velocity at an epoch is the position change since the previous position of the satellite
// divided by the elapsed time, so the first position of each satellite gets none.
func (p *SP3) ResolveVelocities() *SP3 {
	type state struct {
		t   time.Time
		pos Vector3
	}
	last := map[SatType]state{}
	return p.rework(func(t time.Time, sat SatType, e *Entry) {
		if e.Has&HasPosition == 0 {
			return
		}
		if prev, ok := last[sat]; ok && e.Has&HasVelocity == 0 {
			e.Velocity = e.Position.Sub(prev.pos).Scale(1 / t.Sub(prev.t).Seconds())
			e.Has |= HasVelocity
		}
		last[sat] = state{t: t, pos: e.Position}
	})
}

// Clock rates [us/s] by finite difference of clocks where they are not reported
func (p *SP3) ResolveClockRates() *SP3 {
	type state struct {
		t   time.Time
		clk float64
	}
	last := map[SatType]state{}
	return p.rework(func(t time.Time, sat SatType, e *Entry) {
		if e.Has&HasClock == 0 {
			return
		}
		if prev, ok := last[sat]; ok && e.Has&HasClockRate == 0 {
			e.ClockRate = (e.Clock - prev.clk) / t.Sub(prev.t).Seconds()
			e.Has |= HasClockRate
		}
		last[sat] = state{t: t, clk: e.Clock}
	})
}

// Zero clocks and clock rates are placeholders of missing values in some products
func (p *SP3) ZeroRepair() *SP3 {
	return p.rework(func(_ time.Time, _ SatType, e *Entry) {
		if e.Has&HasClock != 0 && e.Clock == 0 {
			e.Has &^= HasClock
		}
		if e.Has&HasClockRate != 0 && e.ClockRate == 0 {
			e.Has &^= HasClockRate
		}
	})
}

// New file with the satellites selected by keep, in the header and in the records.
// Epochs left without any record are dropped.
func (p *SP3) FilterSatellites(keep func(SatType) bool) *SP3 {
	store := &Store{}
	for _, e := range p.store.epochs {
		var r *epochRecord
		for _, sat := range e.sats {
			if !keep(sat) {
				continue
			}
			if r == nil {
				r = store.appendEpoch(e.time)
			}
			*r.add(sat) = *e.entries[sat]
		}
	}
	h := p.Header.Clone()
	h.Satellites = slices.DeleteFunc(h.Satellites, func(sat SatType) bool { return !keep(sat) })
	for sat := range h.Accuracy {
		if !keep(sat) {
			delete(h.Accuracy, sat)
		}
	}
	h.Constellation = constellation(h.Satellites)
	h.FileType = h.Constellation
	return p.rebuild(h, store)
}

// Satellites of the given systems only
func (p *SP3) FilterSystems(sys ...SysType) *SP3 {
	return p.FilterSatellites(func(sat SatType) bool {
		return slices.Contains(sys, sat.Sys())
	})
}

// Every n-th epoch from the first one. The interval is multiplied by n.
func (p *SP3) Decimate(n int) (*SP3, error) {
	if n < 1 {
		return nil, fmt.Errorf("invalid decimation factor %d", n)
	}
	store := &Store{}
	for i, e := range p.store.epochs {
		if i%n == 0 {
			store.appendCopy(e, e.time)
		}
	}
	h := p.Header.Clone()
	h.Interval *= time.Duration(n)
	return p.rebuild(h, store), nil
}

// Epochs up to t and epochs after t
func (p *SP3) Split(t time.Time) (*SP3, *SP3) {
	a := p.filter(func(et time.Time) bool { return !et.After(t) })
	b := p.filter(func(et time.Time) bool { return et.After(t) })
	return a, b
}

// Epochs within [t0, t1]
func (p *SP3) Window(t0, t1 time.Time) *SP3 {
	return p.filter(func(et time.Time) bool { return !et.Before(t0) && !et.After(t1) })
}

// Differences p - rhs at the epochs and satellites the two files share.
// Only components reported by both are kept.
func (p *SP3) Subtract(rhs *SP3) (*SP3, error) {
	a, b := p.Header, rhs.Header
	switch {
	case a.CoordSystem != b.CoordSystem:
		return nil, fmt.Errorf("%w: coordinate system %s and %s", ErrIncompatibleHeaders, a.CoordSystem, b.CoordSystem)
	case a.Timescale != b.Timescale:
		return nil, fmt.Errorf("%w: timescale %s and %s", ErrIncompatibleHeaders, a.Timescale, b.Timescale)
	}

	store := &Store{}
	for _, e := range p.store.epochs {
		i, ok := rhs.store.index(e.time)
		if !ok {
			continue
		}
		o := rhs.store.epochs[i]
		var r *epochRecord
		for _, sat := range e.sats {
			eb, ok := o.entries[sat]
			if !ok {
				continue
			}
			ea := e.entries[sat]
			d := newEntry()
			d.Flags = ea.Flags
			if both := ea.Has & eb.Has; both != 0 {
				d.Has = both
				d.Position = ea.Position.Sub(eb.Position)
				d.Clock = ea.Clock - eb.Clock
				d.Velocity = ea.Velocity.Sub(eb.Velocity)
				d.ClockRate = ea.ClockRate - eb.ClockRate
			}
			if r == nil {
				r = store.appendEpoch(e.time)
			}
			*r.add(sat) = *d
		}
	}
	h := a.Clone()
	h.NumEpochs = store.NumEpochs()
	if t, ok := store.FirstEpoch(); ok {
		h.setFirstEpoch(t)
	}
	h.DataType = h.DataType.withClock(store.hasClock())
	return newSP3(h, store), nil
}

// Statistics of the position norms of one satellite
type Stats struct {
	N    int
	Mean float64 // [km]
	Std  float64 // [km]
	Max  float64 // [km]
}

// Statistics per satellite, meant for the residuals given by Subtract
func (p *SP3) NormStats() map[SatType]Stats {
	norms := map[SatType][]float64{}
	for s := range p.store.Positions() {
		norms[s.Sat] = append(norms[s.Sat], s.Position.Norm())
	}
	m := map[SatType]Stats{}
	for sat, x := range norms {
		mean, std := stat.MeanStdDev(x, nil)
		if len(x) < 2 {
			std = 0
		}
		mx := math.Inf(-1)
		for _, v := range x {
			mx = math.Max(mx, v)
		}
		m[sat] = Stats{N: len(x), Mean: mean, Std: std, Max: mx}
	}
	return m
}
