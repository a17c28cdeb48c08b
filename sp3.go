// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.8
//

// Package sp3 reads and writes IGS SP3 precise orbit files (revisions c and d)
// and interpolates, merges and transposes the time series they carry.
package sp3

import (
	"fmt"
	"iter"
	"strings"
	"time"
)

// Parsed SP3 file
type SP3 struct {
	Header     *Header
	Production *Production // From the file name, nil if it does not follow the convention
	Warnings   []Warning
	store      *Store
}

func newSP3(h *Header, store *Store) *SP3 {
	return &SP3{Header: h, store: store}
}

func (p *SP3) Store() *Store {
	return p.store
}

func (p *SP3) HasClock() bool {
	return p.Header.DataType.HasClock()
}

func (p *SP3) HasVelocity() bool {
	return p.Header.DataType.HasVelocity()
}

// At least one maneuver flag
func (p *SP3) HasManeuver() bool {
	for range p.ManeuverEpochs() {
		return true
	}
	return false
}

// At least one orbit prediction
func (p *SP3) HasPredictions() bool {
	for s := range p.store.Positions() {
		if s.Flags.Predicted {
			return true
		}
	}
	return false
}

// Positions of satellites not under maneuver
func (p *SP3) StablePositions() iter.Seq[PositionSample] {
	return p.filterPositions(func(f Flags) bool { return !f.Maneuver })
}

// Positions determined by the orbit fit (not predicted)
func (p *SP3) FittedPositions() iter.Seq[PositionSample] {
	return p.filterPositions(func(f Flags) bool { return !f.Predicted })
}

func (p *SP3) filterPositions(keep func(Flags) bool) iter.Seq[PositionSample] {
	return func(yield func(PositionSample) bool) {
		for s := range p.store.Positions() {
			if keep(s.Flags) && !yield(s) {
				return
			}
		}
	}
}

// Epochs with at least one maneuver flag
func (p *SP3) ManeuverEpochs() iter.Seq[time.Time] {
	return p.flaggedEpochs(func(f Flags) bool { return f.Maneuver })
}

// Epochs with at least one clock event
func (p *SP3) ClockEventEpochs() iter.Seq[time.Time] {
	return p.flaggedEpochs(func(f Flags) bool { return f.ClockEvent })
}

func (p *SP3) flaggedEpochs(match func(Flags) bool) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for _, e := range p.store.epochs {
			for _, sat := range e.sats {
				if match(e.entries[sat].Flags) {
					if !yield(e.time) {
						return
					}
					break
				}
			}
		}
	}
}

// Last epoch of the file
func (p *SP3) LastEpoch() (time.Time, bool) {
	return p.store.LastEpoch()
}

// Display overview
func (p *SP3) String() string {
	h := p.Header
	var b strings.Builder
	fmt.Fprintf(&b, "revision     : %c\n", h.Revision)
	fmt.Fprintf(&b, "data type    : %s\n", h.DataType)
	fmt.Fprintf(&b, "agency       : %s\n", h.Agency)
	fmt.Fprintf(&b, "orbit type   : %s\n", h.OrbitType)
	fmt.Fprintf(&b, "coord system : %s\n", h.CoordSystem)
	fmt.Fprintf(&b, "timescale    : %s\n", h.Timescale)
	fmt.Fprintf(&b, "constellation: %s\n", h.Constellation)
	fmt.Fprintf(&b, "interval     : %s\n", h.Interval)
	if t0, ok := p.store.FirstEpoch(); ok {
		t1, _ := p.store.LastEpoch()
		fmt.Fprintf(&b, "epochs       : %d (%s - %s)\n", p.store.NumEpochs(), t0.Format("2006/01/02 15:04:05"), t1.Format("2006/01/02 15:04:05"))
	} else {
		fmt.Fprintf(&b, "epochs       : 0\n")
	}
	fmt.Fprintf(&b, "week/sow     : %d %.1f\n", h.Time.Week, h.Time.Sec)
	fmt.Fprintf(&b, "satellites   : %d\n", len(h.Satellites))
	sats := Sorted(h.Satellites)
	for i := 0; i < len(sats); i += 17 {
		fmt.Fprintf(&b, "   ")
		for _, s := range sats[i:min(i+17, len(sats))] {
			fmt.Fprintf(&b, " %s", s)
		}
		fmt.Fprintf(&b, "\n")
	}
	if p.Production != nil {
		fmt.Fprintf(&b, "production   : %s\n", p.Production)
	}
	for _, w := range p.Warnings {
		fmt.Fprintf(&b, "warning      : %s\n", w)
	}
	return b.String()
}
