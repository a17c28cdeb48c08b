// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.7
//

package sp3

import (
	"iter"
	"time"

	"golang.org/x/exp/slices"
)

// Satellite states at one epoch
type epochRecord struct {
	time    time.Time
	sats    []SatType // Order of appearance
	entries map[SatType]*Entry
}

func (p *epochRecord) add(sat SatType) *Entry {
	e := newEntry()
	p.sats = append(p.sats, sat)
	p.entries[sat] = e
	return e
}

// Epoch records sorted by time in ascending order.
// A store is not modified once built.
type Store struct {
	epochs []*epochRecord
}

func (p *Store) appendEpoch(t time.Time) *epochRecord {
	e := &epochRecord{
		time:    t,
		entries: map[SatType]*Entry{},
	}
	p.epochs = append(p.epochs, e)
	return e
}

// Copy of an epoch record into the store being built
func (p *Store) appendCopy(r *epochRecord, t time.Time) {
	e := p.appendEpoch(t)
	for _, sat := range r.sats {
		*e.add(sat) = *r.entries[sat]
	}
}

func (p *Store) NumEpochs() int {
	return len(p.epochs)
}

func (p *Store) FirstEpoch() (time.Time, bool) {
	if len(p.epochs) == 0 {
		return time.Time{}, false
	}
	return p.epochs[0].time, true
}

func (p *Store) LastEpoch() (time.Time, bool) {
	if len(p.epochs) == 0 {
		return time.Time{}, false
	}
	return p.epochs[len(p.epochs)-1].time, true
}

// Index of the epoch record at t
func (p *Store) index(t time.Time) (int, bool) {
	return slices.BinarySearchFunc(p.epochs, t, func(e *epochRecord, t time.Time) int {
		return e.time.Compare(t)
	})
}

// Entry of the satellite at exactly t
func (p *Store) Entry(t time.Time, sat SatType) (Entry, bool) {
	i, ok := p.index(t)
	if !ok {
		return Entry{}, false
	}
	e, ok := p.epochs[i].entries[sat]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Satellites of the epoch at exactly t in file order
func (p *Store) SatsAt(t time.Time) []SatType {
	i, ok := p.index(t)
	if !ok {
		return nil
	}
	return slices.Clone(p.epochs[i].sats)
}

// Epoch axis
func (p *Store) Epochs() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for _, e := range p.epochs {
			if !yield(e.time) {
				return
			}
		}
	}
}

// Observed satellites in order of first appearance
func (p *Store) Satellites() []SatType {
	seen := map[SatType]bool{}
	sats := []SatType{}
	for _, e := range p.epochs {
		for _, sat := range e.sats {
			if !seen[sat] {
				seen[sat] = true
				sats = append(sats, sat)
			}
		}
	}
	return sats
}

func (p *Store) satSet() map[SatType]bool {
	m := map[SatType]bool{}
	for _, e := range p.epochs {
		for _, sat := range e.sats {
			m[sat] = true
		}
	}
	return m
}

// One entry of the store
type Sample struct {
	Time  time.Time
	Sat   SatType
	Entry Entry
}

// Every entry in time order, then in file order within an epoch
func (p *Store) Samples() iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		for _, e := range p.epochs {
			for _, sat := range e.sats {
				if !yield(Sample{Time: e.time, Sat: sat, Entry: *e.entries[sat]}) {
					return
				}
			}
		}
	}
}

type PositionSample struct {
	Time     time.Time
	Sat      SatType
	Flags    Flags
	Position Vector3 // [km]
}

type ClockSample struct {
	Time  time.Time
	Sat   SatType
	Flags Flags
	Clock float64 // [us]
}

type VelocitySample struct {
	Time     time.Time
	Sat      SatType
	Velocity Vector3 // [km/s]
}

// Reported positions. The sequence can be iterated any number of times.
func (p *Store) Positions() iter.Seq[PositionSample] {
	return func(yield func(PositionSample) bool) {
		for s := range p.Samples() {
			if s.Entry.Has&HasPosition == 0 {
				continue
			}
			if !yield(PositionSample{Time: s.Time, Sat: s.Sat, Flags: s.Entry.Flags, Position: s.Entry.Position}) {
				return
			}
		}
	}
}

// Reported clock offsets
func (p *Store) Clocks() iter.Seq[ClockSample] {
	return func(yield func(ClockSample) bool) {
		for s := range p.Samples() {
			if s.Entry.Has&HasClock == 0 {
				continue
			}
			if !yield(ClockSample{Time: s.Time, Sat: s.Sat, Flags: s.Entry.Flags, Clock: s.Entry.Clock}) {
				return
			}
		}
	}
}

// Reported velocities
func (p *Store) Velocities() iter.Seq[VelocitySample] {
	return func(yield func(VelocitySample) bool) {
		for s := range p.Samples() {
			if s.Entry.Has&HasVelocity == 0 {
				continue
			}
			if !yield(VelocitySample{Time: s.Time, Sat: s.Sat, Velocity: s.Entry.Velocity}) {
				return
			}
		}
	}
}

func (p *Store) hasVelocity() bool {
	for s := range p.Samples() {
		if s.Entry.Has&(HasVelocity|HasClockRate) != 0 {
			return true
		}
	}
	return false
}

func (p *Store) hasClock() bool {
	for s := range p.Samples() {
		if s.Entry.Has&(HasClock|HasClockRate) != 0 {
			return true
		}
	}
	return false
}

// Same epochs, satellites and entries
func (p *Store) Equal(b *Store) bool {
	if len(p.epochs) != len(b.epochs) {
		return false
	}
	for i, e := range p.epochs {
		o := b.epochs[i]
		if !e.time.Equal(o.time) || !slices.Equal(e.sats, o.sats) {
			return false
		}
		for _, sat := range e.sats {
			if *e.entries[sat] != *o.entries[sat] {
				return false
			}
		}
	}
	return true
}
