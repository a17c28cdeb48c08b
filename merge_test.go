// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.13
//

package sp3

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestMergeSplit(t *testing.T) {
	s := newOrbit(orbitEpoch, 8, 30*time.Second, "G05", "E19")
	a, b := s.Split(orbitEpoch.Add(4 * 30 * time.Second))
	if a.Store().NumEpochs() != 5 || b.Store().NumEpochs() != 3 {
		t.Fatalf("split into %d and %d epochs", a.Store().NumEpochs(), b.Store().NumEpochs())
	}
	for _, order := range [][2]*SP3{{a, b}, {b, a}} {
		m, err := Merge(order[0], order[1])
		if err != nil {
			t.Fatalf("Merge failed: %v", err)
		}
		if !m.Store().Equal(s.Store()) {
			t.Errorf("merged records differ from the original")
		}
		if m.Header.NumEpochs != 8 || !m.Header.FirstEpoch.Equal(orbitEpoch) {
			t.Errorf("header: %d epochs from %s", m.Header.NumEpochs, m.Header.FirstEpoch)
		}
		if m.Header.Time != s.Header.Time || m.Header.MJD != s.Header.MJD {
			t.Errorf("week/sow or MJD not updated")
		}
	}
}

func TestMergeOverlap(t *testing.T) {
	s := newOrbit(orbitEpoch, 8, time.Minute, "G05")
	a := s.Window(orbitEpoch, orbitEpoch.Add(5*time.Minute))
	b := s.Window(orbitEpoch.Add(3*time.Minute), orbitEpoch.Add(7*time.Minute))
	m, err := Merge(a, b)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if !m.Store().Equal(s.Store()) {
		t.Errorf("merged records differ from the original")
	}

	// Small differences are tolerated
	b.store.epochs[0].entries["G05"].Position.X += 1e-8
	if _, err := Merge(a, b); err != nil {
		t.Errorf("difference within the tolerance: %v", err)
	}
}

func TestMergeConflict(t *testing.T) {
	s := newOrbit(orbitEpoch, 8, time.Minute, "G05", "E19")
	tests := []struct {
		name   string
		modify func(e *Entry)
	}{
		{"position", func(e *Entry) { e.Position.Y += 1e-3 }},
		{"clock", func(e *Entry) { e.Clock += 1e-3 }},
		{"maneuver", func(e *Entry) { e.Flags.Maneuver = true }},
		{"missing clock", func(e *Entry) { e.Has = HasPosition }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := s.Window(orbitEpoch, orbitEpoch.Add(5*time.Minute))
			b := s.Window(orbitEpoch.Add(3*time.Minute), orbitEpoch.Add(7*time.Minute))
			tt.modify(b.store.epochs[1].entries["E19"])
			_, err := Merge(a, b)
			if !errors.Is(err, ErrConflictingSamples) {
				t.Fatalf("err = %v, want ErrConflictingSamples", err)
			}
			if !strings.Contains(err.Error(), "E19") || !strings.Contains(err.Error(), "2023-07-20T00:04:00Z") {
				t.Errorf("error %q does not name the satellite and epoch", err)
			}
		})
	}

	// Looser tolerance
	a := s.Window(orbitEpoch, orbitEpoch.Add(5*time.Minute))
	b := s.Window(orbitEpoch.Add(3*time.Minute), orbitEpoch.Add(7*time.Minute))
	b.store.epochs[1].entries["E19"].Position.Y += 1e-3
	tol := DefaultMergeTolerance
	tol.Position = 1e-2
	if _, err := Merge(a, b, WithTolerance(tol)); err != nil {
		t.Errorf("Merge with tolerance %g failed: %v", tol.Position, err)
	}
}

func TestMergeIncompatible(t *testing.T) {
	tests := []struct {
		name   string
		modify func(h *Header)
		err    error
	}{
		{"coordinate system", func(h *Header) { h.CoordSystem = "IGb14" }, ErrIncompatibleHeaders},
		{"timescale", func(h *Header) { h.Timescale = GST }, ErrIncompatibleHeaders},
		{"orbit type", func(h *Header) { h.OrbitType = "BCT" }, ErrIncompatibleHeaders},
		{"revision", func(h *Header) { h.Revision = RevC }, ErrIncompatibleHeaders},
		{"interval", func(h *Header) { h.Interval = time.Minute }, ErrIncompatibleSamplingInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newOrbit(orbitEpoch, 4, 30*time.Second, "G05")
			b := newOrbit(orbitEpoch.Add(2*time.Minute), 4, 30*time.Second, "G05")
			tt.modify(b.Header)
			if _, err := Merge(a, b); !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestMergeSatellites(t *testing.T) {
	a := newOrbit(orbitEpoch, 4, 30*time.Second, "G05", "E19")
	b := newOrbit(orbitEpoch.Add(2*time.Minute), 4, 30*time.Second, "G05", "C30")
	b.Header.Comments = []string{" second batch"}
	m, err := Merge(a, b)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	want := []SatType{"G05", "E19", "C30"}
	if len(m.Header.Satellites) != len(want) {
		t.Fatalf("satellites = %v, want %v", m.Header.Satellites, want)
	}
	for i, sat := range want {
		if m.Header.Satellites[i] != sat {
			t.Errorf("satellite %d = %s, want %s", i, m.Header.Satellites[i], sat)
		}
	}
	if m.Header.Accuracy["C30"] != 5 || m.Header.Constellation != Mixed {
		t.Errorf("accuracy/constellation = %d/%c", m.Header.Accuracy["C30"], m.Header.Constellation)
	}
	if m.Header.NumEpochs != 8 || len(m.Header.Comments) != 1 {
		t.Errorf("epochs/comments = %d/%d", m.Header.NumEpochs, len(m.Header.Comments))
	}
	if sats := m.Store().SatsAt(orbitEpoch); len(sats) != 2 || sats[1] != "E19" {
		t.Errorf("satellites at the first epoch = %v", sats)
	}
	if a.Header.HasSat("C30") {
		t.Errorf("merge modified the input header")
	}

	// The merged file can be written and read
	r := parseText(t, formatText(t, m))
	if r.Store().NumEpochs() != 8 || len(r.Warnings) != 0 {
		t.Errorf("reparsed %d epochs, warnings %v", r.Store().NumEpochs(), r.Warnings)
	}
}
