// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.13
//

package sp3

import (
	"iter"
	"testing"
	"time"
)

func count[T any](seq iter.Seq[T]) int {
	n := 0
	for range seq {
		n++
	}
	return n
}

func TestStoreEntry(t *testing.T) {
	s := readTestFile(t, "sample_c.sp3")
	t0 := s.Header.FirstEpoch
	if _, ok := s.Store().Entry(t0.Add(time.Minute), "G01"); ok {
		t.Errorf("entry found between epochs")
	}
	if _, ok := s.Store().Entry(t0, "G30"); ok {
		t.Errorf("entry found for an unknown satellite")
	}
	e, ok := s.Store().Entry(t0, "G01")
	if !ok {
		t.Fatalf("no entry of G01 at %s", t0)
	}
	if e.Position.X != -7734.458980 || e.Clock != 24.400577 {
		t.Errorf("G01 = %v %f", e.Position, e.Clock)
	}
	if e.PosSigma != (Sigma{X: 7, Y: 6, Z: 7, Clock: 93}) {
		t.Errorf("G01 sigma = %+v", e.PosSigma)
	}

	// Entries are copies
	e.Position.X = 0
	if e2, _ := s.Store().Entry(t0, "G01"); e2.Position.X != -7734.458980 {
		t.Errorf("store modified through a returned entry")
	}
	sats := s.Store().SatsAt(t0)
	sats[0] = "G30"
	if s.Store().SatsAt(t0)[0] != "G01" {
		t.Errorf("store modified through SatsAt")
	}
	if s.Store().SatsAt(t0.Add(time.Second)) != nil {
		t.Errorf("satellites found between epochs")
	}
}

func TestStoreSequences(t *testing.T) {
	s := readTestFile(t, "sample_c.sp3")
	st := s.Store()
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"epochs", count(st.Epochs()), 4},
		{"samples", count(st.Samples()), 12},
		{"positions", count(st.Positions()), 11},
		{"clocks", count(st.Clocks()), 7},
		{"velocities", count(st.Velocities()), 0},
		{"stable", count(s.StablePositions()), 10},
		{"fitted", count(s.FittedPositions()), 10},
		{"maneuvers", count(s.ManeuverEpochs()), 1},
		{"clock events", count(s.ClockEventEpochs()), 1},
	}
	for _, tt := range tests {
		if tt.n != tt.want {
			t.Errorf("%s: %d, want %d", tt.name, tt.n, tt.want)
		}
	}
	if !s.HasManeuver() || !s.HasPredictions() {
		t.Errorf("maneuver/predictions not found")
	}
	for et := range s.ManeuverEpochs() {
		if want := s.Header.FirstEpoch.Add(30 * time.Minute); !et.Equal(want) {
			t.Errorf("maneuver at %s, want %s", et, want)
		}
	}

	// Restartable
	if count(st.Positions()) != 11 {
		t.Errorf("second iteration differs")
	}
	// Early exit
	n := 0
	for range st.Positions() {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("iterated %d positions, want 2", n)
	}
	for ps := range st.Positions() {
		if ps.Sat == "G03" && ps.Time.Equal(s.Header.FirstEpoch) {
			t.Errorf("absent position of G03 reported")
		}
	}
	// Zero is a value
	if e, ok := st.Entry(s.Header.FirstEpoch.Add(15*time.Minute), "G03"); !ok || e.Has&HasPosition == 0 || e.Position.X != 0 {
		t.Errorf("G03 = %+v", e)
	}

	sats := st.Satellites()
	if len(sats) != 3 || sats[0] != "G01" || sats[2] != "G03" {
		t.Errorf("satellites = %v", sats)
	}
}

func TestStoreVelocities(t *testing.T) {
	s := readTestFile(t, "sample_d.sp3")
	if n := count(s.Store().Velocities()); n != 40 {
		t.Errorf("%d velocities, want 40", n)
	}
	if !s.HasVelocity() || s.HasPredictions() || s.HasManeuver() {
		t.Errorf("velocity/predictions/maneuver = %v/%v/%v", s.HasVelocity(), s.HasPredictions(), s.HasManeuver())
	}
	if t0, ok := s.Store().FirstEpoch(); !ok || !t0.Equal(s.Header.FirstEpoch) {
		t.Errorf("first epoch = %s", t0)
	}
	if t1, ok := s.LastEpoch(); !ok || !t1.Equal(s.Header.FirstEpoch.Add(5*time.Minute)) {
		t.Errorf("last epoch = %s", t1)
	}
	var empty Store
	if _, ok := empty.FirstEpoch(); ok || count(empty.Positions()) != 0 {
		t.Errorf("empty store has epochs")
	}
}
