// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.13
//

package sp3

import (
	"errors"
	"testing"
	"time"
)

func TestCoarseOffset(t *testing.T) {
	tests := []struct {
		from, to Timescale
		want     time.Duration
	}{
		{GPST, UTC, -18 * time.Second},
		{UTC, GPST, 18 * time.Second},
		{GPST, TAI, 19 * time.Second},
		{GPST, BDT, -14 * time.Second},
		{GPST, GST, 0},
		{QZSST, IRNSST, 0},
		{GPST, GLONASST, 3*time.Hour - 18*time.Second},
		{UTC, GLONASST, 3 * time.Hour},
		{BDT, TAI, 33 * time.Second},
	}
	for _, tt := range tests {
		if got := CoarseOffset(tt.from, tt.to); got != tt.want {
			t.Errorf("CoarseOffset(%s, %s) = %s, want %s", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTransposeCoarse(t *testing.T) {
	s := newOrbit(orbitEpoch, 4, 15*time.Minute, "G05", "R07")
	tr := NewTransposer()
	u, err := tr.Transpose(s, UTC, Coarse)
	if err != nil {
		t.Fatalf("Transpose failed: %v", err)
	}
	t0 := orbitEpoch.Add(-18 * time.Second)
	if u.Header.Timescale != UTC || !u.Header.FirstEpoch.Equal(t0) {
		t.Errorf("timescale/first epoch = %s/%s", u.Header.Timescale, u.Header.FirstEpoch)
	}
	if u.Header.Time != *NewGTime(t0) {
		t.Errorf("week/sow = %+v, want %+v", u.Header.Time, *NewGTime(t0))
	}
	if mjd, _ := MJD(t0); u.Header.MJD != mjd {
		t.Errorf("MJD = %d, want %d", u.Header.MJD, mjd)
	}
	i := 0
	for et := range u.Store().Epochs() {
		want := orbitEpoch.Add(time.Duration(i)*15*time.Minute - 18*time.Second)
		if !et.Equal(want) {
			t.Errorf("epoch %d = %s, want %s", i, et, want)
		}
		e, ok := u.Store().Entry(et, "R07")
		if !ok || e.Position != orbitPosition("R07", want.Add(18*time.Second)) {
			t.Errorf("epoch %d: entry changed", i)
		}
		i++
	}
	if s.Header.Timescale != GPST || !s.Header.FirstEpoch.Equal(orbitEpoch) {
		t.Errorf("input modified")
	}

	// And back
	g, err := tr.Transpose(u, GPST, Coarse)
	if err != nil {
		t.Fatalf("Transpose failed: %v", err)
	}
	if !g.Store().Equal(s.Store()) || !g.Header.FirstEpoch.Equal(orbitEpoch) {
		t.Errorf("round trip through UTC differs")
	}

	// Formatted with the new timescale
	r := parseText(t, formatText(t, u))
	if r.Header.Timescale != UTC || !r.Store().Equal(u.Store()) {
		t.Errorf("reparsed timescale %s", r.Header.Timescale)
	}
}

type tableProvider struct {
	tbl *CorrectionTable
	err error
}

func (p *tableProvider) Corrections(from, to Timescale) (*CorrectionTable, error) {
	return p.tbl, p.err
}

func TestTransposePrecise(t *testing.T) {
	s := newOrbit(orbitEpoch, 4, 15*time.Minute, "E19")
	tbl := &CorrectionTable{
		Times: []time.Time{orbitEpoch, orbitEpoch.Add(time.Hour)},
		Bias:  []float64{1e-6, 2e-6},
	}
	tr := NewTransposer(WithCorrections(&tableProvider{tbl: tbl}))
	g, err := tr.Transpose(s, GPST, Precise)
	if err != nil {
		t.Fatalf("Transpose failed: %v", err)
	}
	want := []time.Duration{1000, 1250, 1500, 1750}
	i := 0
	for et := range g.Store().Epochs() {
		if d := et.Sub(orbitEpoch.Add(time.Duration(i) * 15 * time.Minute)); d != want[i] {
			t.Errorf("epoch %d shifted by %s, want %s", i, d, want[i])
		}
		i++
	}

	// A single entry covers a single instant
	one := &CorrectionTable{Times: []time.Time{orbitEpoch}, Bias: []float64{0.5}}
	if _, err := NewTransposer(WithCorrections(&tableProvider{tbl: one})).Transpose(s, GPST, Precise); !errors.Is(err, ErrCorrectionTableCoverage) {
		t.Errorf("single entry table: err = %v, want ErrCorrectionTableCoverage", err)
	}
}

func TestTransposeErrors(t *testing.T) {
	s := newOrbit(orbitEpoch, 2, 15*time.Minute, "G05")
	errProvider := errors.New("no such table")
	tests := []struct {
		name string
		tr   *Transposer
		err  error
	}{
		{"no provider", NewTransposer(), ErrNoCorrectionProvider},
		{"provider error", NewTransposer(WithCorrections(&tableProvider{err: errProvider})), errProvider},
		{"empty table", NewTransposer(WithCorrections(&tableProvider{tbl: &CorrectionTable{}})), ErrCorrectionTableCoverage},
		{"not covered", NewTransposer(WithCorrections(&tableProvider{tbl: &CorrectionTable{
			Times: []time.Time{orbitEpoch.Add(time.Hour), orbitEpoch.Add(2 * time.Hour)},
			Bias:  []float64{0, 0},
		}})), ErrCorrectionTableCoverage},
		{"order reversed", NewTransposer(WithCorrections(&tableProvider{tbl: &CorrectionTable{
			Times: []time.Time{orbitEpoch, orbitEpoch.Add(15 * time.Minute)},
			Bias:  []float64{0, -1000},
		}})), ErrNonMonotonicEpoch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.tr.Transpose(s, UTC, Precise); !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want %v", err, tt.err)
			}
		})
	}
}
