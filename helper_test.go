// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.13
//

package sp3

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func readTestFile(t *testing.T, name string, opts ...ParseOption) *SP3 {
	t.Helper()
	s, err := ReadFile(filepath.Join("testdata", name), opts...)
	if err != nil {
		t.Fatalf("ReadFile(%s) failed: %v", name, err)
	}
	return s
}

func loadTestText(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(b)
}

func parseText(t *testing.T, text string, opts ...ParseOption) *SP3 {
	t.Helper()
	s, err := Parse(strings.NewReader(text), opts...)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return s
}

func formatText(t *testing.T, s *SP3) string {
	t.Helper()
	var buf bytes.Buffer
	if err := s.Format(&buf); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	return buf.String()
}

func hasWarning(s *SP3, kind error) bool {
	for _, w := range s.Warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

// Circular orbit of radius 26560 km, period 12 h, inclined by 55 deg
const (
	orbitRadius = 26560.0
	orbitOmega  = 2 * math.Pi / (12 * 3600)
	orbitIncl   = 55 * math.Pi / 180
)

func orbitPosition(sat SatType, t time.Time) Vector3 {
	ph := orbitOmega*t.Sub(orbitEpoch).Seconds() + float64(sat.Num())*0.4
	return Vector3{
		X: orbitRadius * math.Cos(ph),
		Y: orbitRadius * math.Sin(ph) * math.Cos(orbitIncl),
		Z: orbitRadius * math.Sin(ph) * math.Sin(orbitIncl),
	}
}

// Linear clock drift [us]
func orbitClock(sat SatType, t time.Time) float64 {
	return 10 + float64(sat.Num()) + 1e-3*t.Sub(orbitEpoch).Seconds()
}

var orbitEpoch = time.Date(2023, 7, 20, 0, 0, 0, 0, time.UTC)

// Synthetic file with n epochs sampled every tau from t0
func newOrbit(t0 time.Time, n int, tau time.Duration, sats ...SatType) *SP3 {
	h := &Header{
		Revision:      RevD,
		DataType:      PositionClock,
		NumEpochs:     n,
		DataUsed:      "ORBIT",
		CoordSystem:   "IGS20",
		OrbitType:     "FIT",
		Agency:        "TST",
		Interval:      tau,
		FileType:      constellation(sats),
		Timescale:     GPST,
		Constellation: constellation(sats),
		Satellites:    sats,
		Accuracy:      map[SatType]int{},
		PosBase:       1.25,
		ClkBase:       1.025,
	}
	for _, sat := range sats {
		h.Accuracy[sat] = 5
	}
	h.setFirstEpoch(t0)
	store := &Store{}
	for i := 0; i < n; i++ {
		t := t0.Add(time.Duration(i) * tau)
		e := store.appendEpoch(t)
		for _, sat := range sats {
			ent := e.add(sat)
			ent.Position = orbitPosition(sat, t)
			ent.Clock = orbitClock(sat, t)
			ent.Has = HasPosition | HasClock
		}
	}
	return newSP3(h, store)
}
