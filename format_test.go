// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.13
//

package sp3

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"sample_c.sp3", "sample_d.sp3"} {
		t.Run(name, func(t *testing.T) {
			s := readTestFile(t, name)
			text := formatText(t, s)
			r := parseText(t, text)
			if !reflect.DeepEqual(s.Header, r.Header) {
				t.Errorf("header differs\n got: %+v\nwant: %+v", r.Header, s.Header)
			}
			if !s.Store().Equal(r.Store()) {
				t.Errorf("records differ")
			}
			if len(r.Warnings) != 0 {
				t.Errorf("warnings = %v, want none", r.Warnings)
			}
			// Formatting is stable
			if again := formatText(t, r); again != text {
				t.Errorf("second output differs from the first")
			}
		})
	}
}

func TestRoundTripSynthetic(t *testing.T) {
	s := newOrbit(orbitEpoch, 8, 30*time.Second, "G05", "E19", "C30")
	r := parseText(t, formatText(t, s))
	if r.Store().NumEpochs() != 8 || r.Header.Constellation != Mixed {
		t.Fatalf("epochs/constellation = %d/%c", r.Store().NumEpochs(), r.Header.Constellation)
	}
	for ps := range s.Store().Positions() {
		e, ok := r.Store().Entry(ps.Time, ps.Sat)
		if !ok {
			t.Fatalf("no entry of %s at %s", ps.Sat, ps.Time)
		}
		// 6 decimals in the text
		if d := e.Position.Sub(ps.Position).Norm(); d > 1e-6 {
			t.Errorf("%s %s position differs by %g km", ps.Sat, ps.Time, d)
		}
	}
}

func TestFormatLines(t *testing.T) {
	s := readTestFile(t, "sample_c.sp3")
	lines := strings.Split(formatText(t, s), "\n")
	want := []string{
		"#cP2001  8  8  0  0  0.00000000       4 ORBIT IGS97 HLM  IGS",
		"## 1126 259200.00000000   900.00000000 52129 0.0000000000000",
		"+    3   G01G02G03  0  0  0  0  0  0  0  0  0  0  0  0  0  0",
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d = %q, want %q", i+1, lines[i], w)
		}
	}
	body := map[string]bool{
		"PG01  -7732.458980 -14425.111180 -21275.214670     24.400577  7  6  7  93 E    M": false,
		"PG03 999999.999999 999999.999999 999999.999999 999999.999999":                     false,
		"PG02  15245.668590 -20221.352401  -6463.418475     -2.150575                   P": false,
		"*  2001  8  8  0 45  0.00000000":                                                  false,
	}
	for _, l := range lines {
		if _, ok := body[l]; ok {
			body[l] = true
		}
	}
	for l, found := range body {
		if !found {
			t.Errorf("line %q not written", l)
		}
	}
	if lines[len(lines)-2] != "EOF" {
		t.Errorf("last line = %q, want EOF", lines[len(lines)-2])
	}
}

func TestFormatRevisionCLimit(t *testing.T) {
	sats := []SatType{}
	for i := 1; i <= 90; i++ {
		sats = append(sats, SatType(fmt.Sprintf("G%02d", i)))
	}
	s := newOrbit(orbitEpoch, 1, time.Minute, "G01")
	s.Header.Revision = RevC
	s.Header.Satellites = sats
	if err := s.Format(&strings.Builder{}); err == nil {
		t.Errorf("90 satellites in revision c written, want error")
	}
}

func TestWriteFileGzip(t *testing.T) {
	s := readTestFile(t, "sample_d.sp3")
	for _, name := range []string{"out.sp3", "out.sp3.gz"} {
		fn := filepath.Join(t.TempDir(), name)
		if err := s.WriteFile(fn); err != nil {
			t.Fatalf("WriteFile(%s) failed: %v", name, err)
		}
		r, err := ReadFile(fn)
		if err != nil {
			t.Fatalf("ReadFile(%s) failed: %v", name, err)
		}
		if !r.Store().Equal(s.Store()) || !reflect.DeepEqual(r.Header, s.Header) {
			t.Errorf("%s: model differs after writing", name)
		}
		// A nil decompressor keeps the gzip default
		if _, err := ReadFile(fn, WithDecompressor(nil)); err != nil {
			t.Errorf("ReadFile(%s) with a nil decompressor failed: %v", name, err)
		}
	}
}
