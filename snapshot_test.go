// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.13
//

package sp3

import (
	"reflect"
	"testing"
)

func TestSnapshot(t *testing.T) {
	for _, name := range []string{"sample_c.sp3", "sample_d.sp3"} {
		t.Run(name, func(t *testing.T) {
			s := readTestFile(t, name)
			s.Production = ParseProduction("GRG0MGXFIN_20201770000_01D_15M_ORB.SP3.gz")
			b, err := s.MarshalBinary()
			if err != nil {
				t.Fatalf("MarshalBinary failed: %v", err)
			}
			var r SP3
			if err := r.UnmarshalBinary(b); err != nil {
				t.Fatalf("UnmarshalBinary failed: %v", err)
			}
			if !r.Header.FirstEpoch.Equal(s.Header.FirstEpoch) {
				t.Errorf("first epoch = %s, want %s", r.Header.FirstEpoch, s.Header.FirstEpoch)
			}
			h := *r.Header
			h.FirstEpoch = s.Header.FirstEpoch
			if !reflect.DeepEqual(&h, s.Header) {
				t.Errorf("header differs\n got: %+v\nwant: %+v", h, *s.Header)
			}
			if !r.Store().Equal(s.Store()) {
				t.Errorf("records differ")
			}
			if r.Production == nil || r.Production.Filename() != s.Production.Filename() {
				t.Errorf("production = %v", r.Production)
			}
			// Same text
			if formatText(t, &r) != formatText(t, s) {
				t.Errorf("formatted snapshot differs")
			}
		})
	}
}

func TestSnapshotInvalid(t *testing.T) {
	var r SP3
	for _, b := range [][]byte{nil, []byte("#dP2020"), {0x80}} {
		if err := r.UnmarshalBinary(b); err == nil {
			t.Errorf("UnmarshalBinary(%q) succeeded", b)
		}
	}
}
