// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.10
//

package sp3

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/interp"

	"github.com/mkhts/sp3/internal/log"
)

type TransposeMode int

const (
	// Fixed offsets between the timescales (leap seconds fixed to LS).
	// Results are rounded to 10 ns, the resolution of the epoch lines, so one hop drifts by 10 ns at most.
	// Transposing to UTC or GLONASST and back is not exact across a leap second.
	Coarse TransposeMode = iota
	// Time-varying offsets from a correction table, exact to the precision of the table
	Precise
)

// Offsets between two timescales sampled at epochs of the source timescale.
// The label of an epoch in the target timescale is the source label plus Bias.
type CorrectionTable struct {
	Times []time.Time
	Bias  []float64 // [s]
}

// Supplies correction tables for the precise transposition
type CorrectionProvider interface {
	Corrections(from, to Timescale) (*CorrectionTable, error)
}

// Rewrites the time axis of SP3 files
type Transposer struct {
	provider CorrectionProvider
}

type TransposerOption func(*Transposer)

func WithCorrections(p CorrectionProvider) TransposerOption {
	return func(t *Transposer) {
		t.provider = p
	}
}

func NewTransposer(opts ...TransposerOption) *Transposer {
	t := &Transposer{}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Linear interpolation of the bias over the table
func (tbl *CorrectionTable) offsetFunc(t0, t1 time.Time) (func(time.Time) time.Duration, error) {
	n := len(tbl.Times)
	if n == 0 || n != len(tbl.Bias) {
		return nil, fmt.Errorf("%w: empty or inconsistent table", ErrCorrectionTableCoverage)
	}
	if t0.Before(tbl.Times[0]) || t1.After(tbl.Times[n-1]) {
		return nil, fmt.Errorf("%w: epochs %s - %s, table %s - %s", ErrCorrectionTableCoverage,
			t0.Format(time.RFC3339), t1.Format(time.RFC3339), tbl.Times[0].Format(time.RFC3339), tbl.Times[n-1].Format(time.RFC3339))
	}
	toDur := func(s float64) time.Duration {
		return time.Duration(math.Round(s * 1e9))
	}
	if n == 1 {
		d := toDur(tbl.Bias[0])
		return func(time.Time) time.Duration { return d }, nil
	}
	xs := make([]float64, n)
	for i, t := range tbl.Times {
		xs[i] = t.Sub(tbl.Times[0]).Seconds()
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, tbl.Bias); err != nil {
		return nil, fmt.Errorf("invalid correction table: %w", err)
	}
	return func(t time.Time) time.Duration {
		return toDur(pl.Predict(t.Sub(tbl.Times[0]).Seconds()))
	}, nil
}

// New file whose epochs are labeled in the timescale to.
// Everything but the timestamps and the timescale is unchanged.
func (p *Transposer) Transpose(s *SP3, to Timescale, mode TransposeMode) (*SP3, error) {
	from := s.Header.Timescale
	t0, t1 := s.Header.FirstEpoch, s.Header.FirstEpoch
	if f, ok := s.store.FirstEpoch(); ok {
		l, _ := s.store.LastEpoch()
		t0, t1 = minTime(t0, f), maxTime(t1, l)
	}

	var offset func(time.Time) time.Duration
	switch mode {
	case Coarse:
		d := CoarseOffset(from, to)
		offset = func(time.Time) time.Duration { return d }
	case Precise:
		if p.provider == nil {
			return nil, ErrNoCorrectionProvider
		}
		tbl, err := p.provider.Corrections(from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to get corrections %s -> %s: %w", from, to, err)
		}
		offset, err = tbl.offsetFunc(t0, t1)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown transpose mode %d", mode)
	}
	shift := func(t time.Time) time.Time {
		return t.Add(offset(t)).Round(epochResolution)
	}

	store := &Store{}
	for _, e := range s.store.epochs {
		t := shift(e.time)
		if last, ok := store.LastEpoch(); ok && !t.After(last) {
			return nil, fmt.Errorf("%w: %s after transposition", ErrNonMonotonicEpoch, t.Format(time.RFC3339Nano))
		}
		store.appendCopy(e, t)
	}

	h := s.Header.Clone()
	h.Timescale = to
	h.setFirstEpoch(shift(h.FirstEpoch))
	log.Debugw("sp3 transposed", "from", from.String(), "to", to.String(), "epochs", store.NumEpochs())

	m := newSP3(h, store)
	m.Production = s.Production
	return m, nil
}

func minTime(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

func maxTime(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
