// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.9
//

package sp3

import (
	"fmt"
	"time"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
)

// Orders of the Lagrange polynomial.
// 11 keeps mm precision with 15 min sampling, 17 gives more margin.
const (
	Order9  = 9
	Order11 = 11
	Order17 = 17
)

// Epoch-ordered values of one component of one satellite
type series struct {
	times  []time.Time
	values *mat.Dense // len(times) x dim
}

// Reported values of the satellite. Epochs where get rejects the entry are skipped.
func (p *SP3) series(sat SatType, dim int, get func(*Entry) ([]float64, bool)) series {
	var s series
	data := []float64{}
	for _, e := range p.store.epochs {
		ent, ok := e.entries[sat]
		if !ok {
			continue
		}
		v, ok := get(ent)
		if !ok {
			continue
		}
		s.times = append(s.times, e.time)
		data = append(data, v...)
	}
	if len(s.times) > 0 {
		s.values = mat.NewDense(len(s.times), dim, data)
	}
	return s
}

// Index of the last sample at or before t. The uniform interval is tried first.
func (s *series) locate(t time.Time, tau time.Duration) int {
	k := int(t.Sub(s.times[0]) / tau)
	if k >= 0 && k < len(s.times) && !s.times[k].After(t) && (k+1 == len(s.times) || s.times[k+1].After(t)) {
		return k
	}
	// Gaps in the series
	i, found := slices.BinarySearchFunc(s.times, t, func(a, b time.Time) int {
		return a.Compare(b)
	})
	if found {
		return i
	}
	return i - 1
}

// Lagrange interpolation of a series with order+1 samples centered on t.
// ok is false when t is outside the feasible range of the series.
func (s *series) interpolate(t time.Time, order int, tau time.Duration) (*mat.VecDense, bool) {
	n := len(s.times)
	if n == 0 || n < order+1 {
		return nil, false
	}
	half := time.Duration((order+1)/2) * tau
	if t.Before(s.times[0].Add(half)) || t.After(s.times[n-1].Add(-half)) {
		return nil, false
	}
	i := s.locate(t, tau)
	if i >= 0 && s.times[i].Equal(t) {
		return mat.VecDenseCopyOf(s.values.RowView(i)), true
	}
	i0 := i - (order-1)/2
	i1 := i0 + order
	if i0 < 0 || i1 >= n {
		return nil, false
	}

	// Basis polynomials evaluated at t
	dt := make([]float64, order+1)
	for j := range dt {
		dt[j] = s.times[i0+j].Sub(t).Seconds()
	}
	w := mat.NewVecDense(order+1, nil)
	for j := range dt {
		l := 1.0
		for m := range dt {
			if m != j {
				l *= -dt[m] / (dt[j] - dt[m])
			}
		}
		w.SetVec(j, l)
	}

	// Weighted sum of the samples per axis
	_, dim := s.values.Dims()
	y := s.values.Slice(i0, i1+1, 0, dim)
	r := mat.NewVecDense(dim, nil)
	r.MulVec(y.T(), w)
	return r, true
}

func checkOrder(order int) error {
	if order < 1 || order%2 == 0 {
		return fmt.Errorf("%w (order=%d)", ErrUnsupportedInterpolationOrder, order)
	}
	return nil
}

// Position [km] of the satellite at t by Lagrange interpolation of the given odd order.
// Samples flagged as maneuver are left out of the window.
// ok is false when the query is too close to either end of the series.
func (p *SP3) InterpolatePosition(sat SatType, t time.Time, order int) (Vector3, bool, error) {
	if err := checkOrder(order); err != nil {
		return Vector3{}, false, err
	}
	s := p.series(sat, 3, func(e *Entry) ([]float64, bool) {
		return []float64{e.Position.X, e.Position.Y, e.Position.Z}, e.Has&HasPosition != 0 && !e.Flags.Maneuver
	})
	r, ok := s.interpolate(t, order, p.Header.Interval)
	if !ok {
		return Vector3{}, false, nil
	}
	return Vector3{X: r.AtVec(0), Y: r.AtVec(1), Z: r.AtVec(2)}, true, nil
}

// Clock offset [us] of the satellite at t. Samples flagged as clock event are left out.
// Clocks are much less smooth than orbits; use it on short spans (30 s or less).
func (p *SP3) InterpolateClock(sat SatType, t time.Time, order int) (float64, bool, error) {
	if err := checkOrder(order); err != nil {
		return 0, false, err
	}
	s := p.series(sat, 1, func(e *Entry) ([]float64, bool) {
		return []float64{e.Clock}, e.Has&HasClock != 0 && !e.Flags.ClockEvent
	})
	r, ok := s.interpolate(t, order, p.Header.Interval)
	if !ok {
		return 0, false, nil
	}
	return r.AtVec(0), true, nil
}

// Velocity [km/s] of the satellite at t, maneuver samples left out
func (p *SP3) InterpolateVelocity(sat SatType, t time.Time, order int) (Vector3, bool, error) {
	if err := checkOrder(order); err != nil {
		return Vector3{}, false, err
	}
	s := p.series(sat, 3, func(e *Entry) ([]float64, bool) {
		return []float64{e.Velocity.X, e.Velocity.Y, e.Velocity.Z}, e.Has&HasVelocity != 0 && !e.Flags.Maneuver
	})
	r, ok := s.interpolate(t, order, p.Header.Interval)
	if !ok {
		return Vector3{}, false, nil
	}
	return Vector3{X: r.AtVec(0), Y: r.AtVec(1), Z: r.AtVec(2)}, true, nil
}

// Positions of every declared satellite that can be interpolated at t
func (p *SP3) InterpolateAll(t time.Time, order int) (map[SatType]Vector3, error) {
	if err := checkOrder(order); err != nil {
		return nil, err
	}
	m := map[SatType]Vector3{}
	for _, sat := range p.Header.Satellites {
		v, ok, err := p.InterpolatePosition(sat, t, order)
		if err != nil {
			return nil, err
		}
		if ok {
			m[sat] = v
		}
	}
	return m, nil
}
