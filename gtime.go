// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.2
//

package sp3

import (
	"math"
	"time"
)

// GNSS week and seconds of week, counted from 1980/1/6 00:00:00
type GTime struct {
	Week int
	Sec  float64
}

var (
	gpsEpoch = time.Date(1980, 1, 6, 0, 0, 0, 0, time.UTC)
	mjdEpoch = time.Date(1858, 11, 17, 0, 0, 0, 0, time.UTC)
)

const week = 7 * 24 * time.Hour

// Epochs are written with 8 decimals of seconds
const epochResolution = 10 * time.Nanosecond

func NewGTime(dt time.Time) *GTime {
	d := dt.Sub(gpsEpoch)
	w := int(d / week)
	r := d - time.Duration(w)*week
	if r < 0 {
		w--
		r += week
	}
	return &GTime{
		Week: w,
		Sec:  r.Seconds(),
	}
}

func (p *GTime) ToTime() time.Time {
	i := math.Trunc(p.Sec)
	n := math.Round((p.Sec - i) * 1e9)
	return gpsEpoch.Add(time.Duration(p.Week)*week + time.Duration(i)*time.Second + time.Duration(n)).Round(epochResolution)
}

func (p *GTime) Less(b GTime) bool {
	if p.Week == b.Week {
		return p.Sec < b.Sec
	}
	return p.Week < b.Week
}

// Equal within the epoch resolution
func (p *GTime) Equal(b GTime) bool {
	return p.ToTime().Equal(b.ToTime())
}

// Modified Julian Day and fraction of day
func MJD(t time.Time) (int, float64) {
	d := t.Sub(mjdEpoch)
	day := int(d / (24 * time.Hour))
	r := d - time.Duration(day)*24*time.Hour
	return day, r.Seconds() / 86400
}

// Inverse of MJD, rounded to the epoch resolution
func FromMJD(day int, frac float64) time.Time {
	ns := math.Round(frac * 86400e9)
	return mjdEpoch.Add(time.Duration(day)*24*time.Hour + time.Duration(ns)).Round(epochResolution)
}

// Day of year and seconds of day
func DayOfYear(t time.Time) (int, int) {
	return t.YearDay(), t.Hour()*3600 + t.Minute()*60 + t.Second()
}
