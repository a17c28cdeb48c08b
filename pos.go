// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.5
//

package sp3

import (
	"fmt"
	"math"
)

//-------------------------------------------------------------------
// Vector3
//-------------------------------------------------------------------

// Cartesian vector in the coordinate system of the file (ECEF).
// Positions are in km, velocities in km/s.
type Vector3 struct {
	X float64
	Y float64
	Z float64
}

func (v Vector3) Add(b Vector3) Vector3 {
	return Vector3{X: v.X + b.X, Y: v.Y + b.Y, Z: v.Z + b.Z}
}

func (v Vector3) Sub(b Vector3) Vector3 {
	return Vector3{X: v.X - b.X, Y: v.Y - b.Y, Z: v.Z - b.Z}
}

func (v Vector3) Scale(k float64) Vector3 {
	return Vector3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

func (v Vector3) Norm() float64 {
	return math.Sqrt(SQ(v.X) + SQ(v.Y) + SQ(v.Z))
}

func (v Vector3) String() string {
	return fmt.Sprintf("%14.6f %14.6f %14.6f", v.X, v.Y, v.Z)
}

// Geodetic coordinates of the point (sub-satellite point and altitude for a satellite)
func (v *Vector3) ToLLH() PosLLH {
	// In case of origin
	if v.X == 0 && v.Y == 0 && v.Z == 0 {
		return PosLLH{Lat: 0, Lon: 0, Hei: -Re}
	}

	// Ellipsoid parameters
	a := Re
	b := a * (1 - Fe)
	e := math.Sqrt(Fe * (2 - Fe))

	// Bowring's method
	h := a*a - b*b
	p := math.Sqrt(v.X*v.X + v.Y*v.Y)
	t := math.Atan2(v.Z*a, p*b)
	sint := math.Sin(t)
	cost := math.Cos(t)
	lat := math.Atan2(v.Z+h/b*sint*sint*sint, p-h/a*cost*cost*cost)
	lon := math.Atan2(v.Y, v.X)
	n := a / math.Sqrt(1-e*e*math.Sin(lat)*math.Sin(lat)) // Radius of curvature in the prime vertical
	return PosLLH{Lat: lat, Lon: lon, Hei: p/math.Cos(lat) - n}
}

//-------------------------------------------------------------------
// PosLLH
//-------------------------------------------------------------------

// Latitude and longitude [rad], ellipsoidal height [km]
type PosLLH struct {
	Lat float64
	Lon float64
	Hei float64
}

func (llh *PosLLH) String() string {
	return fmt.Sprintf("%.8f %.8f %.4f", ToDeg(llh.Lat), ToDeg(llh.Lon), llh.Hei)
}
