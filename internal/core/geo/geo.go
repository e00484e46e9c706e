// Package geo holds the spherical-earth helpers shared by the motion
// analyzer and the statistics engine.
package geo

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean Earth radius.
const EarthRadiusMeters = 6371000.0

// Bearing returns the initial great-circle bearing from (lat1, lon1) to
// (lat2, lon2) in degrees, normalised to [0, 360). 0 is north, 90 east.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	return BearingS2(s2.LatLngFromDegrees(lat1, lon1), s2.LatLngFromDegrees(lat2, lon2))
}

// BearingS2 is Bearing on s2 coordinates.
func BearingS2(p1, p2 s2.LatLng) float64 {
	lat1 := p1.Lat.Radians()
	lat2 := p2.Lat.Radians()
	lonDiff := p2.Lng.Radians() - p1.Lng.Radians()

	y := math.Sin(lonDiff) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(lonDiff)

	return NormalizeDegrees(math.Atan2(y, x) * 180 / math.Pi)
}

// NormalizeDegrees maps any angle onto [0, 360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// math.Mod of a tiny negative value can round up to exactly 360
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// Distance returns the great-circle distance in meters.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// Centroid returns the spherical mean of the given positions as
// latitude/longitude degrees. ok is false when lats is empty or the
// positions cancel out.
func Centroid(lats, lons []float64) (lat, lon float64, ok bool) {
	n := len(lats)
	if len(lons) < n {
		n = len(lons)
	}
	if n == 0 {
		return 0, 0, false
	}

	var sum r3.Vector
	for i := 0; i < n; i++ {
		p := s2.PointFromLatLng(s2.LatLngFromDegrees(lats[i], lons[i]))
		sum = sum.Add(p.Vector)
	}
	if sum.Norm() < 1e-9 {
		return 0, 0, false
	}

	ll := s2.LatLngFromPoint(s2.Point{Vector: sum.Normalize()})
	return ll.Lat.Degrees(), ll.Lng.Degrees(), true
}
