// Package motion derives per-fix heading and circling classification from
// an ordered track.
package motion

import (
	"github.com/penwyp/go-glider-monitor/internal/core/geo"
	"github.com/penwyp/go-glider-monitor/internal/core/model"
)

// ComputeHeading returns one heading per point: the initial great-circle
// bearing from the point to the next one, in degrees [0, 360).
//
// When two consecutive fixes coincide the bearing is undefined and the
// previous heading is repeated (0 before any heading is known). The last
// point has no successor and repeats the heading of the final transition;
// a lone point gets 0.
func ComputeHeading(points []model.TrackPoint) []float64 {
	headings := make([]float64, len(points))
	if len(points) < 2 {
		return headings
	}

	prev := 0.0
	for i := 0; i < len(points)-1; i++ {
		a, b := points[i], points[i+1]
		if a.Latitude == b.Latitude && a.Longitude == b.Longitude {
			headings[i] = prev
			continue
		}
		prev = geo.Bearing(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
		headings[i] = prev
	}
	headings[len(points)-1] = headings[len(points)-2]

	return headings
}

// TurnDelta returns the signed change from one heading to the next,
// unwrapped into (-180, 180]. Positive is clockwise: 350 -> 10 is +20.
func TurnDelta(from, to float64) float64 {
	d := geo.NormalizeDegrees(to - from)
	if d > 180 {
		d -= 360
	}
	return d
}
