// Package stats aggregates an enriched track into segment and flight level
// figures.
package stats

import (
	"math"
	"time"

	"github.com/penwyp/go-glider-monitor/internal/core/geo"
	"github.com/penwyp/go-glider-monitor/internal/core/model"
)

// Segments partitions points into maximal runs of equal Circling value.
func Segments(points []model.EnrichedPoint) []model.Segment {
	var segments []model.Segment
	for start := 0; start < len(points); {
		end := start
		for end+1 < len(points) && points[end+1].Circling == points[start].Circling {
			end++
		}
		segments = append(segments, model.Segment{
			Circling:      points[start].Circling,
			Start:         start,
			End:           end,
			StartTime:     points[start].Timestamp,
			EndTime:       points[end].Timestamp,
			StartAltitude: points[start].Altitude,
			EndAltitude:   points[end].Altitude,
		})
		start = end + 1
	}
	return segments
}

// CirclingSegments returns the circling segments with a positive duration.
func CirclingSegments(points []model.EnrichedPoint) []model.Segment {
	var circling []model.Segment
	for _, s := range Segments(points) {
		if s.Circling && s.Duration() > 0 {
			circling = append(circling, s)
		}
	}
	return circling
}

// AverageClimbRate is the time-weighted climb rate over all circling
// segments: summed gain divided by summed duration, in m/s. Segments of zero
// duration are left out of both sums. Flights without circling give 0.
func AverageClimbRate(points []model.EnrichedPoint) float64 {
	gain, duration := circlingTotals(points)
	if duration <= 0 {
		return 0
	}
	return gain / duration.Seconds()
}

func circlingTotals(points []model.EnrichedPoint) (float64, time.Duration) {
	var gain float64
	var duration time.Duration
	for _, s := range CirclingSegments(points) {
		gain += s.Gain()
		duration += s.Duration()
	}
	return gain, duration
}

// Duration returns the time between the first and the last point.
func Duration(points []model.EnrichedPoint) (time.Duration, error) {
	if len(points) == 0 {
		return 0, model.ErrEmptySequence
	}
	return points[len(points)-1].Timestamp.Sub(points[0].Timestamp), nil
}

// Compute returns every flight-level aggregate of points.
func Compute(points []model.EnrichedPoint) (model.FlightStats, error) {
	duration, err := Duration(points)
	if err != nil {
		return model.FlightStats{}, err
	}

	fs := model.FlightStats{
		Duration:    duration,
		MaxAltitude: math.Inf(-1),
		MinAltitude: math.Inf(1),
	}
	for i, p := range points {
		fs.MaxAltitude = math.Max(fs.MaxAltitude, p.Altitude)
		fs.MinAltitude = math.Min(fs.MinAltitude, p.Altitude)
		if i > 0 {
			prev := points[i-1]
			fs.Distance += geo.Distance(prev.Latitude, prev.Longitude, p.Latitude, p.Longitude)
		}
	}

	segments := CirclingSegments(points)
	fs.CirclingSegments = len(segments)
	for _, s := range segments {
		fs.CirclingGain += s.Gain()
		fs.CirclingDuration += s.Duration()
	}
	if fs.CirclingDuration > 0 {
		fs.AverageClimbRate = fs.CirclingGain / fs.CirclingDuration.Seconds()
	}
	if duration > 0 {
		fs.CirclingRatio = fs.CirclingDuration.Seconds() / duration.Seconds()
	}

	return fs, nil
}

// Thermals summarises each circling segment with a positive duration.
func Thermals(points []model.EnrichedPoint) []model.Thermal {
	segments := CirclingSegments(points)
	thermals := make([]model.Thermal, 0, len(segments))
	for _, s := range segments {
		lats := make([]float64, 0, s.Len())
		lons := make([]float64, 0, s.Len())
		for _, p := range points[s.Start : s.End+1] {
			lats = append(lats, p.Latitude)
			lons = append(lons, p.Longitude)
		}
		lat, lon, ok := geo.Centroid(lats, lons)
		if !ok {
			lat, lon = points[s.Start].Latitude, points[s.Start].Longitude
		}

		thermals = append(thermals, model.Thermal{
			StartTime:     s.StartTime,
			Duration:      s.Duration(),
			EntryAltitude: s.StartAltitude,
			ExitAltitude:  s.EndAltitude,
			Gain:          s.Gain(),
			ClimbRate:     s.ClimbRate(),
			Latitude:      lat,
			Longitude:     lon,
		})
	}
	return thermals
}
