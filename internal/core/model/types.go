package model

import "time"

// TrackPoint is one decoded B record (fix) of an IGC log.
type TrackPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	// Altitude is the value of the altitude source selected for the whole file.
	Altitude         float64 `json:"altitude"`
	PressureAltitude float64 `json:"pressureAltitude"`
	GNSSAltitude     float64 `json:"gnssAltitude"`
	Valid            bool    `json:"valid"` // 'A' = 3D fix, 'V' = 2D or no fix
	Line             int     `json:"line"`  // 1-based source line
}

// EnrichedPoint is a TrackPoint with the signals derived by the motion analyzer.
// Slices of EnrichedPoint are positionally aligned with the TrackPoint slice
// they come from.
type EnrichedPoint struct {
	TrackPoint
	Heading  float64 `json:"heading"`
	Circling bool    `json:"circling"`
}

// Segment is a maximal run of points sharing the same circling flag.
// Start and End are inclusive indexes into the enriched sequence.
type Segment struct {
	Circling      bool      `json:"circling"`
	Start         int       `json:"start"`
	End           int       `json:"end"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	StartAltitude float64   `json:"startAltitude"`
	EndAltitude   float64   `json:"endAltitude"`
}

// Len returns the number of points in the segment.
func (s Segment) Len() int {
	return s.End - s.Start + 1
}

// Duration returns the wall-clock time between the first and last point.
func (s Segment) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// Gain returns the altitude difference between the last and first point.
func (s Segment) Gain() float64 {
	return s.EndAltitude - s.StartAltitude
}

// ClimbRate returns Gain per second, or 0 for a zero-length segment.
func (s Segment) ClimbRate() float64 {
	d := s.Duration().Seconds()
	if d <= 0 {
		return 0
	}
	return s.Gain() / d
}

// FlightStats holds the flight-level aggregates of one enriched sequence.
type FlightStats struct {
	Duration         time.Duration `json:"duration"`
	Distance         float64       `json:"distance"` // meters along the track
	MaxAltitude      float64       `json:"maxAltitude"`
	MinAltitude      float64       `json:"minAltitude"`
	CirclingDuration time.Duration `json:"circlingDuration"`
	CirclingGain     float64       `json:"circlingGain"`
	AverageClimbRate float64       `json:"averageClimbRate"` // m/s, time weighted over circling
	CirclingRatio    float64       `json:"circlingRatio"`    // share of Duration spent circling
	CirclingSegments int           `json:"circlingSegments"`
}

// Thermal summarises one circling segment.
type Thermal struct {
	StartTime     time.Time     `json:"startTime"`
	Duration      time.Duration `json:"duration"`
	EntryAltitude float64       `json:"entryAltitude"`
	ExitAltitude  float64       `json:"exitAltitude"`
	Gain          float64       `json:"gain"`
	ClimbRate     float64       `json:"climbRate"`
	Latitude      float64       `json:"latitude"`
	Longitude     float64       `json:"longitude"`
}

// FileEvent is emitted by the directory watcher.
type FileEvent struct {
	Path      string
	Operation string
}
