package formatter

import "time"

// GroupedData is one output row: a single flight, or every flight of a day
// or month.
type GroupedData struct {
	Key              string
	Flights          int
	Fixes            int
	Duration         time.Duration
	Distance         float64 // meters
	MaxAltitude      float64
	CirclingDuration time.Duration
	CirclingGain     float64
	AverageClimbRate float64 // m/s, time weighted over circling
	CirclingRatio    float64 // 0..1 of Duration
	Thermals         int
	BestThermal      float64 // best single-thermal climb rate, m/s
}

// Merge folds other into g. Climb rate and circling ratio are recomputed
// from the summed gain and durations, never averaged.
func (g *GroupedData) Merge(other GroupedData) {
	if g.Flights == 0 || other.MaxAltitude > g.MaxAltitude {
		g.MaxAltitude = other.MaxAltitude
	}
	if g.Thermals == 0 || (other.Thermals > 0 && other.BestThermal > g.BestThermal) {
		g.BestThermal = other.BestThermal
	}

	g.Flights += other.Flights
	g.Fixes += other.Fixes
	g.Duration += other.Duration
	g.Distance += other.Distance
	g.CirclingDuration += other.CirclingDuration
	g.CirclingGain += other.CirclingGain
	g.Thermals += other.Thermals

	g.AverageClimbRate = 0
	if g.CirclingDuration > 0 {
		g.AverageClimbRate = g.CirclingGain / g.CirclingDuration.Seconds()
	}
	g.CirclingRatio = 0
	if g.Duration > 0 {
		g.CirclingRatio = g.CirclingDuration.Seconds() / g.Duration.Seconds()
	}
}

// Total merges every row into one.
func Total(data []GroupedData) GroupedData {
	total := GroupedData{Key: "Total"}
	for _, row := range data {
		total.Merge(row)
	}
	return total
}
