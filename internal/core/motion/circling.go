package motion

import (
	"math"

	"github.com/penwyp/go-glider-monitor/internal/core/model"
)

// DetectCircling classifies every heading sample as circling or not.
//
// A window spans cfg.WindowSize consecutive heading changes (WindowSize+1
// samples). It qualifies when its net turn reaches cfg.TurnThreshold and the
// turning done against that net direction stays within cfg.SignTolerance of
// the window's total turning. Every sample covered by a qualifying window is
// circling. Sequences shorter than one window are never circling.
func DetectCircling(headings []float64, cfg Config) ([]bool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	circling := make([]bool, len(headings))
	w := cfg.WindowSize
	if len(headings) <= w {
		return circling, nil
	}

	ring := make([]float64, w)
	var net, pos, neg float64
	markedUpTo := -1

	for e := 1; e < len(headings); e++ {
		d := TurnDelta(headings[e-1], headings[e])
		if math.IsNaN(d) {
			d = 0
		}

		slot := (e - 1) % w
		if e > w {
			net, pos, neg = drop(ring[slot], net, pos, neg)
		}
		ring[slot] = d
		net, pos, neg = add(d, net, pos, neg)

		if e < w || !qualifies(net, pos, neg, cfg) {
			continue
		}

		from := e - w
		if markedUpTo+1 > from {
			from = markedUpTo + 1
		}
		for k := from; k <= e; k++ {
			circling[k] = true
		}
		markedUpTo = e
	}

	return circling, nil
}

func add(d, net, pos, neg float64) (float64, float64, float64) {
	net += d
	if d > 0 {
		pos += d
	} else {
		neg -= d
	}
	return net, pos, neg
}

func drop(d, net, pos, neg float64) (float64, float64, float64) {
	net -= d
	if d > 0 {
		pos -= d
	} else {
		neg += d
	}
	return net, pos, neg
}

func qualifies(net, pos, neg float64, cfg Config) bool {
	if math.Abs(net) < cfg.TurnThreshold {
		return false
	}
	opposing := neg
	if net < 0 {
		opposing = pos
	}
	return opposing/(pos+neg) <= cfg.SignTolerance
}

// Enrich computes heading and circling for a parsed track. The input is not
// modified.
func Enrich(points []model.TrackPoint, cfg Config) ([]model.EnrichedPoint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	headings := ComputeHeading(points)
	circling, err := DetectCircling(headings, cfg)
	if err != nil {
		return nil, err
	}

	enriched := make([]model.EnrichedPoint, len(points))
	for i, p := range points {
		enriched[i] = model.EnrichedPoint{
			TrackPoint: p,
			Heading:    headings[i],
			Circling:   circling[i],
		}
	}
	return enriched, nil
}
