package motion

import (
	"testing"
	"time"

	"github.com/penwyp/go-glider-monitor/internal/core/model"
	"github.com/stretchr/testify/assert"
)

func trackPoints(coords ...[2]float64) []model.TrackPoint {
	start := time.Date(2024, 5, 4, 10, 0, 0, 0, time.UTC)
	points := make([]model.TrackPoint, len(coords))
	for i, c := range coords {
		points[i] = model.TrackPoint{
			Timestamp: start.Add(time.Duration(i) * time.Second),
			Latitude:  c[0],
			Longitude: c[1],
		}
	}
	return points
}

func TestComputeHeadingStraightLines(t *testing.T) {
	north := ComputeHeading(trackPoints([2]float64{45, 7}, [2]float64{45.001, 7}, [2]float64{45.002, 7}))
	assert.InDeltaSlice(t, []float64{0, 0, 0}, north, 1e-6)

	east := ComputeHeading(trackPoints([2]float64{0, 10}, [2]float64{0, 10.001}))
	assert.InDeltaSlice(t, []float64{90, 90}, east, 1e-6)

	southWest := ComputeHeading(trackPoints([2]float64{0.001, 0.001}, [2]float64{0, 0}))
	assert.InDelta(t, 225, southWest[0], 1e-3)
}

func TestComputeHeadingLastPointRepeatsFinalTransition(t *testing.T) {
	headings := ComputeHeading(trackPoints([2]float64{45, 7}, [2]float64{45.001, 7}, [2]float64{45.001, 7.001}))

	assert.Len(t, headings, 3)
	assert.InDelta(t, 0, headings[0], 1e-6)
	assert.Greater(t, headings[1], 89.0)
	assert.Equal(t, headings[1], headings[2])
}

func TestComputeHeadingCoincidentFixes(t *testing.T) {
	t.Run("at the start falls back to zero", func(t *testing.T) {
		headings := ComputeHeading(trackPoints([2]float64{0, 10}, [2]float64{0, 10}, [2]float64{0, 10.001}))
		assert.Equal(t, 0.0, headings[0])
		assert.InDelta(t, 90, headings[1], 1e-6)
		assert.InDelta(t, 90, headings[2], 1e-6)
	})

	t.Run("mid track repeats previous heading", func(t *testing.T) {
		headings := ComputeHeading(trackPoints(
			[2]float64{0, 10}, [2]float64{0, 10.001}, [2]float64{0, 10.001}, [2]float64{0.001, 10.001},
		))
		assert.InDelta(t, 90, headings[0], 1e-6)
		assert.Equal(t, headings[0], headings[1])
		assert.InDelta(t, 0, headings[2], 1e-6)
		assert.Equal(t, headings[2], headings[3])
	})

	t.Run("stationary track", func(t *testing.T) {
		headings := ComputeHeading(trackPoints([2]float64{1, 1}, [2]float64{1, 1}, [2]float64{1, 1}))
		assert.Equal(t, []float64{0, 0, 0}, headings)
	})
}

func TestComputeHeadingShortInputs(t *testing.T) {
	assert.Empty(t, ComputeHeading(nil))
	assert.Equal(t, []float64{0}, ComputeHeading(trackPoints([2]float64{45, 7})))
}

func TestComputeHeadingRange(t *testing.T) {
	headings := ComputeHeading(trackPoints(
		[2]float64{10, 10}, [2]float64{10.001, 9.999}, [2]float64{10, 9.998}, [2]float64{9.999, 9.999}, [2]float64{10, 10},
	))
	for _, h := range headings {
		assert.GreaterOrEqual(t, h, 0.0)
		assert.Less(t, h, 360.0)
	}
}

func TestTurnDelta(t *testing.T) {
	tests := []struct {
		from, to float64
		want     float64
	}{
		{350, 10, 20},
		{10, 350, -20},
		{90, 90, 0},
		{0, 180, 180},
		{180, 0, 180},
		{45, 225, 180},
		{270, 80, 170},
		{359.5, 0.5, 1},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, TurnDelta(tt.from, tt.to), 1e-9, "%v -> %v", tt.from, tt.to)
	}
}
