package motion

import (
	"fmt"

	"github.com/penwyp/go-glider-monitor/internal/core/model"
)

// Config tunes circling detection.
type Config struct {
	// WindowSize is the number of consecutive heading changes summed per
	// window. At 1 Hz logging it is the window length in seconds.
	WindowSize int `json:"windowSize"`
	// TurnThreshold is the minimum absolute net turn, in degrees, a window
	// must accumulate to count as circling.
	TurnThreshold float64 `json:"turnThreshold"`
	// SignTolerance is the largest share of a window's total turning that may
	// go against its net direction.
	SignTolerance float64 `json:"signTolerance"`
}

// Defaults sized for glider thermalling: a circle takes 20-40 s, so a 40 s
// window of a real thermal holds at least one full turn.
const (
	DefaultWindowSize    = 40
	DefaultTurnThreshold = 300.0
	DefaultSignTolerance = 0.2
)

// DefaultConfig returns the default circling detection settings.
func DefaultConfig() Config {
	return Config{
		WindowSize:    DefaultWindowSize,
		TurnThreshold: DefaultTurnThreshold,
		SignTolerance: DefaultSignTolerance,
	}
}

// Validate reports settings that cannot describe a circling window.
func (c Config) Validate() error {
	if c.WindowSize < 2 {
		return fmt.Errorf("%w: window size %d, need at least 2", model.ErrInvalidConfiguration, c.WindowSize)
	}
	if c.TurnThreshold <= 0 {
		return fmt.Errorf("%w: turn threshold %.1f must be positive", model.ErrInvalidConfiguration, c.TurnThreshold)
	}
	// each unwrapped delta is at most 180 degrees
	if maxTurn := 180 * float64(c.WindowSize); c.TurnThreshold > maxTurn {
		return fmt.Errorf("%w: turn threshold %.1f unreachable with window %d (max %.1f)",
			model.ErrInvalidConfiguration, c.TurnThreshold, c.WindowSize, maxTurn)
	}
	if c.SignTolerance < 0 || c.SignTolerance >= 1 {
		return fmt.Errorf("%w: sign tolerance %.2f outside [0, 1)", model.ErrInvalidConfiguration, c.SignTolerance)
	}
	return nil
}
