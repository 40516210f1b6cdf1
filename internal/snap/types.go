package snap

import (
	"fmt"
	"time"
)

// #region action
// Action enumerates resolver outcomes.
type Action string

const (
	ActionSnap     Action = "snap"     // progress is near a pinned scene, ease to Target
	ActionFree     Action = "free"     // outside every padded interval
	ActionDisabled Action = "disabled" // degenerate document or no regions
)

// #endregion action

// #region snap-config
// Config holds the snapping tolerances. It is immutable once a resolver has
// been built from it.
type Config struct {
	Hysteresis float64       // padding around each pinned interval, in progress units
	MinEase    time.Duration // ease duration when already at the target
	MaxEase    time.Duration // ease duration at the edge of the padded interval
}

// DefaultConfig returns the production tolerances.
func DefaultConfig() Config {
	return Config{
		Hysteresis: 0.02,
		MinEase:    150 * time.Millisecond,
		MaxEase:    350 * time.Millisecond,
	}
}

// Validate checks the documented ranges.
func (c Config) Validate() error {
	if c.Hysteresis < 0 || c.Hysteresis > 0.1 || c.Hysteresis != c.Hysteresis {
		return fmt.Errorf("hysteresis %v outside [0, 0.1]", c.Hysteresis)
	}
	if c.MinEase < 0 {
		return fmt.Errorf("min ease %v is negative", c.MinEase)
	}
	if c.MaxEase < c.MinEase {
		return fmt.Errorf("max ease %v below min ease %v", c.MaxEase, c.MinEase)
	}
	return nil
}

// #endregion snap-config

// #region range
// Range is a pinned region normalized against the resolver's extent.
type Range struct {
	ID     string
	Start  float64
	End    float64
	Center float64
}

// #endregion range

// #region decision
// Decision is the resolver output for one settled progress value.
type Decision struct {
	Action   Action
	Progress float64
	Target   float64       // valid when Action == ActionSnap
	RegionID string        // region whose center was selected
	Duration time.Duration // ease duration toward Target
	Reason   string
}

// #endregion decision
