package signals

import "time"

// #region config

// Config holds the stillness thresholds used to decide when scrolling has
// settled.
type Config struct {
	StillVelocity float64       // px/s at or below which input counts as still
	SettleWindow  time.Duration // quiet time before a settle is reported
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		StillVelocity: 50,
		SettleWindow:  120 * time.Millisecond,
	}
}

// #endregion config

// #region sample

// Sample is one observed scroll position.
type Sample struct {
	Offset float64
	At     time.Time
}

// #endregion sample
