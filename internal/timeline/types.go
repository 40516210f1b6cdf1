package timeline

import (
	"github.com/tanema/gween/ease"
)

// #region phase
// Phase names a segment of a scene's scroll-driven life.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseEntered    Phase = "entered"
	PhaseHolding    Phase = "holding"
	PhaseExiting    Phase = "exiting"
)

// #endregion phase

// #region config
// Config holds the phase boundaries as fractions of local progress.
type Config struct {
	HoldStart float64 // entrance [0, HoldStart)
	ExitStart float64 // hold [HoldStart, ExitStart), exit [ExitStart, 1]
}

// DefaultConfig returns the 30/40/30 split used by every pinned scene.
func DefaultConfig() Config {
	return Config{
		HoldStart: 0.3,
		ExitStart: 0.7,
	}
}

// #endregion config

// #region transform
// Transform is the animatable subset of an element's visual state.
// X and Y are in viewport-width / viewport-height percent.
type Transform struct {
	X       float64
	Y       float64
	Scale   float64
	Opacity float64
}

// Identity is the fully-visible resting transform.
var Identity = Transform{Scale: 1, Opacity: 1}

// #endregion transform

// #region track
// Track animates one element from Identity to To across the exit window.
type Track struct {
	Name string
	To   Transform
	Ease ease.TweenFunc // nil means linear
}

// TrackState is a track's transform at a given exit fraction.
type TrackState struct {
	Name string
	Transform
}

// #endregion track

// #region phase-state
// PhaseState is the result of advancing a timeline to a global progress.
type PhaseState struct {
	Phase    Phase
	Local    float64 // scene-local progress in [0,1]
	Fraction float64 // progress within Phase in [0,1]
	Exit     float64 // exit-window fraction in [0,1], 0 outside the exit phase

	// Reset is set on the frame a reversal crossed back out of the exit
	// window or above the pin start; renderers must jump to Tracks instead of
	// smoothing toward them.
	Reset  bool
	Tracks []TrackState
}

// #endregion phase-state
