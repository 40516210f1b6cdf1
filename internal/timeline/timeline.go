package timeline

import (
	"github.com/nerdyexternal/landing/scroll-controller/internal/progress"
	"github.com/tanema/gween/ease"
)

// #region timeline-struct

// Timeline drives one pinned scene. The scroll-driven phase machine is
// independent of the one-shot entrance: Mount gates the entrance, Advance maps
// scroll progress to phases.
type Timeline struct {
	id     string
	config Config
	tracks []Track

	start float64 // normalized scene range
	end   float64

	entrance Phase // PhaseNotStarted until Mount
	phase    Phase
	local    float64
	advanced bool
}

// New creates a timeline for scene id with the given exit tracks.
func New(id string, config Config, tracks ...Track) *Timeline {
	return &Timeline{
		id:       id,
		config:   config,
		tracks:   tracks,
		entrance: PhaseNotStarted,
		phase:    PhaseEntered,
	}
}

// ID returns the scene id.
func (t *Timeline) ID() string { return t.id }

// Bind sets the scene's normalized range. It is called whenever the scroll
// extent changes so local progress is never derived from a stale range.
func (t *Timeline) Bind(start, end float64) {
	t.start = start
	t.end = end
}

// Range returns the bound normalized range.
func (t *Timeline) Range() (start, end float64) { return t.start, t.end }

// #endregion timeline-struct

// #region mount

// Mount performs the NOT_STARTED -> ENTERED transition. It returns true only
// on the first call, so a remount never replays the entrance.
func (t *Timeline) Mount() bool {
	if t.entrance != PhaseNotStarted {
		return false
	}
	t.entrance = PhaseEntered
	return true
}

// Entrance reports the one-shot entrance state.
func (t *Timeline) Entrance() Phase { return t.entrance }

// Phase reports the scroll-driven phase after the last Advance.
func (t *Timeline) Phase() Phase { return t.phase }

// #endregion mount

// #region advance

// Advance maps global progress into the scene's phase state.
func (t *Timeline) Advance(global float64) PhaseState {
	local := progress.Local(global, t.start, t.end)
	phase, fraction := t.classify(local)

	reset := false
	if t.advanced {
		wasExiting := t.phase == PhaseExiting
		leftBack := global < t.start && t.local > 0
		if (wasExiting && phase != PhaseExiting) || leftBack {
			reset = true
		}
	}

	t.phase = phase
	t.local = local
	t.advanced = true

	exit := 0.0
	if phase == PhaseExiting {
		exit = fraction
	}

	return PhaseState{
		Phase:    phase,
		Local:    local,
		Fraction: fraction,
		Exit:     exit,
		Reset:    reset,
		Tracks:   t.Sample(exit),
	}
}

func (t *Timeline) classify(local float64) (Phase, float64) {
	hold, exit := t.config.HoldStart, t.config.ExitStart
	switch {
	case local < hold:
		return PhaseEntered, progress.Local(local, 0, hold)
	case local < exit:
		return PhaseHolding, progress.Local(local, hold, exit)
	default:
		return PhaseExiting, progress.Local(local, exit, 1)
	}
}

// #endregion advance

// #region sample

// Sample evaluates every track at exit fraction f. f == 0 yields Identity
// for every track.
func (t *Timeline) Sample(f float64) []TrackState {
	out := make([]TrackState, len(t.tracks))
	for i, tr := range t.tracks {
		out[i] = TrackState{Name: tr.Name, Transform: tr.At(f)}
	}
	return out
}

// At interpolates the track from Identity to To at fraction f with the
// track's easing.
func (tr Track) At(f float64) Transform {
	f = progress.Clamp(f, 0, 1)
	fn := tr.Ease
	if fn == nil {
		fn = ease.Linear
	}
	e := float64(fn(float32(f), 0, 1, 1))
	return Transform{
		X:       progress.Lerp(Identity.X, tr.To.X, e),
		Y:       progress.Lerp(Identity.Y, tr.To.Y, e),
		Scale:   progress.Lerp(Identity.Scale, tr.To.Scale, e),
		Opacity: progress.Lerp(Identity.Opacity, tr.To.Opacity, e),
	}
}

// #endregion sample

// #region presets

// HeroTracks are the hero scene's exit animations. Headline and product
// visual move in opposite horizontal directions and both fade out.
func HeroTracks() []Track {
	return []Track{
		{Name: "headline", To: Transform{X: -18, Scale: 1, Opacity: 0}, Ease: ease.InQuad},
		{Name: "product", To: Transform{X: 18, Scale: 0.92, Opacity: 0}, Ease: ease.InQuad},
		{Name: "scroll-hint", To: Transform{Scale: 1, Opacity: 0}},
	}
}

// #endregion presets
