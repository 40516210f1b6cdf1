package timeline

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// #region scrubber

// Scrubber smooths a rendered value toward a moving target so a scroll-bound
// animation lags the scrollbar by a fixed catch-up time instead of stepping.
type Scrubber struct {
	lag     float32
	easing  ease.TweenFunc
	tween   *gween.Tween
	current float64
	target  float64
}

// NewScrubber creates a scrubber that catches up within lag. A non-positive
// lag makes every Seek immediate.
func NewScrubber(lag time.Duration) *Scrubber {
	return &Scrubber{
		lag:    float32(lag.Seconds()),
		easing: ease.OutQuad,
	}
}

// Seek retargets the scrubber. The catch-up restarts from the current value.
func (s *Scrubber) Seek(target float64) {
	if target == s.target && (s.tween != nil || s.current == target) {
		return
	}
	s.target = target
	if s.lag <= 0 {
		s.Jump(target)
		return
	}
	s.tween = gween.New(float32(s.current), float32(target), s.lag, s.easing)
}

// Jump sets value and target without smoothing.
func (s *Scrubber) Jump(v float64) {
	s.current = v
	s.target = v
	s.tween = nil
}

// Update advances the catch-up by dt and returns the rendered value.
func (s *Scrubber) Update(dt time.Duration) float64 {
	if s.tween == nil {
		return s.current
	}
	v, done := s.tween.Update(float32(dt.Seconds()))
	s.current = float64(v)
	if done {
		s.current = s.target
		s.tween = nil
	}
	return s.current
}

// Value returns the last rendered value.
func (s *Scrubber) Value() float64 { return s.current }

// Settled reports whether the rendered value has reached the target.
func (s *Scrubber) Settled() bool { return s.tween == nil }

// #endregion scrubber
