package scene

import (
	"sync"

	"github.com/nerdyexternal/landing/scroll-controller/internal/coordinator"
)

// #region reveal

// RevealAction is the transition a reveal fires on a frame.
type RevealAction string

const (
	RevealNone    RevealAction = ""
	RevealPlay    RevealAction = "play"
	RevealReverse RevealAction = "reverse"
)

// RevealConfig places a non-pinned reveal. Start is the viewport fraction the
// element's top must cross: 0.8 fires when the top reaches 80% down the
// viewport.
type RevealConfig struct {
	ID    string
	Start float64
}

// RevealPresets lists the page's reveal sections in document order.
func RevealPresets() []RevealConfig {
	return []RevealConfig{
		{ID: "features-header", Start: 0.8},
		{ID: "feature-cards", Start: 0.75},
		{ID: "showcase-header", Start: 0.8},
		{ID: "showcase-cards", Start: 0.75},
		{ID: "showcase-cta", Start: 0.8},
		{ID: "download-header", Start: 0.8},
		{ID: "download-product", Start: 0.7},
		{ID: "steps", Start: 0.8},
	}
}

// Reveal plays once when its element scrolls into view and reverses when
// scrolled back above the trigger line. It never reacts to leaving past the
// bottom.
type Reveal struct {
	mu     sync.Mutex
	config RevealConfig
	top    float64
	active bool
	cancel func()
	onFire func(RevealAction)
}

// NewReveal creates a reveal for an element at document offset top.
func NewReveal(config RevealConfig, top float64) *Reveal {
	return &Reveal{config: config, top: top}
}

// ID returns the reveal id.
func (r *Reveal) ID() string { return r.config.ID }

// Active reports whether the reveal is in its played state.
func (r *Reveal) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Update evaluates the trigger against a frame and returns the transition it
// caused, if any.
func (r *Reveal) Update(f coordinator.Frame) RevealAction {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := r.config.Start * f.ViewportHeight
	inView := r.top-f.Offset <= line
	switch {
	case inView && !r.active:
		r.active = true
		return RevealPlay
	case !inView && r.active:
		r.active = false
		return RevealReverse
	}
	return RevealNone
}

// Attach subscribes the reveal to c. fire, if not nil, receives every
// transition.
func (r *Reveal) Attach(c *coordinator.Coordinator, fire func(RevealAction)) {
	r.mu.Lock()
	r.onFire = fire
	r.mu.Unlock()

	cancel := c.Subscribe(func(f coordinator.Frame) {
		if a := r.Update(f); a != RevealNone {
			r.mu.Lock()
			fn := r.onFire
			r.mu.Unlock()
			if fn != nil {
				fn(a)
			}
		}
	})

	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
}

// Detach drops the subscription. Safe to call more than once.
func (r *Reveal) Detach() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.onFire = nil
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// #endregion reveal
