package scene

// #region imports
import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nerdyexternal/landing/scroll-controller/internal/coordinator"
	"github.com/nerdyexternal/landing/scroll-controller/internal/registry"
	"github.com/nerdyexternal/landing/scroll-controller/internal/timeline"
)

// #endregion imports

// #region hero-config

// HeroConfig holds the hero scene's pin and smoothing parameters.
type HeroConfig struct {
	ID       string
	PinSpan  float64       // pin length as a multiple of viewport height
	Scrub    time.Duration // catch-up lag of the rendered exit
	Timeline timeline.Config
}

// DefaultHeroConfig returns the production hero settings.
func DefaultHeroConfig() HeroConfig {
	return HeroConfig{
		ID:       "hero",
		PinSpan:  1.3,
		Scrub:    600 * time.Millisecond,
		Timeline: timeline.DefaultConfig(),
	}
}

// #endregion hero-config

// #region hero

// HeroView is what the hero renders on one frame.
type HeroView struct {
	Phase        timeline.Phase
	Local        float64
	Exit         float64 // smoothed exit fraction actually rendered
	Tracks       []timeline.TrackState
	Entrance     []timeline.StepProgress
	EntranceDone bool
}

// Hero is the pinned intro scene. It claims [Top, Top+PinSpan*viewportHeight]
// in the registry and plays its exit animation while pinned.
type Hero struct {
	mu     sync.Mutex
	config HeroConfig
	vp     coordinator.Viewport
	top    float64
	logger *slog.Logger

	tl        *timeline.Timeline
	scrub     *timeline.Scrubber
	entrance  *timeline.Sequence
	mountedAt time.Time
	lastDraw  time.Time
	state     timeline.PhaseState

	handle    *registry.Handle
	cancel    func()
	unmounted bool
}

// MountHero registers the hero with c's registry, subscribes it to frames and
// reports it ready. top is the hero element's document offset.
func MountHero(c *coordinator.Coordinator, vp coordinator.Viewport, top float64, now time.Time, config HeroConfig, logger *slog.Logger) (*Hero, error) {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hero{
		config:    config,
		vp:        vp,
		top:       top,
		logger:    logger.With("scene", config.ID),
		tl:        timeline.New(config.ID, config.Timeline, timeline.HeroTracks()...),
		scrub:     timeline.NewScrubber(config.Scrub),
		entrance:  timeline.HeroEntrance(),
		mountedAt: now,
		lastDraw:  now,
	}
	h.tl.Mount()
	h.state = timeline.PhaseState{Phase: timeline.PhaseEntered, Tracks: h.tl.Sample(0)}

	handle, err := c.Registry().RegisterPinned(config.ID, h)
	if err != nil {
		return nil, fmt.Errorf("mount %s: %w", config.ID, err)
	}
	h.handle = handle
	h.cancel = c.Subscribe(h.onFrame)

	if err := c.Ready(config.ID); err != nil {
		h.Unmount()
		return nil, fmt.Errorf("mount %s: %w", config.ID, err)
	}
	h.onFrame(c.Frame())

	h.logger.Info("scene mounted", "top", top, "pin_span", config.PinSpan)
	return h, nil
}

// Bounds implements registry.Element. The pin span follows the current
// viewport height, so a Revalidate after resize picks up the new length.
func (h *Hero) Bounds() registry.Bounds {
	return registry.Bounds{Top: h.top, Span: h.config.PinSpan * h.vp.Height()}
}

func (h *Hero) onFrame(f coordinator.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.unmounted || !(f.Extent > 0) {
		return
	}
	region, ok := h.handle.Region()
	if !ok {
		return
	}
	n := region.Normalize(f.Extent)
	h.tl.Bind(n.Start, n.End)
	h.state = h.tl.Advance(f.Global)
	if h.state.Reset {
		h.scrub.Jump(0)
		return
	}
	h.scrub.Seek(h.state.Exit)
}

// Draw advances smoothing to now and returns the frame to render.
func (h *Hero) Draw(now time.Time) HeroView {
	h.mu.Lock()
	defer h.mu.Unlock()

	var dt time.Duration
	if now.After(h.lastDraw) {
		dt = now.Sub(h.lastDraw)
	}
	h.lastDraw = now
	exit := h.scrub.Update(dt)

	elapsed := now.Sub(h.mountedAt)
	return HeroView{
		Phase:        h.state.Phase,
		Local:        h.state.Local,
		Exit:         exit,
		Tracks:       h.tl.Sample(exit),
		Entrance:     h.entrance.Sample(elapsed),
		EntranceDone: h.entrance.Done(elapsed),
	}
}

// State returns the unsmoothed phase state from the last frame.
func (h *Hero) State() timeline.PhaseState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Unmount releases the registry entry and frame subscription. It is
// idempotent.
func (h *Hero) Unmount() {
	h.mu.Lock()
	if h.unmounted {
		h.mu.Unlock()
		return
	}
	h.unmounted = true
	cancel, handle := h.cancel, h.handle
	h.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if handle != nil {
		handle.Release()
	}
	h.logger.Info("scene unmounted")
}

// #endregion hero
