package coordinator

// #region imports
import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nerdyexternal/landing/scroll-controller/internal/progress"
	"github.com/nerdyexternal/landing/scroll-controller/internal/registry"
	"github.com/nerdyexternal/landing/scroll-controller/internal/signals"
	"github.com/nerdyexternal/landing/scroll-controller/internal/snap"
)

// #endregion imports

const tracerName = "github.com/nerdyexternal/landing/scroll-controller/internal/coordinator"

// #region coordinator-struct

type listener struct {
	id uint64
	fn func(Frame)
}

// Coordinator owns the page-session lifecycle: it waits for scenes to report
// ready, builds the snap resolver once per generation, fans scroll frames out
// to scenes, drives snap animations after the user settles and tears
// everything down on Close.
//
// All methods are safe to call from timer goroutines. Subscribers and the
// viewport's ScrollTo are always invoked without the lock held.
type Coordinator struct {
	mu sync.Mutex

	config   Config
	reg      *registry.Registry
	vp       Viewport
	clock    Clock
	logger   *slog.Logger
	tracer   trace.Tracer
	recorder Recorder

	barrier      *Barrier
	started      bool
	closed       bool
	waitTimer    Timer
	refreshTimer Timer

	resolver    *snap.Resolver
	snapVersion uint64
	generation  uint64

	offset float64
	extent float64
	height float64

	detector    *signals.Detector
	anim        *snap.Animation
	lastTick    time.Time
	lastWrite   float64
	pendingEcho bool

	nextListener uint64
	listeners    []listener
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(c *Coordinator) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithTracerProvider sets the provider for build and refresh spans. The
// global provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Coordinator) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithRecorder attaches a lifecycle recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) { c.recorder = r }
}

// New creates a coordinator over reg and vp. Nothing runs until Start.
func New(reg *registry.Registry, vp Viewport, config Config, opts ...Option) *Coordinator {
	c := &Coordinator{
		config:   config,
		reg:      reg,
		vp:       vp,
		clock:    realClock{},
		logger:   slog.Default(),
		tracer:   otel.GetTracerProvider().Tracer(tracerName),
		barrier:  NewBarrier(config.ExpectedScenes),
		detector: signals.NewDetector(config.Settle),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "coordinator")
	if err := config.Snap.Validate(); err != nil {
		c.logger.Warn("invalid snap config, using defaults", "err", err)
		c.config.Snap = snap.DefaultConfig()
	}
	return c
}

// #endregion coordinator-struct

// #region start

// Start measures the viewport and arms the readiness timeout. If every
// expected scene has already reported, the resolver is built immediately.
// Start is idempotent.
func (c *Coordinator) Start() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	now := c.clock.Now()
	c.measureLocked()

	events := []Event{{Kind: EventStart, At: now, Extent: c.extent, Height: c.height}}
	if c.barrier.Reached() {
		events = append(events, c.buildLocked(now, "build", "ready_before_start"))
	} else {
		c.waitTimer = c.clock.AfterFunc(c.config.MaxWait, c.onMaxWait)
	}
	frame := c.frameLocked(now, false)
	ls := c.listenersLocked()
	c.mu.Unlock()

	c.record(events...)
	notify(ls, frame)
	return nil
}

// #endregion start

// #region ready

// Ready records that a scene has registered its regions. The report that
// completes the barrier triggers the first build.
func (c *Coordinator) Ready(sceneID string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	now := c.clock.Now()
	completed := c.barrier.Report(sceneID)
	events := []Event{{Kind: EventReady, At: now, SceneID: sceneID}}

	if !completed || !c.started || c.generation > 0 {
		c.mu.Unlock()
		c.record(events...)
		return nil
	}

	events = append(events, c.buildLocked(now, "build", "barrier"))
	frame := c.frameLocked(now, false)
	ls := c.listenersLocked()
	c.mu.Unlock()

	c.record(events...)
	notify(ls, frame)
	return nil
}

func (c *Coordinator) onMaxWait() {
	c.mu.Lock()
	if c.closed || c.generation > 0 {
		c.mu.Unlock()
		return
	}
	seen, expected := c.barrier.Count()
	c.logger.Warn("readiness wait expired, building with current regions",
		"ready", seen, "expected", expected)

	now := c.clock.Now()
	ev := c.buildLocked(now, "build", "max_wait")
	frame := c.frameLocked(now, false)
	ls := c.listenersLocked()
	c.mu.Unlock()

	c.record(ev)
	notify(ls, frame)
}

// #endregion ready

// #region build

// buildLocked re-measures, snapshots the registry into a new resolver and
// bumps the generation.
func (c *Coordinator) buildLocked(now time.Time, op, reason string) Event {
	_, span := c.tracer.Start(context.Background(), "coordinator."+op)
	defer span.End()

	if c.waitTimer != nil {
		c.waitTimer.Stop()
		c.waitTimer = nil
	}

	c.measureLocked()
	regions := c.reg.Regions()
	c.resolver = snap.NewResolver(regions, c.extent, c.config.Snap)
	c.snapVersion = c.reg.Version()
	c.generation++
	c.anim = nil

	span.SetAttributes(
		attribute.String("reason", reason),
		attribute.Int("regions", len(regions)),
		attribute.Float64("extent", c.extent),
		attribute.Int64("generation", int64(c.generation)),
		attribute.Bool("snap.enabled", c.resolver.Enabled()),
	)
	c.logger.Info("snap resolver built",
		"op", op, "reason", reason, "regions", len(regions),
		"extent", c.extent, "generation", c.generation,
		"enabled", c.resolver.Enabled())

	return Event{Kind: EventBuild, At: now, Extent: c.extent, Generation: c.generation, Detail: reason}
}

func (c *Coordinator) measureLocked() {
	c.extent = c.vp.ScrollExtent()
	c.height = c.vp.Height()
}

// #endregion build

// #region refresh

// ContentReady re-measures the viewport and schedules a Refresh after
// RefreshDelay. Repeated calls restart the delay. Until the refresh runs the
// resolver is stale and settled ticks defer their snap.
func (c *Coordinator) ContentReady() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	now := c.clock.Now()
	c.measureLocked()
	c.anim = nil
	c.scheduleRefreshLocked()
	frame := c.frameLocked(now, false)
	ls := c.listenersLocked()
	c.mu.Unlock()

	c.record(Event{Kind: EventContentReady, At: now, Extent: frame.Extent, Height: frame.ViewportHeight})
	notify(ls, frame)
	return nil
}

func (c *Coordinator) scheduleRefreshLocked() {
	if c.refreshTimer != nil {
		c.refreshTimer.Stop()
	}
	c.refreshTimer = c.clock.AfterFunc(c.config.RefreshDelay, c.onRefresh)
}

func (c *Coordinator) onRefresh() {
	if err := c.Refresh(); err != nil && err != ErrClosed {
		c.logger.Warn("scheduled refresh failed", "err", err)
	}
}

// Refresh re-reads every pinned element's bounds and the scroll extent, then
// rebuilds the resolver so no range computed against the old layout is
// reused. Before the first build it only re-measures.
func (c *Coordinator) Refresh() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.refreshTimer != nil {
		c.refreshTimer.Stop()
		c.refreshTimer = nil
	}
	now := c.clock.Now()
	moved := c.reg.Revalidate()

	var ev Event
	if c.generation == 0 {
		c.measureLocked()
		ev = Event{Kind: EventRefresh, At: now, Extent: c.extent, Detail: "before_build"}
	} else {
		ev = c.buildLocked(now, "refresh", "layout")
		ev.Kind = EventRefresh
	}
	c.logger.Debug("refresh", "moved", moved, "extent", c.extent)
	frame := c.frameLocked(now, false)
	ls := c.listenersLocked()
	c.mu.Unlock()

	c.record(ev)
	notify(ls, frame)
	return nil
}

// Resize re-measures the viewport immediately so progress stays correct, and
// schedules a Refresh to rebuild the snap ranges.
func (c *Coordinator) Resize() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	now := c.clock.Now()
	c.measureLocked()
	c.anim = nil
	if c.generation > 0 {
		c.scheduleRefreshLocked()
	}
	frame := c.frameLocked(now, false)
	ls := c.listenersLocked()
	c.mu.Unlock()

	c.record(Event{Kind: EventResize, At: now, Extent: frame.Extent, Height: frame.ViewportHeight, Offset: frame.Offset})
	notify(ls, frame)
	return nil
}

// #endregion refresh

// #region scroll

// Scroll feeds a user scroll position observed at at. It cancels any running
// snap animation and re-arms settle detection. Echoes of the coordinator's
// own writes are absorbed without notifying subscribers twice.
func (c *Coordinator) Scroll(offset float64, at time.Time) Frame {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Frame{}
	}

	echo := c.pendingEcho && math.Abs(offset-c.lastWrite) <= c.config.EchoTolerance
	c.pendingEcho = false
	c.offset = offset
	if echo {
		frame := c.frameLocked(at, true)
		c.mu.Unlock()
		return frame
	}

	if c.anim != nil {
		c.anim = nil
		c.logger.Debug("snap cancelled by user input", "offset", offset)
	}
	c.detector.Observe(offset, at)
	frame := c.frameLocked(at, false)
	ls := c.listenersLocked()
	c.mu.Unlock()

	c.record(Event{Kind: EventScroll, At: at, Offset: offset, Extent: frame.Extent, Generation: frame.Generation})
	notify(ls, frame)
	return frame
}

// #endregion scroll

// #region tick

// Tick advances a running snap animation, or evaluates the resolver once the
// user has settled. It returns the decision when one was made on this tick.
func (c *Coordinator) Tick(now time.Time) *snap.Decision {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}

	var dt time.Duration
	if !c.lastTick.IsZero() && now.After(c.lastTick) {
		dt = now.Sub(c.lastTick)
	}
	c.lastTick = now

	// The final write of a snap is echoed before the next tick or not at all.
	if c.anim == nil {
		c.pendingEcho = false
	}

	if c.anim != nil {
		off, done := c.anim.Step(dt)
		c.offset = off
		c.lastWrite = off
		c.pendingEcho = true
		if done {
			c.anim = nil
		}
		frame := c.frameLocked(now, true)
		ls := c.listenersLocked()
		c.mu.Unlock()

		c.vp.ScrollTo(off)
		notify(ls, frame)
		return nil
	}

	if c.resolver == nil || !c.detector.Settled(now) {
		c.mu.Unlock()
		return nil
	}
	if c.staleLocked() {
		if c.refreshTimer == nil {
			c.logger.Debug("snap deferred until refresh", "extent", c.extent, "resolver_extent", c.resolver.Extent())
			c.scheduleRefreshLocked()
		}
		c.mu.Unlock()
		return nil
	}

	c.detector.Consume()
	d := c.resolver.Evaluate(progress.ToGlobal(c.offset, c.extent))
	var target float64
	if d.Action == snap.ActionSnap {
		target = d.Target * c.extent
		if math.Abs(target-c.offset) >= 0.5 {
			c.anim = snap.NewAnimation(c.offset, target, d.Duration)
		}
		c.logger.Debug("snap", "region_id", d.RegionID, "from", d.Progress,
			"to", d.Target, "duration", d.Duration)
	}
	gen := c.generation
	c.mu.Unlock()

	c.recordDecision(d, now, gen, target)
	return &d
}

// #endregion tick

// #region subscribe

// Subscribe registers fn for every frame. The returned cancel is idempotent
// and safe to call after Close.
func (c *Coordinator) Subscribe(fn func(Frame)) (cancel func()) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return func() {}
	}
	id := c.nextListener
	c.nextListener++
	c.listeners = append(c.listeners, listener{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, l := range c.listeners {
				if l.id == id {
					c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
					break
				}
			}
		})
	}
}

func (c *Coordinator) listenersLocked() []func(Frame) {
	out := make([]func(Frame), len(c.listeners))
	for i, l := range c.listeners {
		out[i] = l.fn
	}
	return out
}

func notify(ls []func(Frame), f Frame) {
	for _, fn := range ls {
		fn(f)
	}
}

// #endregion subscribe

// #region close

// Close cancels pending timers, stops any snap animation, drops every
// subscriber and closes the registry. Close is idempotent.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.waitTimer != nil {
		c.waitTimer.Stop()
		c.waitTimer = nil
	}
	if c.refreshTimer != nil {
		c.refreshTimer.Stop()
		c.refreshTimer = nil
	}
	c.anim = nil
	c.resolver = nil
	c.listeners = nil
	c.detector.Reset()
	gen := c.generation
	now := c.clock.Now()
	c.mu.Unlock()

	c.reg.Close()
	c.record(Event{Kind: EventClose, At: now, Generation: gen})
	c.logger.Info("coordinator closed", "generation", gen)
}

// #endregion close

// #region accessors

// Registry returns the region registry scenes register against.
func (c *Coordinator) Registry() *registry.Registry { return c.reg }

// Barrier returns the readiness barrier.
func (c *Coordinator) Barrier() *Barrier { return c.barrier }

// Resolver returns the current resolver, or nil before the first build and
// after Close.
func (c *Coordinator) Resolver() *snap.Resolver {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolver
}

// Generation returns the number of resolver builds so far.
func (c *Coordinator) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Stale reports whether the registry or the extent changed since the
// resolver was built.
func (c *Coordinator) Stale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.staleLocked()
}

func (c *Coordinator) staleLocked() bool {
	if c.resolver == nil {
		return false
	}
	return c.reg.Version() != c.snapVersion || c.resolver.Extent() != c.extent
}

// Snapping reports whether a snap animation is running.
func (c *Coordinator) Snapping() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.anim != nil
}

// Frame returns the current frame without notifying anyone.
func (c *Coordinator) Frame() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameLocked(c.clock.Now(), false)
}

// Closed reports whether Close has run.
func (c *Coordinator) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Coordinator) frameLocked(at time.Time, programmatic bool) Frame {
	return Frame{
		Offset:         c.offset,
		Extent:         c.extent,
		Global:         progress.ToGlobal(c.offset, c.extent),
		ViewportHeight: c.height,
		Generation:     c.generation,
		At:             at,
		Programmatic:   programmatic,
	}
}

// #endregion accessors

// #region record

func (c *Coordinator) record(events ...Event) {
	if c.recorder == nil {
		return
	}
	for _, ev := range events {
		if err := c.recorder.RecordEvent(ev); err != nil {
			c.logger.Warn("record event failed", "kind", ev.Kind, "err", err)
		}
	}
}

func (c *Coordinator) recordDecision(d snap.Decision, at time.Time, gen uint64, target float64) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.RecordDecision(d, at); err != nil {
		c.logger.Warn("record decision failed", "action", d.Action, "err", err)
	}
	if d.Action == snap.ActionSnap {
		c.record(Event{Kind: EventSnap, At: at, Offset: target, Generation: gen, SceneID: d.RegionID, Detail: d.Reason})
	}
}

// #endregion record
