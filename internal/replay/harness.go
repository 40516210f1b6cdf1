package replay

import (
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/nerdyexternal/landing/scroll-controller/internal/coordinator"
	"github.com/nerdyexternal/landing/scroll-controller/internal/registry"
	"github.com/nerdyexternal/landing/scroll-controller/internal/snap"
	"github.com/nerdyexternal/landing/scroll-controller/internal/trace"
)

// #region types

// Kind names a replay outcome.
type Kind string

const (
	KindBuild    Kind = "build"
	KindRefresh  Kind = "refresh"
	KindSnap     Kind = "snap"
	KindFree     Kind = "free"
	KindDisabled Kind = "disabled"
)

// Result is one outcome produced while replaying a session.
type Result struct {
	At         time.Time
	Kind       Kind
	RegionID   string
	Target     float64 // snap target offset in px
	Generation uint64
	Reason     string
}

// Config controls a replay run.
type Config struct {
	Coordinator  coordinator.Config
	TickInterval time.Duration // frame interval synthesized between recorded inputs
	Tail         time.Duration // ticking continues this long after the last input
}

// DefaultConfig returns a 60fps replay with a one second tail.
func DefaultConfig() Config {
	return Config{
		Coordinator:  coordinator.DefaultConfig(),
		TickInterval: 16 * time.Millisecond,
		Tail:         time.Second,
	}
}

// ConfigFor returns DefaultConfig with the coordinator settings the session
// was recorded under.
func ConfigFor(sess trace.Session) Config {
	c := DefaultConfig()
	c.Coordinator = sess.Config
	return c
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	Total           int
	Builds          int
	Refreshes       int
	Snaps           int
	Free            int
	Disabled        int
	FinalGeneration uint64
}

// Divergence is a position where replayed outcomes differ from recorded ones.
type Divergence struct {
	Index    int
	Expected *Result
	Actual   *Result
}

// #endregion types

// #region collector

type collector struct {
	results []Result
}

func (c *collector) RecordEvent(ev coordinator.Event) error {
	switch ev.Kind {
	case coordinator.EventBuild:
		c.results = append(c.results, Result{At: ev.At, Kind: KindBuild, Generation: ev.Generation, Reason: ev.Detail})
	case coordinator.EventRefresh:
		c.results = append(c.results, Result{At: ev.At, Kind: KindRefresh, Generation: ev.Generation, Reason: ev.Detail})
	case coordinator.EventSnap:
		c.results = append(c.results, Result{At: ev.At, Kind: KindSnap, RegionID: ev.SceneID,
			Target: ev.Offset, Generation: ev.Generation, Reason: ev.Detail})
	}
	return nil
}

func (c *collector) RecordDecision(d snap.Decision, at time.Time) error {
	switch d.Action {
	case snap.ActionFree:
		c.results = append(c.results, Result{At: at, Kind: KindFree, Reason: d.Reason})
	case snap.ActionDisabled:
		c.results = append(c.results, Result{At: at, Kind: KindDisabled, Reason: d.Reason})
	}
	return nil
}

// #endregion collector

// #region replay

// Replay drives a fresh coordinator through a recorded session's inputs on a
// manual clock, synthesizing frame ticks between inputs. Operates entirely
// in-memory.
func Replay(sess trace.Session, events []coordinator.Event, config Config) []Result {
	if len(events) == 0 {
		return nil
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := coordinator.NewManualClock(events[0].At)
	vp := coordinator.NewMemoryViewport(sess.Extent, sess.ViewportHeight)
	reg := registry.New(quiet)
	for _, r := range sess.Regions {
		_ = reg.Register(r)
	}

	out := &collector{}
	c := coordinator.New(reg, vp, config.Coordinator,
		coordinator.WithClock(clock),
		coordinator.WithRecorder(out),
		coordinator.WithLogger(quiet),
	)
	defer c.Close()

	lastTick := events[0].At
	tickUntil := func(until time.Time) {
		if config.TickInterval <= 0 {
			return
		}
		for t := lastTick.Add(config.TickInterval); t.Before(until); t = t.Add(config.TickInterval) {
			clock.Set(t)
			c.Tick(t)
			lastTick = t
		}
	}

	for _, ev := range events {
		tickUntil(ev.At)
		clock.Set(ev.At)
		apply(c, vp, ev)
	}
	tickUntil(events[len(events)-1].At.Add(config.Tail))

	return out.results
}

func apply(c *coordinator.Coordinator, vp *coordinator.MemoryViewport, ev coordinator.Event) {
	switch ev.Kind {
	case coordinator.EventStart:
		_ = c.Start()
	case coordinator.EventReady:
		_ = c.Ready(ev.SceneID)
	case coordinator.EventScroll:
		c.Scroll(ev.Offset, ev.At)
	case coordinator.EventContentReady:
		vp.SetExtent(ev.Extent)
		_ = c.ContentReady()
	case coordinator.EventResize:
		vp.SetExtent(ev.Extent)
		if ev.Height > 0 {
			vp.SetHeight(ev.Height)
		}
		_ = c.Resize()
	case coordinator.EventClose:
		c.Close()
	}
}

// Outcomes extracts the build, refresh and snap outcomes from recorded
// events, in the shape Replay produces them.
func Outcomes(events []coordinator.Event) []Result {
	col := &collector{}
	for _, ev := range events {
		_ = col.RecordEvent(ev)
	}
	return col.results
}

// #endregion replay

// #region compare

// Compare matches recorded outcomes against replayed ones. Free and disabled
// decisions are not recorded as events and are ignored.
func Compare(expected, actual []Result) []Divergence {
	var filtered []Result
	for _, r := range actual {
		if r.Kind == KindBuild || r.Kind == KindRefresh || r.Kind == KindSnap {
			filtered = append(filtered, r)
		}
	}

	n := len(expected)
	if len(filtered) > n {
		n = len(filtered)
	}
	var out []Divergence
	for i := 0; i < n; i++ {
		var e, a *Result
		if i < len(expected) {
			e = &expected[i]
		}
		if i < len(filtered) {
			a = &filtered[i]
		}
		if e == nil || a == nil || !Same(*e, *a) {
			out = append(out, Divergence{Index: i, Expected: e, Actual: a})
		}
	}
	return out
}

// Same reports whether two outcomes agree, allowing half a pixel of drift in
// snap targets.
func Same(a, b Result) bool {
	return a.Kind == b.Kind &&
		a.RegionID == b.RegionID &&
		a.Generation == b.Generation &&
		math.Abs(a.Target-b.Target) <= 0.5
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Kind {
		case KindBuild:
			s.Builds++
		case KindRefresh:
			s.Refreshes++
		case KindSnap:
			s.Snaps++
		case KindFree:
			s.Free++
		case KindDisabled:
			s.Disabled++
		}
		if r.Generation > s.FinalGeneration {
			s.FinalGeneration = r.Generation
		}
	}
	return s
}

// #endregion compare
