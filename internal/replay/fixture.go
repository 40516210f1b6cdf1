package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/nerdyexternal/landing/scroll-controller/internal/coordinator"
	"github.com/nerdyexternal/landing/scroll-controller/internal/registry"
	"github.com/nerdyexternal/landing/scroll-controller/internal/trace"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string            `json:"description"`
	Session     FixtureSession    `json:"session"`
	Events      []FixtureEvent    `json:"events"`
	Expected    []FixtureExpected `json:"expected"`
}

// FixtureSession is the JSON-serializable starting layout.
type FixtureSession struct {
	Extent         float64         `json:"extent"`
	ViewportHeight float64         `json:"viewport_height"`
	Regions        []FixtureRegion `json:"regions"`
	Config         FixtureConfig   `json:"config"`
}

// FixtureRegion mirrors registry.Region with JSON tags.
type FixtureRegion struct {
	ID    string  `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// FixtureConfig mirrors coordinator.Config with JSON tags. Zero fields keep
// their defaults.
type FixtureConfig struct {
	Hysteresis     float64 `json:"hysteresis,omitempty"`
	MinEaseMS      int64   `json:"min_ease_ms,omitempty"`
	MaxEaseMS      int64   `json:"max_ease_ms,omitempty"`
	ExpectedScenes int     `json:"expected_scenes,omitempty"`
	MaxWaitMS      int64   `json:"max_wait_ms,omitempty"`
	RefreshDelayMS int64   `json:"refresh_delay_ms,omitempty"`
	StillVelocity  float64 `json:"still_velocity,omitempty"`
	SettleWindowMS int64   `json:"settle_window_ms,omitempty"`
}

// FixtureEvent is one recorded input, timed in milliseconds from the
// session start.
type FixtureEvent struct {
	Kind    string  `json:"kind"`
	AtMS    int64   `json:"at_ms"`
	Offset  float64 `json:"offset,omitempty"`
	Extent  float64 `json:"extent,omitempty"`
	Height  float64 `json:"height,omitempty"`
	SceneID string  `json:"scene_id,omitempty"`
}

// FixtureExpected captures one expected outcome.
type FixtureExpected struct {
	Kind       string  `json:"kind"`
	RegionID   string  `json:"region_id,omitempty"`
	Target     float64 `json:"target,omitempty"`
	Generation uint64  `json:"generation"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToConfig converts a FixtureConfig to a coordinator.Config.
func (fc *FixtureConfig) ToConfig() coordinator.Config {
	c := coordinator.DefaultConfig()
	if fc.Hysteresis > 0 {
		c.Snap.Hysteresis = fc.Hysteresis
	}
	if fc.MinEaseMS > 0 {
		c.Snap.MinEase = ms(fc.MinEaseMS)
	}
	if fc.MaxEaseMS > 0 {
		c.Snap.MaxEase = ms(fc.MaxEaseMS)
	}
	if fc.ExpectedScenes > 0 {
		c.ExpectedScenes = fc.ExpectedScenes
	}
	if fc.MaxWaitMS > 0 {
		c.MaxWait = ms(fc.MaxWaitMS)
	}
	if fc.RefreshDelayMS > 0 {
		c.RefreshDelay = ms(fc.RefreshDelayMS)
	}
	if fc.StillVelocity > 0 {
		c.Settle.StillVelocity = fc.StillVelocity
	}
	if fc.SettleWindowMS > 0 {
		c.Settle.SettleWindow = ms(fc.SettleWindowMS)
	}
	return c
}

// ToSession converts the fixture's session to a trace.Session starting at
// base.
func (fs *FixtureSession) ToSession(base time.Time) trace.Session {
	regions := make([]registry.Region, len(fs.Regions))
	for i, r := range fs.Regions {
		regions[i] = registry.Region{ID: r.ID, StartOffset: r.Start, EndOffset: r.End}
	}
	return trace.Session{
		Extent:         fs.Extent,
		ViewportHeight: fs.ViewportHeight,
		Regions:        regions,
		Config:         fs.Config.ToConfig(),
		CreatedAt:      base,
	}
}

// ToEvent converts a FixtureEvent to a coordinator.Event relative to base.
func (fe *FixtureEvent) ToEvent(base time.Time) coordinator.Event {
	return coordinator.Event{
		Kind:    coordinator.EventKind(fe.Kind),
		At:      base.Add(ms(fe.AtMS)),
		Offset:  fe.Offset,
		Extent:  fe.Extent,
		Height:  fe.Height,
		SceneID: fe.SceneID,
	}
}

// ToResult converts a FixtureExpected to a Result.
func (fe *FixtureExpected) ToResult() Result {
	return Result{
		Kind:       Kind(fe.Kind),
		RegionID:   fe.RegionID,
		Target:     fe.Target,
		Generation: fe.Generation,
	}
}

// Inputs converts every fixture event relative to base.
func (f *Fixture) Inputs(base time.Time) []coordinator.Event {
	out := make([]coordinator.Event, len(f.Events))
	for i := range f.Events {
		out[i] = f.Events[i].ToEvent(base)
	}
	return out
}

// ExpectedResults converts every expected outcome.
func (f *Fixture) ExpectedResults() []Result {
	out := make([]Result, len(f.Expected))
	for i := range f.Expected {
		out[i] = f.Expected[i].ToResult()
	}
	return out
}

// #endregion fixture-loader

// #region fixture-export

// FromSession builds a fixture from a recorded session. Input events become
// fixture events; build, refresh and snap events become expectations.
func FromSession(sess trace.Session, events []coordinator.Event, description string) Fixture {
	f := Fixture{
		Description: description,
		Session: FixtureSession{
			Extent:         sess.Extent,
			ViewportHeight: sess.ViewportHeight,
			Config:         fromConfig(sess.Config),
		},
	}
	for _, r := range sess.Regions {
		f.Session.Regions = append(f.Session.Regions, FixtureRegion{ID: r.ID, Start: r.StartOffset, End: r.EndOffset})
	}

	var base time.Time
	if len(events) > 0 {
		base = events[0].At
	}
	for _, ev := range events {
		switch ev.Kind {
		case coordinator.EventBuild, coordinator.EventRefresh, coordinator.EventSnap:
			continue
		}
		f.Events = append(f.Events, FixtureEvent{
			Kind:    string(ev.Kind),
			AtMS:    ev.At.Sub(base).Milliseconds(),
			Offset:  ev.Offset,
			Extent:  ev.Extent,
			Height:  ev.Height,
			SceneID: ev.SceneID,
		})
	}
	for _, r := range Outcomes(events) {
		f.Expected = append(f.Expected, FixtureExpected{
			Kind:       string(r.Kind),
			RegionID:   r.RegionID,
			Target:     r.Target,
			Generation: r.Generation,
		})
	}
	return f
}

func fromConfig(c coordinator.Config) FixtureConfig {
	return FixtureConfig{
		Hysteresis:     c.Snap.Hysteresis,
		MinEaseMS:      c.Snap.MinEase.Milliseconds(),
		MaxEaseMS:      c.Snap.MaxEase.Milliseconds(),
		ExpectedScenes: c.ExpectedScenes,
		MaxWaitMS:      c.MaxWait.Milliseconds(),
		RefreshDelayMS: c.RefreshDelay.Milliseconds(),
		StillVelocity:  c.Settle.StillVelocity,
		SettleWindowMS: c.Settle.SettleWindow.Milliseconds(),
	}
}

func ms(v int64) time.Duration { return time.Duration(v) * time.Millisecond }

// #endregion fixture-export
