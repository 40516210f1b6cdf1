package timeline

import (
	"math"
	"testing"
)

const eps = 1e-6

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func heroTimeline() *Timeline {
	tl := New("hero", DefaultConfig(), HeroTracks()...)
	tl.Bind(0.2, 0.6)
	tl.Mount()
	return tl
}

func TestAdvanceAtSceneStart(t *testing.T) {
	tl := heroTimeline()
	st := tl.Advance(0.2)

	if st.Local != 0 {
		t.Fatalf("expected local 0, got %v", st.Local)
	}
	if st.Phase != PhaseEntered {
		t.Fatalf("expected entered, got %s", st.Phase)
	}
	for _, tr := range st.Tracks {
		if tr.Transform != Identity {
			t.Fatalf("track %s not at identity: %+v", tr.Name, tr.Transform)
		}
	}
}

func TestAdvanceAtSceneEnd(t *testing.T) {
	tl := heroTimeline()
	st := tl.Advance(0.6)

	if st.Local != 1 {
		t.Fatalf("expected local 1, got %v", st.Local)
	}
	if st.Phase != PhaseExiting || st.Fraction != 1 || st.Exit != 1 {
		t.Fatalf("expected fully exiting, got %+v", st)
	}
	for _, tr := range st.Tracks {
		if !near(tr.Opacity, 0) {
			t.Fatalf("track %s should be faded out, opacity=%v", tr.Name, tr.Opacity)
		}
	}
}

func TestPhaseBoundaries(t *testing.T) {
	tl := New("s", DefaultConfig())
	tl.Bind(0, 1)

	cases := []struct {
		global float64
		phase  Phase
		frac   float64
	}{
		{0, PhaseEntered, 0},
		{0.15, PhaseEntered, 0.5},
		{0.3, PhaseHolding, 0},
		{0.5, PhaseHolding, 0.5},
		{0.7, PhaseExiting, 0},
		{0.85, PhaseExiting, 0.5},
		{1, PhaseExiting, 1},
	}
	for _, c := range cases {
		st := tl.Advance(c.global)
		if st.Phase != c.phase || !near(st.Fraction, c.frac) {
			t.Errorf("Advance(%v) = %s/%v, want %s/%v", c.global, st.Phase, st.Fraction, c.phase, c.frac)
		}
	}
}

func TestHeroExitOppositeDirections(t *testing.T) {
	tl := heroTimeline()
	// local 0.85 -> exit fraction 0.5
	st := tl.Advance(0.2 + 0.4*0.85)

	var headline, product TrackState
	for _, tr := range st.Tracks {
		switch tr.Name {
		case "headline":
			headline = tr
		case "product":
			product = tr
		}
	}
	if headline.X >= 0 {
		t.Fatalf("headline should move toward negative x, got %v", headline.X)
	}
	if product.X <= 0 {
		t.Fatalf("product should move toward positive x, got %v", product.X)
	}
	// InQuad at 0.5 -> 0.25 of the way
	if !near(headline.X, -18*0.25) || !near(product.X, 18*0.25) {
		t.Fatalf("unexpected eased offsets: headline=%v product=%v", headline.X, product.X)
	}
	if headline.Opacity >= 1 || product.Opacity >= 1 {
		t.Fatal("both tracks should be fading")
	}
	if !near(product.Scale, 1-0.08*0.25) {
		t.Fatalf("unexpected product scale %v", product.Scale)
	}
}

func TestReversalResetsToFullyVisible(t *testing.T) {
	tl := heroTimeline()
	tl.Advance(0.6)
	st := tl.Advance(0.2 + 0.4*0.9)
	if st.Phase != PhaseExiting || st.Reset {
		t.Fatalf("expected exiting without reset at local 0.9, got %+v", st)
	}

	st = tl.Advance(0.2 + 0.4*0.5)
	if !st.Reset {
		t.Fatal("crossing back through the exit boundary must reset")
	}
	if st.Phase != PhaseHolding {
		t.Fatalf("expected holding, got %s", st.Phase)
	}
	for _, tr := range st.Tracks {
		if tr.Transform != Identity {
			t.Fatalf("track %s not reset: %+v", tr.Name, tr.Transform)
		}
	}

	// Further frames inside hold do not keep resetting.
	if st = tl.Advance(0.2 + 0.4*0.4); st.Reset {
		t.Fatal("reset should fire once per reversal")
	}
}

func TestLeaveBackAbovePinResets(t *testing.T) {
	tl := heroTimeline()
	tl.Advance(0.3)
	st := tl.Advance(0.1)
	if !st.Reset {
		t.Fatal("leaving back above the pin start must reset")
	}
	if st.Local != 0 || st.Phase != PhaseEntered {
		t.Fatalf("unexpected state after leave-back: %+v", st)
	}
}

func TestMountIsOneShot(t *testing.T) {
	tl := New("hero", DefaultConfig())
	if tl.Entrance() != PhaseNotStarted {
		t.Fatalf("expected not_started, got %s", tl.Entrance())
	}
	if !tl.Mount() {
		t.Fatal("first Mount should start the entrance")
	}
	if tl.Mount() {
		t.Fatal("second Mount must not replay the entrance")
	}
	if tl.Entrance() != PhaseEntered {
		t.Fatalf("expected entered, got %s", tl.Entrance())
	}
}

func TestScrollPhaseIndependentOfMount(t *testing.T) {
	tl := New("hero", DefaultConfig(), HeroTracks()...)
	tl.Bind(0, 1)
	st := tl.Advance(0.8)
	if st.Phase != PhaseExiting {
		t.Fatalf("expected exiting before mount, got %s", st.Phase)
	}
	if tl.Entrance() != PhaseNotStarted {
		t.Fatal("Advance must not trigger the entrance")
	}
}
