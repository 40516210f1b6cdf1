package timeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tanema/gween/ease"
)

// #region step

// Step is one entry of an entrance sequence. Count elements start Stagger
// apart; Position places the step relative to the end of the sequence so far
// ("" appends, "-=0.4" overlaps by 0.4s, "+=0.2" gaps by 0.2s, "1.5" is
// absolute seconds).
type Step struct {
	Name     string
	Duration time.Duration
	Stagger  time.Duration
	Count    int
	Position string
	Ease     ease.TweenFunc
}

// length is the time from the first element's start to the last one's end.
func (s Step) length() time.Duration {
	n := s.Count
	if n < 1 {
		n = 1
	}
	return s.Duration + s.Stagger*time.Duration(n-1)
}

// Slot is a step placed on the sequence clock (delay excluded).
type Slot struct {
	Step
	Start time.Duration
	End   time.Duration
}

// StepProgress carries per-element eased progress for one step.
type StepProgress struct {
	Name  string
	Items []float64
}

// #endregion step

// #region sequence

// Sequence is a fire-and-forget entrance timeline: the caller samples it by
// elapsed time and never waits on it.
type Sequence struct {
	delay time.Duration
	slots []Slot
	end   time.Duration
}

// NewSequence creates an empty sequence that starts after delay.
func NewSequence(delay time.Duration) *Sequence {
	return &Sequence{delay: delay}
}

// Add places a step. It fails on an unparseable position.
func (s *Sequence) Add(step Step) error {
	start, err := s.resolve(step.Position)
	if err != nil {
		return fmt.Errorf("step %s: %w", step.Name, err)
	}
	if step.Count < 1 {
		step.Count = 1
	}
	slot := Slot{Step: step, Start: start, End: start + step.length()}
	s.slots = append(s.slots, slot)
	if slot.End > s.end {
		s.end = slot.End
	}
	return nil
}

func (s *Sequence) resolve(pos string) (time.Duration, error) {
	pos = strings.TrimSpace(pos)
	var at time.Duration
	switch {
	case pos == "":
		at = s.end
	case strings.HasPrefix(pos, "-=") || strings.HasPrefix(pos, "+="):
		secs, err := strconv.ParseFloat(pos[2:], 64)
		if err != nil {
			return 0, fmt.Errorf("parse position %q: %w", pos, err)
		}
		d := time.Duration(secs * float64(time.Second))
		if pos[0] == '-' {
			d = -d
		}
		at = s.end + d
	default:
		secs, err := strconv.ParseFloat(pos, 64)
		if err != nil {
			return 0, fmt.Errorf("parse position %q: %w", pos, err)
		}
		at = time.Duration(secs * float64(time.Second))
	}
	if at < 0 {
		at = 0
	}
	return at, nil
}

// Schedule returns the placed steps in insertion order.
func (s *Sequence) Schedule() []Slot {
	out := make([]Slot, len(s.slots))
	copy(out, s.slots)
	return out
}

// Duration is the total run time including the initial delay.
func (s *Sequence) Duration() time.Duration { return s.delay + s.end }

// Sample returns each step's per-element eased progress at elapsed time.
func (s *Sequence) Sample(elapsed time.Duration) []StepProgress {
	t := elapsed - s.delay
	out := make([]StepProgress, len(s.slots))
	for i, slot := range s.slots {
		fn := slot.Ease
		if fn == nil {
			fn = ease.OutQuad
		}
		items := make([]float64, slot.Count)
		for j := range items {
			begin := slot.Start + slot.Stagger*time.Duration(j)
			items[j] = sampleItem(t-begin, slot.Duration, fn)
		}
		out[i] = StepProgress{Name: slot.Name, Items: items}
	}
	return out
}

// Done reports whether every step has completed at elapsed.
func (s *Sequence) Done(elapsed time.Duration) bool {
	return elapsed >= s.Duration()
}

func sampleItem(t, d time.Duration, fn ease.TweenFunc) float64 {
	switch {
	case t <= 0:
		return 0
	case d <= 0 || t >= d:
		return 1
	}
	return float64(fn(float32(t.Seconds()), 0, 1, float32(d.Seconds())))
}

// #endregion sequence

// #region presets

// HeroEntrance builds the hero load sequence: headline words, then the
// supporting copy, the product visual and finally the scroll hint, each
// overlapping the previous step.
func HeroEntrance() *Sequence {
	seq := NewSequence(300 * time.Millisecond)
	steps := []Step{
		{Name: "words", Duration: 800 * time.Millisecond, Stagger: 40 * time.Millisecond, Count: 2},
		{Name: "fade-in", Duration: 600 * time.Millisecond, Stagger: 80 * time.Millisecond, Count: 5, Position: "-=0.4"},
		{Name: "product", Duration: time.Second, Position: "-=0.8"},
		{Name: "scroll-hint", Duration: 400 * time.Millisecond, Position: "-=0.3"},
	}
	for _, st := range steps {
		st.Ease = ease.OutQuad
		// positions above are constants and always parse
		_ = seq.Add(st)
	}
	return seq
}

// #endregion presets
