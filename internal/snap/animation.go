package snap

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// #region animation

// Animation eases the viewport offset toward a snap target with a
// decelerating curve.
type Animation struct {
	tween  *gween.Tween
	from   float64
	to     float64
	offset float64
	done   bool
}

// NewAnimation creates an animation from offset from to offset to over d.
func NewAnimation(from, to float64, d time.Duration) *Animation {
	a := &Animation{from: from, to: to, offset: from}
	if d <= 0 || from == to {
		a.offset = to
		a.done = true
		return a
	}
	a.tween = gween.New(float32(from), float32(to), float32(d.Seconds()), ease.OutQuad)
	return a
}

// Step advances by dt and returns the new offset and whether it finished.
func (a *Animation) Step(dt time.Duration) (float64, bool) {
	if a.done {
		return a.offset, true
	}
	v, finished := a.tween.Update(float32(dt.Seconds()))
	a.offset = float64(v)
	if finished {
		a.offset = a.to
		a.done = true
	}
	return a.offset, a.done
}

// Target returns the destination offset.
func (a *Animation) Target() float64 { return a.to }

// Offset returns the last emitted offset.
func (a *Animation) Offset() float64 { return a.offset }

// Done reports completion.
func (a *Animation) Done() bool { return a.done }

// #endregion animation
