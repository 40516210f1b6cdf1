package registry

import (
	"errors"

	"github.com/nerdyexternal/landing/scroll-controller/internal/progress"
)

// #region errors
var (
	// ErrDuplicateID is returned when a region id is already registered.
	ErrDuplicateID = errors.New("region id already registered")

	// ErrNotFound is returned when unregistering an unknown id.
	ErrNotFound = errors.New("region id not found")

	// ErrInvalidRegion is returned when start > end or an offset is NaN.
	ErrInvalidRegion = errors.New("invalid region bounds")

	// ErrClosed is returned once the registry has been torn down.
	ErrClosed = errors.New("registry is closed")
)

// #endregion errors

// #region region
// Region is a pinned scene's claimed scroll interval in raw scroll units.
type Region struct {
	ID          string
	StartOffset float64
	EndOffset   float64
}

// Normalized is a region expressed against a total scroll extent.
type Normalized struct {
	ID     string
	Start  float64
	End    float64
	Center float64
}

// Normalize projects the region onto [0,1]. With a degenerate extent every
// field is 0.
func (r Region) Normalize(extent float64) Normalized {
	start := progress.ToGlobal(r.StartOffset, extent)
	end := progress.ToGlobal(r.EndOffset, extent)
	center := progress.ToGlobal(r.StartOffset+(r.EndOffset-r.StartOffset)*0.5, extent)
	return Normalized{ID: r.ID, Start: start, End: end, Center: center}
}

func (r Region) valid() bool {
	return r.StartOffset == r.StartOffset && r.EndOffset == r.EndOffset && r.StartOffset <= r.EndOffset
}

// #endregion region

// #region element
// Bounds describes a pinned element: its document top and how far the pin
// holds it (the scroll distance the scene consumes).
type Bounds struct {
	Top  float64
	Span float64
}

// Region converts bounds into a region for id.
func (b Bounds) Region(id string) Region {
	return Region{ID: id, StartOffset: b.Top, EndOffset: b.Top + b.Span}
}

// Element reports the current layout of a pinned element. It is read at
// registration and again on every Revalidate.
type Element interface {
	Bounds() Bounds
}

// StaticBounds is an Element whose layout never changes.
type StaticBounds Bounds

// Bounds implements Element.
func (s StaticBounds) Bounds() Bounds { return Bounds(s) }

// #endregion element
