package snap

import (
	"fmt"
	"math"
	"time"

	"github.com/nerdyexternal/landing/scroll-controller/internal/progress"
	"github.com/nerdyexternal/landing/scroll-controller/internal/registry"
)

// #region resolver

// Resolver selects snap targets from a fixed snapshot of pinned regions. It is
// never patched: a new layout needs a new Resolver.
type Resolver struct {
	config Config
	extent float64
	ranges []Range
}

// NewResolver normalizes the snapshot against extent. regions are expected in
// registry order (ascending start); that order is the tie-break order.
// A degenerate extent or empty snapshot yields a resolver that never snaps.
func NewResolver(regions []registry.Region, extent float64, config Config) *Resolver {
	r := &Resolver{config: config, extent: extent}
	if !(extent > 0) || math.IsInf(extent, 0) {
		return r
	}
	r.ranges = make([]Range, len(regions))
	for i, reg := range regions {
		n := reg.Normalize(extent)
		r.ranges[i] = Range{ID: n.ID, Start: n.Start, End: n.End, Center: n.Center}
	}
	return r
}

// Config returns the tolerances the resolver was built with.
func (r *Resolver) Config() Config { return r.config }

// Extent returns the scroll extent the snapshot was normalized against.
func (r *Resolver) Extent() float64 { return r.extent }

// Ranges returns a copy of the normalized ranges.
func (r *Resolver) Ranges() []Range {
	out := make([]Range, len(r.ranges))
	copy(out, r.ranges)
	return out
}

// Enabled reports whether the resolver can ever return a target.
func (r *Resolver) Enabled() bool { return len(r.ranges) > 0 }

// #endregion resolver

// #region target

// Target returns the resting point for progress, or false for free scroll.
func (r *Resolver) Target(p float64) (float64, bool) {
	i := r.pick(p)
	if i < 0 {
		return 0, false
	}
	return r.ranges[i].Center, true
}

// pick returns the index of the selected range or -1.
func (r *Resolver) pick(p float64) int {
	if len(r.ranges) == 0 || math.IsNaN(p) {
		return -1
	}

	h := r.config.Hysteresis
	inPinned := false
	for _, rg := range r.ranges {
		if p >= rg.Start-h && p <= rg.End+h {
			inPinned = true
			break
		}
	}
	if !inPinned {
		return -1
	}

	best := 0
	for i := 1; i < len(r.ranges); i++ {
		// strict: equal distance keeps the earlier (lower start) range
		if math.Abs(r.ranges[i].Center-p) < math.Abs(r.ranges[best].Center-p) {
			best = i
		}
	}
	return best
}

// #endregion target

// #region evaluate

// Evaluate wraps Target with the ease duration and a reason for logging.
func (r *Resolver) Evaluate(p float64) Decision {
	if !r.Enabled() {
		return Decision{
			Action:   ActionDisabled,
			Progress: p,
			Reason:   fmt.Sprintf("snapping disabled: extent=%.0f regions=%d", r.extent, len(r.ranges)),
		}
	}

	i := r.pick(p)
	if i < 0 {
		return Decision{
			Action:   ActionFree,
			Progress: p,
			Reason:   fmt.Sprintf("progress %.4f outside every padded interval", p),
		}
	}

	rg := r.ranges[i]
	dist := math.Abs(rg.Center - p)
	reach := (rg.End-rg.Start)/2 + r.config.Hysteresis
	return Decision{
		Action:   ActionSnap,
		Progress: p,
		Target:   rg.Center,
		RegionID: rg.ID,
		Duration: r.EaseDuration(dist, reach),
		Reason:   fmt.Sprintf("nearest center %.4f (%s) at distance %.4f", rg.Center, rg.ID, dist),
	}
}

// EaseDuration scales between MinEase and MaxEase by distance over reach:
// closer targets ease faster.
func (r *Resolver) EaseDuration(distance, reach float64) time.Duration {
	f := 1.0
	if reach > 0 {
		f = progress.Clamp(distance/reach, 0, 1)
	}
	span := r.config.MaxEase - r.config.MinEase
	return r.config.MinEase + time.Duration(float64(span)*f)
}

// #endregion evaluate
