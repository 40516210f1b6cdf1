package progress

import (
	"math"

	"golang.org/x/exp/constraints"
)

// #region global

// ToGlobal maps an absolute scroll offset to a normalized progress in [0,1]
// against the document's total scrollable extent. A degenerate document
// (extent <= 0, NaN or infinite) always maps to 0.
//
// Offsets beyond the extent are tolerated (momentum overscroll) and clamp to 1.
func ToGlobal(offset, extent float64) float64 {
	if !finite(extent) || extent <= 0 {
		return 0
	}
	if math.IsNaN(offset) {
		return 0
	}
	return Clamp(offset/extent, 0, 1)
}

// #endregion global

// #region local

// Local maps global progress into a scene's own [start,end] sub-range:
// clamp((global - start) / (end - start), 0, 1).
// A zero-width range behaves like a step at end.
func Local(global, start, end float64) float64 {
	if math.IsNaN(global) || !finite(start) || !finite(end) {
		return 0
	}
	span := end - start
	if span <= 0 {
		if global >= end {
			return 1
		}
		return 0
	}
	return Clamp((global-start)/span, 0, 1)
}

// #endregion local

// #region helpers

// Clamp bounds v to [lo, hi]. NaN clamps to lo.
func Clamp[T constraints.Float](v, lo, hi T) T {
	if v != v || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp interpolates between a and b by t without clamping t.
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// #endregion helpers
