package coordinator

import "sync"

// #region memory-viewport

// writeHistory bounds how many programmatic writes a MemoryViewport retains.
const writeHistory = 256

// MemoryViewport is an in-process Viewport. Headless drivers and replays use
// it in place of a browser window.
type MemoryViewport struct {
	mu     sync.Mutex
	extent float64
	height float64
	offset float64
	writes []float64
	count  uint64
}

// NewMemoryViewport creates a viewport with the given scroll extent and
// visible height.
func NewMemoryViewport(extent, height float64) *MemoryViewport {
	return &MemoryViewport{extent: extent, height: height}
}

// ScrollExtent implements Viewport.
func (v *MemoryViewport) ScrollExtent() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.extent
}

// Height implements Viewport.
func (v *MemoryViewport) Height() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.height
}

// ScrollTo implements Viewport.
func (v *MemoryViewport) ScrollTo(offset float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offset = offset
	v.count++
	if len(v.writes) >= writeHistory {
		v.writes = v.writes[1:]
	}
	v.writes = append(v.writes, offset)
}

// SetExtent changes the document extent, as a reflow would.
func (v *MemoryViewport) SetExtent(extent float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.extent = extent
}

// SetHeight changes the visible height, as a resize would.
func (v *MemoryViewport) SetHeight(height float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.height = height
}

// Offset returns the last programmatic scroll position.
func (v *MemoryViewport) Offset() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offset
}

// LastWrite returns the most recent programmatic scroll position and the
// total number of writes so far. A count of zero means nothing was written.
func (v *MemoryViewport) LastWrite() (float64, uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offset, v.count
}

// Writes returns the most recent programmatic scroll positions in order,
// oldest first. At most writeHistory entries are kept.
func (v *MemoryViewport) Writes() []float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]float64, len(v.writes))
	copy(out, v.writes)
	return out
}

// #endregion memory-viewport
