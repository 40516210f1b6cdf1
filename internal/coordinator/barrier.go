package coordinator

import (
	"context"
	"sync"
)

// #region barrier

// Barrier completes once a fixed number of distinct scenes have reported
// ready. Repeat reports from the same scene count once.
type Barrier struct {
	mu       sync.Mutex
	expected int
	seen     map[string]struct{}
	done     chan struct{}
	reached  bool
}

// NewBarrier creates a barrier waiting for expected scenes. A non-positive
// count is complete immediately.
func NewBarrier(expected int) *Barrier {
	b := &Barrier{
		expected: expected,
		seen:     make(map[string]struct{}),
		done:     make(chan struct{}),
	}
	if expected <= 0 {
		b.reached = true
		close(b.done)
	}
	return b
}

// Report records a ready scene. It returns true only for the report that
// completes the barrier.
func (b *Barrier) Report(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.seen[id]; ok {
		return false
	}
	b.seen[id] = struct{}{}
	if b.reached || len(b.seen) < b.expected {
		return false
	}
	b.reached = true
	close(b.done)
	return true
}

// Reached reports whether every expected scene has reported.
func (b *Barrier) Reached() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reached
}

// Count returns how many distinct scenes have reported and how many are
// expected.
func (b *Barrier) Count() (seen, expected int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.seen), b.expected
}

// Done is closed when the barrier completes.
func (b *Barrier) Done() <-chan struct{} { return b.done }

// Wait blocks until the barrier completes or ctx ends.
func (b *Barrier) Wait(ctx context.Context) error {
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// #endregion barrier
