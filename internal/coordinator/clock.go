package coordinator

import (
	"sync"
	"time"
)

// #region clock

// Timer is a pending callback.
type Timer interface {
	Stop() bool
}

// Clock abstracts wall time so lifecycle timers can be driven in tests and
// replays.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock returns the wall clock.
func RealClock() Clock { return realClock{} }

// #endregion clock

// #region manual-clock

// ManualClock is a Clock that only moves when told to. Replays and tests use
// it to fire lifecycle timers deterministically.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock *ManualClock
	at    time.Time
	f     func()
	done  bool
}

// NewManualClock creates a clock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now implements Clock.
func (m *ManualClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc implements Clock. f never runs inside AfterFunc, even for
// d <= 0; it fires from a later Advance or Set.
func (m *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{clock: m, at: m.now.Add(d), f: f}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves the clock forward by d and fires due timers in order.
func (m *ManualClock) Advance(d time.Duration) {
	m.Set(m.Now().Add(d))
}

// Set moves the clock to now, firing due timers in deadline order. Each timer
// observes Now() equal to its own deadline. Timers run on the caller's
// goroutine without the clock's lock held.
func (m *ManualClock) Set(now time.Time) {
	for {
		m.mu.Lock()
		next := m.nextDue(now)
		if next == nil {
			if now.After(m.now) {
				m.now = now
			}
			m.mu.Unlock()
			return
		}
		next.done = true
		if next.at.After(m.now) {
			m.now = next.at
		}
		m.mu.Unlock()

		next.f()
	}
}

// nextDue returns the earliest armed timer due at or before now and drops
// finished timers.
func (m *ManualClock) nextDue(now time.Time) *manualTimer {
	var next *manualTimer
	pending := m.timers[:0]
	for _, t := range m.timers {
		if t.done {
			continue
		}
		pending = append(pending, t)
		if t.at.After(now) {
			continue
		}
		if next == nil || t.at.Before(next.at) {
			next = t
		}
	}
	m.timers = pending
	return next
}

// Pending returns how many timers are armed.
func (m *ManualClock) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.done {
			n++
		}
	}
	return n
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

// #endregion manual-clock
