package trace

import (
	"sync"
	"time"

	"github.com/nerdyexternal/landing/scroll-controller/internal/coordinator"
	"github.com/nerdyexternal/landing/scroll-controller/internal/logging"
	"github.com/nerdyexternal/landing/scroll-controller/internal/snap"
)

// #region recorder

// Recorder writes one session's lifecycle events and snap decisions to a
// Store. It implements coordinator.Recorder.
type Recorder struct {
	mu        sync.Mutex
	store     *Store
	sessionID string
}

// NewRecorder creates a recorder for an existing session.
func NewRecorder(store *Store, sessionID string) *Recorder {
	return &Recorder{store: store, sessionID: sessionID}
}

// SessionID returns the session being recorded.
func (r *Recorder) SessionID() string { return r.sessionID }

// RecordEvent implements coordinator.Recorder.
func (r *Recorder) RecordEvent(ev coordinator.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.store.AppendEvent(r.sessionID, ev)
	return err
}

// RecordDecision implements coordinator.Recorder.
func (r *Recorder) RecordDecision(d snap.Decision, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return logging.LogDecision(r.store.DB(), logging.SnapEntry{
		SessionID:  r.sessionID,
		Action:     string(d.Action),
		Progress:   d.Progress,
		Target:     d.Target,
		RegionID:   d.RegionID,
		DurationMS: d.Duration.Milliseconds(),
		Reason:     d.Reason,
		CreatedAt:  at.UTC(),
	})
}

var _ coordinator.Recorder = (*Recorder)(nil)

// #endregion recorder
