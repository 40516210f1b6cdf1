package trace

import (
	"errors"
	"time"

	"github.com/nerdyexternal/landing/scroll-controller/internal/coordinator"
	"github.com/nerdyexternal/landing/scroll-controller/internal/registry"
)

// ErrSessionNotFound is returned when a session id has no row.
var ErrSessionNotFound = errors.New("session not found")

// #region session
// Session describes one recorded page session: the layout it started with
// and the coordinator configuration it ran under.
type Session struct {
	ID             string
	Label          string
	Extent         float64
	ViewportHeight float64
	Regions        []registry.Region
	Config         coordinator.Config
	CreatedAt      time.Time
}

// SessionSummary is a session row with its event and decision counts.
type SessionSummary struct {
	Session
	Events    int
	Decisions int
}
// #endregion session

// #region record
// Record is a stored lifecycle event with its sequence number.
type Record struct {
	Seq int64
	coordinator.Event
}
// #endregion record
