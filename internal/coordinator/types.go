package coordinator

// #region imports
import (
	"errors"
	"time"

	"github.com/nerdyexternal/landing/scroll-controller/internal/signals"
	"github.com/nerdyexternal/landing/scroll-controller/internal/snap"
)

// #endregion imports

// #region errors

// ErrClosed is returned by lifecycle calls made after Close.
var ErrClosed = errors.New("coordinator closed")

// #endregion errors

// #region config

// Config holds the lifecycle timings and the tolerances handed to the snap
// resolver and settle detector.
type Config struct {
	Snap           snap.Config
	Settle         signals.Config
	ExpectedScenes int           // scenes that must report ready before the first build
	MaxWait        time.Duration // build anyway once this elapses after Start
	RefreshDelay   time.Duration // delay between ContentReady and Refresh
	EchoTolerance  float64       // px within which a scroll event is treated as our own write
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Snap:           snap.DefaultConfig(),
		Settle:         signals.DefaultConfig(),
		ExpectedScenes: 1,
		MaxWait:        time.Second,
		RefreshDelay:   100 * time.Millisecond,
		EchoTolerance:  1,
	}
}

// #endregion config

// #region viewport

// Viewport is the host surface the coordinator measures and scrolls.
type Viewport interface {
	ScrollExtent() float64 // document height minus viewport height
	Height() float64
	ScrollTo(offset float64)
}

// #endregion viewport

// #region frame

// Frame is what every subscriber sees for one scroll position.
type Frame struct {
	Offset         float64
	Extent         float64
	Global         float64
	ViewportHeight float64
	Generation     uint64 // bumps on every resolver build or refresh
	At             time.Time
	Programmatic   bool // produced by a snap animation, not user input
}

// #endregion frame

// #region event

// EventKind names a lifecycle input.
type EventKind string

const (
	EventStart        EventKind = "start"
	EventReady        EventKind = "ready"
	EventBuild        EventKind = "build"
	EventScroll       EventKind = "scroll"
	EventContentReady EventKind = "content_ready"
	EventRefresh      EventKind = "refresh"
	EventResize       EventKind = "resize"
	EventSnap         EventKind = "snap"
	EventClose        EventKind = "close"
)

// Event is one recorded lifecycle input or transition.
type Event struct {
	Kind       EventKind
	At         time.Time
	Offset     float64
	Extent     float64
	Height     float64
	SceneID    string
	Generation uint64
	Detail     string
}

// Recorder receives lifecycle events and snap decisions. Implementations
// must not call back into the coordinator.
type Recorder interface {
	RecordEvent(Event) error
	RecordDecision(d snap.Decision, at time.Time) error
}

// #endregion event
