package hostlink

// #region messages

// RegisterRequest claims a pinned scroll interval for a scene. Span is the
// scroll distance the pin consumes, starting at Top.
type RegisterRequest struct {
	ID   string  `json:"id"`
	Top  float64 `json:"top"`
	Span float64 `json:"span"`
}

// RegisterResponse returns the token that releases the registration.
type RegisterResponse struct {
	Handle  string `json:"handle"`
	Version uint64 `json:"version"`
}

type ReleaseRequest struct {
	Handle string `json:"handle"`
}

type ReleaseResponse struct {
	Released bool `json:"released"`
}

type ReadyRequest struct {
	SceneID string `json:"scene_id"`
}

type ReadyResponse struct {
	Generation uint64 `json:"generation"`
}

// ScrollRequest reports a user scroll position. AtMS is a unix timestamp in
// milliseconds; zero means "now" on the server clock.
type ScrollRequest struct {
	Offset float64 `json:"offset"`
	AtMS   int64   `json:"at_ms,omitempty"`
}

// FrameMessage is the wire form of coordinator.Frame.
type FrameMessage struct {
	Offset         float64 `json:"offset"`
	Extent         float64 `json:"extent"`
	Global         float64 `json:"global"`
	ViewportHeight float64 `json:"viewport_height"`
	Generation     uint64  `json:"generation"`
	Programmatic   bool    `json:"programmatic,omitempty"`
}

type TickRequest struct {
	AtMS int64 `json:"at_ms,omitempty"`
}

// DecisionMessage is the wire form of snap.Decision.
type DecisionMessage struct {
	Action     string  `json:"action"`
	Progress   float64 `json:"progress"`
	Target     float64 `json:"target,omitempty"`
	RegionID   string  `json:"region_id,omitempty"`
	DurationMS int64   `json:"duration_ms,omitempty"`
	Reason     string  `json:"reason"`
}

// TickResponse carries the decision made on the tick, if any, and the scroll
// position the host should apply while a snap is running.
type TickResponse struct {
	Decision *DecisionMessage `json:"decision,omitempty"`
	Snapping bool             `json:"snapping"`
	ScrollTo *float64         `json:"scroll_to,omitempty"`
}

type ContentReadyRequest struct {
	Extent float64 `json:"extent"`
}

type ResizeRequest struct {
	Extent float64 `json:"extent"`
	Height float64 `json:"height"`
}

// Ack acknowledges a notification and reports the resulting frame.
type Ack struct {
	Frame FrameMessage `json:"frame"`
}

// #endregion messages
