package hostlink

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nerdyexternal/landing/scroll-controller/internal/coordinator"
	"github.com/nerdyexternal/landing/scroll-controller/internal/registry"
	"github.com/nerdyexternal/landing/scroll-controller/internal/snap"
)

// #region server-struct

// Server exposes one coordinator to an out-of-process page host. The host
// owns the real viewport: it reports layout through ContentReady and Resize,
// and applies the ScrollTo positions returned from Tick.
type Server struct {
	c      *coordinator.Coordinator
	vp     *coordinator.MemoryViewport
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	handles map[string]*registry.Handle
	writes  uint64
}

var _ CoordinatorServer = (*Server)(nil)

// NewServer wraps c, whose viewport must be vp.
func NewServer(c *coordinator.Coordinator, vp *coordinator.MemoryViewport, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		c:       c,
		vp:      vp,
		logger:  logger.With("component", "hostlink"),
		now:     time.Now,
		handles: make(map[string]*registry.Handle),
	}
}

// #endregion server-struct

// #region registration

// Register claims a pinned interval and returns its release token.
func (s *Server) Register(_ context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	if strings.TrimSpace(req.ID) == "" {
		return nil, status.Error(codes.InvalidArgument, "region id is required")
	}
	h, err := s.c.Registry().RegisterPinned(req.ID, registry.StaticBounds{Top: req.Top, Span: req.Span})
	if err != nil {
		return nil, toStatus(err)
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.handles[token] = h
	s.mu.Unlock()

	s.logger.Info("region registered", "region_id", req.ID, "top", req.Top, "span", req.Span)
	return &RegisterResponse{Handle: token, Version: s.c.Registry().Version()}, nil
}

// Release drops the registration behind a token.
func (s *Server) Release(_ context.Context, req *ReleaseRequest) (*ReleaseResponse, error) {
	s.mu.Lock()
	h, ok := s.handles[req.Handle]
	delete(s.handles, req.Handle)
	s.mu.Unlock()

	if !ok {
		return nil, status.Errorf(codes.NotFound, "unknown handle %q", req.Handle)
	}
	h.Release()
	s.logger.Info("region released", "region_id", h.ID())
	return &ReleaseResponse{Released: true}, nil
}

func (s *Server) Ready(_ context.Context, req *ReadyRequest) (*ReadyResponse, error) {
	if err := s.c.Ready(req.SceneID); err != nil {
		return nil, toStatus(err)
	}
	return &ReadyResponse{Generation: s.c.Generation()}, nil
}

// #endregion registration

// #region input

func (s *Server) Scroll(_ context.Context, req *ScrollRequest) (*FrameMessage, error) {
	if s.c.Closed() {
		return nil, toStatus(coordinator.ErrClosed)
	}
	f := s.c.Scroll(req.Offset, s.at(req.AtMS))
	msg := frameMessage(f)
	return &msg, nil
}

// Tick advances the coordinator. Any programmatic scroll it produced is
// returned for the host to apply.
func (s *Server) Tick(_ context.Context, req *TickRequest) (*TickResponse, error) {
	if s.c.Closed() {
		return nil, toStatus(coordinator.ErrClosed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	resp := &TickResponse{}
	if d := s.c.Tick(s.at(req.AtMS)); d != nil {
		resp.Decision = decisionMessage(*d)
	}
	resp.Snapping = s.c.Snapping()

	if last, n := s.vp.LastWrite(); n > s.writes {
		resp.ScrollTo = &last
		s.writes = n
	}
	return resp, nil
}

// ContentReady reports that late content changed the document height.
func (s *Server) ContentReady(_ context.Context, req *ContentReadyRequest) (*Ack, error) {
	if req.Extent > 0 {
		s.vp.SetExtent(req.Extent)
	}
	if err := s.c.ContentReady(); err != nil {
		return nil, toStatus(err)
	}
	return &Ack{Frame: frameMessage(s.c.Frame())}, nil
}

func (s *Server) Resize(_ context.Context, req *ResizeRequest) (*Ack, error) {
	if req.Extent > 0 {
		s.vp.SetExtent(req.Extent)
	}
	if req.Height > 0 {
		s.vp.SetHeight(req.Height)
	}
	if err := s.c.Resize(); err != nil {
		return nil, toStatus(err)
	}
	return &Ack{Frame: frameMessage(s.c.Frame())}, nil
}

// #endregion input

// #region close

// Close releases every outstanding registration.
func (s *Server) Close() {
	s.mu.Lock()
	handles := s.handles
	s.handles = make(map[string]*registry.Handle)
	s.mu.Unlock()

	for _, h := range handles {
		h.Release()
	}
}

// #endregion close

// #region helpers

func (s *Server) at(ms int64) time.Time {
	if ms == 0 {
		return s.now()
	}
	return time.UnixMilli(ms)
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, registry.ErrDuplicateID):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, registry.ErrInvalidRegion):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, registry.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, registry.ErrClosed), errors.Is(err, coordinator.ErrClosed):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func frameMessage(f coordinator.Frame) FrameMessage {
	return FrameMessage{
		Offset:         f.Offset,
		Extent:         f.Extent,
		Global:         f.Global,
		ViewportHeight: f.ViewportHeight,
		Generation:     f.Generation,
		Programmatic:   f.Programmatic,
	}
}

func decisionMessage(d snap.Decision) *DecisionMessage {
	return &DecisionMessage{
		Action:     string(d.Action),
		Progress:   d.Progress,
		Target:     d.Target,
		RegionID:   d.RegionID,
		DurationMS: d.Duration.Milliseconds(),
		Reason:     d.Reason,
	}
}

// #endregion helpers
