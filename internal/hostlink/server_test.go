package hostlink

import (
	"context"
	"errors"
	"math"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/nerdyexternal/landing/scroll-controller/internal/coordinator"
	"github.com/nerdyexternal/landing/scroll-controller/internal/registry"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// #region harness
type link struct {
	c      *coordinator.Coordinator
	clock  *coordinator.ManualClock
	server *Server
	client *Client
}

func newLink(t *testing.T) *link {
	t.Helper()
	cfg := coordinator.DefaultConfig()
	cfg.ExpectedScenes = 2
	vp := coordinator.NewMemoryViewport(1000, 800)
	clock := coordinator.NewManualClock(t0)
	c := coordinator.New(registry.New(nil), vp, cfg, coordinator.WithClock(clock))
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	srv := NewServer(c, vp, nil)
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	RegisterCoordinatorServer(gs, srv)
	go func() { _ = gs.Serve(lis) }()

	client, err := NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
		gs.Stop()
		srv.Close()
		c.Close()
	})
	return &link{c: c, clock: clock, server: srv, client: client}
}

// #endregion harness

// #region round-trip-tests
func TestRegisterReadyBuilds(t *testing.T) {
	l := newLink(t)
	ctx := context.Background()

	if _, err := l.client.Register(ctx, "hero", 0, 300); err != nil {
		t.Fatalf("Register hero: %v", err)
	}
	if _, err := l.client.Register(ctx, "showcase", 500, 300); err != nil {
		t.Fatalf("Register showcase: %v", err)
	}
	gen, err := l.client.Ready(ctx, "hero")
	if err != nil || gen != 0 {
		t.Fatalf("first Ready: gen=%d err=%v", gen, err)
	}
	gen, err = l.client.Ready(ctx, "showcase")
	if err != nil || gen != 1 {
		t.Fatalf("second Ready: gen=%d err=%v", gen, err)
	}
	if n := len(l.c.Resolver().Ranges()); n != 2 {
		t.Fatalf("expected 2 ranges, got %d", n)
	}
}

func TestScrollTickReturnsSnapWrites(t *testing.T) {
	l := newLink(t)
	ctx := context.Background()
	l.client.Register(ctx, "hero", 0, 300)
	l.client.Register(ctx, "showcase", 500, 300)
	l.client.Ready(ctx, "hero")
	l.client.Ready(ctx, "showcase")

	f, err := l.client.Scroll(ctx, 160, t0)
	if err != nil {
		t.Fatalf("Scroll: %v", err)
	}
	if math.Abs(f.Global-0.16) > 1e-9 || f.Generation != 1 {
		t.Fatalf("unexpected frame %+v", f)
	}

	resp, err := l.client.Tick(ctx, t0.Add(120*time.Millisecond))
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if resp.Decision == nil || resp.Decision.Action != "snap" || resp.Decision.RegionID != "hero" {
		t.Fatalf("expected hero snap, got %+v", resp.Decision)
	}
	if !resp.Snapping || resp.ScrollTo != nil {
		t.Fatalf("deciding tick should arm without writing: %+v", resp)
	}

	resp, err = l.client.Tick(ctx, t0.Add(220*time.Millisecond))
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if resp.ScrollTo == nil || *resp.ScrollTo >= 160 || *resp.ScrollTo <= 150 {
		t.Fatalf("expected intermediate write, got %+v", resp.ScrollTo)
	}

	resp, _ = l.client.Tick(ctx, t0.Add(420*time.Millisecond))
	if resp.Snapping || resp.ScrollTo == nil || math.Abs(*resp.ScrollTo-150) > 1e-9 {
		t.Fatalf("expected final write at 150, got %+v", resp)
	}

	resp, _ = l.client.Tick(ctx, t0.Add(500*time.Millisecond))
	if resp.ScrollTo != nil || resp.Decision != nil {
		t.Fatalf("idle tick wrote or decided: %+v", resp)
	}
}

func TestReleaseAndErrors(t *testing.T) {
	l := newLink(t)
	ctx := context.Background()

	token, err := l.client.Register(ctx, "hero", 0, 300)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := l.client.Register(ctx, "hero", 0, 300); status.Code(err) != codes.AlreadyExists {
		t.Fatalf("expected AlreadyExists, got %v", err)
	}
	if _, err := l.client.Register(ctx, "bad", 300, -100); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
	if _, err := l.client.Register(ctx, " ", 0, 10); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument for empty id, got %v", err)
	}

	if err := l.client.Release(ctx, token); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if n := l.c.Registry().Len(); n != 0 {
		t.Fatalf("expected empty registry, got %d", n)
	}
	if err := l.client.Release(ctx, token); status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound on second release, got %v", err)
	}
}

func TestLayoutChangesReachViewport(t *testing.T) {
	l := newLink(t)
	ctx := context.Background()

	f, err := l.client.ContentReady(ctx, 1600)
	if err != nil {
		t.Fatalf("ContentReady: %v", err)
	}
	if f.Extent != 1600 {
		t.Fatalf("expected extent 1600 right after ContentReady, got %v", f.Extent)
	}
	if l.c.Generation() != 0 {
		t.Fatalf("built before any scene reported: generation %d", l.c.Generation())
	}
	l.clock.Advance(100 * time.Millisecond)
	if got := l.c.Frame().Extent; got != 1600 {
		t.Fatalf("expected extent 1600 after refresh, got %v", got)
	}
	f, err = l.client.Resize(ctx, 1800, 900)
	if err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if f.Extent != 1800 || f.ViewportHeight != 900 {
		t.Fatalf("unexpected frame after resize %+v", f)
	}
}

func TestClosedCoordinatorFailsPrecondition(t *testing.T) {
	l := newLink(t)
	l.c.Close()

	_, err := l.client.Scroll(context.Background(), 10, t0)
	if status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("expected FailedPrecondition, got %v", err)
	}
	if _, err := l.client.Ready(context.Background(), "hero"); status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("expected FailedPrecondition from Ready, got %v", err)
	}
}

// #endregion round-trip-tests

// #region conn-tests
type failingConn struct {
	grpc.ClientConnInterface
	err    error
	method string
}

func (f *failingConn) Invoke(_ context.Context, method string, _, _ any, _ ...grpc.CallOption) error {
	f.method = method
	return f.err
}

func TestClientWrapsInvokeErrors(t *testing.T) {
	conn := &failingConn{err: errors.New("rpc failed")}
	c := NewClientWithConn(conn)
	defer c.Close()

	_, err := c.Tick(context.Background(), time.Time{})
	if !errors.Is(err, conn.err) {
		t.Fatalf("expected wrapped rpc error, got %v", err)
	}
	if conn.method != "/scrollsync.v1.Coordinator/Tick" {
		t.Fatalf("unexpected method %q", conn.method)
	}
}

func TestJSONCodecRegistered(t *testing.T) {
	var c jsonCodec
	data, err := c.Marshal(&ScrollRequest{Offset: 12.5, AtMS: 7})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"offset":12.5,"at_ms":7}` {
		t.Fatalf("unexpected encoding %s", data)
	}
}

// #endregion conn-tests
