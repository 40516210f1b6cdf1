package hostlink

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// #region client-struct

// Client is the page host's side of the host link.
type Client struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

// #endregion client-struct

// #region constructor

// NewClient connects to a host-link server. Extra options are applied after
// the defaults.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
	conn, err := grpc.NewClient(addr, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, cc: conn}, nil
}

// NewClientWithConn creates a Client over an existing connection. Used for
// testing without a real gRPC connection.
func NewClientWithConn(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// #endregion constructor

// #region close

// Close shuts down the gRPC connection, if the client owns one.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region calls

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	return c.cc.Invoke(ctx, fullMethod(method), in, out, grpc.CallContentSubtype(CodecName))
}

// Register claims [top, top+span] for id and returns the release token.
func (c *Client) Register(ctx context.Context, id string, top, span float64) (string, error) {
	var resp RegisterResponse
	if err := c.invoke(ctx, "Register", &RegisterRequest{ID: id, Top: top, Span: span}, &resp); err != nil {
		return "", fmt.Errorf("register rpc: %w", err)
	}
	return resp.Handle, nil
}

func (c *Client) Release(ctx context.Context, handle string) error {
	var resp ReleaseResponse
	if err := c.invoke(ctx, "Release", &ReleaseRequest{Handle: handle}, &resp); err != nil {
		return fmt.Errorf("release rpc: %w", err)
	}
	return nil
}

// Ready reports a scene as registered and returns the resolver generation.
func (c *Client) Ready(ctx context.Context, sceneID string) (uint64, error) {
	var resp ReadyResponse
	if err := c.invoke(ctx, "Ready", &ReadyRequest{SceneID: sceneID}, &resp); err != nil {
		return 0, fmt.Errorf("ready rpc: %w", err)
	}
	return resp.Generation, nil
}

func (c *Client) Scroll(ctx context.Context, offset float64, at time.Time) (FrameMessage, error) {
	var resp FrameMessage
	if err := c.invoke(ctx, "Scroll", &ScrollRequest{Offset: offset, AtMS: unixMS(at)}, &resp); err != nil {
		return FrameMessage{}, fmt.Errorf("scroll rpc: %w", err)
	}
	return resp, nil
}

func (c *Client) Tick(ctx context.Context, at time.Time) (TickResponse, error) {
	var resp TickResponse
	if err := c.invoke(ctx, "Tick", &TickRequest{AtMS: unixMS(at)}, &resp); err != nil {
		return TickResponse{}, fmt.Errorf("tick rpc: %w", err)
	}
	return resp, nil
}

// ContentReady reports a new document extent after late content loaded.
func (c *Client) ContentReady(ctx context.Context, extent float64) (FrameMessage, error) {
	var resp Ack
	if err := c.invoke(ctx, "ContentReady", &ContentReadyRequest{Extent: extent}, &resp); err != nil {
		return FrameMessage{}, fmt.Errorf("content ready rpc: %w", err)
	}
	return resp.Frame, nil
}

func (c *Client) Resize(ctx context.Context, extent, height float64) (FrameMessage, error) {
	var resp Ack
	if err := c.invoke(ctx, "Resize", &ResizeRequest{Extent: extent, Height: height}, &resp); err != nil {
		return FrameMessage{}, fmt.Errorf("resize rpc: %w", err)
	}
	return resp.Frame, nil
}

func unixMS(at time.Time) int64 {
	if at.IsZero() {
		return 0
	}
	return at.UnixMilli()
}

// #endregion calls
