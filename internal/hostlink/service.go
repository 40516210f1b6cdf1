package hostlink

import (
	"context"

	"google.golang.org/grpc"
)

// #region service-desc

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "scrollsync.v1.Coordinator"

// CoordinatorServer is the host-link surface a page host drives.
type CoordinatorServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Release(context.Context, *ReleaseRequest) (*ReleaseResponse, error)
	Ready(context.Context, *ReadyRequest) (*ReadyResponse, error)
	Scroll(context.Context, *ScrollRequest) (*FrameMessage, error)
	Tick(context.Context, *TickRequest) (*TickResponse, error)
	ContentReady(context.Context, *ContentReadyRequest) (*Ack, error)
	Resize(context.Context, *ResizeRequest) (*Ack, error)
}

// ServiceDesc describes the host-link service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CoordinatorServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", CoordinatorServer.Register),
		unary("Release", CoordinatorServer.Release),
		unary("Ready", CoordinatorServer.Ready),
		unary("Scroll", CoordinatorServer.Scroll),
		unary("Tick", CoordinatorServer.Tick),
		unary("ContentReady", CoordinatorServer.ContentReady),
		unary("Resize", CoordinatorServer.Resize),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "scrollsync/v1/coordinator",
}

// RegisterCoordinatorServer registers srv on s.
func RegisterCoordinatorServer(s grpc.ServiceRegistrar, srv CoordinatorServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unary[Req, Resp any](method string, call func(CoordinatorServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CoordinatorServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(CoordinatorServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// #endregion service-desc
