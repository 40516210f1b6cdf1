package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/nerdyexternal/landing/scroll-controller/internal/config"
	"github.com/nerdyexternal/landing/scroll-controller/internal/coordinator"
	"github.com/nerdyexternal/landing/scroll-controller/internal/hostlink"
	"github.com/nerdyexternal/landing/scroll-controller/internal/logging"
	"github.com/nerdyexternal/landing/scroll-controller/internal/registry"
	"github.com/nerdyexternal/landing/scroll-controller/internal/telemetry"
)

// #region main
func main() {
	extent := flag.Float64("extent", 0, "initial scroll extent in px (the host reports the real value)")
	height := flag.Float64("height", 0, "initial viewport height in px")
	flag.Parse()

	if err := run(*extent, *height); err != nil {
		config.Exitf("%v", err)
	}
}

// run owns every resource it opens, so each deferred cleanup runs before main
// decides the exit status.
func run(extent, height float64) error {
	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg, err := settings.Coordinator()
	if err != nil {
		return fmt.Errorf("coordinator config: %w", err)
	}
	logger := logging.New(os.Stderr, settings.LogLevel, settings.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, "scroll-hostlink", settings.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer shutdown(context.Background())

	lis, err := net.Listen("tcp", settings.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", settings.Addr, err)
	}

	vp := coordinator.NewMemoryViewport(extent, height)
	c := coordinator.New(registry.New(logger), vp, cfg, coordinator.WithLogger(logger))
	defer c.Close()
	if err := c.Start(); err != nil {
		lis.Close()
		return fmt.Errorf("start coordinator: %w", err)
	}

	link := hostlink.NewServer(c, vp, logger)
	defer link.Close()

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	hostlink.RegisterCoordinatorServer(grpcServer, link)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(hostlink.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	log.Printf("host link listening at %v", lis.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		<-serveErr
		return nil
	case err := <-serveErr:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}
		return nil
	}
}

// #endregion main
