// Package grpc runs the gRPC side of the server: the standard
// grpc.health.v1 service backed by a store ping, plus reflection for
// grpcurl.
//
// Every unary call goes through panic recovery, request logging and
// Prometheus metrics on metrics.DefaultRegistry.
//
//	srv, err := grpc.Start(config.GRPCPort(), st.Ping)
//	// ...run until signal...
//	grpc.Stop(srv)
package grpc

import (
	"context"
	"fmt"
	"net"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/shashiranjanraj/paintpos/pkg/logger"
	"github.com/shashiranjanraj/paintpos/pkg/metrics"
)

// Checker reports whether the backing store is reachable.
type Checker func(ctx context.Context) error

const checkTimeout = 2 * time.Second

// ─── Prometheus metrics ───────────────────────────────────────────────────────

var (
	grpcRequestsTotal = metrics.NewCounter(metrics.Namespace, "grpc_server_handled_total",
		"Total number of gRPC calls completed by method and code.",
		[]string{"grpc_method", "grpc_code"})

	grpcRequestDuration = metrics.NewHistogram(metrics.Namespace, "grpc_server_handling_seconds",
		"Histogram of gRPC response latency in seconds.",
		[]float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		[]string{"grpc_method"})
)

// ─── Interceptors ─────────────────────────────────────────────────────────────

// recoveryInterceptor turns a handler panic into an INTERNAL status.
func recoveryInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(ctx).Error("grpc: panic recovered",
				"method", info.FullMethod,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

// observeInterceptor logs each unary call and records its metrics.
func observeInterceptor(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	dur := time.Since(start)

	code := status.Code(err)
	grpcRequestsTotal.WithLabelValues(info.FullMethod, code.String()).Inc()
	grpcRequestDuration.WithLabelValues(info.FullMethod).Observe(dur.Seconds())

	logger.WithCtx(ctx).Info("grpc: request",
		"method", info.FullMethod,
		"duration_ms", dur.Milliseconds(),
		"code", code.String(),
	)
	return resp, err
}

// ─── Health service ───────────────────────────────────────────────────────────

type healthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	check Checker
}

func (h *healthServer) status(ctx context.Context) grpc_health_v1.HealthCheckResponse_ServingStatus {
	if h.check == nil {
		return grpc_health_v1.HealthCheckResponse_SERVING
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if err := h.check(ctx); err != nil {
		logger.WithCtx(ctx).Warn("grpc: health check failed", "error", err)
		return grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	return grpc_health_v1.HealthCheckResponse_SERVING
}

func (h *healthServer) Check(
	ctx context.Context,
	req *grpc_health_v1.HealthCheckRequest,
) (*grpc_health_v1.HealthCheckResponse, error) {
	switch req.GetService() {
	case "", "paintpos":
	default:
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}
	return &grpc_health_v1.HealthCheckResponse{Status: h.status(ctx)}, nil
}

func (h *healthServer) Watch(
	req *grpc_health_v1.HealthCheckRequest,
	stream grpc_health_v1.Health_WatchServer,
) error {
	return stream.Send(&grpc_health_v1.HealthCheckResponse{Status: h.status(stream.Context())})
}

// ─── Public API ───────────────────────────────────────────────────────────────

// NewServer builds a server with the interceptors and health service
// registered but not yet serving.
func NewServer(check Checker) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(recoveryInterceptor, observeInterceptor),
		grpc.MaxRecvMsgSize(1<<20),
		grpc.MaxSendMsgSize(1<<20),
	)
	grpc_health_v1.RegisterHealthServer(srv, &healthServer{check: check})
	reflection.Register(srv)
	return srv
}

// Serve runs srv on lis in a goroutine.
func Serve(srv *grpc.Server, lis net.Listener) {
	logger.Info("gRPC server starting", "addr", lis.Addr().String())
	go func() {
		if err := srv.Serve(lis); err != nil {
			logger.Error("grpc: serve error", "error", err)
		}
	}()
}

// Start listens on port and serves the health service.
func Start(port string, check Checker) (*grpc.Server, error) {
	addr := ":" + port
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("grpc: listen on %s: %w", addr, err)
	}
	srv := NewServer(check)
	Serve(srv, lis)
	return srv, nil
}

// Stop gracefully shuts down the gRPC server, waiting for in-flight RPCs to
// complete.
func Stop(srv *grpc.Server) {
	if srv == nil {
		return
	}
	logger.Info("gRPC server shutting down")
	srv.GracefulStop()
}
