// Package server runs the HTTP and gRPC listeners until the context is
// cancelled, then shuts both down gracefully.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shashiranjanraj/paintpos/config"
	"github.com/shashiranjanraj/paintpos/pkg/grpc"
	"github.com/shashiranjanraj/paintpos/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// Run serves handler on APP_PORT and the gRPC health service on GRPC_PORT.
// It returns when ctx is done or the HTTP listener fails.
func Run(ctx context.Context, handler http.Handler, check grpc.Checker) error {
	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	grpcSrv, err := grpc.Start(config.GRPCPort(), check)
	if err != nil {
		logger.Warn("server: gRPC disabled", "error", err)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		grpc.Stop(grpcSrv)
		if err != nil {
			return fmt.Errorf("server: http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	grpc.Stop(grpcSrv)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	logger.Info("server: stopped")
	return nil
}
