package app

import (
	"context"

	"github.com/shashiranjanraj/paintpos/internal/server"
	"github.com/shashiranjanraj/paintpos/pkg/logger"
)

// Serve boots the kernel, starts its background loops and serves HTTP and
// gRPC until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	k, err := a.boot(ctx)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	k.Start(runCtx)

	err = server.Run(runCtx, BuildHandler(k), k.Ping)
	cancel()
	if cerr := k.Close(); cerr != nil {
		logger.Error("app: close failed", "error", cerr)
	}
	return err
}
