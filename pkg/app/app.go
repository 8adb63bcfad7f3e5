// Package app runs a paintpos process: it boots the kernel, builds the HTTP
// handler with the global middleware stack and serves it.
//
//	app.New(func(ctx context.Context) (app.Kernel, error) {
//	    return kernel.Boot(ctx)
//	}).Serve(ctx)
//
// The database commands (migrate, rollback, status) live here too so every
// entry point runs them the same way.
package app

import (
	"context"

	"github.com/shashiranjanraj/paintpos/pkg/router"
)

// Kernel is the project half of an Application.
type Kernel interface {
	// Routes mounts every endpoint on r.
	Routes(r *router.Router)
	// Start runs background loops until ctx is done.
	Start(ctx context.Context)
	// Ping backs /healthz and the gRPC health service.
	Ping(ctx context.Context) error
	// Close releases the backends once the Start context is done.
	Close() error
}

// BootFunc connects backends and returns a ready kernel.
type BootFunc func(ctx context.Context) (Kernel, error)

// ─── Application Builder ──────────────────────────────────────────────────────

type Application struct {
	boot    BootFunc
	offline BootFunc
}

func New(boot BootFunc) *Application {
	return &Application{boot: boot, offline: boot}
}

// Offline sets the kernel used by commands that only inspect the route
// table and should not need a database.
func (a *Application) Offline(fn BootFunc) *Application {
	a.offline = fn
	return a
}

// Boot runs the boot function, e.g. for queue:work.
func (a *Application) Boot(ctx context.Context) (Kernel, error) { return a.boot(ctx) }
