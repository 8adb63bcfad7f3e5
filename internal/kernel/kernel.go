// Package kernel assembles paintpos: it picks the backends from config,
// wires services and controllers onto them, and owns the background loops
// (websocket hub, queue workers, scheduler).
package kernel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/shashiranjanraj/paintpos/app/controllers"
	"github.com/shashiranjanraj/paintpos/app/graph"
	"github.com/shashiranjanraj/paintpos/app/jobs"
	"github.com/shashiranjanraj/paintpos/app/listeners"
	"github.com/shashiranjanraj/paintpos/app/pos"
	"github.com/shashiranjanraj/paintpos/app/receipt"
	"github.com/shashiranjanraj/paintpos/app/routes"
	"github.com/shashiranjanraj/paintpos/app/services"
	"github.com/shashiranjanraj/paintpos/app/store"
	"github.com/shashiranjanraj/paintpos/config"
	pkggraphql "github.com/shashiranjanraj/paintpos/pkg/graphql"
	"github.com/shashiranjanraj/paintpos/pkg/logger"
	"github.com/shashiranjanraj/paintpos/pkg/queue"
	"github.com/shashiranjanraj/paintpos/pkg/response"
	"github.com/shashiranjanraj/paintpos/pkg/router"
	"github.com/shashiranjanraj/paintpos/pkg/schedule"
	"github.com/shashiranjanraj/paintpos/pkg/session"
	"github.com/shashiranjanraj/paintpos/pkg/sse"
	"github.com/shashiranjanraj/paintpos/pkg/storage"
	"github.com/shashiranjanraj/paintpos/pkg/workerpool"
	"github.com/shashiranjanraj/paintpos/pkg/ws"
)

// RegisterSweepName is the scheduler id of the idle register sweep.
const RegisterSweepName = "register-sweep"

// Backends are the stateful dependencies of the kernel.
type Backends struct {
	Store    store.Store
	Sessions session.Store
	// Users defaults to the configured Admin and Staff accounts.
	Users services.UserDirectory
	// Disk receives archived receipts; nil disables archiving.
	Disk storage.Disk
}

type Kernel struct {
	Store     store.Store
	Sessions  session.Store
	Registers *pos.Registers
	Hub       *ws.Hub
	Events    *sse.Broker
	Pool      *workerpool.Pool
	Listeners *listeners.Listeners

	handlers routes.Handlers
	closers  []func() error
	wg       sync.WaitGroup
}

// New wires every service and controller onto b. It starts nothing.
func New(b Backends) (*Kernel, error) {
	if b.Store == nil || b.Sessions == nil {
		return nil, errors.New("kernel: store and session store are required")
	}
	users := b.Users
	if users == nil {
		dir, err := services.NewStaticDirectory(services.DefaultAccounts())
		if err != nil {
			return nil, err
		}
		users = dir
	}

	k := &Kernel{
		Store:     b.Store,
		Sessions:  b.Sessions,
		Registers: pos.NewRegisters(),
		Hub:       ws.NewHub(),
		Events:    sse.NewBroker(),
		Pool:      workerpool.New("receipts", config.Int("RECEIPT_WORKERS", 2)),
	}

	catalog := services.NewCatalogService(b.Store)
	products := services.NewProductService(b.Store, catalog)
	transactions := services.NewTransactionService(b.Store)
	logs := services.NewLogService(b.Store)
	dashboard := services.NewDashboardService(catalog, b.Store)
	auth := services.NewAuthService(users, b.Sessions, k.Registers)

	opts := []pos.Option{pos.WithRefresher(catalog), pos.WithReconciler(jobs.SaleReconciler{})}
	if config.CommitMode() == "sequential" {
		opts = append(opts, pos.WithSequentialWrites())
	}
	committer := pos.NewCommitter(b.Store, opts...)
	jobs.Register(b.Store)

	renderer := receipt.Default()
	k.Listeners = &listeners.Listeners{
		Hub:       k.Hub,
		Events:    k.Events,
		Pool:      k.Pool,
		Receipts:  renderer,
		Disk:      b.Disk,
		Catalog:   catalog,
		Threshold: config.LowStockThreshold(),
	}

	schema, err := (&graph.Resolver{
		Catalog:      catalog,
		Transactions: transactions,
		Logs:         logs,
		Dashboard:    dashboard,
	}).Schema()
	if err != nil {
		return nil, fmt.Errorf("kernel: graphql schema: %w", err)
	}

	k.handlers = routes.Handlers{
		Sessions:     b.Sessions,
		Auth:         controllers.NewAuthController(auth),
		Products:     controllers.NewProductController(products, catalog),
		POS:          controllers.NewPOSController(k.Registers, committer, products),
		Transactions: controllers.NewTransactionController(transactions, renderer),
		Logs:         controllers.NewLogController(logs),
		Dashboard:    controllers.NewDashboardController(dashboard),
		GraphQL:      pkggraphql.Handler(schema),
		Stock:        k.Hub.Handler(),
		StockEvents:  k.Events.Handler(),
		Health:       k.health,
	}

	logger.Info("kernel: wired", "commit_mode", committer.Mode())
	return k, nil
}

// Routes mounts the route table on r.
func (k *Kernel) Routes(r *router.Router) { routes.RegisterAPI(r, k.handlers) }

// Start subscribes the listeners and runs the hub, the queue workers and
// the scheduler until ctx is done.
func (k *Kernel) Start(ctx context.Context) {
	k.Listeners.Register()
	schedule.Every(15).Minutes().Name(RegisterSweepName).WithoutOverlapping().Run(k.SweepRegisters)

	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		k.Hub.Run(ctx)
	}()

	if n := config.QueueWorkers(); n > 0 {
		workers := queue.StartWorkers(ctx, n)
		k.wg.Add(1)
		go func() {
			defer k.wg.Done()
			workers.Wait()
		}()
	}

	schedule.Start(ctx)
}

// SweepRegisters drops the carts of expired sessions. Sessions expire a
// fixed TTL after login and a register is touched on every cart request,
// so a register idle for a whole TTL has no live session.
func (k *Kernel) SweepRegisters(ctx context.Context) error {
	if n := k.Registers.Sweep(config.SessionTTL()); n > 0 {
		logger.WithCtx(ctx).Info("kernel: dropped idle registers", "count", n, "remaining", k.Registers.Len())
	}
	return nil
}

// Ping reports whether the store is reachable.
func (k *Kernel) Ping(ctx context.Context) error { return k.Store.Ping(ctx) }

func (k *Kernel) health(w http.ResponseWriter, r *http.Request) {
	if err := k.Ping(r.Context()); err != nil {
		logger.WithCtx(r.Context()).Error("health: store unreachable", "error", err)
		response.Error(w, http.StatusServiceUnavailable, "store unreachable")
		return
	}
	response.Success(w, map[string]string{"status": "ok", "store": config.StoreDriver()})
}

// OnClose registers fn to run at Close, in reverse order.
func (k *Kernel) OnClose(fn func() error) { k.closers = append(k.closers, fn) }

// Close waits for the background loops, drains the receipt pool, then
// releases the backends. Cancel the Start context first.
func (k *Kernel) Close() error {
	k.wg.Wait()
	k.Pool.Shutdown()

	var errs []error
	for i := len(k.closers) - 1; i >= 0; i-- {
		if err := k.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := k.Store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Offline is a kernel over in-memory backends, used by route:list and
// tests.
func Offline() (*Kernel, error) {
	return New(Backends{Store: store.NewMemory(), Sessions: session.NewMemoryStore()})
}

