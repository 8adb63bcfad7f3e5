package kernel

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/paintpos/app/repositories"
	"github.com/shashiranjanraj/paintpos/app/services"
	"github.com/shashiranjanraj/paintpos/app/store"
	"github.com/shashiranjanraj/paintpos/config"
	"github.com/shashiranjanraj/paintpos/pkg/cache"
	"github.com/shashiranjanraj/paintpos/pkg/database"
	"github.com/shashiranjanraj/paintpos/pkg/logger"
	"github.com/shashiranjanraj/paintpos/pkg/queue"
	"github.com/shashiranjanraj/paintpos/pkg/session"
	"github.com/shashiranjanraj/paintpos/pkg/storage"
)

// Boot connects the configured backends and wires a kernel onto them.
//
// Redis backs the catalog cache, sessions and the job queue; without it
// all three fall back to process memory. STORE_DRIVER picks sql, firestore
// or memory. ctx bounds background loops started here, such as the Redis
// queue's delayed-job promoter.
func Boot(ctx context.Context) (*Kernel, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := logger.EnableMongo(); err != nil {
		logger.Warn("kernel: mongo log sink disabled", "error", err)
	}

	var closers []func() error
	b := Backends{}

	if err := cache.Connect(ctx); err != nil {
		logger.Warn("kernel: redis unavailable, sessions and queue stay in memory", "error", err)
		b.Sessions = session.NewMemoryStore()
	} else {
		b.Sessions = session.NewRedisStore(cache.RDB)
		queue.SetDriver(queue.NewRedisDriver(ctx, cache.RDB))
		closers = append(closers, cache.Close)
	}

	switch driver := config.StoreDriver(); driver {
	case "firestore":
		fs, err := store.NewFirestore(ctx, config.FirestoreProjectID(), config.FirestoreCredentialsFile())
		if err != nil {
			return nil, err
		}
		b.Store = fs
	case "memory":
		b.Store = store.NewMemory()
	default:
		if err := database.Connect(); err != nil {
			return nil, err
		}
		queue.UseDB(database.DB)
		b.Store = store.NewSQL(database.DB)
		b.Users = sqlUsers(ctx, repositories.NewUserRepository(database.DB))
	}
	logger.Info("kernel: store ready", "driver", config.StoreDriver())

	storage.Connect(ctx)
	if disk, err := storage.Default(); err != nil {
		logger.Warn("kernel: receipts will not be archived", "error", err)
	} else {
		b.Disk = disk
	}

	k, err := New(b)
	if err != nil {
		return nil, err
	}
	k.OnClose(func() error { logger.Close(); return nil })
	for _, fn := range closers {
		k.OnClose(fn)
	}
	return k, nil
}

// sqlUsers returns the users table, or nil (the configured accounts) while
// it has not been seeded.
func sqlUsers(ctx context.Context, repo *repositories.UserRepository) services.UserDirectory {
	n, err := repo.Count(ctx)
	if err != nil || n == 0 {
		logger.Warn("kernel: users table empty or missing, using configured accounts; run `paintpos seed`", "error", err)
		return nil
	}
	return repo
}
