// Package seeders fills a fresh database with the login accounts and a
// starter catalog. Seeders run in the order they are registered:
//
//	seeders.Register("suppliers", SeedSuppliers)
//
// Run from the CLI with `paintpos seed`.
package seeders

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/paintpos/pkg/logger"
)

// SeederFunc is the signature for a seed function.
type SeederFunc func(ctx context.Context, db *gorm.DB) error

type seederEntry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []seederEntry
)

// Accounts go in before the catalog.
func init() {
	Register("users", SeedUsers)
	Register("products", SeedProducts)
}

// Register appends a seeder to the run order.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, seederEntry{name: name, fn: fn})
}

// RunAll executes every registered seeder in registration order and
// returns their names. It stops on the first error.
func RunAll(ctx context.Context, db *gorm.DB) ([]string, error) {
	mu.Lock()
	current := append([]seederEntry(nil), entries...)
	mu.Unlock()

	var ran []string
	for _, e := range current {
		logger.Info("seed: running", "seeder", e.name)
		if err := e.fn(ctx, db); err != nil {
			return ran, fmt.Errorf("seeder %q: %w", e.name, err)
		}
		ran = append(ran, e.name)
	}
	return ran, nil
}
