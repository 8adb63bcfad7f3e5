// Package migration runs and tracks schema migrations.
//
//	func init() {
//	    migration.Register("20240501000000_create_products_table", &CreateProductsTable{})
//	}
//
//	type CreateProductsTable struct{}
//	func (CreateProductsTable) Up(db *gorm.DB) error   { return db.AutoMigrate(&models.Product{}) }
//	func (CreateProductsTable) Down(db *gorm.DB) error { return db.Migrator().DropTable("products") }
//
// From the CLI:
//
//	paintpos migrate             // run all pending
//	paintpos migrate:rollback    // roll back the last batch
//	paintpos migrate:status
package migration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/paintpos/pkg/logger"
)

// Migration is the interface every migration must implement. db already
// carries the caller's context.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// migrationRecord is the row stored in the tracking table.
type migrationRecord struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (migrationRecord) TableName() string { return "paintpos_migrations" }

// ------------------- Registry -------------------

type registeredMigration struct {
	name string
	m    Migration
}

var (
	regMu    sync.Mutex
	registry []registeredMigration
)

// Register adds a migration. name should be timestamp-prefixed; pending
// migrations run in name order.
func Register(name string, m Migration) {
	regMu.Lock()
	defer regMu.Unlock()
	registry = append(registry, registeredMigration{name: name, m: m})
}

func registered() []registeredMigration {
	regMu.Lock()
	defer regMu.Unlock()
	out := append([]registeredMigration(nil), registry...)
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// ------------------- Runner -------------------

// Runner executes and tracks migrations.
type Runner struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Runner {
	return &Runner{db: db}
}

// Status is one line of migrate:status.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

func (r *Runner) ensureTable(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&migrationRecord{}); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	return nil
}

func (r *Runner) ran(ctx context.Context) (map[string]migrationRecord, error) {
	var rows []migrationRecord
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("migration: list ran: %w", err)
	}
	out := make(map[string]migrationRecord, len(rows))
	for _, rec := range rows {
		out[rec.Name] = rec
	}
	return out, nil
}

func (r *Runner) lastBatch(ctx context.Context) (int, error) {
	var last struct{ Max int }
	err := r.db.WithContext(ctx).Model(&migrationRecord{}).Select("COALESCE(MAX(batch), 0) AS max").Scan(&last).Error
	return last.Max, err
}

// Run executes all pending migrations as one batch and returns the names
// it ran.
func (r *Runner) Run(ctx context.Context) ([]string, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	done, err := r.ran(ctx)
	if err != nil {
		return nil, err
	}
	last, err := r.lastBatch(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration: last batch: %w", err)
	}
	batch := last + 1

	var names []string
	for _, reg := range registered() {
		if _, ok := done[reg.name]; ok {
			continue
		}
		logger.Info("migration: running", "name", reg.name)

		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := reg.m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&migrationRecord{Name: reg.name, Batch: batch}).Error
		})
		if err != nil {
			return names, fmt.Errorf("migration: %s up: %w", reg.name, err)
		}
		names = append(names, reg.name)
	}

	logger.Info("migration: done", "ran", len(names), "batch", batch)
	return names, nil
}

// Rollback reverses every migration of the most recent batch, newest first,
// and returns the names it rolled back.
func (r *Runner) Rollback(ctx context.Context) ([]string, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	last, err := r.lastBatch(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration: last batch: %w", err)
	}
	if last == 0 {
		return nil, nil
	}

	var records []migrationRecord
	if err := r.db.WithContext(ctx).Where("batch = ?", last).Order("id desc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("migration: list batch %d: %w", last, err)
	}

	byName := make(map[string]Migration)
	for _, reg := range registered() {
		byName[reg.name] = reg.m
	}

	var names []string
	for _, rec := range records {
		m, ok := byName[rec.Name]
		if !ok {
			return names, fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}
		logger.Info("migration: rolling back", "name", rec.Name)

		rec := rec
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return tx.Delete(&rec).Error
		})
		if err != nil {
			return names, fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		names = append(names, rec.Name)
	}
	return names, nil
}

// Status lists every registered migration and whether it has run.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	done, err := r.ran(ctx)
	if err != nil {
		return nil, err
	}
	var out []Status
	for _, reg := range registered() {
		rec, ok := done[reg.name]
		out = append(out, Status{Name: reg.name, Ran: ok, Batch: rec.Batch})
	}
	return out, nil
}
