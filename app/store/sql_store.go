package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/paintpos/app/models"
)

// SQL is the gorm driver (sqlite, postgres, mysql, sqlserver).
type SQL struct {
	db *gorm.DB
}

var (
	_ Store      = (*SQL)(nil)
	_ SaleWriter = (*SQL)(nil)
)

func NewSQL(db *gorm.DB) *SQL { return &SQL{db: db} }

// DB exposes the handle for migrations and the user directory.
func (s *SQL) DB() *gorm.DB { return s.db }

// ── Products ─────────────────────────────────────────────────────────────────

func (s *SQL) ListProducts(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store/sql: list products: %w", err)
	}

	out := rows[:0]
	for _, p := range rows {
		if err := p.Validate(); err != nil {
			skipMalformed(ctx, malformed("product", p.ID, "", err))
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *SQL) GetProduct(ctx context.Context, id string) (models.Product, error) {
	return getProduct(ctx, s.db, id)
}

func getProduct(ctx context.Context, db *gorm.DB, id string) (models.Product, error) {
	var p models.Product
	if err := db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return models.Product{}, mapSQLErr("get product", err)
	}
	if err := p.Validate(); err != nil {
		return models.Product{}, malformed("product", id, "", err)
	}
	return p, nil
}

func (s *SQL) AddProduct(ctx context.Context, p models.Product) (models.Product, error) {
	if err := p.Validate(); err != nil {
		return models.Product{}, err
	}
	if p.ID == "" {
		p.ID = newID()
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return models.Product{}, fmt.Errorf("store/sql: add product: %w", err)
	}
	return p, nil
}

func (s *SQL) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (models.Product, error) {
	var updated models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := getProduct(ctx, tx, id)
		if err != nil {
			return err
		}
		next := patch.Apply(current)
		if err := next.Validate(); err != nil {
			return err
		}
		if !patch.IsEmpty() {
			if err := tx.Model(&models.Product{ID: id}).Updates(patch.Fields()).Error; err != nil {
				return fmt.Errorf("store/sql: update product: %w", err)
			}
		}
		updated = next
		return nil
	})
	if err != nil {
		return models.Product{}, err
	}
	return updated, nil
}

func (s *SQL) DeleteProduct(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("store/sql: delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQL) DecrementStock(ctx context.Context, id string, qty int) (models.Product, error) {
	var updated models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := decrement(ctx, tx, id, qty); err != nil {
			return err
		}
		p, err := getProduct(ctx, tx, id)
		updated = p
		return err
	})
	if err != nil {
		return models.Product{}, err
	}
	return updated, nil
}

// decrement is UPDATE products SET stock = stock - qty WHERE id = ? AND
// stock >= qty. Zero affected rows means the product is gone or short.
func decrement(ctx context.Context, tx *gorm.DB, id string, qty int) error {
	res := tx.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", qty),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("store/sql: decrement stock: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	p, err := getProduct(ctx, tx, id)
	if errors.Is(err, ErrNotFound) {
		return &InsufficientStockError{ProductID: id, Requested: qty}
	}
	if err != nil {
		return err
	}
	return &InsufficientStockError{ProductID: id, Name: p.Name, Requested: qty, Available: p.Stock}
}

// ── Transactions ─────────────────────────────────────────────────────────────

func orderedItems(db *gorm.DB) *gorm.DB { return db.Order("row_id") }

func (s *SQL) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := s.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Order("timestamp desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("store/sql: list transactions: %w", err)
	}

	out := rows[:0]
	for _, tx := range rows {
		if err := tx.Validate(); err != nil {
			skipMalformed(ctx, malformed("transaction", tx.ID, "", err))
			continue
		}
		out = append(out, tx)
	}
	sortTransactions(out)
	return out, nil
}

func (s *SQL) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	return s.findTransaction(ctx, s.db, "id = ?", id)
}

func (s *SQL) FindTransactionByKey(ctx context.Context, key string) (models.Transaction, error) {
	if key == "" {
		return models.Transaction{}, ErrNotFound
	}
	return s.findTransaction(ctx, s.db, "idempotency_key = ?", key)
}

func (s *SQL) findTransaction(ctx context.Context, db *gorm.DB, where string, arg string) (models.Transaction, error) {
	var tx models.Transaction
	err := db.WithContext(ctx).Preload("Items", orderedItems).First(&tx, where, arg).Error
	if err != nil {
		return models.Transaction{}, mapSQLErr("get transaction", err)
	}
	if err := tx.Validate(); err != nil {
		return models.Transaction{}, malformed("transaction", tx.ID, "", err)
	}
	return tx, nil
}

func (s *SQL) AddTransaction(ctx context.Context, in models.Transaction) (models.Transaction, error) {
	if err := in.Validate(); err != nil {
		return models.Transaction{}, err
	}

	tx := stampTransaction(in, newID(), time.Now().UTC())
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return db.Create(&tx).Error
	})
	if err != nil {
		if isDuplicate(err) {
			return s.replay(ctx, in.IdempotencyKey)
		}
		return models.Transaction{}, fmt.Errorf("store/sql: add transaction: %w", err)
	}
	return tx, nil
}

func (s *SQL) replay(ctx context.Context, key string) (models.Transaction, error) {
	existing, err := s.FindTransactionByKey(ctx, key)
	if err != nil {
		return models.Transaction{}, err
	}
	return existing, ErrDuplicateKey
}

func (s *SQL) DeleteTransaction(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id = ?", id).Delete(&models.TransactionItem{}).Error; err != nil {
			return fmt.Errorf("store/sql: delete transaction items: %w", err)
		}
		res := tx.Delete(&models.Transaction{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("store/sql: delete transaction: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ── Logs ─────────────────────────────────────────────────────────────────────

func (s *SQL) ListLogs(ctx context.Context) ([]models.LogEntry, error) {
	var rows []models.LogEntry
	if err := s.db.WithContext(ctx).Order("timestamp desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store/sql: list logs: %w", err)
	}
	return rows, nil
}

func (s *SQL) AppendLog(ctx context.Context, e models.LogEntry) (models.LogEntry, error) {
	return appendLog(ctx, s.db, e)
}

func appendLog(ctx context.Context, db *gorm.DB, e models.LogEntry) (models.LogEntry, error) {
	if err := e.Validate(); err != nil {
		return models.LogEntry{}, err
	}
	e.ID = newID()
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(&e).Error; err != nil {
		return models.LogEntry{}, fmt.Errorf("store/sql: append log: %w", err)
	}
	return e, nil
}

func (s *SQL) DeleteLog(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.LogEntry{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("store/sql: delete log: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ── Sale ─────────────────────────────────────────────────────────────────────

func (s *SQL) CommitSale(ctx context.Context, sale models.Sale) (models.Transaction, error) {
	in := sale.Transaction
	if err := in.Validate(); err != nil {
		return models.Transaction{}, err
	}

	var (
		committed models.Transaction
		replay    bool
	)
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if in.IdempotencyKey != "" {
			existing, err := s.findTransaction(ctx, db, "idempotency_key = ?", in.IdempotencyKey)
			if err == nil {
				committed, replay = existing, true
				return nil
			}
			if !errors.Is(err, ErrNotFound) {
				return err
			}
		}

		// Lock rows in a stable order so concurrent sales cannot deadlock.
		decrements := sale.Decrements()
		ids := make([]string, 0, len(decrements))
		for id := range decrements {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if err := decrement(ctx, db, id, decrements[id]); err != nil {
				return err
			}
		}

		tx := stampTransaction(in, newID(), time.Now().UTC())
		if err := db.Create(&tx).Error; err != nil {
			return err
		}
		for _, e := range models.SaleLogs(tx) {
			e.Timestamp = tx.Timestamp
			if _, err := appendLog(ctx, db, e); err != nil {
				return err
			}
		}
		committed = tx
		return nil
	})
	if err != nil {
		if isDuplicate(err) {
			return s.replay(ctx, in.IdempotencyKey)
		}
		var short *InsufficientStockError
		if errors.As(err, &short) {
			return models.Transaction{}, err
		}
		return models.Transaction{}, fmt.Errorf("store/sql: commit sale: %w", err)
	}
	if replay {
		return committed, ErrDuplicateKey
	}
	return committed, nil
}

// ── Lifecycle ────────────────────────────────────────────────────────────────

func (s *SQL) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ── Errors ───────────────────────────────────────────────────────────────────

func mapSQLErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("store/sql: %s: %w", op, err)
}

// isDuplicate recognises a unique-index violation from any supported driver.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "Duplicate entry") || // mysql
		strings.Contains(msg, "duplicate key") // sqlserver
}
