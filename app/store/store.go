// Package store is the document store behind the POS: three collections
// (products, transactions, logs) with interchangeable sql, firestore and
// memory drivers.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/paintpos/app/models"
)

var (
	ErrNotFound          = errors.New("store: not found")
	ErrInsufficientStock = errors.New("store: insufficient stock")
	ErrDuplicateKey      = errors.New("store: duplicate idempotency key")
	ErrMalformed         = errors.New("store: malformed record")
)

// InsufficientStockError reports the product whose live stock could not
// cover a decrement. It unwraps to ErrInsufficientStock.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("store: insufficient stock for %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Store is the full set of operations the application needs.
type Store interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	AddProduct(ctx context.Context, p models.Product) (models.Product, error)
	UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	// DecrementStock reads the live stock and writes stock-qty. It fails with
	// *InsufficientStockError instead of going negative.
	DecrementStock(ctx context.Context, id string, qty int) (models.Product, error)

	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, id string) (models.Transaction, error)
	FindTransactionByKey(ctx context.Context, key string) (models.Transaction, error)
	// AddTransaction assigns ID and Timestamp. An empty IdempotencyKey is
	// replaced by the ID.
	AddTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	ListLogs(ctx context.Context) ([]models.LogEntry, error)
	AppendLog(ctx context.Context, e models.LogEntry) (models.LogEntry, error)
	DeleteLog(ctx context.Context, id string) error

	Ping(ctx context.Context) error
	Close() error
}

// SaleWriter is implemented by stores that can write a whole sale in one
// atomic unit: the transaction, every stock decrement (guarded by
// stock >= qty) and every log entry.
//
// If the idempotency key already exists, CommitSale writes nothing and
// returns the stored transaction together with ErrDuplicateKey.
type SaleWriter interface {
	CommitSale(ctx context.Context, sale models.Sale) (models.Transaction, error)
}

// sortTransactions orders newest first; zero timestamps sink to the end.
func sortTransactions(txs []models.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp.After(txs[j].Timestamp)
	})
}

func sortLogs(logs []models.LogEntry) {
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})
}

func sortProducts(ps []models.Product) {
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].Name < ps[j].Name })
}

// stampTransaction fills the server-assigned fields of a new transaction.
func stampTransaction(tx models.Transaction, id string, now time.Time) models.Transaction {
	tx.ID = id
	items := make([]models.TransactionItem, len(tx.Items))
	for i, it := range tx.Items {
		it.TransactionID = id
		items[i] = it
	}
	tx.Items = items
	if tx.IdempotencyKey == "" {
		tx.IdempotencyKey = id
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = now
	}
	return tx
}

func newID() string { return uuid.NewString() }
