package store

import (
	"context"
	"sync"
	"time"

	"github.com/shashiranjanraj/paintpos/app/models"
)

// Memory is a process-local Store. It is the default for tests and for
// STORE_DRIVER=memory. All collections share one mutex, which is what makes
// CommitSale atomic.
type Memory struct {
	mu           sync.Mutex
	products     map[string]models.Product
	transactions []models.Transaction
	logs         []models.LogEntry
	now          func() time.Time
}

var (
	_ Store      = (*Memory)(nil)
	_ SaleWriter = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		products: map[string]models.Product{},
		now:      time.Now,
	}
}

// SetClock replaces time.Now for server-assigned timestamps.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

// ── Products ─────────────────────────────────────────────────────────────────

func (m *Memory) ListProducts(_ context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sortProducts(out)
	return out, nil
}

func (m *Memory) GetProduct(_ context.Context, id string) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) AddProduct(_ context.Context, p models.Product) (models.Product, error) {
	if err := p.Validate(); err != nil {
		return models.Product{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == "" {
		p.ID = newID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.now()
	}
	p.UpdatedAt = p.CreatedAt
	m.products[p.ID] = p
	return p, nil
}

func (m *Memory) UpdateProduct(_ context.Context, id string, patch models.ProductPatch) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	next := patch.Apply(p)
	if err := next.Validate(); err != nil {
		return models.Product{}, err
	}
	next.UpdatedAt = m.now()
	m.products[id] = next
	return next, nil
}

func (m *Memory) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *Memory) DecrementStock(_ context.Context, id string, qty int) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decrementLocked(id, qty)
}

func (m *Memory) decrementLocked(id string, qty int) (models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	if p.Stock < qty {
		return models.Product{}, &InsufficientStockError{ProductID: id, Name: p.Name, Requested: qty, Available: p.Stock}
	}
	p.Stock -= qty
	p.UpdatedAt = m.now()
	m.products[id] = p
	return p, nil
}

// ── Transactions ─────────────────────────────────────────────────────────────

func (m *Memory) ListTransactions(_ context.Context) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Transaction, 0, len(m.transactions))
	for i := len(m.transactions) - 1; i >= 0; i-- {
		out = append(out, copyTransaction(m.transactions[i]))
	}
	sortTransactions(out)
	return out, nil
}

func (m *Memory) GetTransaction(_ context.Context, id string) (models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tx := range m.transactions {
		if tx.ID == id {
			return copyTransaction(tx), nil
		}
	}
	return models.Transaction{}, ErrNotFound
}

func (m *Memory) FindTransactionByKey(_ context.Context, key string) (models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tx, ok := m.findByKeyLocked(key); ok {
		return tx, nil
	}
	return models.Transaction{}, ErrNotFound
}

func (m *Memory) findByKeyLocked(key string) (models.Transaction, bool) {
	if key == "" {
		return models.Transaction{}, false
	}
	for _, tx := range m.transactions {
		if tx.IdempotencyKey == key {
			return copyTransaction(tx), true
		}
	}
	return models.Transaction{}, false
}

func (m *Memory) AddTransaction(_ context.Context, tx models.Transaction) (models.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return models.Transaction{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.findByKeyLocked(tx.IdempotencyKey); ok {
		return existing, ErrDuplicateKey
	}
	tx = stampTransaction(tx, newID(), m.now())
	m.transactions = append(m.transactions, copyTransaction(tx))
	return tx, nil
}

func (m *Memory) DeleteTransaction(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, tx := range m.transactions {
		if tx.ID == id {
			m.transactions = append(m.transactions[:i], m.transactions[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ── Logs ─────────────────────────────────────────────────────────────────────

func (m *Memory) ListLogs(_ context.Context) ([]models.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.LogEntry, 0, len(m.logs))
	for i := len(m.logs) - 1; i >= 0; i-- {
		out = append(out, m.logs[i])
	}
	sortLogs(out)
	return out, nil
}

func (m *Memory) AppendLog(_ context.Context, e models.LogEntry) (models.LogEntry, error) {
	if err := e.Validate(); err != nil {
		return models.LogEntry{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(e), nil
}

func (m *Memory) appendLocked(e models.LogEntry) models.LogEntry {
	e.ID = newID()
	if e.Timestamp.IsZero() {
		e.Timestamp = m.now()
	}
	m.logs = append(m.logs, e)
	return e
}

func (m *Memory) DeleteLog(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.logs {
		if e.ID == id {
			m.logs = append(m.logs[:i], m.logs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ── Sale ─────────────────────────────────────────────────────────────────────

func (m *Memory) CommitSale(_ context.Context, sale models.Sale) (models.Transaction, error) {
	tx := sale.Transaction
	if err := tx.Validate(); err != nil {
		return models.Transaction{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.findByKeyLocked(tx.IdempotencyKey); ok {
		return existing, ErrDuplicateKey
	}

	// Check every line before touching anything.
	for id, qty := range sale.Decrements() {
		p, ok := m.products[id]
		if !ok {
			return models.Transaction{}, &InsufficientStockError{ProductID: id, Requested: qty}
		}
		if p.Stock < qty {
			return models.Transaction{}, &InsufficientStockError{ProductID: id, Name: p.Name, Requested: qty, Available: p.Stock}
		}
	}

	tx = stampTransaction(tx, newID(), m.now())
	m.transactions = append(m.transactions, copyTransaction(tx))
	for _, it := range tx.Items {
		if _, err := m.decrementLocked(it.ProductID, it.Qty); err != nil {
			// unreachable: checked above under the same lock
			return models.Transaction{}, err
		}
	}
	for _, e := range models.SaleLogs(tx) {
		e.Timestamp = tx.Timestamp
		m.appendLocked(e)
	}
	return tx, nil
}

// ── Lifecycle ────────────────────────────────────────────────────────────────

func (m *Memory) Ping(context.Context) error { return nil }
func (m *Memory) Close() error               { return nil }

func copyTransaction(tx models.Transaction) models.Transaction {
	tx.Items = append([]models.TransactionItem(nil), tx.Items...)
	return tx
}
