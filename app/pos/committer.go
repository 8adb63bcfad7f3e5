package pos

import (
	"context"
	"errors"
	"maps"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/app/store"
	"github.com/shashiranjanraj/paintpos/pkg/collection"
	"github.com/shashiranjanraj/paintpos/pkg/event"
	"github.com/shashiranjanraj/paintpos/pkg/logger"
)

// EventSaleCommitted is fired with the committed models.Transaction.
const EventSaleCommitted = "sale.committed"

// keyRules bound client keys to the stores' key column and to valid
// Firestore document IDs.
var keyRules = []validation.Rule{
	validation.Length(1, 64),
	validation.Match(regexp.MustCompile(`^[A-Za-z0-9._:-]+$`)),
}

// Refresher reloads the catalog after stock has changed.
type Refresher interface {
	Refresh(ctx context.Context) ([]models.Product, error)
}

// Reconciliation describes the writes a partial sequential commit left
// behind.
type Reconciliation struct {
	TransactionID string          `json:"transactionId"`
	CustomerName  string          `json:"customerName"`
	Total         decimal.Decimal `json:"total"`
	NeedsSaleLog  bool            `json:"needsSaleLog"`
	Pending       []PendingLine   `json:"pending"`
}

// Reconciler schedules a Reconciliation to run out of band.
type Reconciler interface {
	Enqueue(ctx context.Context, r Reconciliation) error
}

// CommitOptions are the per-request inputs of a commit.
type CommitOptions struct {
	// CustomerName, when set, replaces the cart's customer name.
	CustomerName string
	// IdempotencyKey overrides the register's own key.
	IdempotencyKey string
	// Cashier is recorded on the transaction.
	Cashier string
}

type Result struct {
	Transaction models.Transaction `json:"transaction"`
	Replayed    bool               `json:"replayed"`
}

// Committer turns a register's cart into a recorded sale.
type Committer struct {
	store      store.Store
	writer     store.SaleWriter
	sequential bool
	refresher  Refresher
	reconciler Reconciler
}

type Option func(*Committer)

// WithSequentialWrites forces the step-by-step write path even when the
// store can commit atomically.
func WithSequentialWrites() Option { return func(c *Committer) { c.sequential = true } }

func WithRefresher(r Refresher) Option   { return func(c *Committer) { c.refresher = r } }
func WithReconciler(r Reconciler) Option { return func(c *Committer) { c.reconciler = r } }

func NewCommitter(st store.Store, opts ...Option) *Committer {
	c := &Committer{store: st}
	if w, ok := st.(store.SaleWriter); ok {
		c.writer = w
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mode reports which write path Commit uses.
func (c *Committer) Mode() string {
	if c.writer != nil && !c.sequential {
		return "atomic"
	}
	return "sequential"
}

// Commit records the register's cart as a sale.
//
// Errors are *ValidationError, *StaleStockError, *KeyConflictError,
// *WriteFailure or ErrCommitInProgress. The cart is cleared only on
// success, including a replay of a sale already recorded under the same
// idempotency key with the same lines.
func (c *Committer) Commit(ctx context.Context, reg *Register, opts CommitOptions) (res Result, err error) {
	start := time.Now()
	mode := c.Mode()
	defer func() { observeCommit(mode, start, res, err) }()

	explicitKey := strings.TrimSpace(opts.IdempotencyKey)
	if explicitKey != "" && validation.Validate(explicitKey, keyRules...) != nil {
		return Result{}, errBadKey
	}

	t, err := reg.begin(strings.TrimSpace(opts.CustomerName))
	if err != nil {
		return Result{}, err
	}
	success := false
	defer func() { reg.end(success) }()

	customer := strings.TrimSpace(t.customerName)
	if customer == "" {
		return Result{}, errNoCustomer
	}
	if len(t.items) == 0 {
		return Result{}, errEmptyCart
	}

	key := t.key
	if explicitKey != "" {
		key = explicitKey
	}

	existing, err := c.store.FindTransactionByKey(ctx, key)
	switch {
	case err == nil:
		if !sameLines(existing.Items, t.items) {
			return Result{}, &KeyConflictError{Key: key, TransactionID: existing.ID}
		}
		success = true
		return c.finish(ctx, existing, true), nil
	case !errors.Is(err, store.ErrNotFound):
		return Result{}, &WriteFailure{Stage: StageTransaction, Err: err}
	}

	if err := c.checkStock(ctx, t.lines); err != nil {
		return Result{}, err
	}

	tx := models.Transaction{
		IdempotencyKey: key,
		CustomerName:   customer,
		Cashier:        opts.Cashier,
		Items:          t.items,
		TotalAmount:    t.total,
	}

	var (
		recorded models.Transaction
		replayed bool
	)
	if mode == "atomic" {
		recorded, replayed, err = c.commitAtomic(ctx, tx)
	} else {
		recorded, replayed, err = c.commitSequential(ctx, tx)
	}
	if err != nil {
		return Result{}, err
	}
	if replayed && !sameLines(recorded.Items, t.items) {
		return Result{}, &KeyConflictError{Key: key, TransactionID: recorded.ID}
	}

	success = true
	return c.finish(ctx, recorded, replayed), nil
}

// sameLines reports whether two item lists sell the same quantity of each
// product.
func sameLines(a, b []models.TransactionItem) bool {
	return maps.Equal(qtyByProduct(a), qtyByProduct(b))
}

func qtyByProduct(items []models.TransactionItem) map[string]int {
	return collection.Reduce(items, map[string]int{}, func(acc map[string]int, it models.TransactionItem) map[string]int {
		acc[it.ProductID] += it.Qty
		return acc
	})
}

// checkStock re-reads live stock for every line.
func (c *Committer) checkStock(ctx context.Context, lines []Line) error {
	var stale []StaleLine
	for _, l := range lines {
		p, err := c.store.GetProduct(ctx, l.ProductID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			stale = append(stale, StaleLine{ProductID: l.ProductID, Name: l.Name, Requested: l.Qty})
			continue
		case err != nil:
			return &WriteFailure{Stage: StageTransaction, Err: err}
		}
		if l.Qty > p.Stock {
			stale = append(stale, StaleLine{ProductID: l.ProductID, Name: l.Name, Requested: l.Qty, Available: p.Stock})
		}
	}
	if len(stale) > 0 {
		return &StaleStockError{Lines: stale}
	}
	return nil
}

func (c *Committer) commitAtomic(ctx context.Context, tx models.Transaction) (models.Transaction, bool, error) {
	recorded, err := c.writer.CommitSale(ctx, models.Sale{Transaction: tx})
	if err == nil {
		return recorded, false, nil
	}
	if errors.Is(err, store.ErrDuplicateKey) {
		return recorded, true, nil
	}
	var short *store.InsufficientStockError
	if errors.As(err, &short) {
		name := short.Name
		if it, ok := collection.First(tx.Items, func(it models.TransactionItem) bool {
			return it.ProductID == short.ProductID
		}); ok {
			name = it.Name
		}
		return models.Transaction{}, false, &StaleStockError{Lines: []StaleLine{{
			ProductID: short.ProductID,
			Name:      name,
			Requested: short.Requested,
			Available: short.Available,
		}}}
	}
	return models.Transaction{}, false, &WriteFailure{Stage: StageTransaction, Err: err}
}

// commitSequential writes the transaction, the SALE log, then each stock
// decrement followed by its STOCK_UPDATE log. Nothing is rolled back: a
// failure after the transaction write is reported as a committed
// WriteFailure and handed to the reconciler.
func (c *Committer) commitSequential(ctx context.Context, tx models.Transaction) (models.Transaction, bool, error) {
	recorded, err := c.store.AddTransaction(ctx, tx)
	if errors.Is(err, store.ErrDuplicateKey) {
		return recorded, true, nil
	}
	if err != nil {
		return models.Transaction{}, false, &WriteFailure{Stage: StageTransaction, Err: err}
	}

	if _, err := c.store.AppendLog(ctx, models.SaleLog(recorded)); err != nil {
		return models.Transaction{}, false, c.partial(ctx, recorded, &WriteFailure{
			Stage:   StageSaleLog,
			Pending: pendingFrom(recorded.Items, 0, false),
			Err:     err,
		}, true)
	}

	for i, it := range recorded.Items {
		if _, err := c.store.DecrementStock(ctx, it.ProductID, it.Qty); err != nil {
			return models.Transaction{}, false, c.partial(ctx, recorded, &WriteFailure{
				Stage:     StageStock,
				ProductID: it.ProductID,
				Pending:   pendingFrom(recorded.Items, i, false),
				Err:       err,
			}, false)
		}
		if _, err := c.store.AppendLog(ctx, models.StockUpdateLog(it.Name, it.Qty)); err != nil {
			pending := append(
				[]PendingLine{{ProductID: it.ProductID, Name: it.Name, Qty: it.Qty, LogOnly: true}},
				pendingFrom(recorded.Items, i+1, false)...,
			)
			return models.Transaction{}, false, c.partial(ctx, recorded, &WriteFailure{
				Stage:     StageStockLog,
				ProductID: it.ProductID,
				Pending:   pending,
				Err:       err,
			}, false)
		}
	}
	return recorded, false, nil
}

// partial completes a committed WriteFailure and queues its repair.
func (c *Committer) partial(ctx context.Context, tx models.Transaction, wf *WriteFailure, needsSaleLog bool) error {
	wf.Committed = true
	wf.TransactionID = tx.ID

	log := logger.WithCtx(ctx)
	log.Error("pos: sale recorded with incomplete writes",
		"transaction_id", tx.ID,
		"stage", string(wf.Stage),
		"product_id", wf.ProductID,
		"pending", len(wf.Pending),
		"error", wf.Err,
	)

	if c.reconciler == nil {
		return wf
	}
	err := c.reconciler.Enqueue(ctx, Reconciliation{
		TransactionID: tx.ID,
		CustomerName:  tx.CustomerName,
		Total:         tx.TotalAmount,
		NeedsSaleLog:  needsSaleLog,
		Pending:       wf.Pending,
	})
	if err != nil {
		log.Error("pos: could not queue reconciliation", "transaction_id", tx.ID, "error", err)
	}
	return wf
}

func pendingFrom(items []models.TransactionItem, from int, logOnly bool) []PendingLine {
	out := make([]PendingLine, 0, len(items)-from)
	for _, it := range items[from:] {
		out = append(out, PendingLine{ProductID: it.ProductID, Name: it.Name, Qty: it.Qty, LogOnly: logOnly})
	}
	return out
}

// finish runs the success tail: catalog refresh and the sale event.
func (c *Committer) finish(ctx context.Context, tx models.Transaction, replayed bool) Result {
	log := logger.WithCtx(ctx)
	if c.refresher != nil {
		if _, err := c.refresher.Refresh(ctx); err != nil {
			log.Warn("pos: catalog refresh failed", "error", err)
		}
	}
	if replayed {
		log.Info("pos: replayed committed sale", "transaction_id", tx.ID, "idempotency_key", tx.IdempotencyKey)
	} else {
		log.Info("pos: sale committed", "transaction_id", tx.ID, "customer", tx.CustomerName, "total", tx.TotalAmount.String())
	}
	event.Fire(ctx, EventSaleCommitted, tx)
	return Result{Transaction: tx, Replayed: replayed}
}
