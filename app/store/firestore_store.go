package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/pkg/logger"
)

const (
	colProducts     = "products"
	colTransactions = "transactions"
	colLogs         = "logs"
)

// Firestore is the Cloud Firestore driver. Transactions are stored under
// their idempotency key, so a replayed commit collides on document creation.
type Firestore struct {
	Client *firestore.Client
}

var (
	_ Store      = (*Firestore)(nil)
	_ SaleWriter = (*Firestore)(nil)
)

// NewFirestore connects to projectID. credentialsFile may be empty, in which
// case Application Default Credentials are used.
func NewFirestore(ctx context.Context, projectID, credentialsFile string) (*Firestore, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, errors.New("store/firestore: FIRESTORE_PROJECT_ID is required")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("store/firestore: new client (project=%s): %w", projectID, err)
	}
	return &Firestore{Client: client}, nil
}

func (f *Firestore) products() *firestore.CollectionRef     { return f.Client.Collection(colProducts) }
func (f *Firestore) transactions() *firestore.CollectionRef { return f.Client.Collection(colTransactions) }
func (f *Firestore) logs() *firestore.CollectionRef         { return f.Client.Collection(colLogs) }

// ── Products ─────────────────────────────────────────────────────────────────

func (f *Firestore) ListProducts(ctx context.Context) ([]models.Product, error) {
	it := f.products().Documents(ctx)
	defer it.Stop()

	var out []models.Product
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("store/firestore: list products: %w", err)
		}
		p, err := DecodeProduct(doc.Ref.ID, doc.Data())
		if err != nil {
			skipMalformed(ctx, err)
			continue
		}
		out = append(out, p)
	}
	sortProducts(out)
	return out, nil
}

func (f *Firestore) GetProduct(ctx context.Context, id string) (models.Product, error) {
	snap, err := f.products().Doc(id).Get(ctx)
	if err != nil {
		return models.Product{}, mapFirestoreErr("get product", err)
	}
	return DecodeProduct(snap.Ref.ID, snap.Data())
}

func (f *Firestore) AddProduct(ctx context.Context, p models.Product) (models.Product, error) {
	if err := p.Validate(); err != nil {
		return models.Product{}, err
	}

	ref := f.products().NewDoc()
	if p.ID != "" {
		ref = f.products().Doc(p.ID)
	}
	p.ID = ref.ID

	wr, err := ref.Set(ctx, productDoc(p))
	if err != nil {
		return models.Product{}, fmt.Errorf("store/firestore: add product: %w", err)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = wr.UpdateTime.UTC()
	}
	return p, nil
}

func (f *Firestore) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (models.Product, error) {
	ref := f.products().Doc(id)

	var updated models.Product
	err := f.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return mapFirestoreErr("update product", err)
		}
		current, err := DecodeProduct(id, snap.Data())
		if err != nil {
			return err
		}
		next := patch.Apply(current)
		if err := next.Validate(); err != nil {
			return err
		}

		fields := patch.Fields()
		if patch.Price != nil {
			fields["price"] = patch.Price.InexactFloat64()
		}
		if err := tx.Set(ref, fields, firestore.MergeAll); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return models.Product{}, err
	}
	return updated, nil
}

func (f *Firestore) DeleteProduct(ctx context.Context, id string) error {
	_, err := f.products().Doc(id).Delete(ctx, firestore.Exists)
	return mapFirestoreErr("delete product", err)
}

func (f *Firestore) DecrementStock(ctx context.Context, id string, qty int) (models.Product, error) {
	ref := f.products().Doc(id)

	var updated models.Product
	err := f.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return mapFirestoreErr("decrement stock", err)
		}
		p, err := DecodeProduct(id, snap.Data())
		if err != nil {
			return err
		}
		if p.Stock < qty {
			return &InsufficientStockError{ProductID: id, Name: p.Name, Requested: qty, Available: p.Stock}
		}
		p.Stock -= qty
		if err := tx.Update(ref, []firestore.Update{{Path: "stock", Value: p.Stock}}); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return models.Product{}, err
	}
	return updated, nil
}

// ── Transactions ─────────────────────────────────────────────────────────────

func (f *Firestore) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	it := f.transactions().Documents(ctx)
	defer it.Stop()

	var out []models.Transaction
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("store/firestore: list transactions: %w", err)
		}
		tx, err := DecodeTransaction(doc.Ref.ID, doc.Data())
		if err != nil {
			skipMalformed(ctx, err)
			continue
		}
		out = append(out, tx)
	}
	sortTransactions(out)
	return out, nil
}

func (f *Firestore) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	snap, err := f.transactions().Doc(id).Get(ctx)
	if err != nil {
		return models.Transaction{}, mapFirestoreErr("get transaction", err)
	}
	return DecodeTransaction(snap.Ref.ID, snap.Data())
}

// FindTransactionByKey reads the document named by key; legacy documents
// with a random ID are found through the idempotencyKey field instead.
func (f *Firestore) FindTransactionByKey(ctx context.Context, key string) (models.Transaction, error) {
	if key == "" {
		return models.Transaction{}, ErrNotFound
	}

	tx, err := f.GetTransaction(ctx, key)
	if !errors.Is(err, ErrNotFound) {
		return tx, err
	}

	docs, err := f.transactions().Where("idempotencyKey", "==", key).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return models.Transaction{}, fmt.Errorf("store/firestore: find transaction: %w", err)
	}
	if len(docs) == 0 {
		return models.Transaction{}, ErrNotFound
	}
	return DecodeTransaction(docs[0].Ref.ID, docs[0].Data())
}

func (f *Firestore) AddTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return models.Transaction{}, err
	}

	ref := f.transactionRef(tx.IdempotencyKey)
	tx = stampTransaction(tx, ref.ID, time.Time{})

	wr, err := ref.Create(ctx, transactionDoc(tx))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			existing, gerr := f.GetTransaction(ctx, ref.ID)
			if gerr != nil {
				return models.Transaction{}, gerr
			}
			return existing, ErrDuplicateKey
		}
		return models.Transaction{}, fmt.Errorf("store/firestore: add transaction: %w", err)
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = wr.UpdateTime.UTC()
	}
	return tx, nil
}

func (f *Firestore) transactionRef(key string) *firestore.DocumentRef {
	if key == "" {
		return f.transactions().NewDoc()
	}
	return f.transactions().Doc(key)
}

func (f *Firestore) DeleteTransaction(ctx context.Context, id string) error {
	_, err := f.transactions().Doc(id).Delete(ctx, firestore.Exists)
	return mapFirestoreErr("delete transaction", err)
}

// ── Logs ─────────────────────────────────────────────────────────────────────

func (f *Firestore) ListLogs(ctx context.Context) ([]models.LogEntry, error) {
	it := f.logs().OrderBy("timestamp", firestore.Desc).Documents(ctx)
	defer it.Stop()

	var out []models.LogEntry
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("store/firestore: list logs: %w", err)
		}
		e, err := DecodeLog(doc.Ref.ID, doc.Data())
		if err != nil {
			skipMalformed(ctx, err)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *Firestore) AppendLog(ctx context.Context, e models.LogEntry) (models.LogEntry, error) {
	if err := e.Validate(); err != nil {
		return models.LogEntry{}, err
	}
	ref := f.logs().NewDoc()
	e.ID = ref.ID
	wr, err := ref.Set(ctx, logDoc(e))
	if err != nil {
		return models.LogEntry{}, fmt.Errorf("store/firestore: append log: %w", err)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = wr.UpdateTime.UTC()
	}
	return e, nil
}

func (f *Firestore) DeleteLog(ctx context.Context, id string) error {
	_, err := f.logs().Doc(id).Delete(ctx, firestore.Exists)
	return mapFirestoreErr("delete log", err)
}

// ── Sale ─────────────────────────────────────────────────────────────────────

// CommitSale runs the whole sale in one Firestore transaction. All reads
// happen before the first write, as Firestore requires.
func (f *Firestore) CommitSale(ctx context.Context, sale models.Sale) (models.Transaction, error) {
	in := sale.Transaction
	if err := in.Validate(); err != nil {
		return models.Transaction{}, err
	}

	txRef := f.transactionRef(in.IdempotencyKey)
	decrements := sale.Decrements()

	var (
		committed models.Transaction
		replay    bool
	)
	err := f.Client.RunTransaction(ctx, func(ctx context.Context, ftx *firestore.Transaction) error {
		replay = false

		existing, err := ftx.Get(txRef)
		switch {
		case err == nil && existing.Exists():
			committed, err = DecodeTransaction(existing.Ref.ID, existing.Data())
			if err != nil {
				return err
			}
			replay = true
			return nil
		case err != nil && status.Code(err) != codes.NotFound:
			return err
		}

		stock := make(map[string]int, len(decrements))
		for id, qty := range decrements {
			snap, err := ftx.Get(f.products().Doc(id))
			if err != nil {
				if status.Code(err) == codes.NotFound {
					return &InsufficientStockError{ProductID: id, Requested: qty}
				}
				return err
			}
			p, err := DecodeProduct(id, snap.Data())
			if err != nil {
				return err
			}
			if p.Stock < qty {
				return &InsufficientStockError{ProductID: id, Name: p.Name, Requested: qty, Available: p.Stock}
			}
			stock[id] = p.Stock - qty
		}

		tx := stampTransaction(in, txRef.ID, time.Time{})
		if err := ftx.Create(txRef, transactionDoc(tx)); err != nil {
			return err
		}
		for id, left := range stock {
			if err := ftx.Update(f.products().Doc(id), []firestore.Update{{Path: "stock", Value: left}}); err != nil {
				return err
			}
		}
		for _, e := range models.SaleLogs(tx) {
			e.Timestamp = tx.Timestamp
			if err := ftx.Create(f.logs().NewDoc(), logDoc(e)); err != nil {
				return err
			}
		}
		committed = tx
		return nil
	})
	if err != nil {
		return models.Transaction{}, err
	}
	if replay {
		return committed, ErrDuplicateKey
	}
	if committed.Timestamp.IsZero() {
		// The server stamped the sale at commit; read that time back.
		snap, err := txRef.Get(ctx)
		if err != nil {
			logger.WithCtx(ctx).Warn("store/firestore: could not read sale timestamp", "transaction_id", committed.ID, "error", err)
			return committed, nil
		}
		committed.Timestamp = snap.CreateTime.UTC()
	}
	return committed, nil
}

// ── Lifecycle ────────────────────────────────────────────────────────────────

func (f *Firestore) Ping(ctx context.Context) error {
	_, err := f.products().Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("store/firestore: ping: %w", err)
	}
	return nil
}

func (f *Firestore) Close() error { return f.Client.Close() }

// ── Documents ────────────────────────────────────────────────────────────────

// Money is stored as a plain number so the web client can read it.
func productDoc(p models.Product) map[string]interface{} {
	return map[string]interface{}{
		"name":      p.Name,
		"category":  p.Category,
		"price":     p.Price.InexactFloat64(),
		"stock":     p.Stock,
		"detail":    p.Detail,
		"createdAt": timestampValue(p.CreatedAt),
	}
}

// timestampValue leaves unset times for Firestore to fill in at commit.
func timestampValue(t time.Time) interface{} {
	if t.IsZero() {
		return firestore.ServerTimestamp
	}
	return t
}

func transactionDoc(tx models.Transaction) map[string]interface{} {
	items := make([]map[string]interface{}, 0, len(tx.Items))
	for _, it := range tx.Items {
		items = append(items, map[string]interface{}{
			"id":    it.ProductID,
			"name":  it.Name,
			"price": it.Price.InexactFloat64(),
			"qty":   it.Qty,
			"total": it.Total.InexactFloat64(),
		})
	}
	return map[string]interface{}{
		"idempotencyKey": tx.IdempotencyKey,
		"customerName":   tx.CustomerName,
		"cashier":        tx.Cashier,
		"items":          items,
		"totalAmount":    tx.TotalAmount.InexactFloat64(),
		"timestamp":      timestampValue(tx.Timestamp),
	}
}

func logDoc(e models.LogEntry) map[string]interface{} {
	return map[string]interface{}{
		"action":    string(e.Action),
		"details":   e.Details,
		"timestamp": timestampValue(e.Timestamp),
	}
}

func mapFirestoreErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return fmt.Errorf("store/firestore: %s: %w", op, err)
}
