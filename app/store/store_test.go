package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/app/store"
)

// ─── Shared contract ──────────────────────────────────────────────────────────

type storeUnderTest interface {
	store.Store
	store.SaleWriter
}

// runContract exercises every driver against the same expectations.
func runContract(t *testing.T, open func(t *testing.T) storeUnderTest) {
	t.Run("ProductCRUD", func(t *testing.T) { testProductCRUD(t, open(t)) })
	t.Run("DecrementStock", func(t *testing.T) { testDecrementStock(t, open(t)) })
	t.Run("Transactions", func(t *testing.T) { testTransactions(t, open(t)) })
	t.Run("Logs", func(t *testing.T) { testLogs(t, open(t)) })
	t.Run("CommitSale", func(t *testing.T) { testCommitSale(t, open(t)) })
	t.Run("CommitSaleShortStock", func(t *testing.T) { testCommitSaleShortStock(t, open(t)) })
	t.Run("CommitSaleReplay", func(t *testing.T) { testCommitSaleReplay(t, open(t)) })
}

func paint(name, category string, price int64, stock int) models.Product {
	return models.Product{Name: name, Category: category, Price: decimal.NewFromInt(price), Stock: stock}
}

func saleOf(key, customer string, lines ...models.TransactionItem) models.Sale {
	tx := models.Transaction{IdempotencyKey: key, CustomerName: customer, Items: lines}
	tx.TotalAmount = tx.ItemsTotal()
	return models.Sale{Transaction: tx}
}

func testProductCRUD(t *testing.T, s storeUnderTest) {
	ctx := context.Background()

	p, err := s.AddProduct(ctx, paint("Boysen Latex White", "Latex", 450, 12))
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)

	_, err = s.AddProduct(ctx, paint("Acrylic Red", "Acrylic", 120, 3))
	require.NoError(t, err)

	list, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Acrylic Red", list[0].Name, "sorted by name")

	name := "Boysen Latex Off-White"
	stock := 20
	updated, err := s.UpdateProduct(ctx, p.ID, models.ProductPatch{Name: &name, Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, "Latex", updated.Category, "untouched fields survive a patch")

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Stock)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(450)))

	negative := -1
	_, err = s.UpdateProduct(ctx, p.ID, models.ProductPatch{Stock: &negative})
	assert.Error(t, err)

	_, err = s.AddProduct(ctx, paint("", "Latex", 10, 1))
	assert.Error(t, err, "name is required")

	require.NoError(t, s.DeleteProduct(ctx, p.ID))
	_, err = s.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteProduct(ctx, p.ID), store.ErrNotFound)
}

func testDecrementStock(t *testing.T, s storeUnderTest) {
	ctx := context.Background()
	p, err := s.AddProduct(ctx, paint("Primer", "Primer", 200, 5))
	require.NoError(t, err)

	after, err := s.DecrementStock(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, after.Stock)

	_, err = s.DecrementStock(ctx, p.ID, 3)
	var short *store.InsufficientStockError
	require.True(t, errors.As(err, &short))
	assert.Equal(t, 2, short.Available)
	assert.ErrorIs(t, err, store.ErrInsufficientStock)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock, "failed decrement leaves stock alone")
}

func testTransactions(t *testing.T, s storeUnderTest) {
	ctx := context.Background()

	sale := saleOf("key-1", "Jane", models.NewItem("p1", "Latex", decimal.NewFromInt(20), 3))
	tx, err := s.AddTransaction(ctx, sale.Transaction)
	require.NoError(t, err)
	assert.NotEmpty(t, tx.ID)
	assert.False(t, tx.Timestamp.IsZero())
	assert.True(t, tx.TotalAmount.Equal(decimal.NewFromInt(60)))

	dup, err := s.AddTransaction(ctx, sale.Transaction)
	assert.ErrorIs(t, err, store.ErrDuplicateKey)
	assert.Equal(t, tx.ID, dup.ID)

	byKey, err := s.FindTransactionByKey(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, tx.ID, byKey.ID)
	require.Len(t, byKey.Items, 1)
	assert.Equal(t, "p1", byKey.Items[0].ProductID)
	assert.Equal(t, 3, byKey.Items[0].Qty)

	second, err := s.AddTransaction(ctx, saleOf("key-2", "Juan", models.NewItem("p2", "Enamel", decimal.NewFromInt(5), 1)).Transaction)
	require.NoError(t, err)

	list, err := s.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.False(t, list[0].Timestamp.Before(list[1].Timestamp), "newest first")

	require.NoError(t, s.DeleteTransaction(ctx, second.ID))
	_, err = s.GetTransaction(ctx, second.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.FindTransactionByKey(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testLogs(t *testing.T, s storeUnderTest) {
	ctx := context.Background()

	first, err := s.AppendLog(ctx, models.AddProductLog(paint("Thinner", "Solvent", 80, 10)))
	require.NoError(t, err)
	_, err = s.AppendLog(ctx, models.DeleteProductLog("Thinner"))
	require.NoError(t, err)

	logs, err := s.ListLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "Added Thinner | Solvent", first.Details)

	require.NoError(t, s.DeleteLog(ctx, first.ID))
	logs, err = s.ListLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActionDeleteProduct, logs[0].Action)

	_, err = s.AppendLog(ctx, models.LogEntry{Details: "no action"})
	assert.Error(t, err)
}

func testCommitSale(t *testing.T, s storeUnderTest) {
	ctx := context.Background()
	p, err := s.AddProduct(ctx, paint("Latex", "Latex", 20, 10))
	require.NoError(t, err)

	tx, err := s.CommitSale(ctx, saleOf("sale-1", "Jane", models.NewItem(p.ID, p.Name, p.Price, 3)))
	require.NoError(t, err)
	assert.True(t, tx.TotalAmount.Equal(decimal.NewFromInt(60)))

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)

	logs, err := s.ListLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	details := []string{logs[0].Details, logs[1].Details}
	assert.Contains(t, details, "Sold items to Jane | Total ₱60")
	assert.Contains(t, details, "Stock updated for Latex: -3 units")
}

func testCommitSaleShortStock(t *testing.T, s storeUnderTest) {
	ctx := context.Background()
	a, err := s.AddProduct(ctx, paint("A", "Latex", 100, 5))
	require.NoError(t, err)
	b, err := s.AddProduct(ctx, paint("B", "Latex", 50, 1))
	require.NoError(t, err)

	_, err = s.CommitSale(ctx, saleOf("sale-short", "Jane",
		models.NewItem(a.ID, a.Name, a.Price, 2),
		models.NewItem(b.ID, b.Name, b.Price, 2),
	))
	var short *store.InsufficientStockError
	require.True(t, errors.As(err, &short), "got %v", err)
	assert.Equal(t, b.ID, short.ProductID)

	// Nothing was written.
	gotA, _ := s.GetProduct(ctx, a.ID)
	assert.Equal(t, 5, gotA.Stock)
	txs, _ := s.ListTransactions(ctx)
	assert.Empty(t, txs)
	logs, _ := s.ListLogs(ctx)
	assert.Empty(t, logs)
}

func testCommitSaleReplay(t *testing.T, s storeUnderTest) {
	ctx := context.Background()
	p, err := s.AddProduct(ctx, paint("Latex", "Latex", 20, 10))
	require.NoError(t, err)
	sale := saleOf("same-key", "Jane", models.NewItem(p.ID, p.Name, p.Price, 2))

	first, err := s.CommitSale(ctx, sale)
	require.NoError(t, err)

	again, err := s.CommitSale(ctx, sale)
	assert.ErrorIs(t, err, store.ErrDuplicateKey)
	assert.Equal(t, first.ID, again.ID)

	got, _ := s.GetProduct(ctx, p.ID)
	assert.Equal(t, 8, got.Stock, "stock decremented once")
	txs, _ := s.ListTransactions(ctx)
	assert.Len(t, txs, 1)
}
