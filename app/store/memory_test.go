package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/app/store"
)

func TestMemoryStore(t *testing.T) {
	runContract(t, func(*testing.T) storeUnderTest { return store.NewMemory() })
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	tx, err := s.AddTransaction(ctx, models.Transaction{
		CustomerName: "Jane",
		Items:        []models.TransactionItem{models.NewItem("p1", "Latex", decimal.NewFromInt(20), 1)},
		TotalAmount:  decimal.NewFromInt(20),
	})
	require.NoError(t, err)
	assert.Equal(t, tx.ID, tx.IdempotencyKey, "missing key defaults to the ID")

	tx.Items[0].Qty = 99
	got, err := s.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Items[0].Qty)
}

func TestMemoryClock(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	fixed := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return fixed })

	e, err := s.AppendLog(ctx, models.DeleteProductLog("Thinner"))
	require.NoError(t, err)
	assert.Equal(t, fixed, e.Timestamp)
}

func TestMemoryRejectsMismatchedTotal(t *testing.T) {
	_, err := store.NewMemory().AddTransaction(context.Background(), models.Transaction{
		CustomerName: "Jane",
		Items:        []models.TransactionItem{models.NewItem("p1", "Latex", decimal.NewFromInt(20), 2)},
		TotalAmount:  decimal.NewFromInt(20),
	})
	assert.ErrorIs(t, err, models.ErrTotalMismatch)
}
