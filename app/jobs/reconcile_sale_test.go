package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/paintpos/app/jobs"
	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/app/pos"
	"github.com/shashiranjanraj/paintpos/app/store"
	"github.com/shashiranjanraj/paintpos/pkg/queue"
)

// flakyLogs fails the first failLogs AppendLog calls.
type flakyLogs struct {
	*store.Memory
	failLogs int
}

func (f *flakyLogs) AppendLog(ctx context.Context, e models.LogEntry) (models.LogEntry, error) {
	if f.failLogs > 0 {
		f.failLogs--
		return models.LogEntry{}, errors.New("log write refused")
	}
	return f.Memory.AppendLog(ctx, e)
}

func seed(t *testing.T, st store.Store, name string, stock int) models.Product {
	t.Helper()
	p, err := st.AddProduct(context.Background(), models.Product{
		Name: name, Category: "Latex", Price: decimal.NewFromInt(100), Stock: stock,
	})
	require.NoError(t, err)
	return p
}

func actions(t *testing.T, st store.Store) []models.LogAction {
	t.Helper()
	logs, err := st.ListLogs(context.Background())
	require.NoError(t, err)
	out := make([]models.LogAction, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.Action)
	}
	return out
}

func TestReconcileSaleAppliesPendingWrites(t *testing.T) {
	st := store.NewMemory()
	a := seed(t, st, "Latex White", 10)
	b := seed(t, st, "Enamel Red", 5)

	job := jobs.NewReconcileSale(st, pos.Reconciliation{
		TransactionID: "tx-1",
		CustomerName:  "Juan",
		Total:         decimal.NewFromInt(500),
		NeedsSaleLog:  true,
		Pending: []pos.PendingLine{
			{ProductID: a.ID, Name: a.Name, Qty: 3, LogOnly: true},
			{ProductID: b.ID, Name: b.Name, Qty: 2},
		},
	})
	require.NoError(t, job.Handle(context.Background()))

	gotA, _ := st.GetProduct(context.Background(), a.ID)
	gotB, _ := st.GetProduct(context.Background(), b.ID)
	assert.Equal(t, 10, gotA.Stock, "log-only line must not decrement")
	assert.Equal(t, 3, gotB.Stock)
	assert.ElementsMatch(t,
		[]models.LogAction{models.ActionSale, models.ActionStockUpdate, models.ActionStockUpdate},
		actions(t, st))
	assert.Empty(t, job.Pending)
}

func TestReconcileSaleResumesAfterFailure(t *testing.T) {
	mem := store.NewMemory()
	st := &flakyLogs{Memory: mem, }
	p := seed(t, st, "Latex White", 10)

	job := jobs.NewReconcileSale(st, pos.Reconciliation{
		TransactionID: "tx-2",
		Pending:       []pos.PendingLine{{ProductID: p.ID, Name: p.Name, Qty: 4}},
	})

	st.failLogs = 1
	require.Error(t, job.Handle(context.Background()))
	require.NoError(t, job.Handle(context.Background()))

	got, _ := st.GetProduct(context.Background(), p.ID)
	assert.Equal(t, 6, got.Stock, "retry must not decrement twice")
	assert.Equal(t, []models.LogAction{models.ActionStockUpdate}, actions(t, st))
}

func TestReconcileSaleSkipsShortStock(t *testing.T) {
	st := store.NewMemory()
	p := seed(t, st, "Latex White", 1)

	job := jobs.NewReconcileSale(st, pos.Reconciliation{
		Pending: []pos.PendingLine{{ProductID: p.ID, Name: p.Name, Qty: 4}},
	})
	require.NoError(t, job.Handle(context.Background()))

	got, _ := st.GetProduct(context.Background(), p.ID)
	assert.Equal(t, 1, got.Stock)
	assert.Empty(t, actions(t, st))
}

func TestSaleReconcilerRunsThroughQueue(t *testing.T) {
	st := store.NewMemory()
	p := seed(t, st, "Latex White", 10)

	jobs.Register(st)
	queue.SetDriver(queue.NewMemoryDriver())
	ctx, cancel := context.WithCancel(context.Background())
	wg := queue.StartWorkers(ctx, 1)
	t.Cleanup(func() { cancel(); wg.Wait() })

	err := jobs.SaleReconciler{}.Enqueue(ctx, pos.Reconciliation{
		TransactionID: "tx-3",
		Pending:       []pos.PendingLine{{ProductID: p.ID, Name: p.Name, Qty: 2}},
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		got, _ := st.GetProduct(context.Background(), p.ID)
		return got.Stock == 8
	}, 2*time.Second, 10*time.Millisecond)
}
