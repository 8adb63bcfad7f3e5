// Package jobs holds the background jobs the application dispatches to
// pkg/queue.
package jobs

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/app/pos"
	"github.com/shashiranjanraj/paintpos/app/store"
	"github.com/shashiranjanraj/paintpos/pkg/logger"
	"github.com/shashiranjanraj/paintpos/pkg/queue"
)

const ReconcileSaleName = "reconcile_sale"

// ReconcileSale applies the writes a partial sequential commit left
// behind: the missing SALE log and every pending stock decrement with its
// STOCK_UPDATE log. Completed steps are removed from the job, so a retry
// resumes where the last attempt stopped.
type ReconcileSale struct {
	pos.Reconciliation

	store store.Store
}

func (*ReconcileSale) Name() string { return ReconcileSaleName }

func (j *ReconcileSale) Handle(ctx context.Context) error {
	if j.store == nil {
		return errors.New("jobs: reconcile_sale has no store")
	}
	log := logger.WithCtx(ctx).With("transaction_id", j.TransactionID)

	if j.NeedsSaleLog {
		sale := models.Transaction{CustomerName: j.CustomerName, TotalAmount: j.Total}
		if _, err := j.store.AppendLog(ctx, models.SaleLog(sale)); err != nil {
			return err
		}
		j.NeedsSaleLog = false
	}

	for len(j.Pending) > 0 {
		line := j.Pending[0]
		if !line.LogOnly {
			_, err := j.store.DecrementStock(ctx, line.ProductID, line.Qty)
			switch {
			case errors.Is(err, store.ErrInsufficientStock), errors.Is(err, store.ErrNotFound):
				// Retrying cannot fix this; leave it for a person.
				log.Error("jobs: reconcile skipped line", "product_id", line.ProductID, "qty", line.Qty, "error", err)
				j.Pending = j.Pending[1:]
				continue
			case err != nil:
				return err
			}
			j.Pending[0].LogOnly = true
		}
		if _, err := j.store.AppendLog(ctx, models.StockUpdateLog(line.Name, line.Qty)); err != nil {
			return err
		}
		j.Pending = j.Pending[1:]
	}

	log.Info("jobs: sale reconciled")
	return nil
}

// Register makes ReconcileSale known to the queue workers.
func Register(st store.Store) {
	queue.Register(ReconcileSaleName, func() queue.Job { return &ReconcileSale{store: st} })
}

// SaleReconciler hands reconciliations to the queue.
type SaleReconciler struct{}

func (SaleReconciler) Enqueue(ctx context.Context, r pos.Reconciliation) error {
	return queue.Dispatch(ctx, &ReconcileSale{Reconciliation: r})
}

var _ pos.Reconciler = SaleReconciler{}

// NewReconcileSale builds the job for r against st.
func NewReconcileSale(st store.Store, r pos.Reconciliation) *ReconcileSale {
	return &ReconcileSale{Reconciliation: r, store: st}
}
