package services

import (
	"context"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/app/store"
	"github.com/shashiranjanraj/paintpos/pkg/logger"
	"github.com/shashiranjanraj/paintpos/pkg/rbac"
)

type TransactionService struct {
	store store.Store
}

func NewTransactionService(st store.Store) *TransactionService {
	return &TransactionService{store: st}
}

// List returns transactions newest first.
func (s *TransactionService) List(ctx context.Context) ([]models.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

func (s *TransactionService) Get(ctx context.Context, id string) (models.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// Delete removes the record only; stock is not restored.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := rbac.Authorize(ctx, rbac.TransactionsDelete); err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("transactions: deleted", "transaction_id", id)
	return nil
}
