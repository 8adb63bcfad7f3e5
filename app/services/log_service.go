package services

import (
	"context"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/app/store"
	"github.com/shashiranjanraj/paintpos/pkg/rbac"
)

type LogService struct {
	store store.Store
}

func NewLogService(st store.Store) *LogService { return &LogService{store: st} }

// List returns the audit trail newest first.
func (s *LogService) List(ctx context.Context) ([]models.LogEntry, error) {
	return s.store.ListLogs(ctx)
}

func (s *LogService) Delete(ctx context.Context, id string) error {
	if err := rbac.Authorize(ctx, rbac.LogsDelete); err != nil {
		return err
	}
	return s.store.DeleteLog(ctx, id)
}
