package services

import (
	"context"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/app/store"
	"github.com/shashiranjanraj/paintpos/pkg/event"
	"github.com/shashiranjanraj/paintpos/pkg/logger"
	"github.com/shashiranjanraj/paintpos/pkg/rbac"
)

// EventProductChanged is fired with a ProductChange after every mutation.
const EventProductChanged = "product.changed"

type ProductChange struct {
	Action  models.LogAction `json:"action"`
	Product models.Product   `json:"product"`
}

type ProductService struct {
	store   store.Store
	catalog *CatalogService
}

func NewProductService(st store.Store, catalog *CatalogService) *ProductService {
	return &ProductService{store: st, catalog: catalog}
}

func (s *ProductService) Get(ctx context.Context, id string) (models.Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, p models.Product) (models.Product, error) {
	if err := rbac.Authorize(ctx, rbac.ProductsWrite); err != nil {
		return models.Product{}, err
	}
	p.ID = ""
	created, err := s.store.AddProduct(ctx, p)
	if err != nil {
		return models.Product{}, err
	}
	s.changed(ctx, models.AddProductLog(created), created)
	return created, nil
}

func (s *ProductService) Update(ctx context.Context, id string, patch models.ProductPatch) (models.Product, error) {
	if err := rbac.Authorize(ctx, rbac.ProductsWrite); err != nil {
		return models.Product{}, err
	}
	before, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	updated, err := s.store.UpdateProduct(ctx, id, patch)
	if err != nil {
		return models.Product{}, err
	}
	s.changed(ctx, models.UpdateProductLog(before.Name), updated)
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := rbac.Authorize(ctx, rbac.ProductsDelete); err != nil {
		return err
	}
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, models.DeleteProductLog(p.Name), p)
	return nil
}

// changed writes the audit entry, drops the catalog cache and fires
// EventProductChanged. The mutation has already happened, so a failed log
// write is reported but not returned.
func (s *ProductService) changed(ctx context.Context, entry models.LogEntry, p models.Product) {
	if _, err := s.store.AppendLog(ctx, entry); err != nil {
		logger.WithCtx(ctx).Error("products: audit log write failed", "action", string(entry.Action), "product_id", p.ID, "error", err)
	}
	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}
	event.Fire(ctx, EventProductChanged, ProductChange{Action: entry.Action, Product: p})
}
