package services

import (
	"context"
	"strings"
	"time"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/app/store"
	"github.com/shashiranjanraj/paintpos/config"
	"github.com/shashiranjanraj/paintpos/pkg/cache"
	"github.com/shashiranjanraj/paintpos/pkg/collection"
	"github.com/shashiranjanraj/paintpos/pkg/logger"
	"github.com/shashiranjanraj/paintpos/pkg/metrics"
)

const (
	catalogCacheKey = "paintpos:catalog:products"
	// AllCategories matches every product in Filter.
	AllCategories = "All"
)

// CatalogService reads the product list through a Redis cache.
type CatalogService struct {
	store store.Store
	ttl   time.Duration
}

func NewCatalogService(st store.Store) *CatalogService {
	return &CatalogService{store: st, ttl: config.CatalogCacheTTL()}
}

// List returns every product sorted by name.
func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	var cached []models.Product
	if cache.Get(ctx, catalogCacheKey, &cached) {
		metrics.CacheHits.WithLabelValues("redis").Inc()
		return cached, nil
	}
	if cache.Available() {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
	}

	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if err := cache.Set(ctx, catalogCacheKey, products, s.ttl); err != nil {
		logger.WithCtx(ctx).Warn("catalog: cache write failed", "error", err)
	}
	return products, nil
}

// Invalidate drops the cached list.
func (s *CatalogService) Invalidate(ctx context.Context) {
	if err := cache.Del(ctx, catalogCacheKey); err != nil {
		logger.WithCtx(ctx).Warn("catalog: cache invalidate failed", "error", err)
	}
}

// Refresh drops the cached list and reads it again from the store.
func (s *CatalogService) Refresh(ctx context.Context) ([]models.Product, error) {
	s.Invalidate(ctx)
	return s.List(ctx)
}

// Filter keeps products whose name or category contains search
// (case-insensitive) and whose category equals category. An empty
// category or "All" matches everything.
func Filter(products []models.Product, search, category string) []models.Product {
	needle := strings.ToLower(strings.TrimSpace(search))
	allCategories := category == "" || category == AllCategories

	out := collection.Filter(products, func(p models.Product) bool {
		matchesSearch := needle == "" ||
			strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Category), needle)
		return matchesSearch && (allCategories || p.Category == category)
	})
	if out == nil {
		out = []models.Product{}
	}
	return out
}

// Categories is "All" followed by each distinct category in first-seen
// order.
func Categories(products []models.Product) []string {
	names := collection.Map(products, func(p models.Product) string { return p.Category })
	names = collection.Filter(names, func(c string) bool { return c != "" })
	return append([]string{AllCategories}, collection.Unique(names)...)
}
