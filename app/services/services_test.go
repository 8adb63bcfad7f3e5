package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/app/store"
	"github.com/shashiranjanraj/paintpos/pkg/rbac"
	"github.com/shashiranjanraj/paintpos/pkg/session"
)

func asAdmin() context.Context {
	return session.WithSession(context.Background(), &session.Session{ID: "s-admin", Email: "admin@inventory.com", Role: rbac.RoleAdmin})
}

func asStaff() context.Context {
	return session.WithSession(context.Background(), &session.Session{ID: "s-staff", Email: "staff@inventory.com", Role: rbac.RoleStaff})
}

func paint(name, category string, price int64, stock int) models.Product {
	return models.Product{Name: name, Category: category, Price: decimal.NewFromInt(price), Stock: stock}
}

func seeded(t *testing.T, ps ...models.Product) (*store.Memory, []models.Product) {
	t.Helper()
	s := store.NewMemory()
	out := make([]models.Product, 0, len(ps))
	for _, p := range ps {
		added, err := s.AddProduct(context.Background(), p)
		require.NoError(t, err)
		out = append(out, added)
	}
	return s, out
}
