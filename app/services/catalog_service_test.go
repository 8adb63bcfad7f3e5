package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/app/services"
)

func catalogFixture() []models.Product {
	return []models.Product{
		paint("Boysen Latex White", "Latex", 450, 12),
		paint("Enamel Red", "Enamel", 300, 3),
		paint("Latex Primer", "Primer", 280, 0),
		paint("Quick Dry Enamel", "Enamel", 350, 8),
	}
}

func names(ps []models.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestFilterSearchMatchesNameOrCategory(t *testing.T) {
	got := services.Filter(catalogFixture(), "LATEX", "")
	assert.Equal(t, []string{"Boysen Latex White", "Latex Primer"}, names(got))

	got = services.Filter(catalogFixture(), "enamel", "All")
	assert.Equal(t, []string{"Enamel Red", "Quick Dry Enamel"}, names(got))
}

func TestFilterCategory(t *testing.T) {
	got := services.Filter(catalogFixture(), "", "Enamel")
	assert.Len(t, got, 2)

	got = services.Filter(catalogFixture(), "red", "Enamel")
	assert.Equal(t, []string{"Enamel Red"}, names(got))

	got = services.Filter(catalogFixture(), "zzz", "All")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"All", "Latex", "Enamel", "Primer"}, services.Categories(catalogFixture()))
	assert.Equal(t, []string{"All"}, services.Categories(nil))
}

func TestCatalogListWithoutRedis(t *testing.T) {
	s, _ := seeded(t, paint("Zinc Chromate", "Primer", 200, 2), paint("Acrylic", "Acrylic", 100, 4))
	c := services.NewCatalogService(s)

	list, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Acrylic", "Zinc Chromate"}, names(list))

	// Without a cache every read goes to the store.
	_, err = s.AddProduct(context.Background(), paint("Thinner", "Solvent", 80, 9))
	require.NoError(t, err)
	list, err = c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
