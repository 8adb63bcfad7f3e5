package graph_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/paintpos/app/graph"
	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/app/services"
	"github.com/shashiranjanraj/paintpos/app/store"
	pkggraphql "github.com/shashiranjanraj/paintpos/pkg/graphql"
	"github.com/shashiranjanraj/paintpos/pkg/rbac"
	"github.com/shashiranjanraj/paintpos/pkg/session"
)

func resolver(t *testing.T) *graph.Resolver {
	t.Helper()
	st := store.NewMemory()
	ctx := context.Background()
	for _, p := range []models.Product{
		{Name: "Latex White", Category: "Latex", Price: decimal.RequireFromString("650.50"), Stock: 20},
		{Name: "Enamel Red", Category: "Enamel", Price: decimal.NewFromInt(285), Stock: 3},
	} {
		_, err := st.AddProduct(ctx, p)
		require.NoError(t, err)
	}
	item := models.NewItem("p1", "Latex White", decimal.RequireFromString("650.50"), 2)
	_, err := st.AddTransaction(ctx, models.Transaction{
		CustomerName: "Juan",
		Items:        []models.TransactionItem{item},
		TotalAmount:  item.Total,
	})
	require.NoError(t, err)

	catalog := services.NewCatalogService(st)
	return &graph.Resolver{
		Catalog:      catalog,
		Transactions: services.NewTransactionService(st),
		Logs:         services.NewLogService(st),
		Dashboard:    services.NewDashboardService(catalog, st),
	}
}

func as(role string) context.Context {
	return session.WithSession(context.Background(), &session.Session{ID: "s1", Role: role})
}

func run(t *testing.T, ctx context.Context, query string, out interface{}) []string {
	t.Helper()
	schema, err := resolver(t).Schema()
	require.NoError(t, err)
	res := pkggraphql.Do(ctx, schema, pkggraphql.Request{Query: query})
	var errs []string
	for _, e := range res.Errors {
		errs = append(errs, e.Message)
	}
	if out != nil && res.Data != nil {
		b, err := json.Marshal(res.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(b, out))
	}
	return errs
}

func TestProductsQueryFilters(t *testing.T) {
	var data struct {
		Products []struct {
			Name  string  `json:"name"`
			Price float64 `json:"price"`
			Stock int     `json:"stock"`
		} `json:"products"`
		Categories []string `json:"categories"`
	}
	errs := run(t, as(rbac.RoleStaff), `{ products(search: "latex") { name price stock } categories }`, &data)
	require.Empty(t, errs)
	require.Len(t, data.Products, 1)
	assert.Equal(t, "Latex White", data.Products[0].Name)
	assert.InDelta(t, 650.50, data.Products[0].Price, 0.001)
	assert.ElementsMatch(t, []string{"All", "Latex", "Enamel"}, data.Categories)
	assert.Equal(t, "All", data.Categories[0])
}

func TestTransactionsAndDashboard(t *testing.T) {
	var data struct {
		Transactions []struct {
			CustomerName string  `json:"customerName"`
			TotalAmount  float64 `json:"totalAmount"`
			Items        []struct {
				Qty int `json:"qty"`
			} `json:"items"`
		} `json:"transactions"`
		Dashboard struct {
			TotalProducts int `json:"totalProducts"`
			LowStockCount int `json:"lowStockCount"`
			Revenue       struct {
				Total float64 `json:"total"`
			} `json:"revenue"`
		} `json:"dashboard"`
	}
	errs := run(t, as(rbac.RoleAdmin), `{
		transactions(limit: 5) { customerName totalAmount items { qty } }
		dashboard { totalProducts lowStockCount revenue { total } }
	}`, &data)
	require.Empty(t, errs)
	require.Len(t, data.Transactions, 1)
	assert.Equal(t, "Juan", data.Transactions[0].CustomerName)
	assert.InDelta(t, 1301.0, data.Transactions[0].TotalAmount, 0.001)
	assert.Equal(t, 2, data.Transactions[0].Items[0].Qty)
	assert.Equal(t, 2, data.Dashboard.TotalProducts)
	assert.Equal(t, 1, data.Dashboard.LowStockCount)
	assert.InDelta(t, 1301.0, data.Dashboard.Revenue.Total, 0.001)
}

func TestQueriesRequireSession(t *testing.T) {
	errs := run(t, context.Background(), `{ products { name } }`, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "not authenticated")
}
