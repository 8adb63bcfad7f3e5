package kernel_test

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/config"
	"github.com/shashiranjanraj/paintpos/internal/kernel"
	"github.com/shashiranjanraj/paintpos/pkg/app"
	"github.com/shashiranjanraj/paintpos/pkg/testkit"
)

type checkout struct {
	Transaction models.Transaction `json:"transaction"`
	Replayed    bool               `json:"replayed"`
	Cart        struct {
		Items []struct{} `json:"items"`
	} `json:"cart"`
}

func offline(t *testing.T) http.Handler {
	t.Helper()
	k, err := kernel.Offline()
	require.NoError(t, err)
	t.Cleanup(func() { _ = k.Close() })
	return app.BuildHandler(k)
}

func TestSaleFlow(t *testing.T) {
	h := offline(t)
	admin := testkit.New(t, h).Login("admin@inventory.com", "admin123")

	var p models.Product
	admin.Post("/api/products", map[string]any{
		"name": "Boysen Latex White", "category": "Latex", "price": "450", "stock": 3,
	}).AssertStatus(http.StatusCreated).Decode(&p)
	require.NotEmpty(t, p.ID)

	admin.Post("/api/pos/cart/items", map[string]string{"productId": p.ID}).AssertStatus(http.StatusOK)
	admin.Put("/api/pos/cart/items/"+p.ID, map[string]int{"qty": 2}).AssertStatus(http.StatusOK)
	admin.Put("/api/pos/cart/customer", map[string]string{"customerName": "Juan Dela Cruz"}).AssertStatus(http.StatusOK)

	res := admin.Post("/api/pos/checkout", nil).AssertStatus(http.StatusCreated)
	assert.Equal(t, "Transaction saved successfully!", res.Message())
	var out checkout
	res.Decode(&out)
	assert.False(t, out.Replayed)
	assert.Empty(t, out.Cart.Items)
	assert.Equal(t, "Juan Dela Cruz", out.Transaction.CustomerName)
	assert.Equal(t, "admin@inventory.com", out.Transaction.Cashier)
	assert.True(t, decimal.NewFromInt(900).Equal(out.Transaction.TotalAmount))

	var after models.Product
	admin.Get("/api/products/" + p.ID).AssertStatus(http.StatusOK).Decode(&after)
	assert.Equal(t, 1, after.Stock)

	pdf := admin.Get("/api/transactions/" + out.Transaction.ID + "/receipt").AssertStatus(http.StatusOK)
	assert.Equal(t, "application/pdf", pdf.Header().Get("Content-Type"))
	assert.Contains(t, pdf.Header().Get("Content-Disposition"), "Receipt_"+out.Transaction.ID+".pdf")
	assert.True(t, bytes.HasPrefix(pdf.Body.Bytes(), []byte("%PDF-")))

	var logs []models.LogEntry
	admin.Get("/api/logs").AssertStatus(http.StatusOK).Decode(&logs)
	assert.NotEmpty(t, logs)
}

func TestCheckoutRejectsMoreThanStock(t *testing.T) {
	admin := testkit.New(t, offline(t)).Login("admin@inventory.com", "admin123")

	var p models.Product
	admin.Post("/api/products", map[string]any{"name": "Thinner", "price": "120", "stock": 1}).
		AssertStatus(http.StatusCreated).Decode(&p)

	admin.Post("/api/pos/cart/items", map[string]string{"productId": p.ID}).AssertStatus(http.StatusOK)
	res := admin.Put("/api/pos/cart/items/"+p.ID, map[string]int{"qty": 5}).AssertStatus(http.StatusOK)
	var cart struct {
		Items []struct {
			Qty int `json:"qty"`
		} `json:"items"`
	}
	res.Decode(&cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Qty, "quantity is capped at stock")

	res = admin.Post("/api/pos/checkout", map[string]string{"customerName": ""}).AssertStatus(http.StatusUnprocessableEntity)
	assert.NotEmpty(t, res.Errors())
}

func TestCheckoutIdempotencyKeyHeader(t *testing.T) {
	admin := testkit.New(t, offline(t)).Login("admin@inventory.com", "admin123")

	var latex, primer models.Product
	admin.Post("/api/products", map[string]any{"name": "Latex", "price": "200", "stock": 5}).
		AssertStatus(http.StatusCreated).Decode(&latex)
	admin.Post("/api/products", map[string]any{"name": "Primer", "price": "150", "stock": 5}).
		AssertStatus(http.StatusCreated).Decode(&primer)

	admin.SetHeader("Idempotency-Key", "till-1.0001")
	admin.Post("/api/pos/cart/items", map[string]string{"productId": latex.ID}).AssertStatus(http.StatusOK)
	var first checkout
	admin.Post("/api/pos/checkout", map[string]string{"customerName": "Ana"}).
		AssertStatus(http.StatusCreated).Decode(&first)

	// Same key, different cart.
	admin.Post("/api/pos/cart/items", map[string]string{"productId": latex.ID}).AssertStatus(http.StatusOK)
	admin.Post("/api/pos/cart/items", map[string]string{"productId": primer.ID}).AssertStatus(http.StatusOK)
	res := admin.Post("/api/pos/checkout", map[string]string{"customerName": "Ana"}).AssertStatus(http.StatusConflict)
	var clash map[string]string
	res.Decode(&clash)
	assert.Equal(t, first.Transaction.ID, clash["transactionId"])

	var after models.Product
	admin.Get("/api/products/" + primer.ID).AssertStatus(http.StatusOK).Decode(&after)
	assert.Equal(t, 5, after.Stock)

	admin.SetHeader("Idempotency-Key", "till/1")
	res = admin.Post("/api/pos/checkout", map[string]string{"customerName": "Ana"}).
		AssertStatus(http.StatusUnprocessableEntity)
	assert.NotEmpty(t, res.Errors()["idempotencyKey"])
}

func TestOutOfStockProductCannotBeAdded(t *testing.T) {
	admin := testkit.New(t, offline(t)).Login("admin@inventory.com", "admin123")

	var p models.Product
	admin.Post("/api/products", map[string]any{"name": "Roller 9in", "price": "95", "stock": 0}).
		AssertStatus(http.StatusCreated).Decode(&p)

	res := admin.Post("/api/pos/cart/items", map[string]string{"productId": p.ID}).
		AssertStatus(http.StatusUnprocessableEntity)
	assert.Equal(t, "Roller 9in is out of stock", res.Errors()["productId"])
}

func TestRoleChecks(t *testing.T) {
	h := offline(t)

	testkit.New(t, h).Get("/api/products").AssertStatus(http.StatusUnauthorized)
	testkit.New(t, h).WithToken("not-a-jwt").Get("/api/products").AssertStatus(http.StatusUnauthorized)

	admin := testkit.New(t, h).Login("admin@inventory.com", "admin123")
	staff := testkit.New(t, h).Login("staff@inventory.com", "staff123")

	var p models.Product
	staff.Post("/api/products", map[string]any{"name": "Primer Red", "price": "300", "stock": 4}).
		AssertStatus(http.StatusCreated).Decode(&p)

	staff.Delete("/api/products/" + p.ID).AssertStatus(http.StatusForbidden)
	staff.Get("/api/dashboard").AssertStatus(http.StatusOK)
	admin.Delete("/api/products/" + p.ID).AssertStatus(http.StatusOK)
	admin.Get("/api/products/" + p.ID).AssertStatus(http.StatusNotFound)

	var me struct {
		Role         string   `json:"role"`
		Capabilities []string `json:"capabilities"`
	}
	staff.Get("/api/me").AssertStatus(http.StatusOK).Decode(&me)
	assert.Equal(t, "Staff", me.Role)
	assert.NotContains(t, me.Capabilities, "products.delete")
}

func TestLoginAndLogout(t *testing.T) {
	h := offline(t)

	res := testkit.New(t, h).Post("/api/login", map[string]string{"email": "admin@inventory.com", "password": "wrong"})
	res.AssertStatus(http.StatusUnauthorized)
	assert.Equal(t, "Invalid username or password", res.Message())

	testkit.New(t, h).Post("/api/login", map[string]string{"email": "nope", "password": "x"}).
		AssertStatus(http.StatusUnprocessableEntity)

	c := testkit.New(t, h).Login("ADMIN@inventory.com", "admin123")
	c.Post("/api/logout", nil).AssertStatus(http.StatusOK)
	c.Get("/api/me").AssertStatus(http.StatusUnauthorized)
}

func TestHealthAndRouteTable(t *testing.T) {
	h := offline(t)
	res := testkit.New(t, h).Get("/healthz").AssertStatus(http.StatusOK)
	var body map[string]string
	res.Decode(&body)
	assert.Equal(t, "ok", body["status"])

	k, err := kernel.Offline()
	require.NoError(t, err)
	defer k.Close()
	var buf bytes.Buffer
	require.NoError(t, app.PrintRoutes(&buf, app.NewRouter(k).Routes()))
	for _, name := range []string{"pos.checkout", "transactions.receipt", "graphql", "ws.stock", "events.stock"} {
		assert.Contains(t, buf.String(), name)
	}
}

func TestSweepDropsRegistersOfExpiredSessions(t *testing.T) {
	k, err := kernel.Offline()
	require.NoError(t, err)
	defer k.Close()
	now := time.Now()
	k.Registers.SetClock(func() time.Time { return now })

	staff := testkit.New(t, app.BuildHandler(k)).Login("staff@inventory.com", "staff123")
	staff.Get("/api/pos/cart").AssertStatus(http.StatusOK)
	require.Equal(t, 1, k.Registers.Len())

	require.NoError(t, k.SweepRegisters(context.Background()))
	assert.Equal(t, 1, k.Registers.Len(), "live session keeps its cart")

	now = now.Add(config.SessionTTL() + time.Minute)
	require.NoError(t, k.SweepRegisters(context.Background()))
	assert.Equal(t, 0, k.Registers.Len())
}
