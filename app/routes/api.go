// Package routes declares every HTTP endpoint and the capability it needs.
package routes

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/paintpos/app/controllers"
	"github.com/shashiranjanraj/paintpos/config"
	"github.com/shashiranjanraj/paintpos/pkg/ctx"
	"github.com/shashiranjanraj/paintpos/pkg/metrics"
	"github.com/shashiranjanraj/paintpos/pkg/middleware"
	"github.com/shashiranjanraj/paintpos/pkg/rbac"
	"github.com/shashiranjanraj/paintpos/pkg/router"
	"github.com/shashiranjanraj/paintpos/pkg/session"
)

// Handlers is everything the route table mounts.
type Handlers struct {
	Sessions     session.Store
	Auth         *controllers.AuthController
	Products     *controllers.ProductController
	POS          *controllers.POSController
	Transactions *controllers.TransactionController
	Logs         *controllers.LogController
	Dashboard    *controllers.DashboardController
	GraphQL      http.Handler
	Stock        http.Handler
	StockEvents  http.Handler
	Health       http.HandlerFunc
}

func RegisterAPI(r *router.Router, h Handlers) {
	w := ctx.Wrap
	can := rbac.Require
	loginLimit := middleware.RateLimit("login", config.Int("LOGIN_RATE_LIMIT", 10), time.Minute)

	r.Get("/healthz", "health", h.Health)
	r.Get("/metrics", "metrics", metrics.Handler())

	api := r.Group("/api")
	api.Post("/login", "auth.login", w(h.Auth.Login), loginLimit)

	authed := api.Group("", middleware.Authenticate(h.Sessions))
	authed.Post("/logout", "auth.logout", w(h.Auth.Logout))
	authed.Get("/me", "auth.me", w(h.Auth.Me))

	products := authed.Group("/products")
	products.Get("", "products.index", w(h.Products.Index), can(rbac.CatalogRead))
	products.Get("/categories", "products.categories", w(h.Products.Categories), can(rbac.CatalogRead))
	products.Get("/{id}", "products.show", w(h.Products.Show), can(rbac.CatalogRead))
	products.Post("", "products.store", w(h.Products.Store), can(rbac.ProductsWrite))
	products.Put("/{id}", "products.update", w(h.Products.Update), can(rbac.ProductsWrite))
	products.Delete("/{id}", "products.destroy", w(h.Products.Destroy), can(rbac.ProductsDelete))

	register := authed.Group("/pos", can(rbac.POSCommit))
	register.Get("/cart", "pos.cart", w(h.POS.Cart))
	register.Put("/cart/customer", "pos.customer", w(h.POS.SetCustomer))
	register.Post("/cart/items", "pos.items.add", w(h.POS.AddItem))
	register.Put("/cart/items/{id}", "pos.items.quantity", w(h.POS.SetQuantity))
	register.Delete("/cart/items/{id}", "pos.items.remove", w(h.POS.RemoveItem))
	register.Delete("/cart", "pos.cart.clear", w(h.POS.Clear))
	register.Post("/checkout", "pos.checkout", w(h.POS.Checkout))

	txs := authed.Group("/transactions")
	txs.Get("", "transactions.index", w(h.Transactions.Index), can(rbac.TransactionsRead))
	txs.Get("/{id}", "transactions.show", w(h.Transactions.Show), can(rbac.TransactionsRead))
	txs.Get("/{id}/receipt", "transactions.receipt", w(h.Transactions.Receipt), can(rbac.TransactionsRead))
	txs.Delete("/{id}", "transactions.destroy", w(h.Transactions.Destroy), can(rbac.TransactionsDelete))

	logs := authed.Group("/logs")
	logs.Get("", "logs.index", w(h.Logs.Index), can(rbac.LogsRead))
	logs.Delete("/{id}", "logs.destroy", w(h.Logs.Destroy), can(rbac.LogsDelete))

	authed.Get("/dashboard", "dashboard.show", w(h.Dashboard.Show), can(rbac.ReportsRead))
	authed.Post("/graphql", "graphql", h.GraphQL.ServeHTTP, can(rbac.CatalogRead))
	authed.Get("/events/stock", "events.stock", h.StockEvents.ServeHTTP, can(rbac.CatalogRead))

	r.Handle("/ws/stock", "ws.stock", h.Stock, middleware.Authenticate(h.Sessions))
}
