// Package graph is the read-only GraphQL surface over the catalog,
// transactions, logs and the dashboard.
package graph

import (
	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/app/services"
	pkggraphql "github.com/shashiranjanraj/paintpos/pkg/graphql"
	"github.com/shashiranjanraj/paintpos/pkg/rbac"
)

// Resolver holds the services the query fields read from.
type Resolver struct {
	Catalog      *services.CatalogService
	Transactions *services.TransactionService
	Logs         *services.LogService
	Dashboard    *services.DashboardService
}

// field resolves from a Source of type T.
func field[T any](fn func(T) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		src, ok := p.Source.(T)
		if !ok {
			return nil, nil
		}
		return fn(src), nil
	}
}

func money(d decimal.Decimal) interface{} { return d.InexactFloat64() }

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":        {Type: graphql.NewNonNull(graphql.ID), Resolve: field(func(p models.Product) interface{} { return p.ID })},
		"name":      {Type: graphql.String, Resolve: field(func(p models.Product) interface{} { return p.Name })},
		"category":  {Type: graphql.String, Resolve: field(func(p models.Product) interface{} { return p.Category })},
		"price":     {Type: graphql.Float, Resolve: field(func(p models.Product) interface{} { return money(p.Price) })},
		"stock":     {Type: graphql.Int, Resolve: field(func(p models.Product) interface{} { return p.Stock })},
		"detail":    {Type: graphql.String, Resolve: field(func(p models.Product) interface{} { return p.Detail })},
		"createdAt": {Type: graphql.DateTime, Resolve: field(func(p models.Product) interface{} { return p.CreatedAt })},
	},
})

var itemType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TransactionItem",
	Fields: graphql.Fields{
		"productId": {Type: graphql.ID, Resolve: field(func(i models.TransactionItem) interface{} { return i.ProductID })},
		"name":      {Type: graphql.String, Resolve: field(func(i models.TransactionItem) interface{} { return i.Name })},
		"price":     {Type: graphql.Float, Resolve: field(func(i models.TransactionItem) interface{} { return money(i.Price) })},
		"qty":       {Type: graphql.Int, Resolve: field(func(i models.TransactionItem) interface{} { return i.Qty })},
		"total":     {Type: graphql.Float, Resolve: field(func(i models.TransactionItem) interface{} { return money(i.Total) })},
	},
})

var transactionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Transaction",
	Fields: graphql.Fields{
		"id":           {Type: graphql.NewNonNull(graphql.ID), Resolve: field(func(t models.Transaction) interface{} { return t.ID })},
		"customerName": {Type: graphql.String, Resolve: field(func(t models.Transaction) interface{} { return t.CustomerName })},
		"cashier":      {Type: graphql.String, Resolve: field(func(t models.Transaction) interface{} { return t.Cashier })},
		"items":        {Type: graphql.NewList(itemType), Resolve: field(func(t models.Transaction) interface{} { return t.Items })},
		"totalAmount":  {Type: graphql.Float, Resolve: field(func(t models.Transaction) interface{} { return money(t.TotalAmount) })},
		"timestamp": {Type: graphql.DateTime, Resolve: field(func(t models.Transaction) interface{} {
			if !t.HasTimestamp() {
				return nil
			}
			return t.Timestamp
		})},
	},
})

var logType = graphql.NewObject(graphql.ObjectConfig{
	Name: "LogEntry",
	Fields: graphql.Fields{
		"id":        {Type: graphql.NewNonNull(graphql.ID), Resolve: field(func(l models.LogEntry) interface{} { return l.ID })},
		"action":    {Type: graphql.String, Resolve: field(func(l models.LogEntry) interface{} { return string(l.Action) })},
		"details":   {Type: graphql.String, Resolve: field(func(l models.LogEntry) interface{} { return l.Details })},
		"timestamp": {Type: graphql.DateTime, Resolve: field(func(l models.LogEntry) interface{} { return l.Timestamp })},
	},
})

var revenueType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Revenue",
	Fields: graphql.Fields{
		"daily":   {Type: graphql.Float, Resolve: field(func(r services.Revenue) interface{} { return money(r.Daily) })},
		"weekly":  {Type: graphql.Float, Resolve: field(func(r services.Revenue) interface{} { return money(r.Weekly) })},
		"monthly": {Type: graphql.Float, Resolve: field(func(r services.Revenue) interface{} { return money(r.Monthly) })},
		"total":   {Type: graphql.Float, Resolve: field(func(r services.Revenue) interface{} { return money(r.Total) })},
	},
})

var dashboardType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Dashboard",
	Fields: graphql.Fields{
		"totalProducts":    {Type: graphql.Int, Resolve: field(func(s services.Summary) interface{} { return s.TotalProducts })},
		"lowStockCount":    {Type: graphql.Int, Resolve: field(func(s services.Summary) interface{} { return s.LowStockCount })},
		"transactionCount": {Type: graphql.Int, Resolve: field(func(s services.Summary) interface{} { return s.TransactionCount })},
		"revenue":          {Type: revenueType, Resolve: field(func(s services.Summary) interface{} { return s.Revenue })},
		"lowStock":         {Type: graphql.NewList(productType), Resolve: field(func(s services.Summary) interface{} { return s.LowStock })},
		"topStock":         {Type: graphql.NewList(productType), Resolve: field(func(s services.Summary) interface{} { return s.TopStock })},
	},
})

// guard authorizes c before running fn.
func guard(c rbac.Capability, fn graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if err := rbac.Authorize(p.Context, c); err != nil {
			return nil, err
		}
		return fn(p)
	}
}

func limit[T any](items []T, p graphql.ResolveParams) []T {
	if n, ok := p.Args["limit"].(int); ok && n >= 0 && n < len(items) {
		return items[:n]
	}
	return items
}

func str(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

// Query builds the root query object.
func (r *Resolver) Query() *graphql.Object {
	limitArg := graphql.FieldConfigArgument{"limit": {Type: graphql.Int}}
	idArg := graphql.FieldConfigArgument{"id": {Type: graphql.NewNonNull(graphql.ID)}}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": {
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"search":   {Type: graphql.String},
					"category": {Type: graphql.String},
				},
				Resolve: guard(rbac.CatalogRead, func(p graphql.ResolveParams) (interface{}, error) {
					products, err := r.Catalog.List(p.Context)
					if err != nil {
						return nil, err
					}
					return services.Filter(products, str(p, "search"), str(p, "category")), nil
				}),
			},
			"product": {
				Type: productType,
				Args: idArg,
				Resolve: guard(rbac.CatalogRead, func(p graphql.ResolveParams) (interface{}, error) {
					products, err := r.Catalog.List(p.Context)
					if err != nil {
						return nil, err
					}
					for _, prod := range products {
						if prod.ID == str(p, "id") {
							return prod, nil
						}
					}
					return nil, nil
				}),
			},
			"categories": {
				Type: graphql.NewList(graphql.String),
				Resolve: guard(rbac.CatalogRead, func(p graphql.ResolveParams) (interface{}, error) {
					products, err := r.Catalog.List(p.Context)
					if err != nil {
						return nil, err
					}
					return services.Categories(products), nil
				}),
			},
			"transactions": {
				Type: graphql.NewList(transactionType),
				Args: limitArg,
				Resolve: guard(rbac.TransactionsRead, func(p graphql.ResolveParams) (interface{}, error) {
					txs, err := r.Transactions.List(p.Context)
					if err != nil {
						return nil, err
					}
					return limit(txs, p), nil
				}),
			},
			"transaction": {
				Type: transactionType,
				Args: idArg,
				Resolve: guard(rbac.TransactionsRead, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Transactions.Get(p.Context, str(p, "id"))
				}),
			},
			"logs": {
				Type: graphql.NewList(logType),
				Args: limitArg,
				Resolve: guard(rbac.LogsRead, func(p graphql.ResolveParams) (interface{}, error) {
					logs, err := r.Logs.List(p.Context)
					if err != nil {
						return nil, err
					}
					return limit(logs, p), nil
				}),
			},
			"dashboard": {
				Type: dashboardType,
				Resolve: guard(rbac.ReportsRead, func(p graphql.ResolveParams) (interface{}, error) {
					return r.Dashboard.Summary(p.Context)
				}),
			},
		},
	})
}

// Schema builds the full read-only schema.
func (r *Resolver) Schema() (graphql.Schema, error) {
	return pkggraphql.NewSchema(r.Query(), nil)
}
