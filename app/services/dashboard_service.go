package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/app/store"
	"github.com/shashiranjanraj/paintpos/config"
	"github.com/shashiranjanraj/paintpos/pkg/collection"
)

const topStockSize = 5

type Revenue struct {
	Daily   decimal.Decimal `json:"daily"`
	Weekly  decimal.Decimal `json:"weekly"`
	Monthly decimal.Decimal `json:"monthly"`
	Total   decimal.Decimal `json:"total"`
}

type Summary struct {
	TotalProducts    int              `json:"totalProducts"`
	LowStockCount    int              `json:"lowStockCount"`
	LowStock         []models.Product `json:"lowStock"`
	TransactionCount int              `json:"transactionCount"`
	Revenue          Revenue          `json:"revenue"`
	TopStock         []models.Product `json:"topStock"`
}

// Summarize computes the dashboard figures. Revenue windows are calendar
// based in now's location: the current day, the week starting Sunday 00:00
// and the month starting on the 1st. Transactions without a timestamp are
// left out of every revenue figure.
func Summarize(products []models.Product, txs []models.Transaction, now time.Time, lowStockThreshold int) Summary {
	loc := now.Location()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	weekStart := dayStart.AddDate(0, 0, -int(now.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	rev := Revenue{Daily: decimal.Zero, Weekly: decimal.Zero, Monthly: decimal.Zero, Total: decimal.Zero}
	for _, tx := range txs {
		if !tx.HasTimestamp() {
			continue
		}
		ts := tx.Timestamp.In(loc)
		amount := tx.TotalAmount

		rev.Total = rev.Total.Add(amount)
		if !ts.Before(dayStart) && ts.Before(dayEnd) {
			rev.Daily = rev.Daily.Add(amount)
		}
		if !ts.Before(weekStart) {
			rev.Weekly = rev.Weekly.Add(amount)
		}
		if !ts.Before(monthStart) {
			rev.Monthly = rev.Monthly.Add(amount)
		}
	}

	low := collection.Filter(products, func(p models.Product) bool { return p.Stock < lowStockThreshold })
	if low == nil {
		low = []models.Product{}
	}

	byStock := collection.SortBy(append([]models.Product(nil), products...), func(a, b models.Product) bool {
		return a.Stock > b.Stock
	})

	return Summary{
		TotalProducts:    len(products),
		LowStockCount:    len(low),
		LowStock:         low,
		TransactionCount: len(txs),
		Revenue:          rev,
		TopStock:         collection.Take(byStock, topStockSize),
	}
}

type DashboardService struct {
	catalog      *CatalogService
	transactions *TransactionService
	now          func() time.Time
}

func NewDashboardService(catalog *CatalogService, st store.Store) *DashboardService {
	return &DashboardService{
		catalog:      catalog,
		transactions: NewTransactionService(st),
		now:          time.Now,
	}
}

func (s *DashboardService) Summary(ctx context.Context) (Summary, error) {
	products, err := s.catalog.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	txs, err := s.transactions.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(products, txs, s.now().In(config.Location()), config.LowStockThreshold()), nil
}
