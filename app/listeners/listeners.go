// Package listeners connects domain events to their side effects: the
// stock feed (websocket and SSE), the receipt archive and the low-stock
// sweep.
package listeners

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/app/pos"
	"github.com/shashiranjanraj/paintpos/app/receipt"
	"github.com/shashiranjanraj/paintpos/app/services"
	"github.com/shashiranjanraj/paintpos/pkg/event"
	"github.com/shashiranjanraj/paintpos/pkg/logger"
	"github.com/shashiranjanraj/paintpos/pkg/schedule"
	"github.com/shashiranjanraj/paintpos/pkg/sse"
	"github.com/shashiranjanraj/paintpos/pkg/storage"
	"github.com/shashiranjanraj/paintpos/pkg/workerpool"
	"github.com/shashiranjanraj/paintpos/pkg/ws"
)

// Stock feed event names.
const (
	WSSaleCommitted  = "sale_committed"
	WSProductChanged = "product_changed"
	WSLowStock       = "low_stock"
)

// LowStockSweepName is the scheduler id of the hourly sweep.
const LowStockSweepName = "low-stock-sweep"

// Listeners holds what the handlers need. Any nil field disables the side
// effect that uses it.
type Listeners struct {
	Hub       *ws.Hub
	Events    *sse.Broker
	Pool      *workerpool.Pool
	Receipts  *receipt.Renderer
	Disk      storage.Disk
	Catalog   *services.CatalogService
	Threshold int
}

// SaleLine is the stock-relevant part of a sold item.
type SaleLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Qty       int    `json:"qty"`
}

type SaleMessage struct {
	TransactionID string     `json:"transactionId"`
	CustomerName  string     `json:"customerName"`
	TotalAmount   string     `json:"totalAmount"`
	Items         []SaleLine `json:"items"`
}

type LowStockItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

// Register subscribes the handlers and schedules the low-stock sweep.
func (l *Listeners) Register() {
	event.Listen(pos.EventSaleCommitted, l.onSaleCommitted)
	event.Listen(services.EventProductChanged, l.onProductChanged)
	schedule.Hourly().Name(LowStockSweepName).WithoutOverlapping().Run(l.SweepLowStock)
}

func (l *Listeners) onSaleCommitted(ctx context.Context, payload interface{}) {
	tx, ok := payload.(models.Transaction)
	if !ok {
		return
	}
	msg := SaleMessage{
		TransactionID: tx.ID,
		CustomerName:  tx.CustomerName,
		TotalAmount:   tx.TotalAmount.StringFixed(2),
	}
	for _, it := range tx.Items {
		msg.Items = append(msg.Items, SaleLine{ProductID: it.ProductID, Name: it.Name, Qty: it.Qty})
	}
	l.push(ctx, WSSaleCommitted, msg)
	l.archive(ctx, tx)
}

func (l *Listeners) onProductChanged(ctx context.Context, payload interface{}) {
	if change, ok := payload.(services.ProductChange); ok {
		l.push(ctx, WSProductChanged, change)
	}
}

func (l *Listeners) push(ctx context.Context, name string, data interface{}) {
	if l.Hub != nil {
		if err := l.Hub.BroadcastJSON(name, data); err != nil {
			logger.WithCtx(ctx).Warn("listeners: websocket push failed", "event", name, "error", err)
		}
	}
	if l.Events != nil {
		if err := l.Events.Publish(name, data); err != nil {
			logger.WithCtx(ctx).Warn("listeners: sse publish failed", "event", name, "error", err)
		}
	}
}

// archive stores the receipt PDF off the request path. When the pool is
// full the receipt is written inline.
func (l *Listeners) archive(ctx context.Context, tx models.Transaction) {
	if l.Disk == nil || l.Receipts == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	task := func() {
		path, err := l.Receipts.Archive(ctx, l.Disk, tx)
		if err != nil {
			logger.WithCtx(ctx).Error("listeners: receipt archive failed", "transaction_id", tx.ID, "error", err)
			return
		}
		logger.WithCtx(ctx).Info("listeners: receipt archived", "transaction_id", tx.ID, "path", path)
	}
	if l.Pool == nil {
		task()
		return
	}
	switch err := l.Pool.Submit(task); {
	case errors.Is(err, workerpool.ErrPoolFull):
		task()
	case err != nil:
		logger.WithCtx(ctx).Warn("listeners: receipt not archived", "transaction_id", tx.ID, "error", err)
	}
}

// SweepLowStock logs every product below the threshold and pushes them as
// one low_stock message.
func (l *Listeners) SweepLowStock(ctx context.Context) error {
	if l.Catalog == nil {
		return nil
	}
	products, err := l.Catalog.Refresh(ctx)
	if err != nil {
		return err
	}
	var low []LowStockItem
	for _, p := range products {
		if p.Stock < l.Threshold {
			low = append(low, LowStockItem{ID: p.ID, Name: p.Name, Stock: p.Stock})
		}
	}
	log := logger.WithCtx(ctx)
	if len(low) == 0 {
		log.Info("listeners: no low-stock products", "threshold", l.Threshold)
		return nil
	}
	for _, it := range low {
		log.Warn("listeners: low stock", "product_id", it.ID, "name", it.Name, "stock", it.Stock)
	}
	l.push(ctx, WSLowStock, low)
	return nil
}
