package models

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// LogAction classifies an audit entry.
type LogAction string

const (
	ActionSale          LogAction = "SALE"
	ActionStockUpdate   LogAction = "STOCK_UPDATE"
	ActionAddProduct    LogAction = "Add Product"
	ActionUpdateProduct LogAction = "Update Product"
	ActionDeleteProduct LogAction = "Delete Product"
)

// LogEntry is one line of the append-only audit trail.
type LogEntry struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Action    LogAction `gorm:"size:50;index"      json:"action"`
	Details   string    `gorm:"type:text"          json:"details"`
	Timestamp time.Time `gorm:"index"              json:"timestamp"`
}

func (LogEntry) TableName() string { return "logs" }

func (l LogEntry) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Action, validation.Required),
	)
}

// ── Message builders ─────────────────────────────────────────────────────────

func SaleLog(tx Transaction) LogEntry {
	return LogEntry{
		Action:  ActionSale,
		Details: fmt.Sprintf("Sold items to %s | Total ₱%s", tx.CustomerName, tx.TotalAmount.String()),
	}
}

func StockUpdateLog(name string, qty int) LogEntry {
	return LogEntry{
		Action:  ActionStockUpdate,
		Details: fmt.Sprintf("Stock updated for %s: -%d units", name, qty),
	}
}

func AddProductLog(p Product) LogEntry {
	return LogEntry{Action: ActionAddProduct, Details: fmt.Sprintf("Added %s | %s", p.Name, p.Category)}
}

func UpdateProductLog(oldName string) LogEntry {
	return LogEntry{Action: ActionUpdateProduct, Details: "Updated " + oldName}
}

func DeleteProductLog(name string) LogEntry {
	return LogEntry{Action: ActionDeleteProduct, Details: "Deleted " + name}
}

// SaleLogs is the ordered audit trail of a sale: one SALE entry, then one
// STOCK_UPDATE per line.
func SaleLogs(tx Transaction) []LogEntry {
	out := make([]LogEntry, 0, len(tx.Items)+1)
	out = append(out, SaleLog(tx))
	for _, it := range tx.Items {
		out = append(out, StockUpdateLog(it.Name, it.Qty))
	}
	return out
}
