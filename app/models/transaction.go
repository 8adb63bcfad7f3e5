package models

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
)

// Transaction is the immutable record of one committed sale.
type Transaction struct {
	ID             string            `gorm:"primaryKey;size:64"                                   json:"id"`
	IdempotencyKey string            `gorm:"size:64;uniqueIndex"                                  json:"idempotencyKey,omitempty"`
	CustomerName   string            `gorm:"size:255;not null"                                    json:"customerName"`
	Cashier        string            `gorm:"size:255"                                             json:"cashier,omitempty"`
	Items          []TransactionItem `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount    decimal.Decimal   `gorm:"type:decimal(14,2);not null"                          json:"totalAmount"`
	Timestamp      time.Time         `gorm:"index"                                                json:"timestamp"`
}

func (Transaction) TableName() string { return "transactions" }

// TransactionItem is one sold line; Price is the snapshot taken when the
// product was added to the cart.
type TransactionItem struct {
	RowID         uint            `gorm:"primaryKey;autoIncrement"    json:"-"`
	TransactionID string          `gorm:"size:64;index;not null"      json:"-"`
	ProductID     string          `gorm:"size:64;not null"            json:"id"`
	Name          string          `gorm:"size:255"                    json:"name"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Qty           int             `gorm:"not null"                    json:"qty"`
	Total         decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total"`
}

func (TransactionItem) TableName() string { return "transaction_items" }

// ErrTotalMismatch is returned when totalAmount differs from the item sum.
var ErrTotalMismatch = errors.New("totalAmount must equal the sum of item totals")

func (t Transaction) Validate() error {
	if err := validation.ValidateStruct(&t,
		validation.Field(&t.CustomerName, validation.Required),
		validation.Field(&t.Items, validation.Required),
		validation.Field(&t.TotalAmount, validation.By(nonNegativeDecimal)),
	); err != nil {
		return err
	}
	if !t.TotalAmount.Round(2).Equal(t.ItemsTotal().Round(2)) {
		return ErrTotalMismatch
	}
	return nil
}

func (i TransactionItem) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.ProductID, validation.Required),
		validation.Field(&i.Qty, validation.Required, validation.Min(1)),
		validation.Field(&i.Price, validation.By(nonNegativeDecimal)),
	)
}

// ItemsTotal is Σ item.Total.
func (t Transaction) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range t.Items {
		sum = sum.Add(it.Total)
	}
	return sum
}

// HasTimestamp is false for legacy records with no usable date.
func (t Transaction) HasTimestamp() bool { return !t.Timestamp.IsZero() }

// NewItem builds a line with total = qty × price.
func NewItem(productID, name string, price decimal.Decimal, qty int) TransactionItem {
	return TransactionItem{
		ProductID: productID,
		Name:      name,
		Price:     price,
		Qty:       qty,
		Total:     price.Mul(decimal.NewFromInt(int64(qty))),
	}
}
