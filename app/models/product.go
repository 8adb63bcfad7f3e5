package models

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
)

// Product is one sellable item in the catalog.
type Product struct {
	ID        string          `gorm:"primaryKey;size:64"                json:"id"`
	Name      string          `gorm:"size:255;not null;index"           json:"name"`
	Category  string          `gorm:"size:120;index"                    json:"category"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"       json:"price"`
	Stock     int             `gorm:"not null;default:0"                json:"stock"`
	Detail    string          `gorm:"type:text"                         json:"detail"`
	CreatedAt time.Time       `gorm:"autoCreateTime"                    json:"createdAt"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"                    json:"-"`
}

func (Product) TableName() string { return "products" }

// Validate enforces the entity invariants; it runs on every record read
// from a store and on every write.
func (p Product) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&p.Category, validation.Length(0, 120)),
		validation.Field(&p.Price, validation.By(nonNegativeDecimal)),
		validation.Field(&p.Stock, validation.Min(0)),
	)
}

// InStock reports whether the product can be added to a cart.
func (p Product) InStock() bool { return p.Stock > 0 }

// ProductPatch is a partial update; nil fields are left untouched.
type ProductPatch struct {
	Name     *string          `json:"name"`
	Category *string          `json:"category"`
	Price    *decimal.Decimal `json:"price"`
	Stock    *int             `json:"stock"`
	Detail   *string          `json:"detail"`
}

// Apply returns p with the patch applied.
func (pp ProductPatch) Apply(p Product) Product {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Stock != nil {
		p.Stock = *pp.Stock
	}
	if pp.Detail != nil {
		p.Detail = *pp.Detail
	}
	return p
}

// Fields returns the patch as a column → value map, suitable for partial
// updates in both gorm and Firestore.
func (pp ProductPatch) Fields() map[string]interface{} {
	out := map[string]interface{}{}
	if pp.Name != nil {
		out["name"] = *pp.Name
	}
	if pp.Category != nil {
		out["category"] = *pp.Category
	}
	if pp.Price != nil {
		out["price"] = *pp.Price
	}
	if pp.Stock != nil {
		out["stock"] = *pp.Stock
	}
	if pp.Detail != nil {
		out["detail"] = *pp.Detail
	}
	return out
}

func (pp ProductPatch) IsEmpty() bool { return len(pp.Fields()) == 0 }

var errNegative = errors.New("must be no less than 0")

func nonNegativeDecimal(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("must be a decimal")
	}
	if d.IsNegative() {
		return errNegative
	}
	return nil
}
