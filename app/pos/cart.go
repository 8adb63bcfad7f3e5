// Package pos holds the register: the in-memory cart a cashier builds and
// the committer that turns it into a recorded sale.
package pos

import (
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/paintpos/app/models"
)

// Line is one product in the cart. Name, Price and Stock are snapshots
// taken when the product was first added.
type Line struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
	Stock     int             `json:"stock"`
}

func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// MaxQty is the soft client-side ceiling for this line.
func (l Line) MaxQty() int { return l.Stock + l.Qty }

// Cart is not safe for concurrent use; see Register.
type Cart struct {
	lines        []Line
	customerName string
}

func NewCart() *Cart { return &Cart{} }

// AddItem increments the line for p, or appends a new line with qty 1.
func (c *Cart) AddItem(p models.Product) {
	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Qty++
		return
	}
	c.lines = append(c.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Qty:       1,
		Stock:     p.Stock,
	})
}

func (c *Cart) RemoveItem(id string) {
	if i := c.index(id); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// SetQuantity clamps qty to [1, stock snapshot + current qty] and stores
// it. It returns the stored value, or 0 when id is not in the cart.
func (c *Cart) SetQuantity(id string, qty int) int {
	i := c.index(id)
	if i < 0 {
		return 0
	}
	line := &c.lines[i]
	if ceil := line.MaxQty(); qty > ceil {
		qty = ceil
	}
	if qty < 1 {
		qty = 1
	}
	line.Qty = qty
	return qty
}

// Total is Σ qty × price, recomputed on every call.
func (c *Cart) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// Clear empties the cart and resets the customer name.
func (c *Cart) Clear() {
	c.lines = nil
	c.customerName = ""
}

func (c *Cart) SetCustomerName(name string) { c.customerName = name }
func (c *Cart) CustomerName() string        { return c.customerName }

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line { return append([]Line(nil), c.lines...) }

func (c *Cart) Len() int      { return len(c.lines) }
func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

func (c *Cart) index(id string) int {
	for i, l := range c.lines {
		if l.ProductID == id {
			return i
		}
	}
	return -1
}

// Items converts the cart to transaction lines using the price snapshots.
func (c *Cart) Items() []models.TransactionItem {
	out := make([]models.TransactionItem, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, models.NewItem(l.ProductID, l.Name, l.Price, l.Qty))
	}
	return out
}
