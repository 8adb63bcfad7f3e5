package controllers

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/paintpos/app/pos"
	"github.com/shashiranjanraj/paintpos/app/services"
	"github.com/shashiranjanraj/paintpos/pkg/ctx"
)

// IdempotencyHeader lets a client pin the key of a checkout.
const IdempotencyHeader = "Idempotency-Key"

// POSController serves the register of the logged-in session.
type POSController struct {
	registers *pos.Registers
	committer *pos.Committer
	products  *services.ProductService
}

func NewPOSController(registers *pos.Registers, committer *pos.Committer, products *services.ProductService) *POSController {
	return &POSController{registers: registers, committer: committer, products: products}
}

type cartLine struct {
	pos.Line
	Total  decimal.Decimal `json:"total"`
	MaxQty int             `json:"maxQty"`
}

type cartView struct {
	CustomerName   string          `json:"customerName"`
	Items          []cartLine      `json:"items"`
	Total          decimal.Decimal `json:"total"`
	IdempotencyKey string          `json:"idempotencyKey"`
	Committing     bool            `json:"committing"`
}

func viewOf(reg *pos.Register) cartView {
	v := reg.View()
	items := make([]cartLine, 0, len(v.Items))
	for _, l := range v.Items {
		items = append(items, cartLine{Line: l, Total: l.Total(), MaxQty: l.MaxQty()})
	}
	return cartView{
		CustomerName:   v.CustomerName,
		Items:          items,
		Total:          v.Total,
		IdempotencyKey: v.IdempotencyKey,
		Committing:     v.Committing,
	}
}

func (p *POSController) register(c *ctx.Context) (*pos.Register, bool) {
	sess, ok := c.Session()
	if !ok {
		c.Unauthorized()
		return nil, false
	}
	return p.registers.Get(sess.ID), true
}

func (p *POSController) Cart(c *ctx.Context) {
	reg, ok := p.register(c)
	if !ok {
		return
	}
	c.Success(viewOf(reg))
}

type customerInput struct {
	CustomerName string `json:"customerName"`
}

func (p *POSController) SetCustomer(c *ctx.Context) {
	reg, ok := p.register(c)
	if !ok {
		return
	}
	var in customerInput
	if !c.BindJSON(&in) {
		return
	}
	if err := reg.SetCustomerName(in.CustomerName); err != nil {
		fail(c, err)
		return
	}
	c.Success(viewOf(reg))
}

type addItemInput struct {
	ProductID string `json:"productId"`
}

func (in addItemInput) Validate() error {
	return validation.ValidateStruct(&in, validation.Field(&in.ProductID, validation.Required))
}

// AddItem puts one unit of a product in the cart. The product is read live
// so the line snapshots the current price and stock.
func (p *POSController) AddItem(c *ctx.Context) {
	reg, ok := p.register(c)
	if !ok {
		return
	}
	var in addItemInput
	if !c.BindJSON(&in) {
		return
	}
	prod, err := p.products.Get(c.Context(), in.ProductID)
	if err != nil {
		fail(c, err)
		return
	}
	if !prod.InStock() {
		c.ValidationError(map[string]string{"productId": prod.Name + " is out of stock"})
		return
	}
	if err := reg.AddItem(prod); err != nil {
		fail(c, err)
		return
	}
	c.Success(viewOf(reg))
}

type quantityInput struct {
	Qty int `json:"qty"`
}

func (in quantityInput) Validate() error {
	return validation.ValidateStruct(&in, validation.Field(&in.Qty, validation.Required, validation.Min(1)))
}

func (p *POSController) SetQuantity(c *ctx.Context) {
	reg, ok := p.register(c)
	if !ok {
		return
	}
	var in quantityInput
	if !c.BindJSON(&in) {
		return
	}
	stored, err := reg.SetQuantity(c.Param("id"), in.Qty)
	if err != nil {
		fail(c, err)
		return
	}
	if stored == 0 {
		c.NotFound("Item is not in the cart")
		return
	}
	c.Success(viewOf(reg))
}

func (p *POSController) RemoveItem(c *ctx.Context) {
	reg, ok := p.register(c)
	if !ok {
		return
	}
	if err := reg.RemoveItem(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Success(viewOf(reg))
}

func (p *POSController) Clear(c *ctx.Context) {
	reg, ok := p.register(c)
	if !ok {
		return
	}
	if err := reg.Clear(); err != nil {
		fail(c, err)
		return
	}
	c.Success(viewOf(reg))
}

type checkoutInput struct {
	CustomerName string `json:"customerName"`
}

type checkoutResponse struct {
	pos.Result
	Cart cartView `json:"cart"`
}

// Checkout commits the cart. The body is optional; a customerName in it
// replaces the one already on the cart.
func (p *POSController) Checkout(c *ctx.Context) {
	reg, ok := p.register(c)
	if !ok {
		return
	}
	var in checkoutInput
	if c.R.ContentLength != 0 && !c.BindJSON(&in) {
		return
	}
	sess, _ := c.Session()
	res, err := p.committer.Commit(c.Context(), reg, pos.CommitOptions{
		CustomerName:   in.CustomerName,
		IdempotencyKey: c.Header(IdempotencyHeader),
		Cashier:        sess.Email,
	})
	if err != nil {
		fail(c, err)
		return
	}

	body := checkoutResponse{Result: res, Cart: viewOf(reg)}
	if res.Replayed {
		c.Success(body)
		return
	}
	c.Respond(http.StatusCreated, "Transaction saved successfully!", body)
}
