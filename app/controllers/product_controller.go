package controllers

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/app/services"
	"github.com/shashiranjanraj/paintpos/pkg/ctx"
)

type ProductController struct {
	products *services.ProductService
	catalog  *services.CatalogService
}

func NewProductController(products *services.ProductService, catalog *services.CatalogService) *ProductController {
	return &ProductController{products: products, catalog: catalog}
}

type productInput struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	Detail   string          `json:"detail"`
}

func (in productInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Category, validation.Length(0, 120)),
		validation.Field(&in.Price, validation.By(notNegative)),
		validation.Field(&in.Stock, validation.Min(0)),
	)
}

type productPatchInput struct {
	models.ProductPatch
}

var errEmptyPatch = errors.New("at least one field is required")

func (in productPatchInput) Validate() error {
	if in.IsEmpty() {
		return validation.Errors{"product": errEmptyPatch}
	}
	return validation.ValidateStruct(&in.ProductPatch,
		validation.Field(&in.ProductPatch.Name, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&in.ProductPatch.Category, validation.Length(0, 120)),
		validation.Field(&in.ProductPatch.Price, validation.By(notNegative)),
		validation.Field(&in.ProductPatch.Stock, validation.Min(0)),
	)
}

func notNegative(value interface{}) error {
	var d decimal.Decimal
	switch v := value.(type) {
	case decimal.Decimal:
		d = v
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		d = *v
	default:
		return errors.New("must be a number")
	}
	if d.IsNegative() {
		return errors.New("must be no less than 0")
	}
	return nil
}

// Index lists the catalog, filtered by ?search= and ?category=.
func (p *ProductController) Index(c *ctx.Context) {
	products, err := p.catalog.List(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(services.Filter(products, c.Query("search"), c.DefaultQuery("category", services.AllCategories)))
}

func (p *ProductController) Categories(c *ctx.Context) {
	products, err := p.catalog.List(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(services.Categories(products))
}

func (p *ProductController) Show(c *ctx.Context) {
	prod, err := p.products.Get(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(prod)
}

func (p *ProductController) Store(c *ctx.Context) {
	var in productInput
	if !c.BindJSON(&in) {
		return
	}
	created, err := p.products.Create(c.Context(), models.Product{
		Name:     in.Name,
		Category: in.Category,
		Price:    in.Price,
		Stock:    in.Stock,
		Detail:   in.Detail,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(created)
}

func (p *ProductController) Update(c *ctx.Context) {
	var in productPatchInput
	if !c.BindJSON(&in) {
		return
	}
	updated, err := p.products.Update(c.Context(), c.Param("id"), in.ProductPatch)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(updated)
}

func (p *ProductController) Destroy(c *ctx.Context) {
	if err := p.products.Delete(c.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Message("Product deleted")
}
