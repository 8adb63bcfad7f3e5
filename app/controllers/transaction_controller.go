package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/paintpos/app/receipt"
	"github.com/shashiranjanraj/paintpos/app/services"
	"github.com/shashiranjanraj/paintpos/pkg/ctx"
)

type TransactionController struct {
	transactions *services.TransactionService
	receipts     *receipt.Renderer
}

func NewTransactionController(transactions *services.TransactionService, receipts *receipt.Renderer) *TransactionController {
	return &TransactionController{transactions: transactions, receipts: receipts}
}

func (t *TransactionController) Index(c *ctx.Context) {
	txs, err := t.transactions.List(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(txs)
}

func (t *TransactionController) Show(c *ctx.Context) {
	tx, err := t.transactions.Get(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(tx)
}

// Receipt streams the transaction as a PDF download.
func (t *TransactionController) Receipt(c *ctx.Context) {
	tx, err := t.transactions.Get(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	pdf, err := t.receipts.Bytes(tx)
	if err != nil {
		fail(c, err)
		return
	}
	c.W.Header().Set("Content-Disposition", `attachment; filename="`+receipt.Filename(tx)+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (t *TransactionController) Destroy(c *ctx.Context) {
	if err := t.transactions.Delete(c.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Message("Receipt deleted successfully!")
}
