package controllers

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/app/pos"
	"github.com/shashiranjanraj/paintpos/app/services"
	"github.com/shashiranjanraj/paintpos/app/store"
	"github.com/shashiranjanraj/paintpos/pkg/bind"
	"github.com/shashiranjanraj/paintpos/pkg/ctx"
	"github.com/shashiranjanraj/paintpos/pkg/logger"
	"github.com/shashiranjanraj/paintpos/pkg/rbac"
)

// partialSale is the body of a 500 for a sale that was recorded with
// incomplete writes.
type partialSale struct {
	TransactionID string            `json:"transactionId"`
	Stage         pos.Stage         `json:"stage"`
	ProductID     string            `json:"productId,omitempty"`
	Pending       []pos.PendingLine `json:"pending"`
}

// fail maps a service error to its HTTP response.
func fail(c *ctx.Context, err error) {
	var (
		verrs  validation.Errors
		posErr *pos.ValidationError
		stale  *pos.StaleStockError
		clash  *pos.KeyConflictError
		wf     *pos.WriteFailure
	)

	switch {
	case errors.As(err, &posErr):
		c.ValidationError(map[string]string{posErr.Field: posErr.Message})
	case errors.As(err, &verrs), errors.Is(err, models.ErrTotalMismatch):
		c.ValidationError(bind.Errors(err))
	case errors.Is(err, rbac.ErrUnauthenticated):
		c.Unauthorized()
	case errors.Is(err, rbac.ErrForbidden):
		c.Forbidden()
	case errors.Is(err, services.ErrInvalidCredentials):
		c.Error(http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, store.ErrNotFound):
		c.NotFound()
	case errors.As(err, &stale):
		c.ErrorWith(http.StatusConflict, "Stock changed since the items were added to the cart", stale.Lines)
	case errors.As(err, &clash):
		c.ErrorWith(http.StatusConflict,
			"This checkout key already recorded a sale with different items. Clear the cart to start a new sale.",
			map[string]string{"transactionId": clash.TransactionID})
	case errors.Is(err, store.ErrInsufficientStock):
		c.Error(http.StatusConflict, err.Error())
	case errors.Is(err, pos.ErrCommitInProgress):
		c.Error(http.StatusConflict, "A checkout is already in progress for this cart")
	case errors.As(err, &wf):
		if !wf.Committed {
			logger.WithCtx(c.Context()).Error("http: sale not recorded", "stage", string(wf.Stage), "error", wf.Err)
			c.Error(http.StatusServiceUnavailable, "Could not record the sale, please try again")
			return
		}
		c.ErrorWith(http.StatusInternalServerError, "Sale recorded but stock updates are pending", partialSale{
			TransactionID: wf.TransactionID,
			Stage:         wf.Stage,
			ProductID:     wf.ProductID,
			Pending:       wf.Pending,
		})
	default:
		logger.WithCtx(c.Context()).Error("http: unhandled error", "path", c.R.URL.Path, "error", err)
		c.Error(http.StatusInternalServerError, "Internal Server Error")
	}
}
