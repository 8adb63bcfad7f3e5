package pos

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCommitInProgress is returned for any cart change, and for a second
// commit, while a commit on the same register is running.
var ErrCommitInProgress = errors.New("pos: a commit is already in progress for this cart")

// ValidationError means the cart cannot be committed as it stands. No
// writes were issued.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	errNoCustomer = &ValidationError{Field: "customerName", Message: "Please enter customer name."}
	errEmptyCart  = &ValidationError{Field: "items", Message: "Cart is empty!"}
	errBadKey     = &ValidationError{
		Field:   "idempotencyKey",
		Message: "Idempotency-Key must be 1 to 64 letters, digits, '-', '_', '.' or ':'",
	}
)

// KeyConflictError means the idempotency key already belongs to a recorded
// sale whose lines differ from the cart being committed. No writes were
// issued and the cart is kept.
type KeyConflictError struct {
	Key           string
	TransactionID string
}

func (e *KeyConflictError) Error() string {
	return fmt.Sprintf("pos: idempotency key %q already recorded sale %s with different items", e.Key, e.TransactionID)
}

// StaleLine is a cart line whose quantity exceeds the live stock.
type StaleLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// StaleStockError means live stock changed since the products were added.
// No writes were issued.
type StaleStockError struct {
	Lines []StaleLine
}

func (e *StaleStockError) Error() string {
	parts := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		parts = append(parts, fmt.Sprintf("%s (requested %d, available %d)", l.Name, l.Requested, l.Available))
	}
	return "pos: not enough stock for " + strings.Join(parts, ", ")
}

// Stage names the commit step that failed.
type Stage string

const (
	StageTransaction Stage = "transaction"
	StageSaleLog     Stage = "sale_log"
	StageStock       Stage = "stock"
	StageStockLog    Stage = "stock_log"
)

// PendingLine is a decrement that was not applied after the transaction
// had been recorded. LogOnly lines had their stock decremented but are
// missing the STOCK_UPDATE log.
type PendingLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Qty       int    `json:"qty"`
	LogOnly   bool   `json:"logOnly,omitempty"`
}

// WriteFailure is a store write that failed during a commit.
//
// When Committed is false nothing was recorded and the cart can simply be
// resubmitted. When Committed is true the transaction exists but Pending
// decrements were not applied; a reconciliation job has been queued for
// them and the cart is left intact.
type WriteFailure struct {
	Stage         Stage
	Committed     bool
	TransactionID string
	ProductID     string
	Pending       []PendingLine
	Err           error
}

func (e *WriteFailure) Error() string {
	if e.Committed {
		return fmt.Sprintf("pos: sale %s recorded but %s write failed (%d lines pending): %v",
			e.TransactionID, e.Stage, len(e.Pending), e.Err)
	}
	return fmt.Sprintf("pos: %s write failed: %v", e.Stage, e.Err)
}

func (e *WriteFailure) Unwrap() error { return e.Err }
