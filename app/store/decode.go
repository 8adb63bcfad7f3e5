package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/pkg/logger"
)

// Raw documents (Firestore, imported JSON) are loosely typed: prices may be
// strings, categories may be missing, old transactions carry "date" instead
// of "timestamp". These decoders coerce what they can and reject the rest
// with ErrMalformed.

func DecodeProduct(id string, data map[string]interface{}) (models.Product, error) {
	price, err := toDecimal(data["price"])
	if err != nil {
		return models.Product{}, malformed("product", id, "price", err)
	}
	stock, err := toInt(data["stock"])
	if err != nil {
		return models.Product{}, malformed("product", id, "stock", err)
	}

	p := models.Product{
		ID:        id,
		Name:      toString(data["name"]),
		Category:  toString(data["category"]),
		Price:     price,
		Stock:     stock,
		Detail:    toString(data["detail"]),
		CreatedAt: toTime(data["createdAt"]),
	}
	if err := p.Validate(); err != nil {
		return models.Product{}, malformed("product", id, "", err)
	}
	return p, nil
}

func DecodeTransaction(id string, data map[string]interface{}) (models.Transaction, error) {
	total, err := toDecimal(data["totalAmount"])
	if err != nil {
		return models.Transaction{}, malformed("transaction", id, "totalAmount", err)
	}

	tx := models.Transaction{
		ID:             id,
		IdempotencyKey: toString(data["idempotencyKey"]),
		CustomerName:   toString(data["customerName"]),
		Cashier:        toString(data["cashier"]),
		TotalAmount:    total,
		Timestamp:      toTime(data["timestamp"]),
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = toTime(data["date"])
	}

	rawItems, _ := data["items"].([]interface{})
	for i, raw := range rawItems {
		m, ok := raw.(map[string]interface{})
		if !ok {
			return models.Transaction{}, malformed("transaction", id, fmt.Sprintf("items.%d", i), fmt.Errorf("not an object"))
		}
		item, err := decodeItem(m)
		if err != nil {
			return models.Transaction{}, malformed("transaction", id, fmt.Sprintf("items.%d", i), err)
		}
		item.TransactionID = id
		tx.Items = append(tx.Items, item)
	}

	if err := tx.Validate(); err != nil {
		return models.Transaction{}, malformed("transaction", id, "", err)
	}
	return tx, nil
}

func decodeItem(m map[string]interface{}) (models.TransactionItem, error) {
	price, err := toDecimal(m["price"])
	if err != nil {
		return models.TransactionItem{}, err
	}
	qty, err := toInt(m["qty"])
	if err != nil {
		return models.TransactionItem{}, err
	}
	item := models.TransactionItem{
		ProductID: toString(m["id"]),
		Name:      toString(m["name"]),
		Price:     price,
		Qty:       qty,
	}
	if _, ok := m["total"]; ok {
		if item.Total, err = toDecimal(m["total"]); err != nil {
			return models.TransactionItem{}, err
		}
	} else {
		item.Total = price.Mul(decimal.NewFromInt(int64(qty)))
	}
	return item, item.Validate()
}

func DecodeLog(id string, data map[string]interface{}) (models.LogEntry, error) {
	e := models.LogEntry{
		ID:        id,
		Action:    models.LogAction(toString(data["action"])),
		Details:   toString(data["details"]),
		Timestamp: toTime(data["timestamp"]),
	}
	if err := e.Validate(); err != nil {
		return models.LogEntry{}, malformed("log", id, "", err)
	}
	return e, nil
}

// skipMalformed logs a rejected record at WARN. List operations call it and
// carry on with the remaining records.
func skipMalformed(ctx context.Context, err error) {
	logger.WithCtx(ctx).Warn("store: skipping malformed record", "error", err)
}

func malformed(kind, id, field string, err error) error {
	if field != "" {
		return fmt.Errorf("%w: %s %s: %s: %v", ErrMalformed, kind, id, field, err)
	}
	return fmt.Errorf("%w: %s %s: %v", ErrMalformed, kind, id, err)
}

// ── Coercion ─────────────────────────────────────────────────────────────────

func toString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func toDecimal(v interface{}) (decimal.Decimal, error) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return t, nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case float32:
		return decimal.NewFromFloat32(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(t))
	default:
		return decimal.Zero, fmt.Errorf("unsupported type %T", v)
	}
}

func toInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if t != float64(int64(t)) {
			return 0, fmt.Errorf("not a whole number: %v", t)
		}
		return int(t), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(t))
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02", "1/2/2006, 3:04:05 PM", "1/2/2006"}

func toTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts
			}
		}
	}
	return time.Time{}
}
