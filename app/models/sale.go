package models

// Sale is everything a sale commit writes: the transaction plus one stock
// decrement per line. Logs are derived from it by SaleLogs.
type Sale struct {
	Transaction Transaction
}

// Decrements maps product ID → quantity to remove from stock.
func (s Sale) Decrements() map[string]int {
	out := make(map[string]int, len(s.Transaction.Items))
	for _, it := range s.Transaction.Items {
		out[it.ProductID] += it.Qty
	}
	return out
}
