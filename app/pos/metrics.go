package pos

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shashiranjanraj/paintpos/pkg/metrics"
)

var (
	salesCommitted = metrics.NewCounter("paintpos", "sales_committed_total",
		"Sale commits by outcome.", []string{"outcome"})

	saleAmount = metrics.NewHistogram("paintpos", "sale_amount",
		"Total amount of committed sales.",
		[]float64{100, 250, 500, 1_000, 2_500, 5_000, 10_000, 25_000},
		[]string{"mode"})

	commitDuration = metrics.NewHistogram("paintpos", "commit_duration_seconds",
		"Wall time of a sale commit.", prometheus.DefBuckets, []string{"mode"})
)

func observeCommit(mode string, start time.Time, res Result, err error) {
	commitDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	salesCommitted.WithLabelValues(outcome(res, err)).Inc()
	if err == nil && !res.Replayed {
		saleAmount.WithLabelValues(mode).Observe(res.Transaction.TotalAmount.InexactFloat64())
	}
}

func outcome(res Result, err error) string {
	var (
		verr  *ValidationError
		stale *StaleStockError
		clash *KeyConflictError
		wf    *WriteFailure
	)
	switch {
	case err == nil && res.Replayed:
		return "replayed"
	case err == nil:
		return "committed"
	case errors.Is(err, ErrCommitInProgress):
		return "busy"
	case errors.As(err, &verr):
		return "invalid"
	case errors.As(err, &stale):
		return "stale_stock"
	case errors.As(err, &clash):
		return "key_conflict"
	case errors.As(err, &wf) && wf.Committed:
		return "partial"
	default:
		return "write_failure"
	}
}
