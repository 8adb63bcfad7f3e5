// Package logger provides a structured, levelled logger built on log/slog.
//
// The per-request logger (tagged with request_id by middleware.Logger) is
// retrieved with WithCtx:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("sale committed", "transaction_id", tx.ID, "total", tx.TotalAmount)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/shashiranjanraj/paintpos/config"
)

var (
	L *slog.Logger

	mu        sync.Mutex
	mongoSink *MongoHandler
)

func init() {
	L = slog.New(baseHandler(os.Stdout))
	slog.SetDefault(L)
}

// baseHandler is JSON in production and human-readable text everywhere else.
func baseHandler(w io.Writer) slog.Handler {
	if config.IsProduction() {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// EnableMongo fans every record out to MongoDB in addition to stdout.
// It is a no-op when LOG_MONGO_URI is empty.
func EnableMongo() error {
	uri := config.Get("LOG_MONGO_URI", "")
	if uri == "" {
		return nil
	}

	h, err := NewMongoHandler(uri,
		config.Get("LOG_MONGO_DB", "paintpos"),
		config.Get("LOG_MONGO_COLLECTION", "app_logs"),
	)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	mongoSink = h
	L = slog.New(NewMultiHandler(baseHandler(os.Stdout), h))
	slog.SetDefault(L)
	return nil
}

// Close flushes the MongoDB sink, if one was enabled.
func Close() {
	mu.Lock()
	h := mongoSink
	mongoSink = nil
	mu.Unlock()

	if h != nil {
		h.Close()
	}
}

// ─────────────────────────────────────────────
// Context-aware logger
// ─────────────────────────────────────────────

type ctxKey struct{}

// WithCtx returns the logger stored in ctx by middleware.Logger, or the base
// logger when the context carries none.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a request-scoped logger in ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
