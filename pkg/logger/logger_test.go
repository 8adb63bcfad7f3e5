package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/paintpos/pkg/logger"
)

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	log := slog.New(logger.NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	)).With("request_id", "abc")

	log.Info("sale committed", "total", 250)

	assert.Contains(t, a.String(), "sale committed")
	assert.Contains(t, a.String(), "request_id=abc")
	assert.Contains(t, b.String(), `"total":250`)
}

func TestMultiHandlerRespectsLevels(t *testing.T) {
	var buf bytes.Buffer
	h := logger.NewMultiHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestWithCtx(t *testing.T) {
	assert.Same(t, logger.L, logger.WithCtx(context.Background()))

	var buf bytes.Buffer
	reqLog := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := logger.InjectLogger(context.Background(), reqLog)
	assert.Same(t, reqLog, logger.WithCtx(ctx))
}

func TestEnableMongoWithoutURIKeepsStdout(t *testing.T) {
	t.Setenv("LOG_MONGO_URI", "")
	before := logger.L

	assert.NoError(t, logger.EnableMongo())
	assert.Same(t, before, logger.L)
	logger.Close()
	logger.Close()
}
