package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/paintpos/config"
)

func TestDefaults(t *testing.T) {
	assert.Equal(t, "sqlite", config.DatabaseDriver())
	assert.Equal(t, 5, config.LowStockThreshold())
	assert.Equal(t, 30*time.Second, config.CatalogCacheTTL())
}

func TestSetOverridesAndTypedReaders(t *testing.T) {
	config.Set("LOW_STOCK_THRESHOLD", "8")
	config.Set("CATALOG_CACHE_TTL", "2m")
	t.Cleanup(func() {
		config.Set("LOW_STOCK_THRESHOLD", "5")
		config.Set("CATALOG_CACHE_TTL", "30s")
	})

	assert.Equal(t, 8, config.LowStockThreshold())
	assert.Equal(t, 2*time.Minute, config.CatalogCacheTTL())
}

func TestMalformedValuesFallBack(t *testing.T) {
	config.Set("QUEUE_WORKERS", "many")
	config.Set("SESSION_TTL", "-1h")
	t.Cleanup(func() {
		config.Set("QUEUE_WORKERS", "2")
		config.Set("SESSION_TTL", "12h")
	})

	assert.Equal(t, 2, config.QueueWorkers())
	assert.Equal(t, 12*time.Hour, config.SessionTTL())
}

func TestStoreDriverRejectsUnknown(t *testing.T) {
	config.Set("STORE_DRIVER", "cassandra")
	t.Cleanup(func() { config.Set("STORE_DRIVER", "sql") })

	assert.Equal(t, "sql", config.StoreDriver())
}

func TestCommitMode(t *testing.T) {
	config.Set("POS_COMMIT_MODE", "Sequential")
	assert.Equal(t, "sequential", config.CommitMode())

	config.Set("POS_COMMIT_MODE", "whatever")
	assert.Equal(t, "atomic", config.CommitMode())

	config.Set("POS_COMMIT_MODE", "atomic")
}
