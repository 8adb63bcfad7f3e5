// Package cache is a thin JSON-over-Redis cache. Every call is a no-op when
// Redis is unavailable, so callers always fall through to the store.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/paintpos/config"
)

var RDB *redis.Client

// Connect initialises the Redis client and verifies the connection with a ping.
// Returns an error so the caller can react (log warning, fall back, or abort).
func Connect(ctx context.Context) error {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})

	if err := RDB.Ping(ctx).Err(); err != nil {
		RDB = nil // mark as unavailable so Get/Set/Del no-op safely
		return fmt.Errorf("cache: redis ping: %w", err)
	}
	return nil
}

// Use installs an existing client, e.g. one pointed at a test server.
func Use(c *redis.Client) { RDB = c }

func Available() bool { return RDB != nil }

// Get retrieves a cached value by key and unmarshals into dest.
// Returns true on a cache hit, false on miss or error.
func Get(ctx context.Context, key string, dest interface{}) bool {
	if RDB == nil {
		return false
	}

	val, err := RDB.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}

	return json.Unmarshal(val, dest) == nil
}

// Set stores value in Redis under key for the given TTL.
func Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if RDB == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return RDB.Set(ctx, key, data, ttl).Err()
}

// Del removes one or more keys from Redis.
func Del(ctx context.Context, keys ...string) error {
	if RDB == nil {
		return nil
	}
	return RDB.Del(ctx, keys...).Err()
}

func Close() error {
	if RDB == nil {
		return nil
	}
	return RDB.Close()
}
