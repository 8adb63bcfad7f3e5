package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisQueueKey   = "paintpos:queue:jobs"
	redisDelayedKey = "paintpos:queue:delayed"
)

// RedisDriver is the durable queue driver.
// Immediate jobs use LPUSH/BRPOP on a list.
// Delayed jobs use a sorted set scored by Unix timestamp.
type RedisDriver struct {
	rdb *redis.Client
}

// NewRedisDriver creates a Redis-backed driver and starts promoting
// delayed jobs until ctx is cancelled. Pass the client used by pkg/cache.
func NewRedisDriver(ctx context.Context, rdb *redis.Client) *RedisDriver {
	d := &RedisDriver{rdb: rdb}
	go d.promoteDelayedJobs(ctx)
	return d
}

// Push adds a job payload to the immediate queue (LPUSH).
func (d *RedisDriver) Push(ctx context.Context, payload []byte) error {
	if err := d.rdb.LPush(ctx, redisQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("queue/redis: push: %w", err)
	}
	return nil
}

// Pop blocks until a job is available (BRPOP with 5s timeout).
func (d *RedisDriver) Pop(ctx context.Context) ([]byte, error) {
	result, err := d.rdb.BRPop(ctx, 5*time.Second, redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // timeout, no jobs ready
		}
		return nil, fmt.Errorf("queue/redis: pop: %w", err)
	}
	if len(result) < 2 {
		return nil, nil
	}
	return []byte(result[1]), nil
}

// PushDelayed schedules a job to run after delay using a Redis sorted set.
func (d *RedisDriver) PushDelayed(ctx context.Context, payload []byte, delay time.Duration) error {
	runAt := float64(time.Now().Add(delay).Unix())
	if err := d.rdb.ZAdd(ctx, redisDelayedKey, redis.Z{
		Score:  runAt,
		Member: string(payload),
	}).Err(); err != nil {
		return fmt.Errorf("queue/redis: push delayed: %w", err)
	}
	return nil
}

// promoteDelayedJobs moves due jobs into the main queue once a second.
func (d *RedisDriver) promoteDelayedJobs(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		now := strconv.FormatInt(time.Now().Unix(), 10)
		jobs, err := d.rdb.ZRangeByScore(ctx, redisDelayedKey, &redis.ZRangeBy{
			Min: "-inf",
			Max: now,
		}).Result()
		if err != nil || len(jobs) == 0 {
			continue
		}
		pipe := d.rdb.TxPipeline()
		for _, job := range jobs {
			pipe.ZRem(ctx, redisDelayedKey, job)
			pipe.LPush(ctx, redisQueueKey, []byte(job))
		}
		pipe.Exec(ctx) //nolint:errcheck
	}
}
