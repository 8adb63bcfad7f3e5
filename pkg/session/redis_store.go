package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions as JSON strings that expire with the session.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "paintpos:session:"}
}

func (r *RedisStore) key(id string) string { return r.prefix + id }

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	ttl := s.TTL(time.Now())
	if ttl <= 0 {
		return fmt.Errorf("session: save: already expired")
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	if err := r.client.Set(ctx, r.key(s.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("session: redis save: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis get: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("session: unmarshal: %w", err)
	}
	if s.Expired(time.Now()) {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("session: redis delete: %w", err)
	}
	return nil
}
