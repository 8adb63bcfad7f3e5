// Package middleware holds the HTTP middleware shared by every route.
package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/paintpos/pkg/cache"
	"github.com/shashiranjanraj/paintpos/pkg/logger"
	"github.com/shashiranjanraj/paintpos/pkg/response"
)

// window is a fixed-window request count for one client.
type window struct {
	count   int
	resetAt time.Time
}

// limiter counts attempts per client. With Redis connected the count is
// shared by every server process; otherwise it lives in this process.
type limiter struct {
	name   string
	max    int
	period time.Duration

	mu      sync.Mutex
	windows map[string]*window
	sweptAt time.Time
}

func (l *limiter) allow(ctx context.Context, client string) (bool, time.Duration) {
	if cache.Available() {
		ok, retry, err := l.allowRedis(ctx, client)
		if err == nil {
			return ok, retry
		}
		logger.WithCtx(ctx).Warn("ratelimit: redis unavailable, counting locally", "error", err)
	}
	return l.allowLocal(client, time.Now())
}

func (l *limiter) allowRedis(ctx context.Context, client string) (bool, time.Duration, error) {
	key := "paintpos:ratelimit:" + l.name + ":" + client
	n, err := cache.RDB.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if n == 1 {
		if err := cache.RDB.Expire(ctx, key, l.period).Err(); err != nil {
			return false, 0, err
		}
	}
	if n <= int64(l.max) {
		return true, 0, nil
	}
	ttl, err := cache.RDB.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = l.period
	}
	return false, ttl, nil
}

func (l *limiter) allowLocal(client string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Drop expired windows at most once per period.
	if now.Sub(l.sweptAt) > l.period {
		for k, w := range l.windows {
			if now.After(w.resetAt) {
				delete(l.windows, k)
			}
		}
		l.sweptAt = now
	}

	w, ok := l.windows[client]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(l.period)}
		l.windows[client] = w
	}
	w.count++
	if w.count <= l.max {
		return true, 0
	}
	return false, w.resetAt.Sub(now)
}

// clientIP prefers the first X-Forwarded-For hop.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimit returns a middleware that allows each client IP max requests
// per period. Every call gets its own counters. The login route uses it to
// slow down password guessing:
//
//	middleware.RateLimit("login", 10, time.Minute)
func RateLimit(name string, max int, period time.Duration) func(http.Handler) http.Handler {
	l := &limiter{name: name, max: max, period: period, windows: map[string]*window{}}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retry := l.allow(r.Context(), clientIP(r))
			if !ok {
				secs := int(retry.Round(time.Second) / time.Second)
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				response.Error(w, http.StatusTooManyRequests, "Too many login attempts, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
