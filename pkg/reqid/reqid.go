// Package reqid tags every request with an ID that travels in the context,
// in the X-Request-ID response header and in every log line written through
// logger.WithCtx(ctx).
//
//	r.Use(reqid.Middleware())
//
//	id := reqid.FromCtx(r.Context())
package reqid

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Header is the HTTP header name used to propagate the request ID.
const Header = "X-Request-ID"

const maxLen = 64

// New returns a UUID without dashes.
func New() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func WithValue(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromCtx returns the request ID, or "" outside a request.
func FromCtx(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}

// valid accepts what proxies commonly send: up to 64 letters, digits,
// dashes, underscores and dots. Anything else could forge log fields.
func valid(id string) bool {
	if id == "" || len(id) > maxLen {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}

// Middleware reuses a well-formed upstream X-Request-ID and generates one
// otherwise.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(Header)
			if !valid(id) {
				id = New()
			}
			w.Header().Set(Header, id)
			next.ServeHTTP(w, r.WithContext(WithValue(r.Context(), id)))
		})
	}
}
