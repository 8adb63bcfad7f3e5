package middleware

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/paintpos/pkg/auth"
	"github.com/shashiranjanraj/paintpos/pkg/logger"
	"github.com/shashiranjanraj/paintpos/pkg/response"
	"github.com/shashiranjanraj/paintpos/pkg/session"
)

// Authenticate resolves the bearer token to a live session and attaches it
// to the request context. A token whose session was revoked at logout is
// rejected even if the JWT itself has not expired.
func Authenticate(sessions session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearer(r)
			if token == "" {
				response.Unauthorized(w)
				return
			}

			claims, err := auth.ValidateToken(token)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			sess, err := sessions.Get(r.Context(), claims.SessionID)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "Session expired")
				return
			}

			ctx := session.WithSession(r.Context(), sess)
			ctx = logger.InjectLogger(ctx, logger.WithCtx(ctx).With("user", sess.Email, "role", sess.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	// Websocket clients cannot set headers.
	return r.URL.Query().Get("token")
}
