package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/shashiranjanraj/paintpos/pkg/logger"
	"github.com/shashiranjanraj/paintpos/pkg/metrics"
	"github.com/shashiranjanraj/paintpos/pkg/response"
)

var panicsTotal = metrics.NewCounter(metrics.Namespace, "http_panics_total",
	"Handler panics recovered by the Recovery middleware.", []string{"path"})

// Recovery turns a handler panic into a logged 500. It sits outside the
// Logger so a panicking request is still counted by metrics.
//
//	r.Use(metrics.Middleware())
//	r.Use(middleware.Recovery)
//	r.Use(reqid.Middleware())
//	r.Use(middleware.Logger)
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			// Let the server abort the connection as it would without us.
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			panicsTotal.WithLabelValues(r.URL.Path).Inc()
			logger.WithCtx(r.Context()).Error("panic recovered",
				"error", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
				"method", r.Method,
				"path", r.URL.Path,
			)
			response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		}()
		next.ServeHTTP(w, r)
	})
}
