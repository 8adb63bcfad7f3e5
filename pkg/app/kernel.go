package app

import (
	"net/http"

	"github.com/shashiranjanraj/paintpos/config"
	"github.com/shashiranjanraj/paintpos/pkg/metrics"
	"github.com/shashiranjanraj/paintpos/pkg/middleware"
	"github.com/shashiranjanraj/paintpos/pkg/reqid"
	"github.com/shashiranjanraj/paintpos/pkg/router"
)

// NewRouter returns a router with the global middleware stack and k's
// routes mounted.
//
// Order, outermost first: metrics (total latency), recovery, request ID
// (before anything logs), logger, CORS.
func NewRouter(k Kernel) *router.Router {
	r := router.New()
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	cors := middleware.DefaultCORSOptions()
	cors.AllowedOrigins = middleware.ParseOrigins(config.Get("CORS_ALLOWED_ORIGINS", ""))
	r.Use(middleware.CORS(cors))
	k.Routes(r)
	return r
}

// BuildHandler is NewRouter(k).Handler().
func BuildHandler(k Kernel) http.Handler { return NewRouter(k).Handler() }
