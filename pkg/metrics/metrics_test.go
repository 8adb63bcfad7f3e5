package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/paintpos/pkg/metrics"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.Middleware())
	r.Get("/api/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(metrics.RequestTotal.WithLabelValues("GET", "/api/products/{id}", "404"))
	for _, id := range []string{"a1", "b2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/"+id, nil))
	}
	after := testutil.ToFloat64(metrics.RequestTotal.WithLabelValues("GET", "/api/products/{id}", "404"))
	assert.Equal(t, before+2, after)
}

func TestHandlerServesRegistry(t *testing.T) {
	metrics.SSEClients.Set(3)
	defer metrics.SSEClients.Set(0)

	rec := httptest.NewRecorder()
	metrics.Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "paintpos_sse_clients 3"), body)
	assert.Contains(t, body, "go_goroutines")
}
