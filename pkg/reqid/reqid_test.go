package reqid_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/paintpos/pkg/reqid"
)

func serve(header string) (seen string, rec *httptest.ResponseRecorder) {
	h := reqid.Middleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = reqid.FromCtx(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(reqid.Header, header)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec
}

func TestUpstreamIDIsReused(t *testing.T) {
	seen, rec := serve("lb-7f3a.01_x")
	assert.Equal(t, "lb-7f3a.01_x", seen)
	assert.Equal(t, "lb-7f3a.01_x", rec.Header().Get(reqid.Header))
}

func TestMalformedIDIsReplaced(t *testing.T) {
	for _, bad := range []string{"has space", "evil\" level=ERROR", strings.Repeat("a", 65)} {
		seen, rec := serve(bad)
		assert.NotEqual(t, bad, seen)
		assert.Len(t, seen, 32)
		assert.Equal(t, seen, rec.Header().Get(reqid.Header))
	}
}

func TestGeneratedWhenMissing(t *testing.T) {
	a, _ := serve("")
	b, _ := serve("")
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
