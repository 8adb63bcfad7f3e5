package sse_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/paintpos/pkg/sse"
)

func TestBrokerStreamsPublishedEvents(t *testing.T) {
	b := sse.NewBroker()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, b.Publish("low_stock", []map[string]int{{"stock": 2}}))

	sc := bufio.NewScanner(res.Body)
	var lines []string
	for sc.Scan() {
		if sc.Text() == "" {
			break
		}
		lines = append(lines, sc.Text())
	}
	assert.Equal(t, []string{"event: low_stock", `data: [{"stock":2}]`}, lines)

	cancel()
	assert.Eventually(t, func() bool { return b.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestPublishWithoutClients(t *testing.T) {
	b := sse.NewBroker()
	assert.NoError(t, b.Publish("product_changed", map[string]string{"id": "p1"}))
	assert.Error(t, b.Publish("bad", func() {}))
}

func TestNewRejectsNonFlusher(t *testing.T) {
	w := &plainWriter{header: http.Header{}}
	assert.Nil(t, sse.New(w, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, http.StatusInternalServerError, w.status)
	assert.True(t, strings.Contains(w.body.String(), "SSE not supported"))
}

type plainWriter struct {
	header http.Header
	status int
	body   strings.Builder
}

func (w *plainWriter) Header() http.Header         { return w.header }
func (w *plainWriter) Write(b []byte) (int, error) { return w.body.Write(b) }
func (w *plainWriter) WriteHeader(code int)        { w.status = code }
