// Package testkit drives the JSON API in tests. A Client sends requests
// straight into an http.Handler, keeps the bearer token after Login and
// decodes the response envelope.
//
//	c := testkit.New(t, app.BuildHandler(k))
//	c.Login("admin@inventory.com", "admin123")
//
//	res := c.Post("/api/products", map[string]any{"name": "Boysen Latex", "price": "450"})
//	res.AssertStatus(http.StatusCreated)
//	var p models.Product
//	res.Decode(&p)
package testkit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope mirrors the body every endpoint returns.
type Envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type Client struct {
	t       *testing.T
	handler http.Handler
	token   string
	headers map[string]string
}

func New(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	return &Client{t: t, handler: handler, headers: map[string]string{}}
}

// WithToken returns a copy of c that sends token instead of its own.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	cp.headers = make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		cp.headers[k] = v
	}
	return &cp
}

// SetHeader adds a header to every following request.
func (c *Client) SetHeader(key, value string) { c.headers[key] = value }

func (c *Client) Token() string { return c.token }

// Login posts the credentials and keeps the token. It fails the test on
// anything but 200.
func (c *Client) Login(email, password string) *Client {
	c.t.Helper()
	res := c.Post("/api/login", map[string]string{"email": email, "password": password})
	res.AssertStatus(http.StatusOK)
	var out struct {
		Token string `json:"token"`
	}
	res.Decode(&out)
	require.NotEmpty(c.t, out.Token, "login returned no token")
	c.token = out.Token
	return c
}

func (c *Client) Get(path string) *Response { return c.Do(http.MethodGet, path, nil) }

func (c *Client) Post(path string, body any) *Response { return c.Do(http.MethodPost, path, body) }

func (c *Client) Put(path string, body any) *Response { return c.Do(http.MethodPut, path, body) }

func (c *Client) Delete(path string) *Response { return c.Do(http.MethodDelete, path, nil) }

// Do sends one request. body is JSON-encoded unless it is nil or already
// a []byte.
func (c *Client) Do(method, path string, body any) *Response {
	c.t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		rd = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(c.t, err)
		rd = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return &Response{ResponseRecorder: rec, t: c.t}
}

// ─── Response ─────────────────────────────────────────────────────────────────

type Response struct {
	*httptest.ResponseRecorder
	t   *testing.T
	env *Envelope
}

// AssertStatus fails the test when the status differs, printing the body.
func (r *Response) AssertStatus(want int) *Response {
	r.t.Helper()
	assert.Equal(r.t, want, r.Code, "unexpected status, body: %s", r.Body.String())
	return r
}

// Envelope decodes the JSON envelope once.
func (r *Response) Envelope() *Envelope {
	r.t.Helper()
	if r.env == nil {
		var env Envelope
		require.NoError(r.t, json.Unmarshal(r.Body.Bytes(), &env), "body: %s", r.Body.String())
		r.env = &env
	}
	return r.env
}

// Decode unmarshals the envelope's data into v.
func (r *Response) Decode(v any) {
	r.t.Helper()
	data := r.Envelope().Data
	require.NotEmpty(r.t, data, "response has no data, body: %s", r.Body.String())
	require.NoError(r.t, json.Unmarshal(data, v))
}

func (r *Response) Message() string { return r.Envelope().Message }

func (r *Response) Errors() map[string]string { return r.Envelope().Errors }
