// Package ctx provides a single request context for handlers.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a *Context with helpers for reading the request and writing the
// JSON envelope:
//
//	func ShowProduct(c *ctx.Context) {
//	    p, err := products.Get(c.Context(), c.Param("id"))
//	    ...
//	    c.Success(p)
//	}
//
//	router.Get("/products/{id}", "products.show", ctx.Wrap(ShowProduct))
package ctx

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/paintpos/pkg/bind"
	"github.com/shashiranjanraj/paintpos/pkg/response"
	"github.com/shashiranjanraj/paintpos/pkg/session"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc so it can be
// passed to any router method.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// ─── Context ──────────────────────────────────────────────────────────────────

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int // written status code (0 = not written yet)
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter (e.g. "/products/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// Query returns a query-string value. Returns "" if not present.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// DefaultQuery returns a query-string value, or def if it is empty.
func (c *Context) DefaultQuery(key, def string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return def
}

// Header returns the value of a request header.
func (c *Context) Header(key string) string {
	return c.R.Header.Get(key)
}

// ClientIP returns the real client IP, respecting X-Forwarded-For.
func (c *Context) ClientIP() string {
	if fwd := c.R.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if real := c.R.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	ip := c.R.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Session returns the login attached by middleware.Authenticate.
func (c *Context) Session() (*session.Session, bool) {
	return session.FromCtx(c.R.Context())
}

// ─── Binding ──────────────────────────────────────────────────────────────────

// BindJSON decodes the JSON body into dest and runs validation.
// On validation failure it sends a 422; on a decode error a 400. It returns
// true only when dest is valid and ready to use.
//
//	var input productInput
//	if !c.BindJSON(&input) {
//	    return // response already sent
//	}
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if len(errs) > 0 {
		c.ValidationError(errs)
		return false
	}
	return true
}

// ─── Response helpers ─────────────────────────────────────────────────────────

type statusRecorder struct {
	http.ResponseWriter
	c *Context
}

func (s statusRecorder) WriteHeader(code int) {
	s.c.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (c *Context) out() http.ResponseWriter { return statusRecorder{ResponseWriter: c.W, c: c} }

// Success sends a 200 JSON envelope: {"status":200,"data":...}
func (c *Context) Success(data any) { response.Success(c.out(), data) }

// Created sends a 201 JSON envelope.
func (c *Context) Created(data any) { response.Created(c.out(), data) }

// Respond sends an envelope with a message and data under any status.
func (c *Context) Respond(code int, message string, data any) {
	response.Respond(c.out(), code, message, data)
}

// Message sends a 200 envelope carrying only a message.
func (c *Context) Message(msg string) { response.Message(c.out(), msg) }

// Error sends a JSON error envelope with the given status and message.
func (c *Context) Error(code int, message string) { response.Error(c.out(), code, message) }

// ErrorWith sends an error envelope that also carries data.
func (c *Context) ErrorWith(code int, message string, data any) {
	response.ErrorWith(c.out(), code, message, data)
}

// ValidationError sends a 422 Unprocessable Entity with field-level errors.
func (c *Context) ValidationError(errs map[string]string) { response.ValidationError(c.out(), errs) }

// Unauthorized sends a 401.
func (c *Context) Unauthorized() { response.Unauthorized(c.out()) }

// Forbidden sends a 403.
func (c *Context) Forbidden() { response.Forbidden(c.out()) }

// NotFound sends a 404, optionally with a custom message.
func (c *Context) NotFound(message ...string) {
	if len(message) > 0 {
		c.Error(http.StatusNotFound, message[0])
		return
	}
	response.NotFound(c.out())
}

// NoContent sends a 204.
func (c *Context) NoContent() {
	c.status = http.StatusNoContent
	c.W.WriteHeader(http.StatusNoContent)
}

// Data writes raw bytes, e.g. a rendered PDF.
func (c *Context) Data(code int, contentType string, body []byte) {
	c.W.Header().Set("Content-Type", contentType)
	c.W.Header().Set("Content-Length", fmt.Sprint(len(body)))
	c.W.WriteHeader(code)
	c.status = code
	_, _ = c.W.Write(body)
}

// WrittenStatus returns the HTTP status code that was written to the response,
// or 0 if no response has been written yet.
func (c *Context) WrittenStatus() int { return c.status }
