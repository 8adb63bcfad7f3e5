package ctx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"

	appctx "github.com/shashiranjanraj/paintpos/pkg/ctx"
	"github.com/shashiranjanraj/paintpos/pkg/session"
)

type input struct {
	Name string `json:"name"`
}

func (i input) Validate() error {
	return validation.ValidateStruct(&i, validation.Field(&i.Name, validation.Required))
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	var status int
	appctx.Wrap(func(c *appctx.Context) {
		c.Success(map[string]any{"id": 1})
		status = c.WrittenStatus()
	})(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, rec.Body.String(), `"data":{"id":1}`)
}

func TestBindJSONValid(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Boysen"}`))

	appctx.Wrap(func(c *appctx.Context) {
		var in input
		if !c.BindJSON(&in) {
			t.Error("expected BindJSON to succeed")
			return
		}
		assert.Equal(t, "Boysen", in.Name)
		c.Created(in)
	})(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestBindJSONInvalid(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))

	appctx.Wrap(func(c *appctx.Context) {
		var in input
		if c.BindJSON(&in) {
			t.Error("expected BindJSON to fail")
		}
	})(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	assert.Contains(t, rec.Body.String(), `"name"`)
}

func TestBindJSONMalformed(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	appctx.Wrap(func(c *appctx.Context) { c.BindJSON(&input{}) })(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParamAndQuery(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/products/{id}", appctx.Wrap(func(c *appctx.Context) {
		c.Success(map[string]string{"id": c.Param("id"), "q": c.DefaultQuery("q", "all")})
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/p9", nil))
	assert.Contains(t, rec.Body.String(), `"id":"p9"`)
	assert.Contains(t, rec.Body.String(), `"q":"all"`)
}

func TestClientIP(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")

	appctx.Wrap(func(c *appctx.Context) {
		assert.Equal(t, "1.2.3.4", c.ClientIP())
		c.NoContent()
	})(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSession(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(session.WithSession(context.Background(), &session.Session{ID: "s1", Role: "Staff"}))

	appctx.Wrap(func(c *appctx.Context) {
		sess, ok := c.Session()
		assert.True(t, ok)
		assert.Equal(t, "s1", sess.ID)
		c.NotFound("Receipt missing")
	})(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Receipt missing")
}

func TestData(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Data(http.StatusOK, "application/pdf", []byte("%PDF-1.3"))
	})(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.3", rec.Body.String())
}
