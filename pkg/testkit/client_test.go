package testkit_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/paintpos/pkg/ctx"
	"github.com/shashiranjanraj/paintpos/pkg/router"
	"github.com/shashiranjanraj/paintpos/pkg/testkit"
)

func echoRouter() http.Handler {
	r := router.New()
	r.Post("/api/login", "login", ctx.Wrap(func(c *ctx.Context) {
		c.Success(map[string]string{"token": "tok-1"})
	}))
	r.Get("/api/whoami", "whoami", ctx.Wrap(func(c *ctx.Context) {
		c.Success(map[string]string{
			"authorization": c.Header("Authorization"),
			"key":           c.Header("Idempotency-Key"),
		})
	}))
	r.Post("/api/fail", "fail", ctx.Wrap(func(c *ctx.Context) {
		c.ValidationError(map[string]string{"name": "cannot be blank"})
	}))
	return r.Handler()
}

func TestLoginKeepsToken(t *testing.T) {
	c := testkit.New(t, echoRouter()).Login("a@b.com", "pw")
	assert.Equal(t, "tok-1", c.Token())

	c.SetHeader("Idempotency-Key", "k1")
	var got map[string]string
	c.Get("/api/whoami").AssertStatus(http.StatusOK).Decode(&got)
	assert.Equal(t, "Bearer tok-1", got["authorization"])
	assert.Equal(t, "k1", got["key"])
}

func TestWithTokenDoesNotShareState(t *testing.T) {
	c := testkit.New(t, echoRouter())
	other := c.WithToken("tok-2")
	other.SetHeader("Idempotency-Key", "only-other")

	var got map[string]string
	c.Get("/api/whoami").Decode(&got)
	assert.Empty(t, got["authorization"])
	assert.Empty(t, got["key"])
}

func TestErrorsAreDecoded(t *testing.T) {
	res := testkit.New(t, echoRouter()).Post("/api/fail", []byte(`{}`))
	res.AssertStatus(http.StatusUnprocessableEntity)
	assert.Equal(t, "Validation failed", res.Message())
	assert.Equal(t, "cannot be blank", res.Errors()["name"])
}
