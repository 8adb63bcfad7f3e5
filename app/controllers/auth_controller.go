package controllers

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/shashiranjanraj/paintpos/app/services"
	"github.com/shashiranjanraj/paintpos/pkg/ctx"
	"github.com/shashiranjanraj/paintpos/pkg/rbac"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in loginInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required),
	)
}

func (a *AuthController) Login(c *ctx.Context) {
	var in loginInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := a.service.Login(c.Context(), in.Email, in.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(res)
}

func (a *AuthController) Logout(c *ctx.Context) {
	sess, _ := c.Session()
	if err := a.service.Logout(c.Context(), sess); err != nil {
		fail(c, err)
		return
	}
	c.Message("Logged out")
}

type meResponse struct {
	ID           uint              `json:"id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Role         string            `json:"role"`
	Capabilities []rbac.Capability `json:"capabilities"`
}

// Me returns the logged-in user and what their role may do, so a client can
// hide the controls it cannot use.
func (a *AuthController) Me(c *ctx.Context) {
	sess, ok := c.Session()
	if !ok {
		c.Unauthorized()
		return
	}
	c.Success(meResponse{
		ID:           sess.UserID,
		Name:         sess.Name,
		Email:        sess.Email,
		Role:         sess.Role,
		Capabilities: rbac.Capabilities(sess.Role),
	})
}
