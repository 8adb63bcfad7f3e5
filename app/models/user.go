package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Role is the access tier of an account.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleStaff Role = "Staff"
)

// User is a login account. Password holds a bcrypt hash and is never
// serialised.
type User struct {
	ID        uint      `gorm:"primaryKey"                    json:"id"`
	Name      string    `gorm:"size:255;not null"             json:"name"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string    `gorm:"size:255;not null"             json:"-"`
	Role      Role      `gorm:"size:20;not null"              json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

func (User) TableName() string { return "users" }

func (u User) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Email, validation.Required, is.Email),
		validation.Field(&u.Role, validation.Required, validation.In(RoleAdmin, RoleStaff)),
	)
}
