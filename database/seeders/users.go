package seeders

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/app/repositories"
	"github.com/shashiranjanraj/paintpos/app/services"
	"github.com/shashiranjanraj/paintpos/pkg/auth"
)

// SeedUsers inserts the Admin and Staff accounts; existing emails are left
// untouched.
func SeedUsers(ctx context.Context, db *gorm.DB) error {
	repo := repositories.NewUserRepository(db)
	for _, acc := range services.DefaultAccounts() {
		hash, err := auth.HashPassword(acc.Password)
		if err != nil {
			return err
		}
		u := models.User{Name: acc.Name, Email: strings.ToLower(acc.Email), Password: hash, Role: acc.Role}
		if err := repo.FirstOrCreate(ctx, &u); err != nil {
			return err
		}
	}
	return nil
}
