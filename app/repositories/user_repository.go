package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/paintpos/app/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository handles database operations for User.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// Create persists a new user record.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// FirstOrCreate inserts user unless the email already exists.
func (r *UserRepository) FirstOrCreate(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where(models.User{Email: user.Email}).FirstOrCreate(user).Error
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}
