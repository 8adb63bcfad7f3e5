package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/paintpos/app/models"
	"github.com/shashiranjanraj/paintpos/app/pos"
	"github.com/shashiranjanraj/paintpos/app/repositories"
	"github.com/shashiranjanraj/paintpos/config"
	"github.com/shashiranjanraj/paintpos/pkg/auth"
	"github.com/shashiranjanraj/paintpos/pkg/logger"
	"github.com/shashiranjanraj/paintpos/pkg/session"
)

// ErrInvalidCredentials hides whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserDirectory looks up login accounts.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// Account is a configured login used by StaticDirectory.
type Account struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

// DefaultAccounts returns the Admin and Staff logins from config.
func DefaultAccounts() []Account {
	return []Account{
		{
			Name:     "Administrator",
			Email:    config.Get("ADMIN_EMAIL", "admin@inventory.com"),
			Password: config.Get("ADMIN_PASSWORD", "admin123"),
			Role:     models.RoleAdmin,
		},
		{
			Name:     "Staff",
			Email:    config.Get("STAFF_EMAIL", "staff@inventory.com"),
			Password: config.Get("STAFF_PASSWORD", "staff123"),
			Role:     models.RoleStaff,
		},
	}
}

// StaticDirectory is an in-memory directory for stores without a users
// table. Passwords are hashed once at construction.
type StaticDirectory struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewStaticDirectory(accounts []Account) (*StaticDirectory, error) {
	d := &StaticDirectory{users: make(map[string]models.User, len(accounts))}
	for i, a := range accounts {
		hash, err := auth.HashPassword(a.Password)
		if err != nil {
			return nil, fmt.Errorf("auth: hash password for %s: %w", a.Email, err)
		}
		email := normalizeEmail(a.Email)
		d.users[email] = models.User{
			ID:       uint(i + 1),
			Name:     a.Name,
			Email:    email,
			Password: hash,
			Role:     a.Role,
		}
	}
	return d, nil
}

func (d *StaticDirectory) FindByEmail(_ context.Context, email string) (models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[normalizeEmail(email)]
	if !ok {
		return models.User{}, repositories.ErrUserNotFound
	}
	return u, nil
}

// LoginResult is what a successful login returns to the client.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

// AuthService owns the session lifecycle: created at login, destroyed at
// logout together with the session's cart.
type AuthService struct {
	users     UserDirectory
	sessions  session.Store
	registers *pos.Registers
	ttl       time.Duration
}

func NewAuthService(users UserDirectory, sessions session.Store, registers *pos.Registers) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		registers: registers,
		ttl:       config.SessionTTL(),
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	log := logger.WithCtx(ctx)

	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repositories.ErrUserNotFound) {
		log.Info("auth: login rejected", "email", email, "reason", "unknown user")
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("auth: lookup: %w", err)
	}
	if !auth.CheckPassword(user.Password, password) {
		log.Info("auth: login rejected", "email", email, "reason", "bad password")
		return LoginResult{}, ErrInvalidCredentials
	}

	sess, err := session.New(user.ID, user.Email, user.Name, string(user.Role), s.ttl)
	if err != nil {
		return LoginResult{}, fmt.Errorf("auth: new session: %w", err)
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return LoginResult{}, err
	}

	token, err := auth.GenerateToken(sess.ID, user.ID, string(user.Role), sess.ExpiresAt)
	if err != nil {
		return LoginResult{}, fmt.Errorf("auth: sign token: %w", err)
	}

	log.Info("auth: login", "user_id", user.ID, "role", string(user.Role))
	return LoginResult{Token: token, ExpiresAt: sess.ExpiresAt, User: user}, nil
}

// Logout revokes the session and discards its cart.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return nil
	}
	if s.registers != nil {
		s.registers.Drop(sess.ID)
	}
	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("auth: logout", "user_id", sess.UserID)
	return nil
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }
