// Package session keeps server-side login sessions. A session is created at
// login, looked up on every authenticated request and destroyed at logout.
//
// Usage:
//
//	sess, _ := session.New(user.ID, user.Email, user.Name, string(user.Role), config.SessionTTL())
//	_ = store.Save(ctx, sess)
//
//	ctx = session.WithSession(ctx, sess)
//	sess, ok := session.FromCtx(ctx)
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

// ErrNotFound is returned for unknown, expired or revoked sessions.
var ErrNotFound = errors.New("session: not found")

// Session is one authenticated login.
type Session struct {
	ID        string    `json:"id"`
	UserID    uint      `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// New builds a session with a random 32-byte hex ID.
func New(userID uint, email, name, role string, ttl time.Duration) (*Session, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		UserID:    userID,
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

func (s *Session) Expired(now time.Time) bool { return !now.Before(s.ExpiresAt) }

// TTL is the time left before expiry.
func (s *Session) TTL(now time.Time) time.Duration { return s.ExpiresAt.Sub(now) }

func newID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Store persists sessions.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// ------------------- Context -------------------

type ctxKey struct{}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromCtx returns the session attached by the auth middleware.
func FromCtx(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
