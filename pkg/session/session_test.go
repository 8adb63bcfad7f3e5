package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/paintpos/pkg/session"
)

func TestNewSession(t *testing.T) {
	s, err := session.New(1, "admin@inventory.com", "Admin", "Admin", time.Hour)
	require.NoError(t, err)
	assert.Len(t, s.ID, 64)
	assert.False(t, s.Expired(time.Now()))
	assert.True(t, s.Expired(time.Now().Add(2*time.Hour)))

	other, _ := session.New(1, "admin@inventory.com", "Admin", "Admin", time.Hour)
	assert.NotEqual(t, s.ID, other.ID)
}

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	st := session.NewMemoryStore()

	s, err := session.New(2, "staff@inventory.com", "Staff", "Staff", time.Hour)
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, s))

	got, err := st.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "staff@inventory.com", got.Email)

	require.NoError(t, st.Delete(ctx, s.ID))
	_, err = st.Get(ctx, s.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestMemoryStoreExpires(t *testing.T) {
	ctx := context.Background()
	st := session.NewMemoryStore()

	s, err := session.New(2, "staff@inventory.com", "Staff", "Staff", time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, s))
	time.Sleep(5 * time.Millisecond)

	_, err = st.Get(ctx, s.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestContext(t *testing.T) {
	_, ok := session.FromCtx(context.Background())
	assert.False(t, ok)

	s := &session.Session{ID: "abc", Role: "Admin"}
	got, ok := session.FromCtx(session.WithSession(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)
}
