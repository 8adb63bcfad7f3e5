package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/paintpos/pkg/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := auth.GenerateToken("sid-1", 7, "Staff", time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := auth.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", claims.SessionID)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "Staff", claims.Role)
}

func TestExpiredTokenRejected(t *testing.T) {
	tok, err := auth.GenerateToken("sid-1", 7, "Staff", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = auth.ValidateToken(tok)
	assert.Error(t, err)
}

func TestTamperedTokenRejected(t *testing.T) {
	tok, err := auth.GenerateToken("sid-1", 7, "Staff", time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = auth.ValidateToken(tok + "x")
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := auth.HashPassword("admin123")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(hash, "admin123"))
	assert.False(t, auth.CheckPassword(hash, "admin124"))
}
