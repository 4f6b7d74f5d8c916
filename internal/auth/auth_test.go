package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techmart/backend/internal/cfg"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager(&cfg.AuthCfg{JWTSecret: "test-secret", TokenTTL: time.Hour})

	token, err := m.Issue(42, "admin@example.com", true)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
}

func TestParseRejectsForeignSignature(t *testing.T) {
	issuer := NewTokenManager(&cfg.AuthCfg{JWTSecret: "secret-a", TokenTTL: time.Hour})
	verifier := NewTokenManager(&cfg.AuthCfg{JWTSecret: "secret-b", TokenTTL: time.Hour})

	token, err := issuer.Issue(1, "user@example.com", false)
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewTokenManager(&cfg.AuthCfg{JWTSecret: "test-secret", TokenTTL: -time.Minute})

	token, err := m.Issue(1, "user@example.com", false)
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.Error(t, err)
}

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotContains(t, hash, "s3cret-pass")

	ok, err := VerifyPassword(hash, "s3cret-pass")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "wrong-pass")
	require.NoError(t, err)
	assert.False(t, ok)
}
