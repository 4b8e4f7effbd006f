package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	m := NewJWTManager("secret", "collab-novel-api", time.Hour)

	token, err := m.GenerateToken("user-1", "validuser")
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "validuser", claims.Username)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "collab-novel-api", claims.Issuer)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret", "collab-novel-api", time.Hour).GenerateToken("user-1", "validuser")
	require.NoError(t, err)

	_, err = NewJWTManager("other", "collab-novel-api", time.Hour).ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsWrongIssuer(t *testing.T) {
	token, err := NewJWTManager("secret", "someone-else", time.Hour).GenerateToken("user-1", "validuser")
	require.NoError(t, err)

	_, err = NewJWTManager("secret", "collab-novel-api", time.Hour).ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenExpired(t *testing.T) {
	m := NewJWTManager("secret", "collab-novel-api", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.GenerateToken("user-1", "validuser")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ParseToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := NewJWTManager("secret", "", time.Hour).ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
