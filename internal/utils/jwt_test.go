package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	tok, err := NewToken(testSecret, "u-1", "rahim", "manager", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := ParseToken(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "rahim", claims.Username)
	assert.Equal(t, "manager", claims.Role)
	assert.Equal(t, "u-1", claims.Subject)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tok, err := NewToken(testSecret, "u-1", "rahim", "staff", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tok, err := NewToken(testSecret, "u-1", "rahim", "staff", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken(testSecret, "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("hunter22", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(h, "hunter22"))
	assert.False(t, VerifyPassword(h, "hunter23"))

	_, err = HashPassword("abc", 4)
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}
