package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 30, "issue-tracker")
	token, expiresAt, err := tm.GenerateToken("user-1", "ada@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "issue-tracker", claims.Issuer)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret", 30, "").GenerateToken("user-1", "")
	require.NoError(t, err)

	_, err = NewTokenManager("other", 30, "").ParseToken(token)
	assert.Error(t, err)
}

func TestTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", 1, "")
	token, _, err := tm.GenerateToken("user-1", "")
	require.NoError(t, err)

	tm.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestTokenRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("secret", 30, "").ParseToken("not.a.jwt")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Secret1", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "Secret1"))
	assert.Error(t, ComparePassword(hash, "secret1"))
}
