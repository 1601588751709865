package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken(42, "somebody", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "somebody", claims.Username)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken(42, "somebody", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsTampered(t *testing.T) {
	token, err := GenerateToken(42, "somebody", time.Hour)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = ParseToken(tampered)
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.True(t, CheckPassword(hash, "password123"))
	assert.False(t, CheckPassword(hash, "password124"))
}

func TestSanitizeStripsMarkup(t *testing.T) {
	out := Sanitize(`hello <script>alert(1)</script><b>world</b>`)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "world")
}

func TestBlacklistToken(t *testing.T) {
	token := "opaque-test-token-" + time.Now().Format(time.RFC3339Nano)
	assert.False(t, IsTokenBlacklisted(token))

	BlacklistToken(token, time.Now().Add(time.Hour))
	assert.True(t, IsTokenBlacklisted(token))

	// Tokens already past their natural expiry are not stored at all.
	expired := token + "-expired"
	BlacklistToken(expired, time.Now().Add(-time.Minute))
	assert.False(t, IsTokenBlacklisted(expired))
}

func TestResetTokenSingleUse(t *testing.T) {
	token := IssueResetToken(7)
	require.NotEmpty(t, token)

	userID, ok := ConsumeResetToken(token)
	require.True(t, ok)
	assert.Equal(t, uint(7), userID)

	_, ok = ConsumeResetToken(token)
	assert.False(t, ok)

	_, ok = ConsumeResetToken("never-issued")
	assert.False(t, ok)
}
