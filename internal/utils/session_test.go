package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("password123", 4)
	require.NoError(t, err)
	require.NotEqual(t, "password123", hash)

	require.True(t, VerifyPassword(hash, "password123"))
	require.False(t, VerifyPassword(hash, "password124"))
	require.False(t, VerifyPassword(hash, ""))
}

func TestHashPassword_FreshSaltEachTime(t *testing.T) {
	h1, err := HashPassword("password123", 4)
	require.NoError(t, err)
	h2, err := HashPassword("password123", 4)
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)
}

func TestSessionCookie_RoundTrip(t *testing.T) {
	raw, err := NewSessionToken()
	require.NoError(t, err)
	require.Len(t, raw, 64)

	signed, err := SignSessionCookie("secret", raw, time.Now().Add(time.Hour))
	require.NoError(t, err)

	got, err := ParseSessionCookie("secret", signed)
	require.NoError(t, err)
	require.Equal(t, raw, got)
}

func TestSessionCookie_RejectsWrongSecret(t *testing.T) {
	raw, err := NewSessionToken()
	require.NoError(t, err)
	signed, err := SignSessionCookie("secret", raw, time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = ParseSessionCookie("other-secret", signed)
	require.Error(t, err)
}

func TestSessionCookie_RejectsExpired(t *testing.T) {
	raw, err := NewSessionToken()
	require.NoError(t, err)
	signed, err := SignSessionCookie("secret", raw, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = ParseSessionCookie("secret", signed)
	require.Error(t, err)
}

func TestSessionCookie_RejectsGarbage(t *testing.T) {
	_, err := ParseSessionCookie("secret", "not-a-jwt")
	require.Error(t, err)
}

func TestNewSessionToken_Unique(t *testing.T) {
	a, err := NewSessionToken()
	require.NoError(t, err)
	b, err := NewSessionToken()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestHashSessionToken_Deterministic(t *testing.T) {
	require.Equal(t, HashSessionToken("abc"), HashSessionToken("abc"))
	require.NotEqual(t, HashSessionToken("abc"), HashSessionToken("abd"))
	require.Len(t, HashSessionToken("abc"), 64)
}
