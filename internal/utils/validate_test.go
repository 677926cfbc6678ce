package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	cases := []struct {
		name     string
		username string
		want     error
	}{
		{"ok simple", "alice", nil},
		{"ok mixed", "Alice_Cooper-99", nil},
		{"ok minimum", "abc", nil},
		{"ok maximum", strings.Repeat("a", 30), nil},
		{"too short", "ab", ErrUsernameLength},
		{"too long", strings.Repeat("a", 31), ErrUsernameLength},
		{"spaces", "alice cooper", ErrUsernameCharset},
		{"symbols", "alice!", ErrUsernameCharset},
		{"unicode", "алиса", ErrUsernameCharset},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, ValidateUsername(tc.username), tc.want)
		})
	}
}

func TestValidateEmail(t *testing.T) {
	for _, ok := range []string{"alice@x.com", "a.b+c@sub.domain.org"} {
		require.NoError(t, ValidateEmail(ok), ok)
	}
	for _, bad := range []string{"", "alice", "alice@x", "a b@x.com", "@x.com", "alice@.com "} {
		require.ErrorIs(t, ValidateEmail(bad), ErrEmailFormat, bad)
	}
}

func TestValidatePassword(t *testing.T) {
	require.NoError(t, ValidatePassword("password123"))
	require.NoError(t, ValidatePassword("12345678"))
	require.ErrorIs(t, ValidatePassword("1234567"), ErrPasswordLength)
	require.ErrorIs(t, ValidatePassword(""), ErrPasswordLength)
}

func TestValidKeyName(t *testing.T) {
	require.True(t, ValidKeyName("anthropic"))
	require.True(t, ValidKeyName("openai_backup-2"))
	require.False(t, ValidKeyName(""))
	require.False(t, ValidKeyName("bad name"))
	require.False(t, ValidKeyName("bad/name"))
}
