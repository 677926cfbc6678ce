package utils

import (
	"errors"
	"regexp"
)

// Input validation for registration and profile updates. Every rule here is
// checked before any row is written, and each failure carries a message
// specific enough for the user to fix the input.

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

var (
	ErrUsernameLength  = errors.New("username must be 3-30 characters")
	ErrUsernameCharset = errors.New("username can only contain letters, numbers, hyphens, and underscores")
	ErrEmailFormat     = errors.New("invalid email format")
	ErrPasswordLength  = errors.New("password must be at least 8 characters")
)

// ValidateUsername enforces the 3-30 character length and the
// letters/digits/hyphen/underscore charset.
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 30 {
		return ErrUsernameLength
	}
	if !usernamePattern.MatchString(username) {
		return ErrUsernameCharset
	}
	return nil
}

// ValidateEmail checks the basic local@domain.tld shape. Anything stricter
// rejects real addresses; deliverability is not this server's problem.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrEmailFormat
	}
	return nil
}

// ValidatePassword enforces the minimum length. No composition rules.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrPasswordLength
	}
	return nil
}

// ValidKeyName reports whether an API key name uses the allowed charset.
func ValidKeyName(name string) bool {
	return name != "" && usernamePattern.MatchString(name)
}
