package repository

import "errors"

// Sentinel errors returned by repositories. Handlers map these onto HTTP
// status codes; everything else bubbles up as a 500.
var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already taken")
	ErrEmailInUse    = errors.New("email already in use")
	ErrNotFound      = errors.New("not found")
)
