package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session tokens are opaque 32-byte random values. The database stores only
// their SHA-256 hash; the client receives the raw value wrapped in a signed
// JWT so a tampered cookie is rejected before any database lookup.

// NewSessionToken returns a cryptographically random token as 64 hex chars.
func NewSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashSessionToken returns the SHA-256 hex digest stored in the sessions
// table.
func HashSessionToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// SignSessionCookie wraps the raw session token in an HS256 JWT signed with
// the session secret. The expiry mirrors the server-side row so a stale
// cookie fails fast.
func SignSessionCookie(secret, raw string, exp time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sid": raw,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseSessionCookie verifies the cookie signature and returns the raw
// session token. An invalid signature, wrong algorithm, expired claim or
// missing sid all yield an error; the caller treats any of them as "no
// session".
func ParseSessionCookie(secret, cookie string) (string, error) {
	tok, err := jwt.Parse(cookie, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", errors.New("invalid session cookie")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid session claims")
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", errors.New("missing session id")
	}
	return sid, nil
}
