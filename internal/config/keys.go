package config

// keys.go provisions the two process-wide secrets: the 32-byte master key
// that encrypts stored API keys at rest, and the opaque secret that signs
// session cookies. Both are resolved once at startup — environment first,
// then the .env file, then generated and persisted. Once a master key has
// encrypted anything, losing or changing it makes every stored API key
// unrecoverable, which is why generated keys are written back to the .env
// file immediately.

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
)

const (
	encryptionKeyVar = "ENCRYPTION_KEY"
	sessionSecretVar = "SESSION_SECRET"
)

// masterKeyPattern matches a 32-byte key encoded as lowercase hex, the only
// form accepted from the .env file.
var masterKeyPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Keys is the immutable secret material resolved at startup. It is
// constructed once and passed by reference into the cipher and the session
// layer; nothing mutates it afterwards.
type Keys struct {
	EncryptionKey []byte // 32-byte AES-256 master key
	SessionSecret string // opaque signing secret for session cookies
}

// LoadOrCreateKeys resolves the master key and session secret. Resolution
// order per secret: process environment, then the .env file at envPath, then
// generation. A malformed value (wrong length or charset) is treated as
// absent rather than fatal, so resolution always produces usable keys.
//
// When a secret is generated, its NAME=value line is appended to the .env
// file without touching existing lines and without duplicating a name that
// is already present. The write is idempotent: once the file carries both
// secrets, subsequent calls read them back and write nothing.
func LoadOrCreateKeys(envPath string) (*Keys, error) {
	fileVals, err := godotenv.Read(envPath)
	if err != nil {
		fileVals = map[string]string{} // missing or unreadable file: fall through to generation
	}

	var pending []string // NAME=value lines to append

	key := masterKeyFromEnv()
	if key == nil {
		key = masterKeyFromFile(fileVals)
	}
	if key == nil {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate encryption key: %w", err)
		}
		if _, ok := fileVals[encryptionKeyVar]; !ok {
			pending = append(pending, encryptionKeyVar+"="+hex.EncodeToString(key))
		}
	}

	secret := os.Getenv(sessionSecretVar)
	if secret == "" {
		secret = strings.TrimSpace(fileVals[sessionSecretVar])
	}
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		secret = hex.EncodeToString(buf)
		if _, ok := fileVals[sessionSecretVar]; !ok {
			pending = append(pending, sessionSecretVar+"="+secret)
		}
	}

	if len(pending) > 0 {
		if err := appendEnvLines(envPath, pending); err != nil {
			return nil, err
		}
		log.Printf("config: generated %s in %s; keep this file safe, stored API keys cannot be recovered without it",
			strings.Join(names(pending), " and "), envPath)
	}

	return &Keys{EncryptionKey: key, SessionSecret: secret}, nil
}

// masterKeyFromEnv returns the key from the ENCRYPTION_KEY environment
// variable, or nil when it is unset or malformed.
func masterKeyFromEnv() []byte {
	v := os.Getenv(encryptionKeyVar)
	if len(v) != 64 {
		return nil
	}
	key, err := hex.DecodeString(v)
	if err != nil {
		return nil
	}
	return key
}

// masterKeyFromFile returns the key parsed out of the .env values, or nil
// when absent or malformed.
func masterKeyFromFile(vals map[string]string) []byte {
	v := strings.TrimSpace(vals[encryptionKeyVar])
	if !masterKeyPattern.MatchString(v) {
		return nil
	}
	key, _ := hex.DecodeString(v)
	return key
}

// appendEnvLines adds the given NAME=value lines to the file at path,
// preserving existing content and terminating the result with exactly one
// trailing newline.
func appendEnvLines(path string, lines []string) error {
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", path, err)
	}

	content := strings.TrimRight(string(existing), "\n")
	for _, line := range lines {
		if content != "" {
			content += "\n"
		}
		content += line
	}
	content += "\n"

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func names(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if i := strings.IndexByte(l, '='); i > 0 {
			out = append(out, l[:i])
		}
	}
	return out
}
