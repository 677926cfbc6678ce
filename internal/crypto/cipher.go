// Package crypto implements the authenticated encryption used for API keys
// at rest: AES-256-GCM under the single master key provisioned at startup.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	nonceSize = 12 // 96-bit nonce, the GCM standard size
	tagSize   = 16 // 128-bit authentication tag
)

// ErrDecrypt is returned when ciphertext fails authentication. It means the
// data was tampered with or was encrypted under a different master key;
// callers should treat the secret as unavailable and ask the user to re-save
// it, never retry.
var ErrDecrypt = errors.New("crypto: decryption failed")

// Cipher encrypts and decrypts short strings under a fixed 256-bit key. It
// is safe for concurrent use; every Encrypt call draws its own nonce.
type Cipher struct {
	aead cipher.AEAD
}

// New builds a Cipher from a 32-byte master key.
func New(key []byte) (*Cipher, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("crypto: master key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext with a fresh random nonce and returns ciphertext,
// nonce and authentication tag as separate hex strings. All three must be
// persisted together; any one alone is insufficient to decrypt.
func (c *Cipher) Encrypt(plaintext string) (ciphertext, iv, authTag string, err error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", "", "", err
	}

	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	return hex.EncodeToString(ct), hex.EncodeToString(nonce), hex.EncodeToString(tag), nil
}

// Decrypt reverses Encrypt. Any decoding problem or tag mismatch yields
// ErrDecrypt; the caller learns nothing about which part failed.
func (c *Cipher) Decrypt(ciphertext, iv, authTag string) (string, error) {
	ct, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecrypt
	}
	nonce, err := hex.DecodeString(iv)
	if err != nil || len(nonce) != nonceSize {
		return "", ErrDecrypt
	}
	tag, err := hex.DecodeString(authTag)
	if err != nil || len(tag) != tagSize {
		return "", ErrDecrypt
	}

	plain, err := c.aead.Open(nil, nonce, append(ct, tag...), nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}
