package model

// APIKey mirrors the 'user_api_keys' table. The three cipher fields were
// produced together by one encryption call and are only ever replaced
// together by a full re-encrypt; any one of them alone is useless.
type APIKey struct {
	ID           int64
	UserID       int64
	KeyName      string // short identifier, defaults to "anthropic"
	EncryptedKey string // hex ciphertext
	IV           string // hex 96-bit nonce
	AuthTag      string // hex 128-bit GCM tag
	CreatedAt    string
	UpdatedAt    string
}
