package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"promptforge.app/server/internal/crypto"
	"promptforge.app/server/internal/middleware"
	"promptforge.app/server/internal/repository"
	"promptforge.app/server/internal/utils"
)

// previewThreshold is the minimum plaintext length that gets a partial
// preview. At or below it the listing shows the fully masked placeholder,
// since first-7/last-4 of a short secret would reveal most of it.
const previewThreshold = 11

const maskedPlaceholder = "****"

// APIKeyHandler manages per-user encrypted API keys. Plaintext key material
// exists only transiently inside a request: it arrives in a save, or is
// produced by an on-demand decrypt, and is never persisted or logged.
type APIKeyHandler struct {
	Cipher *crypto.Cipher
	Repo   *repository.APIKeyRepo
}

func NewAPIKeyHandler(cipher *crypto.Cipher, repo *repository.APIKeyRepo) *APIKeyHandler {
	return &APIKeyHandler{Cipher: cipher, Repo: repo}
}

type saveKeyReq struct {
	APIKey string `json:"apiKey"`
}

type keyPreviewResp struct {
	KeyName   string `json:"keyName"`
	Preview   string `json:"preview"`
	UpdatedAt string `json:"updatedAt"`
}

// List returns masked previews of the caller's keys. Each row is decrypted
// only to derive the preview; a decryption failure (tampered row, replaced
// master key) degrades to the masked placeholder rather than an error.
func (h *APIKeyHandler) List(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	keys, err := h.Repo.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "listing keys failed"})
	}

	out := make([]keyPreviewResp, 0, len(keys))
	for _, k := range keys {
		preview := maskedPlaceholder
		if plain, err := h.Cipher.Decrypt(k.EncryptedKey, k.IV, k.AuthTag); err == nil {
			preview = maskKey(plain)
		}
		out = append(out, keyPreviewResp{KeyName: k.KeyName, Preview: preview, UpdatedAt: k.UpdatedAt})
	}
	return c.JSON(http.StatusOK, out)
}

// Save encrypts and upserts a key under the name in the URL.
func (h *APIKeyHandler) Save(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	keyName := c.Param("keyName")
	if !utils.ValidKeyName(keyName) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid key name"})
	}

	var req saveKeyReq
	if err := c.Bind(&req); err != nil || req.APIKey == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "apiKey is required"})
	}

	encrypted, iv, authTag, err := h.Cipher.Encrypt(req.APIKey)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "saving key failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.Upsert(ctx, uid, keyName, encrypted, iv, authTag); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "saving key failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "API key saved"})
}

// Delete removes a key. Unknown names succeed silently.
func (h *APIKeyHandler) Delete(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.Delete(ctx, uid, c.Param("keyName")); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deleting key failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// maskKey renders the masked display form: first 7 and last 4 characters
// with an ellipsis, or the placeholder for anything short enough that a
// partial reveal would give the whole secret away.
func maskKey(plain string) string {
	if len(plain) <= previewThreshold {
		return maskedPlaceholder
	}
	return plain[:7] + "..." + plain[len(plain)-4:]
}
