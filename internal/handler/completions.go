package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"promptforge.app/server/internal/crypto"
	"promptforge.app/server/internal/middleware"
	"promptforge.app/server/internal/repository"
)

const (
	defaultMessagesURL = "https://api.anthropic.com/v1/messages"
	defaultModel       = "claude-sonnet-4-5-20250929"
	anthropicVersion   = "2023-06-01"
)

// CompletionHandler proxies prompts to the Anthropic Messages API using the
// caller's stored key, so the browser never sees the plaintext secret. This
// is the one path where a decrypt failure is surfaced rather than masked:
// the user has to re-save the key before the proxy can work.
type CompletionHandler struct {
	Cipher *crypto.Cipher
	Keys   *repository.APIKeyRepo

	// BaseURL and Client exist so tests can point the proxy at a local server.
	BaseURL string
	Client  *http.Client
}

func NewCompletionHandler(cipher *crypto.Cipher, keys *repository.APIKeyRepo) *CompletionHandler {
	return &CompletionHandler{
		Cipher:  cipher,
		Keys:    keys,
		BaseURL: defaultMessagesURL,
		Client:  &http.Client{Timeout: 2 * time.Minute},
	}
}

type completionReq struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
}

// Create forwards one prompt and relays the upstream response verbatim,
// including upstream error statuses.
func (h *CompletionHandler) Create(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	var req completionReq
	if err := c.Bind(&req); err != nil || req.Prompt == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "prompt is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	row, err := h.Keys.Get(ctx, uid, "anthropic")
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no Anthropic API key configured. Add one in account settings."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "completion failed"})
	}

	apiKey, err := h.Cipher.Decrypt(row.EncryptedKey, row.IV, row.AuthTag)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "API key unavailable, please re-save it"})
	}

	model := req.Model
	if model == "" {
		model = defaultModel
	}
	payload, err := json.Marshal(map[string]any{
		"model":      model,
		"max_tokens": 4096,
		"messages":   []map[string]string{{"role": "user", "content": req.Prompt}},
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "completion failed"})
	}

	upReq, err := http.NewRequestWithContext(c.Request().Context(), http.MethodPost, h.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "completion failed"})
	}
	upReq.Header.Set("Content-Type", "application/json")
	upReq.Header.Set("x-api-key", apiKey)
	upReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := h.Client.Do(upReq)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "upstream request failed"})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "upstream request failed"})
	}
	return c.JSONBlob(resp.StatusCode, body)
}
