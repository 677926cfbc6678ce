package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"promptforge.app/server/internal/config"
	"promptforge.app/server/internal/middleware"
	"promptforge.app/server/internal/queue"
	"promptforge.app/server/internal/repository"
)

// descriptionLimit caps the stored prompt description; the UI only ever
// shows this much.
const descriptionLimit = 40

// PromptHandler serves saved prompts and the public community listing. The
// community listing may be cached in Redis; every mutation that can change
// it drops the cache entry, so the TTL only covers crashes between the two.
type PromptHandler struct {
	Repo   *repository.PromptRepo
	Events *queue.Publisher
	Cache  *redis.Client // nil disables caching
	CacheCfg config.CacheConfig
}

func NewPromptHandler(repo *repository.PromptRepo, ev *queue.Publisher, cache *redis.Client, cacheCfg config.CacheConfig) *PromptHandler {
	return &PromptHandler{Repo: repo, Events: ev, Cache: cache, CacheCfg: cacheCfg}
}

type createPromptReq struct {
	Description string          `json:"description"`
	FormData    json.RawMessage `json:"formData"`
	IsPublic    bool            `json:"isPublic"`
}
type visibilityReq struct {
	IsPublic bool `json:"isPublic"`
}

type promptResp struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	FormData    json.RawMessage `json:"formData"`
	CreatedAt   string          `json:"createdAt"`
	IsPublic    bool            `json:"isPublic"`
}

type publicPromptResp struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	FormData    json.RawMessage `json:"formData"`
	CreatedAt   string          `json:"createdAt"`
	Author      promptAuthor    `json:"author"`
}
type promptAuthor struct {
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
}

// List returns the caller's prompts, newest first.
func (h *PromptHandler) List(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	prompts, err := h.Repo.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "listing prompts failed"})
	}

	out := make([]promptResp, 0, len(prompts))
	for _, p := range prompts {
		out = append(out, promptResp{
			ID: p.ID, Description: p.Description, FormData: json.RawMessage(p.FormData),
			CreatedAt: p.CreatedAt, IsPublic: p.IsPublic,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// ListPublic returns every shared prompt with its author. No authentication
// required; this is the community browse page.
func (h *PromptHandler) ListPublic(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if body, ok := h.cacheGet(ctx); ok {
		return c.JSONBlob(http.StatusOK, body)
	}

	prompts, err := h.Repo.ListPublic(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "listing prompts failed"})
	}

	out := make([]publicPromptResp, 0, len(prompts))
	for _, p := range prompts {
		out = append(out, publicPromptResp{
			ID: p.ID, Description: p.Description, FormData: json.RawMessage(p.FormData),
			CreatedAt: p.CreatedAt,
			Author:    promptAuthor{DisplayName: p.AuthorName, Username: p.AuthorUsername},
		})
	}

	body, err := json.Marshal(out)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "listing prompts failed"})
	}
	h.cacheSet(ctx, body)
	return c.JSONBlob(http.StatusOK, body)
}

// Create saves a prompt for the caller.
func (h *PromptHandler) Create(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	var req createPromptReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Description == "" || len(req.FormData) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description and formData are required"})
	}
	desc := req.Description
	if len(desc) > descriptionLimit {
		desc = desc[:descriptionLimit]
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Repo.Create(ctx, uid, desc, string(req.FormData), req.IsPublic)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "saving prompt failed"})
	}

	if req.IsPublic {
		h.cacheDrop(ctx)
		_ = h.Events.Publish(ctx, queue.ActivityEvent{
			Name: queue.EventPromptShared, UserID: uid, PromptID: p.ID,
		})
	}

	return c.JSON(http.StatusOK, promptResp{
		ID: p.ID, Description: p.Description, FormData: req.FormData,
		CreatedAt: p.CreatedAt, IsPublic: p.IsPublic,
	})
}

// SetVisibility toggles a prompt between private and shared.
func (h *PromptHandler) SetVisibility(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid prompt id"})
	}

	var req visibilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.SetVisibility(ctx, uid, id, req.IsPublic); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "prompt not found or not owned by you"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "updating prompt failed"})
	}

	h.cacheDrop(ctx)
	if req.IsPublic {
		_ = h.Events.Publish(ctx, queue.ActivityEvent{
			Name: queue.EventPromptShared, UserID: uid, PromptID: id,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "isPublic": req.IsPublic})
}

// Delete removes a prompt owned by the caller.
func (h *PromptHandler) Delete(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid prompt id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.Delete(ctx, uid, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deleting prompt failed"})
	}
	h.cacheDrop(ctx)
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// ----- community cache helpers -----

func (h *PromptHandler) cacheKey() string {
	return h.CacheCfg.Prefix + ":prompts:public"
}

func (h *PromptHandler) cacheGet(ctx context.Context) ([]byte, bool) {
	if h.Cache == nil || !h.CacheCfg.Enabled {
		return nil, false
	}
	body, err := h.Cache.Get(ctx, h.cacheKey()).Bytes()
	if err != nil {
		return nil, false
	}
	return body, true
}

func (h *PromptHandler) cacheSet(ctx context.Context, body []byte) {
	if h.Cache == nil || !h.CacheCfg.Enabled {
		return
	}
	h.Cache.Set(ctx, h.cacheKey(), body, h.CacheCfg.TTL)
}

func (h *PromptHandler) cacheDrop(ctx context.Context) {
	if h.Cache == nil || !h.CacheCfg.Enabled {
		return
	}
	h.Cache.Del(ctx, h.cacheKey())
}
