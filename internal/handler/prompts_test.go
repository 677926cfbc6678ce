package handler_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func createPrompt(t *testing.T, app *testApp, desc string, public bool) int64 {
	t.Helper()
	resp := app.do(http.MethodPost, "/api/prompts", map[string]any{
		"description": desc,
		"formData":    map[string]string{"task": "review"},
		"isPublic":    public,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeMap(t, resp)
	return int64(body["id"].(float64))
}

func TestPrompts_CreateAndList(t *testing.T) {
	app := newTestApp(t)
	app.register("alice", "alice@example.com", "password123")

	createPrompt(t, app, "code review helper", false)

	resp := app.do(http.MethodGet, "/api/prompts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	prompts := decodeList(t, resp)
	require.Len(t, prompts, 1)
	require.Equal(t, "code review helper", prompts[0]["description"])
	require.Equal(t, false, prompts[0]["isPublic"])
	require.Equal(t, map[string]any{"task": "review"}, prompts[0]["formData"])
}

func TestPrompts_DescriptionTruncated(t *testing.T) {
	app := newTestApp(t)
	app.register("alice", "alice@example.com", "password123")

	createPrompt(t, app, strings.Repeat("x", 100), false)

	prompts := decodeList(t, app.do(http.MethodGet, "/api/prompts", nil))
	require.Len(t, prompts[0]["description"].(string), 40)
}

func TestPrompts_CreateValidation(t *testing.T) {
	app := newTestApp(t)
	app.register("alice", "alice@example.com", "password123")

	require.Equal(t, http.StatusBadRequest, app.status(http.MethodPost, "/api/prompts",
		map[string]any{"formData": map[string]string{"a": "b"}}))
	require.Equal(t, http.StatusBadRequest, app.status(http.MethodPost, "/api/prompts",
		map[string]any{"description": "no form data"}))
}

func TestPrompts_PublicListingIsOpenAndShaped(t *testing.T) {
	app := newTestApp(t)
	app.register("alice", "alice@example.com", "password123")

	createPrompt(t, app, "kept private", false)
	createPrompt(t, app, "shared with everyone", true)

	// An anonymous client, no cookie jar.
	resp, err := http.Get(app.srv.URL + "/api/prompts/public")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	public := decodeList(t, resp)
	require.Len(t, public, 1)
	require.Equal(t, "shared with everyone", public[0]["description"])
	author := public[0]["author"].(map[string]any)
	require.Equal(t, "alice", author["username"])
	require.Equal(t, "Test alice", author["displayName"])
}

func TestPrompts_VisibilityToggle(t *testing.T) {
	app := newTestApp(t)
	app.register("alice", "alice@example.com", "password123")

	id := createPrompt(t, app, "toggle me", false)

	require.Equal(t, http.StatusOK, app.status(http.MethodPut,
		fmt.Sprintf("/api/prompts/%d/visibility", id), map[string]bool{"isPublic": true}))

	resp, err := http.Get(app.srv.URL + "/api/prompts/public")
	require.NoError(t, err)
	require.Len(t, decodeList(t, resp), 1)

	require.Equal(t, http.StatusOK, app.status(http.MethodPut,
		fmt.Sprintf("/api/prompts/%d/visibility", id), map[string]bool{"isPublic": false}))

	resp, err = http.Get(app.srv.URL + "/api/prompts/public")
	require.NoError(t, err)
	require.Empty(t, decodeList(t, resp))
}

func TestPrompts_VisibilityRequiresOwnership(t *testing.T) {
	app := newTestApp(t)
	app.register("alice", "alice@example.com", "password123")
	id := createPrompt(t, app, "alice's prompt", false)
	app.do(http.MethodPost, "/api/auth/logout", nil).Body.Close()

	app.register("bob", "bob@example.com", "password123")
	resp := app.do(http.MethodPut, fmt.Sprintf("/api/prompts/%d/visibility", id),
		map[string]bool{"isPublic": true})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "prompt not found or not owned by you", decodeMap(t, resp)["error"])
}

func TestPrompts_Delete(t *testing.T) {
	app := newTestApp(t)
	app.register("alice", "alice@example.com", "password123")
	id := createPrompt(t, app, "short lived", false)

	require.Equal(t, http.StatusOK, app.status(http.MethodDelete, fmt.Sprintf("/api/prompts/%d", id), nil))
	require.Empty(t, decodeList(t, app.do(http.MethodGet, "/api/prompts", nil)))

	require.Equal(t, http.StatusBadRequest, app.status(http.MethodDelete, "/api/prompts/not-a-number", nil))
}

func TestPrompts_RequireSession(t *testing.T) {
	app := newTestApp(t)

	require.Equal(t, http.StatusUnauthorized, app.status(http.MethodGet, "/api/prompts", nil))
	require.Equal(t, http.StatusUnauthorized, app.status(http.MethodPost, "/api/prompts",
		map[string]any{"description": "x", "formData": map[string]string{"a": "b"}}))
}
