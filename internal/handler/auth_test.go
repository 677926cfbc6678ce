package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"promptforge.app/server/internal/middleware"
)

func TestRegister_LogsStraightIn(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username":    "alice",
		"email":       "alice@example.com",
		"displayName": "Alice",
		"password":    "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeMap(t, resp)
	require.Equal(t, "alice", body["username"])
	require.Equal(t, "alice@example.com", body["email"])
	require.Equal(t, "Alice", body["displayName"])
	require.NotContains(t, body, "password")
	require.NotContains(t, body, "passwordHash")

	// The session cookie from the register response is already usable.
	resp = app.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "alice", decodeMap(t, resp)["username"])
}

func TestRegister_RejectsDuplicatesIgnoringCase(t *testing.T) {
	app := newTestApp(t)
	app.register("alice", "alice@example.com", "password123")

	for _, dup := range []map[string]string{
		{"username": "ALICE", "email": "other@example.com", "displayName": "A", "password": "password123"},
		{"username": "other", "email": "Alice@Example.COM", "displayName": "A", "password": "password123"},
	} {
		resp := app.do(http.MethodPost, "/api/auth/register", dup)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		require.Equal(t, "username or email already taken", decodeMap(t, resp)["error"])
	}
}

func TestRegister_Validation(t *testing.T) {
	app := newTestApp(t)

	cases := []map[string]string{
		{},
		{"username": "alice"},
		{"username": "ab", "email": "a@x.com", "displayName": "A", "password": "password123"},
		{"username": "bad name", "email": "a@x.com", "displayName": "A", "password": "password123"},
		{"username": "alice", "email": "not-an-email", "displayName": "A", "password": "password123"},
		{"username": "alice", "email": "a@x.com", "displayName": "A", "password": "short"},
	}
	for _, body := range cases {
		require.Equal(t, http.StatusBadRequest,
			app.status(http.MethodPost, "/api/auth/register", body))
	}
}

func TestLogin_ByUsernameOrEmailAnyCase(t *testing.T) {
	app := newTestApp(t)
	app.register("alice", "alice@example.com", "password123")
	app.do(http.MethodPost, "/api/auth/logout", nil).Body.Close()

	for _, login := range []string{"alice", "ALICE", "alice@example.com", "Alice@Example.COM"} {
		resp := app.do(http.MethodPost, "/api/auth/login", map[string]string{
			"login": login, "password": "password123",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, login)
		require.Equal(t, "alice", decodeMap(t, resp)["username"])
	}
}

func TestLogin_FailureIsUndifferentiated(t *testing.T) {
	app := newTestApp(t)
	app.register("alice", "alice@example.com", "password123")

	// Unknown account and wrong password must be indistinguishable.
	for _, attempt := range []map[string]string{
		{"login": "nobody", "password": "password123"},
		{"login": "alice", "password": "wrongpassword"},
	} {
		resp := app.do(http.MethodPost, "/api/auth/login", attempt)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "invalid credentials", decodeMap(t, resp)["error"])
	}
}

func TestLogout_InvalidatesServerSide(t *testing.T) {
	app := newTestApp(t)
	app.register("alice", "alice@example.com", "password123")

	require.Equal(t, http.StatusOK, app.status(http.MethodGet, "/api/auth/me", nil))
	require.Equal(t, http.StatusOK, app.status(http.MethodPost, "/api/auth/logout", nil))
	require.Equal(t, http.StatusUnauthorized, app.status(http.MethodGet, "/api/auth/me", nil))

	// Logging out while logged out still succeeds.
	require.Equal(t, http.StatusOK, app.status(http.MethodPost, "/api/auth/logout", nil))
}

func TestLogout_RevokedTokenIsDeadEvenIfReplayed(t *testing.T) {
	app := newTestApp(t)
	app.register("alice", "alice@example.com", "password123")

	// Capture the signed cookie, log out, then replay the old cookie by hand.
	var signed string
	for _, c := range app.client.Jar.Cookies(mustURL(t, app.srv.URL)) {
		if c.Name == middleware.SessionCookieName {
			signed = c.Value
		}
	}
	require.NotEmpty(t, signed)

	require.Equal(t, http.StatusOK, app.status(http.MethodPost, "/api/auth/logout", nil))

	req, err := http.NewRequest(http.MethodGet, app.srv.URL+"/api/auth/me", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: signed})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	// The JWT signature is still valid but the session row is gone.
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMe_RequiresSession(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, http.StatusUnauthorized, app.status(http.MethodGet, "/api/auth/me", nil))
}

func TestSessionCookie_GarbageRejected(t *testing.T) {
	app := newTestApp(t)

	req, err := http.NewRequest(http.MethodGet, app.srv.URL+"/api/auth/me", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "not-a-signed-token"})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUpdateProfile(t *testing.T) {
	app := newTestApp(t)
	app.register("alice", "alice@example.com", "password123")

	resp := app.do(http.MethodPut, "/api/profile", map[string]string{
		"displayName": "Alice B.", "email": "alice.b@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = app.do(http.MethodGet, "/api/auth/me", nil)
	body := decodeMap(t, resp)
	require.Equal(t, "Alice B.", body["displayName"])
	require.Equal(t, "alice.b@example.com", body["email"])

	// Keeping your own email is not a conflict.
	require.Equal(t, http.StatusOK, app.status(http.MethodPut, "/api/profile", map[string]string{
		"displayName": "Alice B.", "email": "alice.b@example.com",
	}))
}

func TestUpdateProfile_EmailConflict(t *testing.T) {
	app := newTestApp(t)
	app.register("bob", "bob@example.com", "password123")
	app.do(http.MethodPost, "/api/auth/logout", nil).Body.Close()
	app.register("alice", "alice@example.com", "password123")

	resp := app.do(http.MethodPut, "/api/profile", map[string]string{
		"displayName": "Alice", "email": "BOB@example.com",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "email already in use", decodeMap(t, resp)["error"])
}

func TestChangePassword(t *testing.T) {
	app := newTestApp(t)
	app.register("alice", "alice@example.com", "password123")

	// Wrong current password.
	resp := app.do(http.MethodPut, "/api/profile/password", map[string]string{
		"currentPassword": "wrong", "newPassword": "newpassword1",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "current password is incorrect", decodeMap(t, resp)["error"])

	// New password too short.
	require.Equal(t, http.StatusBadRequest, app.status(http.MethodPut, "/api/profile/password", map[string]string{
		"currentPassword": "password123", "newPassword": "short",
	}))

	// Successful change.
	require.Equal(t, http.StatusOK, app.status(http.MethodPut, "/api/profile/password", map[string]string{
		"currentPassword": "password123", "newPassword": "newpassword1",
	}))

	app.do(http.MethodPost, "/api/auth/logout", nil).Body.Close()

	require.Equal(t, http.StatusUnauthorized, app.status(http.MethodPost, "/api/auth/login", map[string]string{
		"login": "alice", "password": "password123",
	}))
	require.Equal(t, http.StatusOK, app.status(http.MethodPost, "/api/auth/login", map[string]string{
		"login": "alice", "password": "newpassword1",
	}))
}
