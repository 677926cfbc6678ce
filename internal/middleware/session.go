package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"promptforge.app/server/internal/repository"
	"promptforge.app/server/internal/utils"
)

// SessionCookieName is the cookie that carries the signed session token.
const SessionCookieName = "pf_session"

// SessionAuth returns middleware that authenticates requests from the
// session cookie. The cookie signature is checked first (cheap, no I/O);
// only then is the token hash looked up in the sessions table, which is the
// actual authority on who is logged in. On success the user id is stored in
// the context under "user_id".
func SessionAuth(secret string, sessions *repository.SessionRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
			}
			raw, err := utils.ParseSessionCookie(secret, cookie.Value)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			userID, err := sessions.Lookup(ctx, utils.HashSessionToken(raw))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
			}

			c.Set("user_id", userID)
			return next(c)
		}
	}
}

// UserID extracts the authenticated user id placed in the context by
// SessionAuth.
func UserID(c echo.Context) (int64, bool) {
	id, ok := c.Get("user_id").(int64)
	return id, ok
}
