package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"promptforge.app/server/internal/config"
	"promptforge.app/server/internal/middleware"
	"promptforge.app/server/internal/queue"
	"promptforge.app/server/internal/repository"
	"promptforge.app/server/internal/utils"
)

// AuthHandler bundles dependencies for the account endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Keys     *config.Keys
	Users    *repository.UserRepo
	Sessions *repository.SessionRepo
	Events   *queue.Publisher
}

func NewAuthHandler(cfg config.Config, keys *config.Keys, u *repository.UserRepo, s *repository.SessionRepo, ev *queue.Publisher) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Keys: keys, Users: u, Sessions: s, Events: ev}
}

// ----- DTOs -----

type registerReq struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}
type loginReq struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// identityResp is the public identity shape; the password hash never leaves
// the repository layer.
type identityResp struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Register creates an account and logs the new user straight in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)

	if req.Username == "" || req.Email == "" || req.DisplayName == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "all fields are required"})
	}
	if err := utils.ValidateUsername(req.Username); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := utils.ValidateEmail(req.Email); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// The NOCASE unique indexes decide conflicts; two racing registrations
	// for the same name cannot both pass this insert.
	uid, err := h.Users.Create(ctx, req.Username, req.Email, req.DisplayName, hash)
	if err != nil {
		if err == repository.ErrUsernameTaken || err == repository.ErrEmailTaken {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username or email already taken"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	if err := h.issueSession(c, ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	_ = h.Events.Publish(ctx, queue.ActivityEvent{
		Name: queue.EventUserRegistered, UserID: uid, Username: req.Username,
	})

	return c.JSON(http.StatusCreated, identityResp{
		ID: uid, Username: req.Username, Email: req.Email, DisplayName: req.DisplayName,
	})
}

// Login verifies credentials and establishes a session. The failure response
// is deliberately identical for an unknown identifier and a wrong password.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByLogin(ctx, req.Login)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := h.issueSession(c, ctx, u.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	return c.JSON(http.StatusOK, identityResp{
		ID: u.ID, Username: u.Username, Email: u.Email, DisplayName: u.DisplayName,
	})
}

// Logout destroys the current session if there is one. It succeeds whether
// or not the caller was logged in.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if raw, err := utils.ParseSessionCookie(h.Keys.SessionSecret, cookie.Value); err == nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			_ = h.Sessions.Delete(ctx, utils.HashSessionToken(raw))
		}
	}
	h.clearSessionCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the identity bound to the current session.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		// A valid session for a deleted user is indistinguishable from no session.
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	return c.JSON(http.StatusOK, identityResp{
		ID: u.ID, Username: u.Username, Email: u.Email, DisplayName: u.DisplayName,
	})
}

// issueSession creates a server-side session row and sets the signed cookie.
func (h *AuthHandler) issueSession(c echo.Context, ctx context.Context, userID int64) error {
	raw, err := utils.NewSessionToken()
	if err != nil {
		return err
	}
	exp := time.Now().UTC().Add(h.Cfg.SessionTTL())
	if err := h.Sessions.Create(ctx, userID, utils.HashSessionToken(raw), exp); err != nil {
		return err
	}
	signed, err := utils.SignSessionCookie(h.Keys.SessionSecret, raw, exp)
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    signed,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.Cfg.Env == "prod",
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cfg.Env == "prod",
		SameSite: http.SameSiteLaxMode,
	})
}
