// Package router maps HTTP routes onto handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"promptforge.app/server/internal/handler"
)

// RegisterRoutes registers routes that need no dependencies. Currently just
// the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the account endpoints. The rate limiter only guards the
// unauthenticated credential routes; everything behind a session already
// required a successful login.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, session, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register, limiter)
	g.POST("/login", a.Login, limiter)
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me, session)

	p := e.Group("/api/profile", session)
	p.PUT("", a.UpdateProfile)
	p.PUT("/password", a.ChangePassword)
}

// RegisterAPI wires the authenticated resource endpoints plus the public
// community listing.
func RegisterAPI(e *echo.Echo, session echo.MiddlewareFunc,
	keys *handler.APIKeyHandler, prompts *handler.PromptHandler, completions *handler.CompletionHandler) {

	k := e.Group("/api/api-keys", session)
	k.GET("", keys.List)
	k.PUT("/:keyName", keys.Save)
	k.DELETE("/:keyName", keys.Delete)

	// Community browse is deliberately unauthenticated.
	e.GET("/api/prompts/public", prompts.ListPublic)

	pr := e.Group("/api/prompts", session)
	pr.GET("", prompts.List)
	pr.POST("", prompts.Create)
	pr.PUT("/:id/visibility", prompts.SetVisibility)
	pr.DELETE("/:id", prompts.Delete)

	e.POST("/api/completions", completions.Create, session)
}
