package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports that the service is up. Used by reverse proxies and uptime
// checks.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
