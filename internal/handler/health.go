package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers GET /healthz with a plain "ok" so load balancers
// and uptime checks can probe the process without credentials.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
