package router

import (
	"github.com/labstack/echo/v4"

	"github.com/summitops/guest-transport/internal/handler"
	"github.com/summitops/guest-transport/internal/middleware"
)

// RegisterImports registers the import workflow under /v1/imports.
// Reviewing a session (mapping, options, diff) is open to any
// authenticated role; uploading a new roster and applying a diff
// change state and are restricted to crew.  Uploads additionally
// pass the redis token-bucket limiter.
func RegisterImports(e *echo.Echo, h *handler.ImportHandler, jwtSecret string, uploadLimit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/imports",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleCrew, middleware.RoleViewer),
	)
	crew := middleware.RequireRole(middleware.RoleCrew)

	g.POST("", h.Upload, crew, uploadLimit)
	g.GET("/:id", h.Get)
	g.PUT("/:id/mapping", h.SetMapping)
	g.PUT("/:id/options", h.SetOptions)
	g.POST("/:id/diff", h.ComputeDiff)
	g.POST("/:id/apply", h.Apply, crew)
	g.DELETE("/:id", h.Cancel)
}
