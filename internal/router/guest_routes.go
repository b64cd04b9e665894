package router

import (
	"github.com/labstack/echo/v4"

	"github.com/summitops/guest-transport/internal/handler"
	"github.com/summitops/guest-transport/internal/middleware"
)

// RegisterGuests registers guest-record endpoints under /v1/guests.
// Reads (list, lookup, audit history, reallocation candidates) are
// open to any authenticated role; direct edits, soft deletes and
// reassignment mutate state and require crew.
func RegisterGuests(e *echo.Echo, h *handler.GuestHandler, jwtSecret string) {
	g := e.Group(
		"/v1/guests",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleCrew, middleware.RoleViewer),
	)
	crew := middleware.RequireRole(middleware.RoleCrew)

	g.GET("", h.List)
	g.GET("/by-email", h.GetByEmail)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update, crew)
	g.DELETE("/:id", h.Delete, crew)
	g.GET("/:id/audit", h.AuditLog)
	g.GET("/:id/reallocation", h.Reallocation)
	g.POST("/:id/reassign", h.Reassign, crew)
}
