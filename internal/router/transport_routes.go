package router

import (
	"github.com/labstack/echo/v4"

	"github.com/summitops/guest-transport/internal/handler"
	"github.com/summitops/guest-transport/internal/middleware"
)

// RegisterTransport registers the read-only transport views under
// /v1/transport: the offline group plan lookup and the live
// schedule listing with occupancy.  Only the plan lookup sits
// behind the response cache; the schedule listing reflects live
// occupancy and is always computed.
func RegisterTransport(e *echo.Echo, h *handler.TransportHandler, jwtSecret string, planCache echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/transport",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleCrew, middleware.RoleViewer),
	)
	g.GET("/groups", h.Groups, planCache)
	g.GET("/schedules", h.ListSchedules)
}
