package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/summitops/guest-transport/internal/handler"
	"github.com/summitops/guest-transport/internal/metrics"
)

// RegisterRoutes registers the unauthenticated operational routes:
// the health probe and the prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})))
}
