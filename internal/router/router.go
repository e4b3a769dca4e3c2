package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/watch-rotation-scheduler/internal/handler"
	"github.com/iliyamo/watch-rotation-scheduler/internal/middleware"
)

// RegisterRoutes registers the unauthenticated probes.  db may be nil, in
// which case only the liveness probe is exposed.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	if db != nil {
		e.GET("/readyz", handler.Ready(db))
	}
}

// RegisterSchedules registers the schedule endpoints under /v1.  Every
// route requires a valid access token; generation additionally passes
// through limit, which runs after authentication so it can key on the
// user.
func RegisterSchedules(e *echo.Echo, h *handler.ScheduleHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	g.GET("/schedules", h.List)
	if limit != nil {
		g.POST("/schedules/generate", h.Generate, limit)
	} else {
		g.POST("/schedules/generate", h.Generate)
	}
}
