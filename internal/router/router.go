package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/inkwell-labs/inkwell-admin-api/internal/config"
	"github.com/inkwell-labs/inkwell-admin-api/internal/handler"
	"github.com/inkwell-labs/inkwell-admin-api/internal/middleware"
	"github.com/inkwell-labs/inkwell-admin-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AnalyticsHandler      *handler.AnalyticsHandler
	ActivityHandler       *handler.ActivityHandler
	ActivityStreamHandler *handler.ActivityStreamHandler
	ExportHandler         *handler.ExportHandler
	ModerationHandler     *handler.ModerationHandler
	JWTMiddleware         fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	admin := app.Group("/api/admin", jwtMiddleware)

	// Analytics and exports are limited to managers and admins; the
	// activity feed, live stream and moderation actions are open to all
	// staff roles.
	if deps.AnalyticsHandler != nil {
		analytics := admin.Group("/analytics", middleware.RequireRole("manager", "admin"))
		deps.AnalyticsHandler.Register(analytics)
	}

	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(admin)
	}

	if deps.ActivityStreamHandler != nil {
		stream := admin.Group("/activity")
		deps.ActivityStreamHandler.Register(stream)
	}

	if deps.ExportHandler != nil {
		exports := admin.Group("/exports", middleware.RequireRole("manager", "admin"))
		deps.ExportHandler.Register(exports)
	}

	if deps.ModerationHandler != nil {
		moderation := admin.Group("/moderation",
			middleware.RequireRole("writer", "manager", "admin"),
			middleware.RateLimit("moderation", 60, time.Minute),
		)
		deps.ModerationHandler.Register(moderation)
	}
}
