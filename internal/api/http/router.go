package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/propcrm/crm-service/internal/api/http/handlers"
	"github.com/propcrm/crm-service/internal/auth"
	"github.com/propcrm/crm-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Session        *handlers.SessionHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/signup/organization", cfg.Auth.ValidateOrganization)
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)
	authGroup.Post("/token/refresh", cfg.AuthMiddleware.Handle, cfg.Auth.RefreshToken)

	// Group middleware matches by string prefix, which would also catch /metrics.
	app.Get("/me", cfg.AuthMiddleware.Handle, cfg.Session.Me)
	app.Post("/me/refresh", cfg.AuthMiddleware.Handle, cfg.Session.Refresh)

	dash := app.Group("/dashboard", cfg.AuthMiddleware.Handle, auth.RequireOrganization())
	dash.Get("/stats", cfg.Dashboard.Stats)
	dash.Get("/navigation", cfg.Dashboard.Navigation)
}
