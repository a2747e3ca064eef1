package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/hotelmend/ticket-service/internal/api/http/handlers"
	"github.com/hotelmend/ticket-service/internal/auth"
	"github.com/hotelmend/ticket-service/internal/domain"
	"github.com/hotelmend/ticket-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	References     *handlers.ReferencesHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/admin/login", cfg.Auth.AdminLogin)
	authGroup.Post("/check", cfg.Auth.Check)

	session := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAnyRole()}

	tickets := app.Group("/tickets", session...)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Put("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)
	tickets.Get("/:id/history", cfg.Tickets.History)

	app.Post("/suggestions", append(session, cfg.Tickets.Suggest)...)

	settings := app.Group("/settings", session...)
	settings.Get("/:kind", cfg.References.List)
	settings.Post("/:kind", cfg.References.Create)
	settings.Patch("/:kind/:id", cfg.References.Rename)
	settings.Delete("/:kind/:id", cfg.References.Delete)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleSuperadmin))
	admin.Get("/codes", cfg.Admin.ListCodes)
	admin.Post("/codes", cfg.Admin.IssueCode)
	admin.Delete("/codes", cfg.Admin.RevokeCode)
	admin.Get("/activity", cfg.Admin.Activity)
}
