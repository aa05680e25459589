package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/dedirosandiaj/problem-log-new/internal/api/http/handlers"
	"github.com/dedirosandiaj/problem-log-new/internal/auth"
	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Complaints     *handlers.ComplaintsHandler
	Dashboard      *handlers.DashboardHandler
	Locations      *handlers.LocationsHandler
	Master         *handlers.MasterDataHandler
	Users          *handlers.UsersHandler
	Activity       *handlers.ActivityHandler
	Mail           *handlers.MailHandler
	Settings       *handlers.SettingsHandler
	Live           *handlers.LiveHandler
	Metrics        *observability.Metrics
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}
	app.Get("/settings", cfg.Settings.Get)

	authGroup := app.Group("/auth")
	authGroup.Get("/captcha", cfg.Auth.Captcha)
	authGroup.Post("/login", cfg.Auth.Login)
	session := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	session.Post("/logout", cfg.Auth.Logout)
	session.Get("/me", cfg.Auth.Me)

	app.Get("/ws/complaints", cfg.Live.RequireUpgrade, cfg.AuthMiddleware.Handle,
		auth.RequireAuthenticated(), auth.RequirePermission(domain.PermissionComplaints), cfg.Live.Complaints())

	api := app.Group("/api", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	complaints := api.Group("/complaints", auth.RequirePermission(domain.PermissionComplaints))
	complaints.Get("", cfg.Complaints.List)
	complaints.Post("", cfg.Complaints.Create)
	complaints.Get("/terminals", cfg.Complaints.Terminals)
	complaints.Get("/:id", cfg.Complaints.Thread)
	complaints.Put("/:id", cfg.Complaints.Update)
	complaints.Post("/:id/comments", cfg.Complaints.AddComment)

	dashboard := api.Group("/dashboard", auth.RequirePermission(domain.PermissionDashboard))
	dashboard.Get("/incidents", cfg.Dashboard.Incidents)
	dashboard.Get("/buckets", cfg.Dashboard.Buckets)

	locations := api.Group("/locations", auth.RequirePermission(domain.PermissionLocations))
	locations.Get("", cfg.Locations.List)
	locations.Post("", cfg.Locations.Create)
	locations.Get("/lookup", cfg.Locations.Lookup)
	locations.Get("/template", cfg.Locations.Template)
	locations.Get("/export", cfg.Locations.Export)
	locations.Post("/import", cfg.Locations.Import)
	locations.Get("/:id", cfg.Locations.Get)
	locations.Put("/:id", cfg.Locations.Update)
	locations.Delete("/:id", cfg.Locations.Delete)

	master := api.Group("/master/:type", auth.RequirePermission(domain.PermissionDataMaster), cfg.Master.RequireTypePermission)
	master.Get("", cfg.Master.List)
	master.Post("", cfg.Master.Create)
	master.Get("/template", cfg.Master.Template)
	master.Get("/export", cfg.Master.Export)
	master.Post("/import", cfg.Master.Import)
	master.Put("/:id", cfg.Master.Update)
	master.Delete("/:id", cfg.Master.Delete)

	users := api.Group("/users", auth.RequirePermission(domain.PermissionUsers))
	users.Get("", cfg.Users.List)
	users.Post("", cfg.Users.Create)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)

	api.Post("/activity/view", cfg.Activity.View)
	api.Get("/activity", auth.RequirePermission(domain.PermissionActivityLog), cfg.Activity.List)

	mail := api.Group("/mail", auth.RequirePermission(domain.PermissionMail))
	mail.Get("", cfg.Mail.Folder)
	mail.Post("", cfg.Mail.Send)
	mail.Get("/counts", cfg.Mail.Counts)
	mail.Post("/drafts", cfg.Mail.SaveDraft)
	mail.Get("/:id", cfg.Mail.Get)
	mail.Delete("/:id", cfg.Mail.Delete)
	mail.Post("/:id/restore", cfg.Mail.Restore)
	mail.Put("/:id/read", cfg.Mail.MarkRead)
	mail.Post("/:id/star", cfg.Mail.ToggleStar)

	settings := api.Group("/settings", auth.RequirePermission(domain.PermissionSettings))
	settings.Put("", cfg.Settings.Save)
	settings.Delete("", cfg.Settings.Reset)
}
