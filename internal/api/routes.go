package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/bilgisen/pressdesk/internal/middleware"
)

// RouteOptions configures optional routes
type RouteOptions struct {
	// FilesRoot, when set, is served under /files for the local storage driver
	FilesRoot string
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, h *Handlers, opts RouteOptions) {
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	if opts.FilesRoot != "" {
		app.Static("/files", opts.FilesRoot, fiber.Static{Browse: false})
	}

	// Gate and authentication
	app.Get("/", h.Gate)
	app.Get("/login", h.LoginPage)
	app.Post("/login", h.Login)
	app.Post("/logout", h.Logout)

	requireSession := h.sessions.Require()

	dashboard := app.Group("/dashboard", requireSession)
	{
		dashboard.Get("", middleware.ValidateQuery[DashboardQuery](), h.Dashboard)
		dashboard.Post("/magazines", h.CreateMagazine)
		dashboard.Post("/magazines/:id/delete", h.DeleteMagazine)
		dashboard.Post("/articles", h.CreateArticle)
		dashboard.Get("/articles/:id/edit", h.EditArticle)
		dashboard.Post("/articles/:id", h.UpdateArticle)
		dashboard.Post("/articles/:id/delete", h.DeleteArticle)
	}

	// API group with versioning
	api := app.Group("/api/v1")
	{
		api.Get("/health", h.HealthCheck)
		api.Get("/magazines", requireSession, h.ListMagazines)
		api.Get("/articles", requireSession, h.ListArticles)
	}

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not found")
	})
}
