// Package api holds the HTTP surface: the login gate, the dashboard pages
// and the JSON endpoints.
package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bilgisen/pressdesk/internal/apperr"
	"github.com/bilgisen/pressdesk/internal/backend"
	"github.com/bilgisen/pressdesk/internal/content"
	"github.com/bilgisen/pressdesk/internal/logger"
	"github.com/bilgisen/pressdesk/internal/middleware"
	"github.com/bilgisen/pressdesk/internal/views"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

type Handlers struct {
	auth      backend.Auth
	sessions  *middleware.Sessions
	magazines *content.MagazineService
	articles  *content.ArticleService
	log       zerolog.Logger
}

func NewHandlers(client *backend.Client, sessions *middleware.Sessions) *Handlers {
	return &Handlers{
		auth:      client.Auth,
		sessions:  sessions,
		magazines: content.NewMagazineService(client),
		articles:  content.NewArticleService(client),
		log:       logger.Component("api"),
	}
}

// HealthCheck handles GET /api/v1/health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": Version,
		"time":    time.Now().Format(time.RFC3339),
	})
}

// ListMagazines handles GET /api/v1/magazines
func (h *Handlers) ListMagazines(c *fiber.Ctx) error {
	items, err := h.magazines.List(c.UserContext())
	if err != nil {
		return h.jsonError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(items), "items": items})
}

// ListArticles handles GET /api/v1/articles
func (h *Handlers) ListArticles(c *fiber.Ctx) error {
	items, err := h.articles.List(c.UserContext())
	if err != nil {
		return h.jsonError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(items), "items": items})
}

func (h *Handlers) jsonError(c *fiber.Ctx, err error) error {
	h.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return c.Status(apperr.Status(err)).JSON(fiber.Map{"error": apperr.Message(err)})
}

func render(c *fiber.Ctx, status int, name string, data fiber.Map) error {
	return c.Status(status).Render(name, data, views.Layout)
}
