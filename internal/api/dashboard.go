package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/pressdesk/internal/apperr"
	"github.com/bilgisen/pressdesk/internal/middleware"
	"github.com/bilgisen/pressdesk/internal/models"
)

// Dashboard tabs
const (
	TabMagazines = "magazines"
	TabArticles  = "articles"
)

type DashboardQuery struct {
	Tab string `query:"tab" validate:"omitempty,oneof=magazines articles"`
}

func tabURL(tab string) string {
	return "/dashboard?tab=" + tab
}

// Dashboard handles GET /dashboard
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	tab := middleware.QueryFrom[DashboardQuery](c).Tab
	if tab == "" {
		tab = TabMagazines
	}
	errMsg, success := flashMessage(c)

	var form any = magazineForm{}
	if tab == TabArticles {
		form = newArticleForm()
	}
	return h.renderDashboard(c, fiber.StatusOK, tab, form, errMsg, success)
}

// renderDashboard fetches the active tab's rows and renders the page. A
// failed fetch shows its error in the banner over an empty list.
func (h *Handlers) renderDashboard(c *fiber.Ctx, status int, tab string, form any, errMsg, success string) error {
	data := fiber.Map{
		"Title":   "Dashboard",
		"Tab":     tab,
		"Form":    form,
		"Success": success,
	}
	if session := middleware.SessionFrom(c); session != nil && session.User != nil {
		data["Email"] = session.User.Email
	}

	var err error
	switch tab {
	case TabArticles:
		data["Articles"], err = h.articles.List(c.UserContext())
	default:
		data["Magazines"], err = h.magazines.List(c.UserContext())
	}
	if err != nil {
		h.log.Error().Err(err).Str("tab", tab).Msg("failed to load list")
		if errMsg == "" {
			errMsg = apperr.Message(err)
		}
	}
	data["Error"] = errMsg
	return render(c, status, "dashboard", data)
}

// CreateMagazine handles POST /dashboard/magazines
func (h *Handlers) CreateMagazine(c *fiber.Ctx) error {
	form, cleanup, err := multipartForm(c)
	defer cleanup()
	if err != nil {
		return h.renderDashboard(c, apperr.Status(err), TabMagazines, magazineForm{}, apperr.Message(err), "")
	}

	in := magazineInput(form)
	if _, err := h.magazines.Create(c.UserContext(), in); err != nil {
		refill := magazineForm{Title: in.Title, Description: in.Description}
		return h.renderDashboard(c, apperr.Status(err), TabMagazines, refill, apperr.Message(err), "")
	}
	return flashSuccess(c, "Magazine uploaded", tabURL(TabMagazines))
}

// DeleteMagazine handles POST /dashboard/magazines/:id/delete
func (h *Handlers) DeleteMagazine(c *fiber.Ctx) error {
	if err := h.magazines.Delete(c.UserContext(), c.Params("id")); err != nil {
		return flashError(c, err, tabURL(TabMagazines))
	}
	return flashSuccess(c, "Magazine deleted", tabURL(TabMagazines))
}

// CreateArticle handles POST /dashboard/articles
func (h *Handlers) CreateArticle(c *fiber.Ctx) error {
	form, cleanup, err := multipartForm(c)
	defer cleanup()
	if err != nil {
		return h.renderDashboard(c, apperr.Status(err), TabArticles, newArticleForm(), apperr.Message(err), "")
	}

	in := articleInput(form)
	if _, err := h.articles.Create(c.UserContext(), in); err != nil {
		return h.renderDashboard(c, apperr.Status(err), TabArticles, newArticleForm().refill(in, ""), apperr.Message(err), "")
	}
	return flashSuccess(c, "Article created", tabURL(TabArticles))
}

// EditArticle handles GET /dashboard/articles/:id/edit
func (h *Handlers) EditArticle(c *fiber.Ctx) error {
	article, err := h.articles.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return flashError(c, err, tabURL(TabArticles))
	}
	errMsg, _ := flashMessage(c)
	return render(c, fiber.StatusOK, "article_edit", fiber.Map{
		"Title": "Edit " + article.Title,
		"Form":  editArticleForm(article),
		"Error": errMsg,
	})
}

// UpdateArticle handles POST /dashboard/articles/:id
func (h *Handlers) UpdateArticle(c *fiber.Ctx) error {
	id := c.Params("id")
	form, cleanup, err := multipartForm(c)
	defer cleanup()
	if err != nil {
		return flashError(c, err, "/dashboard/articles/"+id+"/edit")
	}

	in := articleInput(form)
	if _, err := h.articles.Update(c.UserContext(), id, in); err != nil {
		base := editArticleForm(&models.Article{ID: models.ID(id)})
		return render(c, apperr.Status(err), "article_edit", fiber.Map{
			"Title": "Edit article",
			"Form":  base.refill(in, formValue(form, "current_title_image")),
			"Error": apperr.Message(err),
		})
	}
	return flashSuccess(c, "Article updated", tabURL(TabArticles))
}

// DeleteArticle handles POST /dashboard/articles/:id/delete
func (h *Handlers) DeleteArticle(c *fiber.Ctx) error {
	if err := h.articles.Delete(c.UserContext(), c.Params("id")); err != nil {
		return flashError(c, err, tabURL(TabArticles))
	}
	return flashSuccess(c, "Article deleted", tabURL(TabArticles))
}
