package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/pressdesk/internal/apperr"
)

// Gate handles GET / by sending the visitor to the dashboard or the login page
func (h *Handlers) Gate(c *fiber.Ctx) error {
	if session, _ := h.sessions.Current(c); session != nil {
		return c.Redirect("/dashboard")
	}
	return c.Redirect("/login")
}

// LoginPage handles GET /login
func (h *Handlers) LoginPage(c *fiber.Ctx) error {
	if session, _ := h.sessions.Current(c); session != nil {
		return c.Redirect("/dashboard")
	}
	msg, success := flashMessage(c)
	return render(c, fiber.StatusOK, "login", fiber.Map{"Title": "Sign in", "Error": msg, "Success": success})
}

// Login handles POST /login
func (h *Handlers) Login(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	if err := h.signIn(c, email, password); err != nil {
		h.log.Warn().Err(err).Str("email", email).Str("ip", c.IP()).Msg("sign in failed")
		return render(c, apperr.Status(err), "login", fiber.Map{
			"Title": "Sign in",
			"Email": email,
			"Error": apperr.Message(err),
		})
	}

	h.log.Info().Str("email", email).Msg("signed in")
	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}

func (h *Handlers) signIn(c *fiber.Ctx, email, password string) error {
	if email == "" || password == "" {
		return apperr.Validation("validate", "Email and password are required")
	}
	session, err := h.auth.SignInWithPassword(c.UserContext(), email, password)
	if err != nil {
		return apperr.Auth("sign in", err)
	}
	if err := h.sessions.Start(c, session); err != nil {
		return err
	}

	current, err := h.sessions.Current(c)
	if err != nil || current == nil {
		return apperr.AuthMessage("verify session", "Failed to establish session")
	}
	return nil
}

// Logout handles POST /logout
func (h *Handlers) Logout(c *fiber.Ctx) error {
	if err := h.sessions.End(c); err != nil {
		h.log.Error().Err(err).Msg("sign out failed")
	}
	return c.Redirect("/login", fiber.StatusSeeOther)
}
