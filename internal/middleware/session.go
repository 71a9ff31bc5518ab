package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bilgisen/pressdesk/internal/apperr"
	"github.com/bilgisen/pressdesk/internal/backend"
	"github.com/bilgisen/pressdesk/internal/cache"
	"github.com/bilgisen/pressdesk/internal/logger"
	"github.com/bilgisen/pressdesk/internal/models"
)

// CookieName holds the opaque session id in the browser
const CookieName = "pressdesk-auth"

const sessionKey = "session"

// Sessions ties the browser cookie to a hosted auth session persisted in a
// SessionStore
type Sessions struct {
	store  cache.SessionStore
	auth   backend.Auth
	ttl    time.Duration
	secure bool
	log    zerolog.Logger
}

// NewSessions creates the session manager
func NewSessions(store cache.SessionStore, auth backend.Auth, ttl time.Duration, secureCookie bool) *Sessions {
	return &Sessions{
		store:  store,
		auth:   auth,
		ttl:    ttl,
		secure: secureCookie,
		log:    logger.Component("sessions"),
	}
}

// Current returns the signed-in session of the request, or nil. A session
// refreshed by the auth service is persisted again under the same id.
func (s *Sessions) Current(c *fiber.Ctx) (*models.Session, error) {
	if session, ok := c.Locals(sessionKey).(*models.Session); ok {
		return session, nil
	}
	id := c.Cookies(CookieName)
	if id == "" {
		return nil, nil
	}

	ctx := c.UserContext()
	stored, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, apperr.Auth("load session", err)
	}
	if stored == nil {
		s.clearCookie(c)
		return nil, nil
	}

	session, err := s.auth.GetSession(ctx, stored)
	if err != nil {
		return nil, apperr.Auth("get session", err)
	}
	if session == nil || !session.HasUser() {
		if err := s.store.Delete(ctx, id); err != nil {
			s.log.Warn().Err(err).Msg("failed to drop stale session")
		}
		s.clearCookie(c)
		return nil, nil
	}

	if session.AccessToken != stored.AccessToken {
		if err := s.store.Save(ctx, id, session, s.ttl); err != nil {
			s.log.Warn().Err(err).Msg("failed to persist refreshed session")
		} else {
			s.log.Debug().Str("user", session.User.Email).Msg("session refreshed")
		}
	}

	c.Locals(sessionKey, session)
	return session, nil
}

// Start persists session under a new id and sets the cookie
func (s *Sessions) Start(c *fiber.Ctx, session *models.Session) error {
	id := uuid.NewString()
	if err := s.store.Save(c.UserContext(), id, session, s.ttl); err != nil {
		return apperr.Auth("persist session", err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(s.ttl),
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	// the cookie only reaches the store on the next request
	c.Request().Header.SetCookie(CookieName, id)
	c.Locals(sessionKey, nil)
	return nil
}

// End signs out at the auth service and forgets the session
func (s *Sessions) End(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Cookies(CookieName)
	defer s.clearCookie(c)
	if id == "" {
		return nil
	}

	stored, err := s.store.Load(ctx, id)
	if err != nil {
		return apperr.Auth("load session", err)
	}
	if stored != nil {
		if err := s.auth.SignOut(ctx, stored.AccessToken); err != nil {
			return apperr.Auth("sign out", err)
		}
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return apperr.Auth("drop session", err)
	}
	return nil
}

func (s *Sessions) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Require guards routes behind a signed-in session. Pages redirect to the
// login screen, API requests get 401 JSON. The user's access token is
// attached to the request context for backend calls.
func (s *Sessions) Require() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := s.Current(c)
		if err != nil {
			s.log.Error().
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("ip", c.IP()).
				Err(err).
				Msg("session lookup failed")
		}
		if session == nil {
			if IsAPI(c) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Authentication required",
				})
			}
			return c.Redirect("/login", fiber.StatusSeeOther)
		}

		c.SetUserContext(backend.WithAccessToken(c.UserContext(), session.AccessToken))
		return c.Next()
	}
}

// SessionFrom returns the session Require stored on the request
func SessionFrom(c *fiber.Ctx) *models.Session {
	session, _ := c.Locals(sessionKey).(*models.Session)
	return session
}

// IsAPI reports whether the request targets the JSON API
func IsAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}
