package supabase

import (
	"context"
	"errors"
	"net/http"

	"github.com/bilgisen/pressdesk/internal/models"
)

type authAPI struct{ c *Client }

type passwordGrant struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshGrant struct {
	RefreshToken string `json:"refresh_token"`
}

func (a *authAPI) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	var session models.Session
	resp, err := a.c.request(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(passwordGrant{Email: email, Password: password}).
		SetResult(&session).
		Post("/auth/v1/token")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	a.stamp(&session)
	return &session, nil
}

// GetSession verifies the stored session against the auth service. An
// expired access token is refreshed once with the refresh token.
func (a *authAPI) GetSession(ctx context.Context, session *models.Session) (*models.Session, error) {
	if session == nil || session.AccessToken == "" {
		return nil, nil
	}

	if !session.Expired(a.c.now()) {
		user, err := a.user(ctx, session.AccessToken)
		if err == nil {
			out := *session
			out.User = user
			return &out, nil
		}
		if !isUnauthorized(err) {
			return nil, err
		}
	}

	if session.RefreshToken == "" {
		return nil, nil
	}
	refreshed, err := a.refresh(ctx, session.RefreshToken)
	if isUnauthorized(err) {
		return nil, nil
	}
	return refreshed, err
}

func (a *authAPI) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	resp, err := a.c.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetError(&APIError{}).
		Post("/auth/v1/logout")
	err = checkResponse(resp, err)
	if isUnauthorized(err) {
		// already revoked
		return nil
	}
	return err
}

func (a *authAPI) user(ctx context.Context, accessToken string) (*models.User, error) {
	var user models.User
	resp, err := a.c.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetError(&APIError{}).
		SetResult(&user).
		Get("/auth/v1/user")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *authAPI) refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	var session models.Session
	resp, err := a.c.request(ctx).
		SetQueryParam("grant_type", "refresh_token").
		SetBody(refreshGrant{RefreshToken: refreshToken}).
		SetResult(&session).
		Post("/auth/v1/token")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	a.stamp(&session)
	return &session, nil
}

func (a *authAPI) stamp(s *models.Session) {
	now := a.c.now()
	s.CreatedAt = now
	if s.ExpiresAt == 0 && s.ExpiresIn > 0 {
		s.ExpiresAt = now.Unix() + int64(s.ExpiresIn)
	}
}

func isUnauthorized(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	// GoTrue answers an invalid refresh token with 400 invalid_grant
	return apiErr.Status == http.StatusUnauthorized ||
		apiErr.Status == http.StatusForbidden ||
		(apiErr.Status == http.StatusBadRequest && apiErr.ErrorName == "invalid_grant")
}
