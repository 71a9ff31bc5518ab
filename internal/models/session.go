package models

import "time"

// User is the authenticated account as returned by the auth service
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the token state returned by the auth service after sign-in
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    int64     `json:"expires_at"`
	User         *User     `json:"user"`
	CreatedAt    time.Time `json:"created_at"`
}

// Expired reports whether the access token is past its expiry at now.
// A session without an expiry never expires locally.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	if s.ExpiresAt == 0 {
		return false
	}
	return now.Unix() >= s.ExpiresAt
}

// HasUser reports whether the session belongs to a signed-in user
func (s *Session) HasUser() bool {
	return s != nil && s.User != nil && s.User.ID != ""
}
