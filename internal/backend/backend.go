// Package backend describes the hosted service the application delegates
// authentication, file storage and table persistence to.
package backend

import (
	"context"
	"errors"
	"io"

	"github.com/bilgisen/pressdesk/internal/models"
)

// Buckets
const (
	BucketMagazines     = "magazines"
	BucketTitleImages   = "title-images"
	BucketArticleImages = "article-images"
)

// Tables
const (
	TableMagazines = "magazines"
	TableArticles  = "articles"
)

// ErrNotFound is returned when a lookup by id matches no row
var ErrNotFound = errors.New("row not found")

// Order describes the ordering of a select
type Order struct {
	Field     string
	Ascending bool
}

// NewestFirst orders rows by creation time, newest first
var NewestFirst = Order{Field: "created_at", Ascending: false}

// Auth is the email/password authentication service
type Auth interface {
	// GetSession returns the session for token, or nil when the token is
	// absent, expired or revoked.
	GetSession(ctx context.Context, session *models.Session) (*models.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// ObjectStore is keyed-bucket binary storage with public URLs
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
	PublicURL(bucket, key string) string
	Remove(ctx context.Context, bucket string, keys ...string) error
}

// Tables is the relational table API
type Tables interface {
	Select(ctx context.Context, table string, order Order, dest any) error
	SelectByID(ctx context.Context, table, idField, id string, dest any) error
	Insert(ctx context.Context, table string, row any) error
	Update(ctx context.Context, table, idField, id string, row any) error
	Delete(ctx context.Context, table, idField, id string) error
}

// Client bundles the three capability groups. It is built once at startup
// and handed to every component that needs the hosted service.
type Client struct {
	Auth    Auth
	Storage ObjectStore
	Tables  Tables
}

type tokenKey struct{}

// WithAccessToken attaches the signed-in user's access token to ctx so table
// and storage calls run with the user's permissions.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

// AccessToken returns the token attached by WithAccessToken
func AccessToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
