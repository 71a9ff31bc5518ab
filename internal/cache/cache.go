// Package cache persists signed-in sessions under opaque ids.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bilgisen/pressdesk/internal/models"
)

// ErrClosed is returned by a store after Close
var ErrClosed = errors.New("session store closed")

// SessionStore keeps auth sessions keyed by the id held in the browser cookie
type SessionStore interface {
	Save(ctx context.Context, id string, session *models.Session, ttl time.Duration) error
	// Load returns nil, nil when no session is stored under id
	Load(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
