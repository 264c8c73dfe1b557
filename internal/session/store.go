// Package session persists the authenticated-session markers issued by the
// login gate. A marker is the only durable state in the system: a token is
// present while the session is live and removed on logout. No expiry.
package session

import (
	"context"
	"time"
)

// Session is one persisted login marker.
type Session struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// Store defines the persistence interface for session markers.
type Store interface {
	// Create issues a new marker with a fresh token.
	Create(ctx context.Context) (*Session, error)
	// Get returns the marker for token, or nil if none exists.
	Get(ctx context.Context, token string) (*Session, error)
	// Delete removes the marker. Deleting an absent token is not an error;
	// logout must be idempotent.
	Delete(ctx context.Context, token string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
