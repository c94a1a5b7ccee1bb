// Package session keeps server-side login sessions. A session maps an opaque
// identifier to the logged-in user's ID until it expires or is deleted.
package session

import (
	"context"
	"errors"
)

var ErrSessionNotFound = errors.New("session not found")

// Store persists login sessions
type Store interface {
	// Create starts a session for userID and returns its identifier
	Create(ctx context.Context, userID uint) (string, error)

	// Get returns the user the session belongs to, or ErrSessionNotFound
	Get(ctx context.Context, sessionID string) (uint, error)

	// Delete ends a single session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// DeleteUser ends every session of userID
	DeleteUser(ctx context.Context, userID uint) error
}
