// Package auth is the backing authentication boundary: session lookup,
// credential flows and auth-state-change events. The session layer
// consumes this interface; the Postgres implementation lives alongside.
package auth

import (
	"context"

	"github.com/bellamaterna/storefront/internal/models"
)

type Event string

const (
	EventSignedIn  Event = "SIGNED_IN"
	EventSignedOut Event = "SIGNED_OUT"
)

// StateChange is broadcast to subscribers on sign-in and sign-out.
// Events are broadcast to every subscriber, so Token identifies the
// affected session and subscribers drop changes that are not theirs.
// Session is nil for sign-out events.
type StateChange struct {
	Event   Event
	Token   string
	Session *models.Session
}

// Service is the auth surface the rest of the system depends on.
// GetSession returns (nil, nil) for unknown or expired tokens.
type Service interface {
	GetSession(ctx context.Context, token string) (*models.Session, error)
	SignUp(ctx context.Context, email, password string) (*models.User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*models.User, *models.Session, error)
	SignOut(ctx context.Context, token string) error

	// Subscribe registers for auth-state changes; the returned function
	// unsubscribes and closes the channel.
	Subscribe() (<-chan StateChange, func())
}
