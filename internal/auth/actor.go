// Package auth resolves the acting user and decides what they may do.
// All role branching in the engine goes through the Policy here; no
// other package re-derives visibility or approval rules.
package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
)

// Actor is the authenticated user an engine call runs as. It is
// resolved once per request from the bearer token and passed
// explicitly; there is no ambient session state.
type Actor struct {
	ID        uuid.UUID
	OrgID     uuid.UUID
	Role      models.Role
	ManagerID *uuid.UUID
}

type contextKey int

const actorContextKey contextKey = iota

// WithActor stores the actor in the request context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext extracts the authenticated actor from the request
// context. Returns nil for unauthenticated requests.
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(actorContextKey).(*Actor)
	return actor
}
