package shared

import (
	"context"

	"github.com/google/uuid"
)

// Actor identifies who is performing the current operation
type Actor struct {
	UserID uuid.UUID
	Email  string
	Role   string
	IP     string
}

type actorKey struct{}

// WithActor returns a context carrying the acting user
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the acting user, if any
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

// ActorID returns the acting user's ID or uuid.Nil for system operations
func ActorID(ctx context.Context) uuid.UUID {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return uuid.Nil
	}
	return actor.UserID
}
