package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/sreejithpv/keralacart-backend/pkg/enums"
	"github.com/sreejithpv/keralacart-backend/pkg/types"
)

type contextKey string

const (
	ctxActorID   contextKey = "actor_id"
	ctxActorKind contextKey = "actor_kind"
)

// ActorFromContext rebuilds the authenticated actor seeded by the auth
// middleware. The zero Actor means no authenticated caller.
func ActorFromContext(ctx context.Context) types.Actor {
	if ctx == nil {
		return types.Actor{}
	}
	id, ok := ctx.Value(ctxActorID).(string)
	if !ok {
		return types.Actor{}
	}
	kind, ok := ctx.Value(ctxActorKind).(string)
	if !ok {
		return types.Actor{}
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return types.Actor{}
	}
	return types.Actor{Kind: enums.ActorKind(kind), ID: parsed}
}

// WithActor injects the authenticated actor into the context.
func WithActor(ctx context.Context, actor types.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxActorID, actor.ID.String())
	return context.WithValue(ctx, ctxActorKind, string(actor.Kind))
}
