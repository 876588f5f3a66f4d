package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/tablemesa/resto-backend/internal/access"
)

type contextKey string

const (
	ctxActor   contextKey = "actor"
	ctxStoreID contextKey = "store_id"
)

// WithActor injects the resolved actor into the context. The actor is built
// once at the auth boundary and read-only downstream.
func WithActor(ctx context.Context, actor *access.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}

// ActorFromContext returns the resolved actor, or nil for anonymous requests.
func ActorFromContext(ctx context.Context) *access.Actor {
	if ctx == nil {
		return nil
	}
	if actor, ok := ctx.Value(ctxActor).(*access.Actor); ok {
		return actor
	}
	return nil
}

// WithStoreID injects the resolved store for the request.
func WithStoreID(ctx context.Context, storeID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxStoreID, storeID)
}

// StoreIDFromContext returns the resolved store id, or uuid.Nil when no store
// middleware ran on the route.
func StoreIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if id, ok := ctx.Value(ctxStoreID).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
