// Package requestcontext carries request-scoped values on context.Context.
//
// The identity binder middleware stores the authenticated actor here; services and
// the audit observer read it back. Because the values live on the request's own
// context they cannot be observed by any other in-flight request, and they are gone
// once the request finishes.
package requestcontext

import (
	"context"

	"office-panel/internal/models"
)

type (
	actorKey     struct{}
	requestIDKey struct{}
	clientIPKey  struct{}
)

// WithActor binds the acting user to ctx. A nil user marks the request anonymous.
func WithActor(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, actorKey{}, user)
}

// Actor returns the user bound to ctx, or nil for anonymous and system work.
func Actor(ctx context.Context) *models.User {
	if user, ok := ctx.Value(actorKey{}).(*models.User); ok {
		return user
	}
	return nil
}

// ActorID returns the bound user's ID, or nil when there is no actor.
func ActorID(ctx context.Context) *uint {
	user := Actor(ctx)
	if user == nil {
		return nil
	}
	id := user.ID
	return &id
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}
