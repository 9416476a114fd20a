// Package auth authenticates bearer tokens and carries the resulting actor
// through the request context.
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
	ErrNoActor      = errors.New("no authenticated actor")
)

// MapHTTPStatus maps auth errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrMissingToken) || errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrNoActor) {
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// Actor is the authenticated user behind a request.
type Actor struct {
	ID          uuid.UUID `json:"id"`
	SystemAdmin bool      `json:"systemAdmin"`
}

type actorKey struct{}

// WithActor returns ctx carrying a.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the actor stored by WithActor.
func ActorFrom(ctx context.Context) (Actor, error) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	if !ok {
		return Actor{}, ErrNoActor
	}
	return a, nil
}
