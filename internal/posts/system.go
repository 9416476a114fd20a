package posts

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/agora/internal/policies"
	"github.com/JaimeStill/agora/pkg/auth"
	"github.com/JaimeStill/agora/pkg/pagination"
)

// System defines the public contract for post operations.
type System interface {
	Handler() *Handler

	// Create moderates and stores a post published by actor under scope.
	Create(ctx context.Context, actor auth.Actor, scope policies.Scope, cmd CreateCommand) (*CreateResult, error)

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Post], error)
	Find(ctx context.Context, id uuid.UUID) (*Post, error)

	// Review moves a pending post to approved or rejected.
	Review(ctx context.Context, actor auth.Actor, cmd ReviewCommand) (*Post, error)

	// Delete removes a post and the images it stored.
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error
}
