package policies

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/agora/pkg/auth"
)

// System defines the public contract for moderation policy operations.
type System interface {
	Handler() *Handler

	// Resolve returns the policy of scope, creating it with defaults on first
	// access.
	Resolve(ctx context.Context, scope Scope) (*Policy, error)

	// Bootstrap creates the policy of a newly created page or group with
	// automatic moderation enabled. Existing policies are returned unchanged.
	Bootstrap(ctx context.Context, scope Scope, by uuid.UUID) (*Policy, error)

	// Update authorizes actor and applies cmd to the policy of scope.
	Update(ctx context.Context, actor auth.Actor, scope Scope, cmd UpdateCommand) (*Policy, error)

	// List returns every policy of the given entity type, creating missing
	// page and group policies.
	List(ctx context.Context, t EntityType, by uuid.UUID) ([]Policy, error)

	// Remove deletes the policy of a page or group.
	Remove(ctx context.Context, scope Scope) error
}
