package groups

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/agora/internal/policies"
	"github.com/JaimeStill/agora/pkg/auth"
	"github.com/JaimeStill/agora/pkg/pagination"
)

// System defines the public contract for group operations.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Group], error)
	Find(ctx context.Context, id uuid.UUID) (*Group, error)
	// Create stores a group administered by actor and bootstraps its
	// moderation policy.
	Create(ctx context.Context, actor auth.Actor, cmd CreateCommand) (*Group, error)
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error

	Members(ctx context.Context, id uuid.UUID) ([]Member, error)
	AddMember(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd MemberCommand) (*Member, error)
	// Join adds actor to a public group as a member.
	Join(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Member, error)
	UpdateRole(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd MemberCommand) (*Member, error)
	RemoveMember(ctx context.Context, actor auth.Actor, id, userID uuid.UUID) error

	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	IDs(ctx context.Context) ([]uuid.UUID, error)
	Role(ctx context.Context, id, userID uuid.UUID) (role int, ok bool, err error)
}

// PolicyBootstrapper is satisfied by policies.System.
type PolicyBootstrapper interface {
	Bootstrap(ctx context.Context, scope policies.Scope, by uuid.UUID) (*policies.Policy, error)
	Remove(ctx context.Context, scope policies.Scope) error
}
