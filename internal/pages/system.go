package pages

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/agora/internal/policies"
	"github.com/JaimeStill/agora/pkg/auth"
	"github.com/JaimeStill/agora/pkg/pagination"
)

// System defines the public contract for page operations.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Page], error)
	Find(ctx context.Context, id uuid.UUID) (*Page, error)

	// Create stores a page owned by actor and bootstraps its moderation policy.
	Create(ctx context.Context, actor auth.Actor, cmd CreateCommand) (*Page, error)
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error

	Members(ctx context.Context, id uuid.UUID) ([]Member, error)
	AddMember(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd MemberCommand) (*Member, error)
	RemoveMember(ctx context.Context, actor auth.Actor, id, userID uuid.UUID) error

	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	IDs(ctx context.Context) ([]uuid.UUID, error)
	// Role returns userID's role on the page; ok is false for non-members.
	Role(ctx context.Context, id, userID uuid.UUID) (role int, ok bool, err error)
}

// PolicyBootstrapper is satisfied by policies.System.
type PolicyBootstrapper interface {
	Bootstrap(ctx context.Context, scope policies.Scope, by uuid.UUID) (*policies.Policy, error)
	Remove(ctx context.Context, scope policies.Scope) error
}
