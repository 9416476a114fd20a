package policies

import (
	"context"

	"github.com/google/uuid"
)

// Group member roles that may manage group settings.
const (
	GroupRoleAdmin     = 1
	GroupRoleModerator = 2
	GroupRoleMember    = 3
)

// Directory answers entity and membership questions on behalf of the
// pages and groups domains.
type Directory interface {
	// Exists reports whether the page or group behind scope exists.
	Exists(ctx context.Context, scope Scope) (bool, error)
	// EntityIDs lists every page or group ID.
	EntityIDs(ctx context.Context, t EntityType) ([]uuid.UUID, error)
	IsPageMember(ctx context.Context, pageID, userID uuid.UUID) (bool, error)
	// GroupRole returns the user's role in the group; ok is false for
	// non-members.
	GroupRole(ctx context.Context, groupID, userID uuid.UUID) (role int, ok bool, err error)
}
