package policies

import (
	"context"
	"fmt"

	"github.com/JaimeStill/agora/pkg/auth"
)

// Gate authorizes policy changes.
type Gate struct {
	dir Directory
}

func NewGate(dir Directory) *Gate {
	return &Gate{dir: dir}
}

// Authorize fails with ErrPermissionDenied unless actor may change the policy
// of scope:
//
//   - global: system administrators only
//   - page: any member of the page
//   - group: system administrators and group admins or moderators
func (g *Gate) Authorize(ctx context.Context, actor auth.Actor, scope Scope) error {
	if err := scope.Validate(); err != nil {
		return err
	}

	switch scope.Type() {
	case EntityGlobal:
		if actor.SystemAdmin {
			return nil
		}
		return fmt.Errorf("%w: only system administrators can change global settings", ErrPermissionDenied)

	case EntityPage:
		ok, err := g.dir.IsPageMember(ctx, *scope.EntityID(), actor.ID)
		if err != nil {
			return fmt.Errorf("check page membership: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: not a member of this page", ErrPermissionDenied)
		}
		return nil

	case EntityGroup:
		if actor.SystemAdmin {
			return nil
		}
		role, ok, err := g.dir.GroupRole(ctx, *scope.EntityID(), actor.ID)
		if err != nil {
			return fmt.Errorf("check group role: %w", err)
		}
		if !ok || (role != GroupRoleAdmin && role != GroupRoleModerator) {
			return fmt.Errorf("%w: only group admins and moderators can change group settings", ErrPermissionDenied)
		}
		return nil
	}

	return ErrInvalidEntityType
}
