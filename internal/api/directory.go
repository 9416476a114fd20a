package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/agora/internal/groups"
	"github.com/JaimeStill/agora/internal/pages"
	"github.com/JaimeStill/agora/internal/policies"
	"github.com/JaimeStill/agora/internal/posts"
)

// directory answers entity and membership questions for the policy and post
// systems from the page and group systems. The fields are assigned after the
// page and group systems exist, since both bootstrap policies on creation.
type directory struct {
	pages  pages.System
	groups groups.System
}

var (
	_ policies.Directory = (*directory)(nil)
	_ posts.Directory    = (*directory)(nil)
)

func (d *directory) Exists(ctx context.Context, scope policies.Scope) (bool, error) {
	id := scope.EntityID()
	switch scope.Type() {
	case policies.EntityPage:
		return d.pages.Exists(ctx, *id)
	case policies.EntityGroup:
		return d.groups.Exists(ctx, *id)
	}
	return true, nil
}

func (d *directory) EntityIDs(ctx context.Context, t policies.EntityType) ([]uuid.UUID, error) {
	switch t {
	case policies.EntityPage:
		return d.pages.IDs(ctx)
	case policies.EntityGroup:
		return d.groups.IDs(ctx)
	}
	return nil, nil
}

func (d *directory) IsPageMember(ctx context.Context, pageID, userID uuid.UUID) (bool, error) {
	_, ok, err := d.pages.Role(ctx, pageID, userID)
	return ok, err
}

func (d *directory) PageRole(ctx context.Context, pageID, userID uuid.UUID) (int, bool, error) {
	return d.pages.Role(ctx, pageID, userID)
}

func (d *directory) GroupRole(ctx context.Context, groupID, userID uuid.UUID) (int, bool, error) {
	return d.groups.Role(ctx, groupID, userID)
}
