package policies

import (
	"github.com/JaimeStill/agora/pkg/query"
	"github.com/JaimeStill/agora/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "moderation_policies", "mp").
	Project("id", "ID").
	Project("entity_type", "EntityType").
	Project("entity_id", "EntityID").
	Project("auto_moderation_enabled", "AutoModerationEnabled").
	Project("moderation_required", "ModerationRequired").
	Project("updated_by", "UpdatedBy").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "UpdatedAt",
	Descending: true,
}

const returning = `RETURNING id, entity_type, entity_id, auto_moderation_enabled, moderation_required, updated_by, created_at, updated_at`

var errMapping = repository.Mapping{
	NotFound:  ErrEntityNotFound,
	Duplicate: ErrConflict,
	Reference: ErrEntityNotFound,
}

// globalLockKey is the transaction-scoped advisory lock held while the
// global policy is replaced.
const globalLockKey int64 = 0x61676f7261

func scanPolicy(s repository.Scanner) (Policy, error) {
	var p Policy
	err := s.Scan(
		&p.ID,
		&p.EntityType,
		&p.EntityID,
		&p.AutoModerationEnabled,
		&p.ModerationRequired,
		&p.UpdatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}
