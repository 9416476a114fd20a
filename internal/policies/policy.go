package policies

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/agora/internal/moderation"
)

// Policy is the moderation policy of one scope.
type Policy struct {
	ID                    uuid.UUID  `json:"id"`
	EntityType            EntityType `json:"entityType"`
	EntityID              *uuid.UUID `json:"entityId"`
	AutoModerationEnabled bool       `json:"isAutoModerationEnabled"`
	ModerationRequired    bool       `json:"isModerationRequired"`
	UpdatedBy             *uuid.UUID `json:"updatedBy"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// Mode returns the flags the decision engine acts on.
func (p Policy) Mode() moderation.Mode {
	return moderation.Mode{Required: p.ModerationRequired, Auto: p.AutoModerationEnabled}
}

// Scope returns the scope the policy belongs to.
func (p Policy) Scope() Scope {
	switch p.EntityType {
	case EntityPage:
		return Page(*p.EntityID)
	case EntityGroup:
		return Group(*p.EntityID)
	}
	return Global()
}

// UpdateCommand changes a policy. Nil fields keep their current value.
type UpdateCommand struct {
	AutoModerationEnabled *bool `json:"isAutoModerationEnabled"`
	ModerationRequired    *bool `json:"isModerationRequired"`
}

func (c UpdateCommand) apply(p Policy) Policy {
	if c.AutoModerationEnabled != nil {
		p.AutoModerationEnabled = *c.AutoModerationEnabled
	}
	if c.ModerationRequired != nil {
		p.ModerationRequired = *c.ModerationRequired
	}
	return p
}

// Defaults for policies created on first read and at entity creation.
const (
	DefaultModerationRequired = true
	DefaultAutoOnRead         = false
	DefaultAutoOnBootstrap    = true
)
