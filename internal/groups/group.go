package groups

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/agora/internal/policies"
)

// Group member roles. Admins and moderators may manage moderation.
const (
	RoleAdmin     = policies.GroupRoleAdmin
	RoleModerator = policies.GroupRoleModerator
	RoleMember    = policies.GroupRoleMember
)

// Privacy controls who may join a group without an invitation.
type Privacy int

const (
	PrivacyPublic  Privacy = 1
	PrivacyPrivate Privacy = 2
)

// Group is a community whose members post to a shared feed.
type Group struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	AvatarURL   *string   `json:"avatarUrl"`
	CoverURL    *string   `json:"coverUrl"`
	Privacy     Privacy   `json:"privacy"`
	OwnerID     uuid.UUID `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Member struct {
	GroupID   uuid.UUID `json:"groupId"`
	UserID    uuid.UUID `json:"userId"`
	Role      int       `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateCommand struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	AvatarURL   string  `json:"avatarUrl,omitempty"`
	CoverURL    string  `json:"coverUrl,omitempty"`
	Privacy     Privacy `json:"privacy,omitempty"`
}

// Validate requires a name and defaults privacy to public.
func (c *CreateCommand) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	if c.Privacy == 0 {
		c.Privacy = PrivacyPublic
	}
	if c.Privacy != PrivacyPublic && c.Privacy != PrivacyPrivate {
		return ErrInvalidPrivacy
	}
	return nil
}

// MemberCommand adds a member or changes a member's role.
type MemberCommand struct {
	UserID uuid.UUID `json:"userId"`
	Role   int       `json:"role"`
}

func validRole(role int) bool {
	return role == RoleAdmin || role == RoleModerator || role == RoleMember
}

func httpURL(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil
	}
	return &raw
}
