package pages

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Page member roles.
const (
	RoleOwner  = 1
	RoleAdmin  = 2
	RoleEditor = 3
)

// Page is a public profile that members publish posts on.
type Page struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	AvatarURL   *string   `json:"avatarUrl"`
	CoverURL    *string   `json:"coverUrl"`
	Category    string    `json:"category"`
	CreatorID   uuid.UUID `json:"creatorId"`
	Kind        int       `json:"kind"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Member is a user's role on a page.
type Member struct {
	PageID    uuid.UUID `json:"pageId"`
	UserID    uuid.UUID `json:"userId"`
	Role      int       `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateCommand is the body of a page creation request.
type CreateCommand struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	CoverURL    string `json:"coverUrl,omitempty"`
	Category    string `json:"category"`
	Kind        int    `json:"kind,omitempty"`
}

// Validate requires a name and a category. Kind defaults to public.
func (c *CreateCommand) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(c.Category) == "" {
		return ErrCategoryRequired
	}
	if c.Kind == 0 {
		c.Kind = 1
	}
	if c.Kind != 1 && c.Kind != 2 {
		return ErrInvalidKind
	}
	return nil
}

// MemberCommand adds a user to a page.
type MemberCommand struct {
	UserID uuid.UUID `json:"userId"`
	Role   int       `json:"role"`
}

func (c MemberCommand) Validate() error {
	if c.UserID == uuid.Nil {
		return ErrInvalidMember
	}
	if c.Role != RoleAdmin && c.Role != RoleEditor {
		return ErrInvalidRole
	}
	return nil
}

// optionalURL returns raw when it is an absolute http or https URL.
func optionalURL(raw string) *string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil
	}
	s := u.String()
	return &s
}
