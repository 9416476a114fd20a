package posts

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/agora/internal/moderation"
	"github.com/JaimeStill/agora/internal/policies"
)

// Kind is the audience of a post.
type Kind int

const (
	KindPublic  Kind = 1
	KindFriends Kind = 2
	KindPrivate Kind = 3
)

func (k Kind) Valid() bool {
	return k >= KindPublic && k <= KindPrivate
}

// NoteManual is the moderation note stored on manually approved posts.
const NoteManual = "Manually moderated"

// Post is a piece of user content published to a feed, page, or group
// together with its moderation outcome.
type Post struct {
	ID                uuid.UUID           `json:"id"`
	AuthorID          uuid.UUID           `json:"authorId"`
	EntityType        policies.EntityType `json:"entityType"`
	EntityID          *uuid.UUID          `json:"entityId"`
	Content           string              `json:"content"`
	ImageURLs         []string            `json:"imageUrls"`
	Kind              Kind                `json:"kind"`
	Status            moderation.Status   `json:"status"`
	ModerationNote    *string             `json:"moderationNote"`
	FlaggedCategories []string            `json:"flaggedCategories"`
	ModerationDetails *moderation.Details `json:"moderationDetails,omitempty"`
	AutoModerated     bool                `json:"autoModerated"`
	ModeratedBy       *uuid.UUID          `json:"moderatedBy"`
	ModeratedAt       *time.Time          `json:"moderatedAt"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// Scope returns the policy scope the post was published under. Feed posts
// fall under the global policy.
func (p Post) Scope() policies.Scope {
	switch {
	case p.EntityType == policies.EntityPage && p.EntityID != nil:
		return policies.Page(*p.EntityID)
	case p.EntityType == policies.EntityGroup && p.EntityID != nil:
		return policies.Group(*p.EntityID)
	}
	return policies.Global()
}

// CreateCommand is the body of a post creation request.
type CreateCommand struct {
	Content   string   `json:"content"`
	ImageURLs []string `json:"imageUrls"`
	Kind      Kind     `json:"kind"`
}

// Validate reports the first invalid field.
func (c CreateCommand) Validate() error {
	if !c.Kind.Valid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(c.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}

// CreateResult is returned to the author of a new post.
type CreateResult struct {
	ID                uuid.UUID           `json:"id"`
	Status            moderation.Status   `json:"status"`
	Message           string              `json:"message"`
	FlaggedCategories []string            `json:"flaggedCategories,omitempty"`
	ModerationDetails *moderation.Details `json:"moderationDetails,omitempty"`
}

// ReviewCommand is the body of a manual moderation request.
type ReviewCommand struct {
	ID     uuid.UUID         `json:"id"`
	Status moderation.Status `json:"status"`
	Reason string            `json:"reason,omitempty"`
}

// Validate checks the target status and that rejections carry a reason.
func (c ReviewCommand) Validate() error {
	if c.Status != moderation.StatusApproved && c.Status != moderation.StatusRejected {
		return ErrInvalidStatus
	}
	if c.Status == moderation.StatusRejected && strings.TrimSpace(c.Reason) == "" {
		return ErrReasonRequired
	}
	return nil
}

// Note is the moderation note a review leaves on the post.
func (c ReviewCommand) Note() string {
	if c.Status == moderation.StatusRejected {
		return strings.TrimSpace(c.Reason)
	}
	return NoteManual
}

// ValidImageURLs keeps absolute http and https URLs and drops the rest.
func ValidImageURLs(urls []string) []string {
	valid := make([]string, 0, len(urls))
	for _, raw := range urls {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || u.Host == "" {
			continue
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			continue
		}
		valid = append(valid, u.String())
	}
	return valid
}
