package posts

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/agora/pkg/query"
	"github.com/JaimeStill/agora/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "posts", "p").
	Project("id", "ID").
	Project("author_id", "AuthorID").
	Project("entity_type", "EntityType").
	Project("entity_id", "EntityID").
	Project("content", "Content").
	Project("image_urls", "ImageURLs").
	Project("kind", "Kind").
	Project("status", "Status").
	Project("moderation_note", "ModerationNote").
	Project("flagged_categories", "FlaggedCategories").
	Project("moderation_details", "ModerationDetails").
	Project("auto_moderated", "AutoModerated").
	Project("moderated_by", "ModeratedBy").
	Project("moderated_at", "ModeratedAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

const returning = `RETURNING id, author_id, entity_type, entity_id, content, image_urls, kind, status, moderation_note, flagged_categories, moderation_details, auto_moderated, moderated_by, moderated_at, created_at, updated_at`

var errMapping = repository.Mapping{
	NotFound: ErrNotFound,
}

// Filters contains optional filtering criteria for post queries. Nil fields
// are ignored.
type Filters struct {
	EntityType *int       `json:"entityType,omitempty"`
	EntityID   *uuid.UUID `json:"entityId,omitempty"`
	Status     *int       `json:"status,omitempty"`
	AuthorID   *uuid.UUID `json:"authorId,omitempty"`
	Kind       *int       `json:"kind,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("EntityType", f.EntityType).
		WhereEquals("EntityID", f.EntityID).
		WhereEquals("Status", f.Status).
		WhereEquals("AuthorID", f.AuthorID).
		WhereEquals("Kind", f.Kind)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Malformed values are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v, err := strconv.Atoi(values.Get("entity_type")); err == nil {
		f.EntityType = &v
	}
	if id, err := uuid.Parse(values.Get("entity_id")); err == nil {
		f.EntityID = &id
	}
	if v, err := strconv.Atoi(values.Get("status")); err == nil {
		f.Status = &v
	}
	if id, err := uuid.Parse(values.Get("author_id")); err == nil {
		f.AuthorID = &id
	}
	if v, err := strconv.Atoi(values.Get("kind")); err == nil {
		f.Kind = &v
	}

	return f
}

func scanPost(s repository.Scanner) (Post, error) {
	var p Post
	err := s.Scan(
		&p.ID,
		&p.AuthorID,
		&p.EntityType,
		&p.EntityID,
		&p.Content,
		jsonb(&p.ImageURLs),
		&p.Kind,
		&p.Status,
		&p.ModerationNote,
		jsonb(&p.FlaggedCategories),
		jsonb(&p.ModerationDetails),
		&p.AutoModerated,
		&p.ModeratedBy,
		&p.ModeratedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

// jsonColumn reads and writes a JSONB column through dst.
type jsonColumn[T any] struct {
	dst *T
}

func jsonb[T any](dst *T) jsonColumn[T] {
	return jsonColumn[T]{dst: dst}
}

func (c jsonColumn[T]) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, c.dst)
	case string:
		return json.Unmarshal([]byte(v), c.dst)
	}
	return fmt.Errorf("scan jsonb: unsupported type %T", src)
}

func (c jsonColumn[T]) Value() (driver.Value, error) {
	data, err := json.Marshal(c.dst)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
