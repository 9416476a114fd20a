package pages

import (
	"net/url"

	"github.com/JaimeStill/agora/pkg/query"
	"github.com/JaimeStill/agora/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "pages", "pg").
	Project("id", "ID").
	Project("name", "Name").
	Project("description", "Description").
	Project("avatar_url", "AvatarURL").
	Project("cover_url", "CoverURL").
	Project("category", "Category").
	Project("creator_id", "CreatorID").
	Project("kind", "Kind").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

const returning = `RETURNING id, name, description, avatar_url, cover_url, category, creator_id, kind, created_at, updated_at`

var errMapping = repository.Mapping{
	NotFound:  ErrNotFound,
	Duplicate: ErrMemberExists,
	Reference: ErrNotFound,
}

// Filters contains optional filtering criteria for page queries.
type Filters struct {
	Category *string `json:"category,omitempty"`
	Name     *string `json:"name,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Category", f.Category).
		WhereContains("Name", f.Name)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if c := values.Get("category"); c != "" {
		f.Category = &c
	}
	if n := values.Get("name"); n != "" {
		f.Name = &n
	}
	return f
}

func scanPage(s repository.Scanner) (Page, error) {
	var p Page
	err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.AvatarURL,
		&p.CoverURL,
		&p.Category,
		&p.CreatorID,
		&p.Kind,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func scanMember(s repository.Scanner) (Member, error) {
	var m Member
	err := s.Scan(&m.PageID, &m.UserID, &m.Role, &m.CreatedAt)
	return m, err
}
