package groups

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/agora/pkg/query"
	"github.com/JaimeStill/agora/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "groups", "g").
	Project("id", "ID").
	Project("name", "Name").
	Project("description", "Description").
	Project("avatar_url", "AvatarURL").
	Project("cover_url", "CoverURL").
	Project("privacy", "Privacy").
	Project("owner_id", "OwnerID").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

const memberColumns = "group_id, user_id, role, created_at"

var errMapping = repository.Mapping{
	NotFound:  ErrNotFound,
	Duplicate: ErrAlreadyMember,
	Reference: ErrNotFound,
}

// Filters contains optional filtering criteria for group queries.
type Filters struct {
	Privacy *int    `json:"privacy,omitempty"`
	Name    *string `json:"name,omitempty"`
}

func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Privacy", f.Privacy).
		WhereContains("Name", f.Name)
}

func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if p, err := strconv.Atoi(values.Get("privacy")); err == nil {
		f.Privacy = &p
	}
	if n := values.Get("name"); n != "" {
		f.Name = &n
	}
	return f
}

func scanGroup(s repository.Scanner) (Group, error) {
	var g Group
	err := s.Scan(
		&g.ID,
		&g.Name,
		&g.Description,
		&g.AvatarURL,
		&g.CoverURL,
		&g.Privacy,
		&g.OwnerID,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	return g, err
}

func scanMember(s repository.Scanner) (Member, error) {
	var m Member
	err := s.Scan(&m.GroupID, &m.UserID, &m.Role, &m.CreatedAt)
	return m, err
}
