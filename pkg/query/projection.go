// Package query builds parameterized SELECT statements from a projection of
// logical field names onto table columns.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps logical field names to alias-qualified columns.
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	columns map[string]string
	ordered []string
}

// NewProjectionMap starts a projection over schema.table aliased as alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:  schema,
		table:   table,
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project maps column onto the logical field name.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	qualified := p.alias + "." + column
	p.columns[field] = qualified
	p.ordered = append(p.ordered, qualified)
	return p
}

// Table returns the FROM target, "schema.table alias".
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Column resolves a logical field. Unknown fields are returned as given.
func (p *ProjectionMap) Column(field string) string {
	if col, ok := p.columns[field]; ok {
		return col
	}
	return field
}

// Known reports whether field is projected.
func (p *ProjectionMap) Known(field string) bool {
	_, ok := p.columns[field]
	return ok
}

// Columns returns the projected columns in declaration order.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.ordered, ", ")
}
