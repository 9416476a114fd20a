package policies

import (
	"fmt"

	"github.com/google/uuid"
)

// EntityType is the kind of entity a policy governs.
type EntityType int

const (
	EntityGlobal EntityType = 1
	EntityPage   EntityType = 2
	EntityGroup  EntityType = 3
)

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	return t >= EntityGlobal && t <= EntityGroup
}

func (t EntityType) String() string {
	switch t {
	case EntityGlobal:
		return "global"
	case EntityPage:
		return "page"
	case EntityGroup:
		return "group"
	}
	return fmt.Sprintf("entity(%d)", int(t))
}

// Scope identifies one policy: the global policy, or the policy of a page or
// group. The zero Scope is invalid.
type Scope struct {
	typ EntityType
	id  uuid.UUID
}

func Global() Scope              { return Scope{typ: EntityGlobal} }
func Page(id uuid.UUID) Scope    { return Scope{typ: EntityPage, id: id} }
func Group(id uuid.UUID) Scope   { return Scope{typ: EntityGroup, id: id} }
func (s Scope) Type() EntityType { return s.typ }

// EntityID returns the page or group ID, or nil for the global scope.
func (s Scope) EntityID() *uuid.UUID {
	if s.typ == EntityGlobal {
		return nil
	}
	id := s.id
	return &id
}

// Key is the unique storage key for the scope.
func (s Scope) Key() string {
	switch s.typ {
	case EntityGlobal:
		return "global"
	case EntityPage:
		return "page:" + s.id.String()
	case EntityGroup:
		return "group:" + s.id.String()
	}
	return ""
}

func (s Scope) String() string {
	return s.Key()
}

// Validate fails with ErrInvalidEntityType for unknown types and
// ErrEntityIDRequired for page or group scopes without an ID.
func (s Scope) Validate() error {
	if !s.typ.Valid() {
		return ErrInvalidEntityType
	}
	if s.typ != EntityGlobal && s.id == uuid.Nil {
		return ErrEntityIDRequired
	}
	return nil
}

// NewScope builds a Scope from wire values. The entity ID is ignored for the
// global scope.
func NewScope(entityType int, entityID string) (Scope, error) {
	t := EntityType(entityType)
	switch t {
	case EntityGlobal:
		return Global(), nil
	case EntityPage, EntityGroup:
		if entityID == "" {
			return Scope{}, ErrEntityIDRequired
		}
		id, err := uuid.Parse(entityID)
		if err != nil {
			return Scope{}, fmt.Errorf("%w: %q", ErrInvalidEntityID, entityID)
		}
		return Scope{typ: t, id: id}, nil
	}
	return Scope{}, ErrInvalidEntityType
}
