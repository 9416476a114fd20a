package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Mapping names the domain errors returned for common database failures.
// Nil fields leave the corresponding condition unmapped.
type Mapping struct {
	NotFound  error
	Duplicate error
	Reference error
}

// MapError translates sql.ErrNoRows and PostgreSQL constraint violations into
// the domain errors named by m. Unmapped errors pass through unchanged.
func MapError(err error, m Mapping) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) && m.NotFound != nil {
		return m.NotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch {
	case pgErr.Code == pgUniqueViolation && m.Duplicate != nil:
		return m.Duplicate
	case pgErr.Code == pgForeignKeyViolation && m.Reference != nil:
		return m.Reference
	}

	return err
}
