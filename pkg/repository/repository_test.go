package repository_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/agora/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
	errReference = errors.New("reference")
)

func TestMapError(t *testing.T) {
	m := repository.Mapping{NotFound: errNotFound, Duplicate: errDuplicate, Reference: errReference}
	other := errors.New("boom")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), errNotFound},
		{"unique", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"foreign key", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"}), errReference},
		{"other pg", &pgconn.PgError{Code: "42P01"}, nil},
		{"passthrough", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.in, m)
			if tt.name == "other pg" {
				var pgErr *pgconn.PgError
				if !errors.As(got, &pgErr) {
					t.Fatalf("expected pg error passthrough, got %v", got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("MapError(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMapErrorUnmapped(t *testing.T) {
	got := repository.MapError(sql.ErrNoRows, repository.Mapping{})
	if !errors.Is(got, sql.ErrNoRows) {
		t.Errorf("got %v, want sql.ErrNoRows", got)
	}
}
