package pages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/agora/internal/policies"
	"github.com/JaimeStill/agora/pkg/auth"
	"github.com/JaimeStill/agora/pkg/pagination"
	"github.com/JaimeStill/agora/pkg/query"
	"github.com/JaimeStill/agora/pkg/repository"
)

type repo struct {
	db         *sql.DB
	policies   PolicyBootstrapper
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a page repository implementing the System interface.
func New(db *sql.DB, bootstrapper PolicyBootstrapper, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		policies:   bootstrapper,
		logger:     logger.With("system", "pages"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Page], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Description", "Category")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderBy(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count pages: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanPage)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}

	result := pagination.NewPageResult(items, total, page)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Page, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPage)
	if err != nil {
		return nil, repository.MapError(err, errMapping)
	}
	return &p, nil
}

func (r *repo) Create(ctx context.Context, actor auth.Actor, cmd CreateCommand) (*Page, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Page, error) {
		stmt := `
			INSERT INTO pages(id, name, description, avatar_url, cover_url, category, creator_id, kind)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			` + returning

		p, err := repository.QueryOne(ctx, tx, stmt, []any{
			uuid.New(),
			cmd.Name,
			cmd.Description,
			optionalURL(cmd.AvatarURL),
			optionalURL(cmd.CoverURL),
			cmd.Category,
			actor.ID,
			cmd.Kind,
		}, scanPage)
		if err != nil {
			return Page{}, err
		}

		if _, err := repository.Exec(ctx, tx,
			"INSERT INTO page_members(page_id, user_id, role) VALUES ($1, $2, $3)",
			p.ID, actor.ID, RoleOwner,
		); err != nil {
			return Page{}, err
		}
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", repository.MapError(err, errMapping))
	}

	if _, err := r.policies.Bootstrap(ctx, policies.Page(p.ID), actor.ID); err != nil {
		r.logger.Warn("page policy bootstrap failed", "id", p.ID, "error", err)
	}

	r.logger.Info("page created", "id", p.ID, "name", p.Name)
	return &p, nil
}

func (r *repo) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := r.authorize(ctx, actor, id, RoleOwner); err != nil {
		return err
	}

	if err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM pages WHERE id = $1", id); err != nil {
		return repository.MapError(err, errMapping)
	}

	if err := r.policies.Remove(ctx, policies.Page(id)); err != nil {
		r.logger.Warn("page policy removal failed", "id", id, "error", err)
	}

	r.logger.Info("page deleted", "id", id)
	return nil
}

func (r *repo) Members(ctx context.Context, id uuid.UUID) ([]Member, error) {
	if _, err := r.Find(ctx, id); err != nil {
		return nil, err
	}

	members, err := repository.QueryMany(ctx, r.db,
		"SELECT page_id, user_id, role, created_at FROM page_members WHERE page_id = $1 ORDER BY role, created_at",
		[]any{id}, scanMember,
	)
	if err != nil {
		return nil, fmt.Errorf("query page members: %w", err)
	}
	return members, nil
}

func (r *repo) AddMember(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd MemberCommand) (*Member, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := r.authorize(ctx, actor, id, RoleOwner, RoleAdmin); err != nil {
		return nil, err
	}

	m, err := repository.QueryOne(ctx, r.db,
		"INSERT INTO page_members(page_id, user_id, role) VALUES ($1, $2, $3) RETURNING page_id, user_id, role, created_at",
		[]any{id, cmd.UserID, cmd.Role}, scanMember,
	)
	if err != nil {
		return nil, repository.MapError(err, errMapping)
	}

	r.logger.Info("page member added", "page", id, "user", cmd.UserID, "role", cmd.Role)
	return &m, nil
}

func (r *repo) RemoveMember(ctx context.Context, actor auth.Actor, id, userID uuid.UUID) error {
	role, ok, err := r.Role(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMemberNotFound
	}
	if role == RoleOwner {
		return ErrOwnerRemoval
	}

	if actor.ID != userID {
		if err := r.authorize(ctx, actor, id, RoleOwner, RoleAdmin); err != nil {
			return err
		}
	}

	if err := repository.ExecExpectOne(ctx, r.db,
		"DELETE FROM page_members WHERE page_id = $1 AND user_id = $2", id, userID,
	); err != nil {
		return repository.MapError(err, repository.Mapping{NotFound: ErrMemberNotFound})
	}

	r.logger.Info("page member removed", "page", id, "user", userID)
	return nil
}

func (r *repo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := repository.Count(ctx, r.db, "SELECT COUNT(*) FROM pages WHERE id = $1", []any{id})
	if err != nil {
		return false, fmt.Errorf("check page: %w", err)
	}
	return n > 0, nil
}

func (r *repo) IDs(ctx context.Context) ([]uuid.UUID, error) {
	return repository.QueryMany(ctx, r.db, "SELECT id FROM pages", nil, scanID)
}

func (r *repo) Role(ctx context.Context, id, userID uuid.UUID) (int, bool, error) {
	var role int
	err := r.db.QueryRowContext(ctx,
		"SELECT role FROM page_members WHERE page_id = $1 AND user_id = $2", id, userID,
	).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query page role: %w", err)
	}
	return role, true, nil
}

// authorize requires actor to be a system administrator or to hold one of
// roles on the page.
func (r *repo) authorize(ctx context.Context, actor auth.Actor, id uuid.UUID, roles ...int) error {
	if _, err := r.Find(ctx, id); err != nil {
		return err
	}
	if actor.SystemAdmin {
		return nil
	}

	role, ok, err := r.Role(ctx, id, actor.ID)
	if err != nil {
		return err
	}
	for _, allowed := range roles {
		if ok && role == allowed {
			return nil
		}
	}
	return ErrForbidden
}

func scanID(s repository.Scanner) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.Scan(&id)
	return id, err
}
