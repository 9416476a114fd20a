package groups

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"

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

// New creates a group repository implementing the System interface.
func New(db *sql.DB, bootstrapper PolicyBootstrapper, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		policies:   bootstrapper,
		logger:     logger.With("system", "groups"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Group], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Description")
	filters.Apply(qb)
	if len(page.Sort) > 0 {
		qb.OrderBy(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count groups: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanGroup)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}

	result := pagination.NewPageResult(items, total, page)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Group, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	g, err := repository.QueryOne(ctx, r.db, q, args, scanGroup)
	if err != nil {
		return nil, repository.MapError(err, errMapping)
	}
	return &g, nil
}

func (r *repo) Create(ctx context.Context, actor auth.Actor, cmd CreateCommand) (*Group, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	g, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Group, error) {
		g, err := repository.QueryOne(ctx, tx, `
			INSERT INTO groups(id, name, description, avatar_url, cover_url, privacy, owner_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, name, description, avatar_url, cover_url, privacy, owner_id, created_at, updated_at`,
			[]any{uuid.New(), cmd.Name, cmd.Description, httpURL(cmd.AvatarURL), httpURL(cmd.CoverURL), int(cmd.Privacy), actor.ID},
			scanGroup,
		)
		if err != nil {
			return Group{}, err
		}

		_, err = repository.Exec(ctx, tx,
			"INSERT INTO group_members(group_id, user_id, role) VALUES ($1, $2, $3)",
			g.ID, actor.ID, RoleAdmin,
		)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("create group: %w", repository.MapError(err, errMapping))
	}

	if _, err := r.policies.Bootstrap(ctx, policies.Group(g.ID), actor.ID); err != nil {
		r.logger.Warn("group policy bootstrap failed", "id", g.ID, "error", err)
	}

	r.logger.Info("group created", "id", g.ID, "name", g.Name)
	return &g, nil
}

func (r *repo) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	g, err := r.Find(ctx, id)
	if err != nil {
		return err
	}
	if g.OwnerID != actor.ID && !actor.SystemAdmin {
		return ErrPermissionDenied
	}

	if err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM groups WHERE id = $1", id); err != nil {
		return repository.MapError(err, errMapping)
	}

	if err := r.policies.Remove(ctx, policies.Group(id)); err != nil {
		r.logger.Warn("group policy removal failed", "id", id, "error", err)
	}

	r.logger.Info("group deleted", "id", id)
	return nil
}

func (r *repo) Members(ctx context.Context, id uuid.UUID) ([]Member, error) {
	if _, err := r.Find(ctx, id); err != nil {
		return nil, err
	}

	return repository.QueryMany(ctx, r.db,
		"SELECT "+memberColumns+" FROM group_members WHERE group_id = $1 ORDER BY role, created_at",
		[]any{id}, scanMember,
	)
}

func (r *repo) AddMember(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd MemberCommand) (*Member, error) {
	if cmd.UserID == uuid.Nil {
		return nil, ErrInvalidMember
	}
	if !validRole(cmd.Role) {
		return nil, ErrInvalidRole
	}

	allowed := []int{RoleAdmin, RoleModerator}
	if cmd.Role == RoleAdmin {
		allowed = []int{RoleAdmin}
	}
	if _, err := r.require(ctx, actor, id, allowed...); err != nil {
		return nil, err
	}

	return r.insertMember(ctx, id, cmd.UserID, cmd.Role)
}

func (r *repo) Join(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Member, error) {
	g, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.Privacy != PrivacyPublic {
		return nil, ErrPrivateGroup
	}
	return r.insertMember(ctx, id, actor.ID, RoleMember)
}

func (r *repo) UpdateRole(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd MemberCommand) (*Member, error) {
	if !validRole(cmd.Role) {
		return nil, ErrInvalidRole
	}

	g, err := r.require(ctx, actor, id, RoleAdmin)
	if err != nil {
		return nil, err
	}
	if cmd.UserID == g.OwnerID && cmd.Role != RoleAdmin {
		return nil, ErrOwnerDemotion
	}

	m, err := repository.QueryOne(ctx, r.db,
		"UPDATE group_members SET role = $3 WHERE group_id = $1 AND user_id = $2 RETURNING "+memberColumns,
		[]any{id, cmd.UserID, cmd.Role}, scanMember,
	)
	if err != nil {
		return nil, repository.MapError(err, repository.Mapping{NotFound: ErrMemberNotFound})
	}

	r.logger.Info("group role changed", "group", id, "user", cmd.UserID, "role", cmd.Role)
	return &m, nil
}

func (r *repo) RemoveMember(ctx context.Context, actor auth.Actor, id, userID uuid.UUID) error {
	var (
		g   *Group
		err error
	)
	if actor.ID == userID {
		g, err = r.Find(ctx, id)
	} else {
		g, err = r.require(ctx, actor, id, RoleAdmin, RoleModerator)
	}
	if err != nil {
		return err
	}
	if userID == g.OwnerID {
		return ErrOwnerDemotion
	}

	if err := repository.ExecExpectOne(ctx, r.db,
		"DELETE FROM group_members WHERE group_id = $1 AND user_id = $2", id, userID,
	); err != nil {
		return repository.MapError(err, repository.Mapping{NotFound: ErrMemberNotFound})
	}

	r.logger.Info("group member removed", "group", id, "user", userID)
	return nil
}

func (r *repo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check group: %w", err)
	}
	return exists, nil
}

func (r *repo) IDs(ctx context.Context) ([]uuid.UUID, error) {
	return repository.QueryMany(ctx, r.db, "SELECT id FROM groups", nil, func(s repository.Scanner) (uuid.UUID, error) {
		var id uuid.UUID
		err := s.Scan(&id)
		return id, err
	})
}

func (r *repo) Role(ctx context.Context, id, userID uuid.UUID) (int, bool, error) {
	var role int
	err := r.db.QueryRowContext(ctx,
		"SELECT role FROM group_members WHERE group_id = $1 AND user_id = $2", id, userID,
	).Scan(&role)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("query group role: %w", err)
	}
	return role, true, nil
}

func (r *repo) insertMember(ctx context.Context, id, userID uuid.UUID, role int) (*Member, error) {
	m, err := repository.QueryOne(ctx, r.db,
		"INSERT INTO group_members(group_id, user_id, role) VALUES ($1, $2, $3) RETURNING "+memberColumns,
		[]any{id, userID, role}, scanMember,
	)
	if err != nil {
		return nil, repository.MapError(err, errMapping)
	}

	r.logger.Info("group member added", "group", id, "user", userID, "role", role)
	return &m, nil
}

// require loads the group and fails unless actor is a system administrator
// or holds one of roles in it.
func (r *repo) require(ctx context.Context, actor auth.Actor, id uuid.UUID, roles ...int) (*Group, error) {
	g, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.SystemAdmin {
		return g, nil
	}

	role, ok, err := r.Role(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}
	if !ok || !slices.Contains(roles, role) {
		return nil, ErrPermissionDenied
	}
	return g, nil
}
