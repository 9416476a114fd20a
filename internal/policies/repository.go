package policies

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/agora/pkg/auth"
	"github.com/JaimeStill/agora/pkg/query"
	"github.com/JaimeStill/agora/pkg/repository"
)

const backfillLimit = 4

type repo struct {
	db     *sql.DB
	dir    Directory
	gate   *Gate
	logger *slog.Logger
}

// New creates a policy repository implementing the System interface.
func New(db *sql.DB, dir Directory, logger *slog.Logger) System {
	return &repo{
		db:     db,
		dir:    dir,
		gate:   NewGate(dir),
		logger: logger.With("system", "policies"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Resolve(ctx context.Context, scope Scope) (*Policy, error) {
	if err := r.checkScope(ctx, scope); err != nil {
		return nil, err
	}

	p, err := r.upsertDefault(ctx, r.db, scope, DefaultAutoOnRead, nil)
	if err != nil {
		return nil, fmt.Errorf("resolve %s policy: %w", scope, repository.MapError(err, errMapping))
	}
	return &p, nil
}

func (r *repo) Bootstrap(ctx context.Context, scope Scope, by uuid.UUID) (*Policy, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	p, err := r.upsertDefault(ctx, r.db, scope, DefaultAutoOnBootstrap, &by)
	if err != nil {
		return nil, fmt.Errorf("bootstrap %s policy: %w", scope, repository.MapError(err, errMapping))
	}

	r.logger.Info("policy bootstrapped", "scope", scope.Key(), "id", p.ID)
	return &p, nil
}

func (r *repo) Update(ctx context.Context, actor auth.Actor, scope Scope, cmd UpdateCommand) (*Policy, error) {
	if err := r.checkScope(ctx, scope); err != nil {
		return nil, err
	}
	if err := r.gate.Authorize(ctx, actor, scope); err != nil {
		return nil, err
	}

	var (
		p   Policy
		err error
	)
	if scope.Type() == EntityGlobal {
		p, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Policy, error) {
			return r.replaceGlobal(ctx, tx, cmd, actor.ID)
		})
	} else {
		p, err = r.upsertChanges(ctx, r.db, scope, cmd, actor.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("update %s policy: %w", scope, repository.MapError(err, errMapping))
	}

	r.logger.Info("policy updated",
		"scope", scope.Key(),
		"auto", p.AutoModerationEnabled,
		"required", p.ModerationRequired,
		"by", actor.ID,
	)
	return &p, nil
}

func (r *repo) List(ctx context.Context, t EntityType, by uuid.UUID) ([]Policy, error) {
	if !t.Valid() {
		return nil, ErrInvalidEntityType
	}

	q, args := query.NewBuilder(projection, defaultSort).
		WhereEquals("EntityType", int(t)).
		Build()

	policies, err := repository.QueryMany(ctx, r.db, q, args, scanPolicy)
	if err != nil {
		return nil, fmt.Errorf("query %s policies: %w", t, err)
	}

	if t == EntityGlobal {
		if len(policies) > 0 {
			return policies, nil
		}
		p, err := r.Resolve(ctx, Global())
		if err != nil {
			return nil, err
		}
		return []Policy{*p}, nil
	}

	created, err := r.backfill(ctx, t, policies, by)
	if err != nil {
		return nil, err
	}

	policies = append(policies, created...)
	slices.SortStableFunc(policies, func(a, b Policy) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return policies, nil
}

func (r *repo) Remove(ctx context.Context, scope Scope) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if _, err := repository.Exec(ctx, r.db,
		"DELETE FROM moderation_policies WHERE scope_key = $1", scope.Key(),
	); err != nil {
		return fmt.Errorf("remove %s policy: %w", scope, err)
	}
	return nil
}

func (r *repo) checkScope(ctx context.Context, scope Scope) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if scope.Type() == EntityGlobal {
		return nil
	}

	ok, err := r.dir.Exists(ctx, scope)
	if err != nil {
		return fmt.Errorf("check %s: %w", scope, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntityNotFound, scope)
	}
	return nil
}

// backfill creates bootstrap policies for every entity of type t that has
// none among existing.
func (r *repo) backfill(ctx context.Context, t EntityType, existing []Policy, by uuid.UUID) ([]Policy, error) {
	ids, err := r.dir.EntityIDs(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("list %s ids: %w", t, err)
	}

	have := make(map[uuid.UUID]struct{}, len(existing))
	for _, p := range existing {
		if p.EntityID != nil {
			have[*p.EntityID] = struct{}{}
		}
	}

	var missing []Scope
	for _, id := range ids {
		if _, ok := have[id]; ok {
			continue
		}
		if t == EntityPage {
			missing = append(missing, Page(id))
		} else {
			missing = append(missing, Group(id))
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}

	created := make([]Policy, len(missing))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(backfillLimit)
	for i, scope := range missing {
		g.Go(func() error {
			p, err := r.Bootstrap(gctx, scope, by)
			if err != nil {
				return err
			}
			created[i] = *p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Info("policies backfilled", "entity_type", t.String(), "count", len(created))
	return created, nil
}

// upsertDefault inserts the default policy of scope or returns the existing
// one. The no-op update makes RETURNING yield the conflicting row.
func (r *repo) upsertDefault(ctx context.Context, q repository.Querier, scope Scope, auto bool, by *uuid.UUID) (Policy, error) {
	stmt := `
		INSERT INTO moderation_policies(id, entity_type, entity_id, scope_key, auto_moderation_enabled, moderation_required, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (scope_key) DO UPDATE SET scope_key = EXCLUDED.scope_key
		` + returning

	args := []any{
		uuid.New(),
		int(scope.Type()),
		scope.EntityID(),
		scope.Key(),
		auto,
		DefaultModerationRequired,
		by,
	}
	return repository.QueryOne(ctx, q, stmt, args, scanPolicy)
}

// upsertChanges applies cmd to the policy of scope in one statement. Missing
// policies start from the read defaults.
func (r *repo) upsertChanges(ctx context.Context, q repository.Querier, scope Scope, cmd UpdateCommand, by uuid.UUID) (Policy, error) {
	stmt := `
		INSERT INTO moderation_policies(id, entity_type, entity_id, scope_key, auto_moderation_enabled, moderation_required, updated_by)
		VALUES ($1, $2, $3, $4, COALESCE($5, $8), COALESCE($6, $9), $7)
		ON CONFLICT (scope_key) DO UPDATE SET
			auto_moderation_enabled = COALESCE($5, moderation_policies.auto_moderation_enabled),
			moderation_required = COALESCE($6, moderation_policies.moderation_required),
			updated_by = $7,
			updated_at = NOW()
		` + returning

	args := []any{
		uuid.New(),
		int(scope.Type()),
		scope.EntityID(),
		scope.Key(),
		cmd.AutoModerationEnabled,
		cmd.ModerationRequired,
		by,
		DefaultAutoOnRead,
		DefaultModerationRequired,
	}
	return repository.QueryOne(ctx, q, stmt, args, scanPolicy)
}

// replaceGlobal deletes every global policy and inserts a single replacement
// carrying the previous values for fields cmd leaves unset. Concurrent
// replaces are serialized on globalLockKey.
func (r *repo) replaceGlobal(ctx context.Context, tx *sql.Tx, cmd UpdateCommand, by uuid.UUID) (Policy, error) {
	if _, err := repository.Exec(ctx, tx, "SELECT pg_advisory_xact_lock($1)", globalLockKey); err != nil {
		return Policy{}, fmt.Errorf("lock global policy: %w", err)
	}

	current := Policy{
		EntityType:            EntityGlobal,
		AutoModerationEnabled: DefaultAutoOnRead,
		ModerationRequired:    DefaultModerationRequired,
	}

	q, args := query.NewBuilder(projection, defaultSort).
		WhereEquals("EntityType", int(EntityGlobal)).
		Build()
	existing, err := repository.QueryMany(ctx, tx, q+" FOR UPDATE", args, scanPolicy)
	if err != nil {
		return Policy{}, err
	}
	if len(existing) > 0 {
		current = existing[0]
	}
	next := cmd.apply(current)

	if _, err := repository.Exec(ctx, tx,
		"DELETE FROM moderation_policies WHERE entity_type = $1", int(EntityGlobal),
	); err != nil {
		return Policy{}, err
	}

	stmt := `
		INSERT INTO moderation_policies(id, entity_type, entity_id, scope_key, auto_moderation_enabled, moderation_required, updated_by)
		VALUES ($1, $2, NULL, $3, $4, $5, $6)
		` + returning

	return repository.QueryOne(ctx, tx, stmt, []any{
		uuid.New(),
		int(EntityGlobal),
		Global().Key(),
		next.AutoModerationEnabled,
		next.ModerationRequired,
		by,
	}, scanPolicy)
}
