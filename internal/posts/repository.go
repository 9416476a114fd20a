package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/agora/internal/moderation"
	"github.com/JaimeStill/agora/internal/policies"
	"github.com/JaimeStill/agora/pkg/auth"
	"github.com/JaimeStill/agora/pkg/pagination"
	"github.com/JaimeStill/agora/pkg/query"
	"github.com/JaimeStill/agora/pkg/repository"
	"github.com/JaimeStill/agora/pkg/storage"
)

type repo struct {
	db         *sql.DB
	pipeline   *Pipeline
	storage    storage.System
	notifier   Notifier
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a post repository implementing the System interface. store
// may be nil when image storage is not configured.
func New(
	db *sql.DB,
	pipeline *Pipeline,
	store storage.System,
	notifier Notifier,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		pipeline:   pipeline,
		storage:    store,
		notifier:   notifier,
		logger:     logger.With("system", "posts"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Create(ctx context.Context, actor auth.Actor, scope policies.Scope, cmd CreateCommand) (*CreateResult, error) {
	post, decision, err := r.pipeline.Prepare(ctx, actor, scope, cmd)
	if err != nil {
		return nil, err
	}

	stmt := `
		INSERT INTO posts(id, author_id, entity_type, entity_id, content, image_urls, kind, status, moderation_note, flagged_categories, moderation_details, auto_moderated)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10::jsonb, $11::jsonb, $12)
		` + returning

	args := []any{
		post.ID,
		post.AuthorID,
		int(post.EntityType),
		post.EntityID,
		post.Content,
		jsonb(&post.ImageURLs),
		int(post.Kind),
		int(post.Status),
		post.ModerationNote,
		jsonb(&post.FlaggedCategories),
		jsonb(&post.ModerationDetails),
		post.AutoModerated,
	}

	saved, err := repository.QueryOne(ctx, r.db, stmt, args, scanPost)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", repository.MapError(err, errMapping))
	}

	r.logger.Info("post created",
		"id", saved.ID,
		"scope", scope.Key(),
		"status", saved.Status.String(),
		"auto", saved.AutoModerated,
	)

	return &CreateResult{
		ID:                saved.ID,
		Status:            decision.Status,
		Message:           decision.Message,
		FlaggedCategories: decision.FlaggedCategories,
		ModerationDetails: decision.Details,
	}, nil
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Post], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Content")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderBy(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanPost)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}

	result := pagination.NewPageResult(items, total, page)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Post, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPost)
	if err != nil {
		return nil, repository.MapError(err, errMapping)
	}
	return &p, nil
}

func (r *repo) Review(ctx context.Context, actor auth.Actor, cmd ReviewCommand) (*Post, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	current, err := r.Find(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	if err := r.pipeline.CanReview(ctx, actor, *current); err != nil {
		return nil, err
	}
	if err := r.pipeline.CanTransition(*current, cmd); err != nil {
		return nil, err
	}

	stmt := `
		UPDATE posts SET
			status = $2,
			moderation_note = $3,
			moderated_by = $4,
			moderated_at = NOW(),
			auto_moderated = FALSE,
			updated_at = NOW()
		WHERE id = $1 AND status = $5
		` + returning

	args := []any{cmd.ID, int(cmd.Status), cmd.Note(), actor.ID, int(moderation.StatusPending)}

	updated, err := repository.QueryOne(ctx, r.db, stmt, args, scanPost)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: post was moderated concurrently", ErrInvalidState)
	}
	if err != nil {
		return nil, fmt.Errorf("review post: %w", err)
	}

	r.logger.Info("post reviewed", "id", updated.ID, "status", updated.Status.String(), "by", actor.ID)

	event := Event{
		Type:        EventStatus,
		PostID:      updated.ID,
		AuthorID:    updated.AuthorID,
		Status:      updated.Status,
		Note:        cmd.Note(),
		ModeratedBy: actor.ID,
		At:          time.Now().UTC(),
	}
	if err := r.notifier.Publish(ctx, event); err != nil {
		r.logger.Warn("post event publish failed", "id", updated.ID, "error", err)
	}

	return &updated, nil
}

func (r *repo) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	post, err := r.Find(ctx, id)
	if err != nil {
		return err
	}
	if err := r.pipeline.CanDelete(ctx, actor, *post); err != nil {
		return err
	}

	if err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM posts WHERE id = $1", id); err != nil {
		return repository.MapError(err, errMapping)
	}

	r.deleteImages(ctx, post.ImageURLs)

	r.logger.Info("post deleted", "id", id, "by", actor.ID)
	return nil
}

// deleteImages removes blobs for image URLs hosted in the configured
// container. Failures are logged and skipped.
func (r *repo) deleteImages(ctx context.Context, urls []string) {
	if r.storage == nil {
		return
	}
	for _, u := range urls {
		key, ok := r.storage.KeyFromURL(u)
		if !ok {
			continue
		}
		if err := r.storage.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("image delete failed after post delete", "key", key, "error", err)
		}
	}
}
