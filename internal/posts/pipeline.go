package posts

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/agora/internal/moderation"
	"github.com/JaimeStill/agora/internal/policies"
	"github.com/JaimeStill/agora/pkg/auth"
)

// Page and group roles that may publish and review.
const (
	PageRoleOwner = 1
	PageRoleAdmin = 2
)

// PolicyResolver is satisfied by policies.System.
type PolicyResolver interface {
	Resolve(ctx context.Context, scope policies.Scope) (*policies.Policy, error)
}

// Decider is satisfied by *moderation.Engine.
type Decider interface {
	Decide(ctx context.Context, mode moderation.Mode, content moderation.Content) (moderation.Decision, error)
}

// Directory answers existence and membership questions for page and group
// posts.
type Directory interface {
	Exists(ctx context.Context, scope policies.Scope) (bool, error)
	PageRole(ctx context.Context, pageID, userID uuid.UUID) (role int, ok bool, err error)
	GroupRole(ctx context.Context, groupID, userID uuid.UUID) (role int, ok bool, err error)
}

// Pipeline decides the initial state of new posts and who may act on
// existing ones.
type Pipeline struct {
	policies PolicyResolver
	decider  Decider
	dir      Directory
}

func NewPipeline(resolver PolicyResolver, decider Decider, dir Directory) *Pipeline {
	return &Pipeline{policies: resolver, decider: decider, dir: dir}
}

// Prepare validates cmd, resolves the policy of scope, and returns the post
// to insert along with the decision that produced its status.
func (p *Pipeline) Prepare(ctx context.Context, actor auth.Actor, scope policies.Scope, cmd CreateCommand) (Post, moderation.Decision, error) {
	if err := cmd.Validate(); err != nil {
		return Post{}, moderation.Decision{}, err
	}
	if err := p.CanPublish(ctx, actor, scope); err != nil {
		return Post{}, moderation.Decision{}, err
	}

	policy, err := p.policies.Resolve(ctx, scope)
	if err != nil {
		return Post{}, moderation.Decision{}, err
	}

	images := ValidImageURLs(cmd.ImageURLs)

	decision, err := p.decider.Decide(ctx, policy.Mode(), moderation.Content{
		Text:      cmd.Content,
		ImageURLs: images,
	})
	if err != nil {
		return Post{}, moderation.Decision{}, fmt.Errorf("moderate post: %w", err)
	}

	flagged := decision.FlaggedCategories
	if flagged == nil {
		flagged = []string{}
	}

	post := Post{
		ID:                uuid.New(),
		AuthorID:          actor.ID,
		EntityType:        scope.Type(),
		EntityID:          scope.EntityID(),
		Content:           cmd.Content,
		ImageURLs:         images,
		Kind:              cmd.Kind,
		Status:            decision.Status,
		ModerationNote:    decision.Note,
		FlaggedCategories: flagged,
		ModerationDetails: decision.Details,
		AutoModerated:     decision.AutoModerated,
	}
	return post, decision, nil
}

// CanPublish allows anyone to post to the feed, page owners and admins to
// post to a page, and any group member to post to a group. A missing page or
// group fails with policies.ErrEntityNotFound.
func (p *Pipeline) CanPublish(ctx context.Context, actor auth.Actor, scope policies.Scope) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if scope.Type() != policies.EntityGlobal {
		ok, err := p.dir.Exists(ctx, scope)
		if err != nil {
			return fmt.Errorf("check %s: %w", scope, err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", policies.ErrEntityNotFound, scope)
		}
	}

	switch scope.Type() {
	case policies.EntityPage:
		role, ok, err := p.dir.PageRole(ctx, *scope.EntityID(), actor.ID)
		if err != nil {
			return fmt.Errorf("check page role: %w", err)
		}
		if !ok || (role != PageRoleOwner && role != PageRoleAdmin) {
			return fmt.Errorf("%w: cannot post on this page", ErrForbidden)
		}
	case policies.EntityGroup:
		_, ok, err := p.dir.GroupRole(ctx, *scope.EntityID(), actor.ID)
		if err != nil {
			return fmt.Errorf("check group role: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: not a member of this group", ErrForbidden)
		}
	}
	return nil
}

// CanReview allows system administrators to review any post, page owners
// and admins to review page posts, and group admins and moderators to
// review group posts.
func (p *Pipeline) CanReview(ctx context.Context, actor auth.Actor, post Post) error {
	if actor.SystemAdmin {
		return nil
	}

	scope := post.Scope()
	switch scope.Type() {
	case policies.EntityPage:
		role, ok, err := p.dir.PageRole(ctx, *scope.EntityID(), actor.ID)
		if err != nil {
			return fmt.Errorf("check page role: %w", err)
		}
		if ok && (role == PageRoleOwner || role == PageRoleAdmin) {
			return nil
		}
	case policies.EntityGroup:
		role, ok, err := p.dir.GroupRole(ctx, *scope.EntityID(), actor.ID)
		if err != nil {
			return fmt.Errorf("check group role: %w", err)
		}
		if ok && (role == policies.GroupRoleAdmin || role == policies.GroupRoleModerator) {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot moderate this post", ErrForbidden)
}

// CanTransition fails unless cmd is a valid review and post is still
// pending. Approved and rejected posts are final.
func (p *Pipeline) CanTransition(post Post, cmd ReviewCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if post.Status != moderation.StatusPending {
		return fmt.Errorf("%w: post is %s", ErrInvalidState, post.Status)
	}
	return nil
}

// CanDelete allows the author and anyone who may review the post.
func (p *Pipeline) CanDelete(ctx context.Context, actor auth.Actor, post Post) error {
	if post.AuthorID == actor.ID {
		return nil
	}
	return p.CanReview(ctx, actor, post)
}
