package api

import (
	"github.com/JaimeStill/agora/internal/groups"
	"github.com/JaimeStill/agora/internal/images"
	"github.com/JaimeStill/agora/internal/moderation"
	"github.com/JaimeStill/agora/internal/moderation/providers"
	"github.com/JaimeStill/agora/internal/pages"
	"github.com/JaimeStill/agora/internal/policies"
	"github.com/JaimeStill/agora/internal/posts"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Policies policies.System
	Pages    pages.System
	Groups   groups.System
	Posts    posts.System
	Images   *images.Handler
	Chain    *moderation.Chain
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) (*Domain, error) {
	db := runtime.Database.Connection()
	dir := &directory{}

	policiesSystem := policies.New(db, dir, runtime.Logger)

	pagesSystem := pages.New(db, policiesSystem, runtime.Logger, runtime.Pagination)
	groupsSystem := groups.New(db, policiesSystem, runtime.Logger, runtime.Pagination)
	dir.pages = pagesSystem
	dir.groups = groupsSystem

	classifiers := providers.New(
		&runtime.Providers,
		runtime.HTTPClient,
		runtime.Credential,
		runtime.Moderation.Breaker(),
		runtime.Logger,
	)
	chain := moderation.NewChain(
		classifiers,
		moderation.NewCache(runtime.Cache),
		runtime.Logger,
	)
	if len(chain.Providers()) == 0 {
		runtime.Logger.Warn("no moderation providers configured, auto-moderated posts will stay pending")
	}
	engine := moderation.NewEngine(chain, runtime.Logger)

	postsSystem := posts.New(
		db,
		posts.NewPipeline(policiesSystem, engine, dir),
		runtime.Storage,
		newNotifier(runtime),
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Policies: policiesSystem,
		Pages:    pagesSystem,
		Groups:   groupsSystem,
		Posts:    postsSystem,
		Images:   images.NewHandler(runtime.Storage, runtime.MaxUploadSize, runtime.Logger),
		Chain:    chain,
	}, nil
}

func newNotifier(runtime *Runtime) posts.Notifier {
	if runtime.Redis != nil {
		return posts.NewRedisNotifier(runtime.Redis, runtime.EventChannel)
	}
	return posts.NewLogNotifier(runtime.Logger)
}
