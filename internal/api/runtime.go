package api

import (
	"github.com/JaimeStill/agora/internal/config"
	"github.com/JaimeStill/agora/internal/infrastructure"
	"github.com/JaimeStill/agora/internal/moderation"
	"github.com/JaimeStill/agora/internal/moderation/providers"
	"github.com/JaimeStill/agora/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination    pagination.Config
	Moderation    moderation.Config
	Providers     providers.Config
	MaxUploadSize int64
	EventChannel  string
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Pagination:     cfg.API.Pagination,
		Moderation:     cfg.Moderation.Config,
		Providers:      cfg.Moderation.Providers,
		MaxUploadSize:  cfg.Storage.MaxFileSizeBytes(),
		EventChannel:   cfg.Redis.Channel,
	}
}
