// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, cache, outbound HTTP,
// authentication) that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/agora/internal/config"
	"github.com/JaimeStill/agora/internal/moderation"
	"github.com/JaimeStill/agora/pkg/auth"
	"github.com/JaimeStill/agora/pkg/cache"
	"github.com/JaimeStill/agora/pkg/database"
	"github.com/JaimeStill/agora/pkg/httpclient"
	"github.com/JaimeStill/agora/pkg/lifecycle"
	"github.com/JaimeStill/agora/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Storage, Redis, and Credential are nil when their configuration is absent.
type Infrastructure struct {
	Lifecycle  *lifecycle.Coordinator
	Logger     *slog.Logger
	Database   database.System
	Storage    storage.System
	Redis      redis.UniversalClient
	Cache      cache.Store
	HTTPClient *http.Client
	Credential azcore.TokenCredential
	Verifier   auth.Verifier
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := NewLogger(&cfg.Log, os.Stderr)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	var store storage.System
	if cfg.Storage.Enabled() {
		store, err = storage.New(&cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
	} else {
		logger.Warn("storage not configured, image upload and cleanup disabled")
	}

	var rdb redis.UniversalClient
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	cacheStore, err := newCacheStore(cfg, rdb)
	if err != nil {
		return nil, fmt.Errorf("cache init failed: %w", err)
	}

	credential, err := newCredential(cfg)
	if err != nil {
		return nil, fmt.Errorf("azure credential init failed: %w", err)
	}

	verifier, err := auth.NewVerifier(lc.Context(), &cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("auth init failed: %w", err)
	}

	client := httpclient.New(
		cfg.Moderation.TimeoutDuration(),
		httpclient.WithMaxRetries(cfg.Moderation.MaxRetries),
		httpclient.WithLogger(logger.With("system", "httpclient")),
	)

	return &Infrastructure{
		Lifecycle:  lc,
		Logger:     logger,
		Database:   db,
		Storage:    store,
		Redis:      rdb,
		Cache:      cacheStore,
		HTTPClient: client,
		Credential: credential,
		Verifier:   verifier,
	}, nil
}

// NewLogger builds the root logger writing to w in the configured format.
func NewLogger(cfg *config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Database, storage, and Redis hooks are registered for startup and shutdown
// coordination.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}
	if i.Redis != nil {
		i.startRedis()
	}
	return nil
}

func (i *Infrastructure) startRedis() {
	logger := i.Logger.With("system", "redis")
	logger.Info("starting redis client")

	i.Lifecycle.OnStartup(func() {
		if err := i.Redis.Ping(i.Lifecycle.Context()).Err(); err != nil {
			logger.Error("redis ping failed", "error", err)
			return
		}
		logger.Info("redis connection established")
	})

	i.Lifecycle.OnShutdown(func() {
		<-i.Lifecycle.Context().Done()
		logger.Info("closing redis client")
		if err := i.Redis.Close(); err != nil {
			logger.Error("redis close failed", "error", err)
		}
	})
}

func newCacheStore(cfg *config.Config, rdb redis.UniversalClient) (cache.Store, error) {
	if cfg.Moderation.CacheBackend == moderation.CacheRedis {
		if rdb == nil {
			return nil, fmt.Errorf("redis cache backend requires redis.addr")
		}
		return cache.NewRedisStore(rdb, cfg.Redis.Prefix, cfg.Redis.RetentionDuration()), nil
	}
	return cache.NewMemoryStore(cfg.Moderation.CacheCapacity)
}

// newCredential returns the default Azure credential chain only when the
// Content Safety provider authenticates through Entra ID.
func newCredential(cfg *config.Config) (azcore.TokenCredential, error) {
	az := cfg.Moderation.Providers.Azure
	if !az.EntraID || az.APIKey != "" || az.Endpoint == "" {
		return nil, nil
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return cred, nil
}

// Ping checks the systems that must be reachable to serve traffic.
func (i *Infrastructure) Ping(ctx context.Context) error {
	if err := i.Database.Ping(ctx); err != nil {
		return err
	}
	if i.Redis != nil {
		if err := i.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}
