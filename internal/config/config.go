package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/agora/internal/moderation"
	"github.com/JaimeStill/agora/pkg/auth"
	"github.com/JaimeStill/agora/pkg/database"
	"github.com/JaimeStill/agora/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvAgoraEnv             = "AGORA_ENV"
	EnvAgoraShutdownTimeout = "AGORA_SHUTDOWN_TIMEOUT"
	EnvAgoraVersion         = "AGORA_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "AGORA_DB_HOST",
	Port:            "AGORA_DB_PORT",
	Name:            "AGORA_DB_NAME",
	User:            "AGORA_DB_USER",
	Password:        "AGORA_DB_PASSWORD",
	SSLMode:         "AGORA_DB_SSL_MODE",
	MaxOpenConns:    "AGORA_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "AGORA_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "AGORA_DB_CONN_MAX_LIFETIME",
	ConnMaxIdleTime: "AGORA_DB_CONN_MAX_IDLE_TIME",
	ConnTimeout:     "AGORA_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "AGORA_STORAGE_CONTAINER_NAME",
	ConnectionString: "AGORA_STORAGE_CONNECTION_STRING",
	PublicURL:        "AGORA_STORAGE_PUBLIC_URL",
	MaxFileSize:      "AGORA_STORAGE_MAX_FILE_SIZE",
}

var authEnv = &auth.Env{
	Mode:      "AGORA_AUTH_MODE",
	Secret:    "AGORA_AUTH_SECRET",
	Issuer:    "AGORA_AUTH_ISSUER",
	Audience:  "AGORA_AUTH_AUDIENCE",
	JWKSURL:   "AGORA_AUTH_JWKS_URL",
	AdminRole: "AGORA_AUTH_ADMIN_ROLE",
}

// Config is the root configuration for the Agora service.
type Config struct {
	Server          ServerConfig     `toml:"server"`
	Database        database.Config  `toml:"database"`
	Storage         storage.Config   `toml:"storage"`
	API             APIConfig        `toml:"api"`
	Log             LogConfig        `toml:"log"`
	Auth            auth.Config      `toml:"auth"`
	Redis           RedisConfig      `toml:"redis"`
	Moderation      ModerationConfig `toml:"moderation"`
	ShutdownTimeout string           `toml:"shutdown_timeout"`
	Version         string           `toml:"version"`
}

// Env returns the AGORA_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvAgoraEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Log.Merge(&overlay.Log)
	c.Auth.Merge(&overlay.Auth)
	c.Redis.Merge(&overlay.Redis)
	c.Moderation.Merge(&overlay.Moderation)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Log.Finalize(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Redis.Finalize(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := c.Moderation.Finalize(); err != nil {
		return fmt.Errorf("moderation: %w", err)
	}
	if c.Moderation.CacheBackend == moderation.CacheRedis && !c.Redis.Enabled() {
		return fmt.Errorf("moderation: redis cache backend requires redis.addr")
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvAgoraShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvAgoraVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvAgoraEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
