package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvRedisAddr      = "AGORA_REDIS_ADDR"
	EnvRedisPassword  = "AGORA_REDIS_PASSWORD"
	EnvRedisDB        = "AGORA_REDIS_DB"
	EnvRedisPrefix    = "AGORA_REDIS_PREFIX"
	EnvRedisChannel   = "AGORA_REDIS_CHANNEL"
	EnvRedisRetention = "AGORA_REDIS_RETENTION"
)

// RedisConfig holds the shared Redis connection used for the classification
// cache and post status events. Redis is disabled when Addr is empty.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	// Prefix namespaces cache keys.
	Prefix string `toml:"prefix"`
	// Channel receives post status events.
	Channel string `toml:"channel"`
	// Retention bounds how long Redis keeps cached classifications.
	Retention string `toml:"retention"`
}

// Enabled reports whether an address is configured.
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// RetentionDuration returns Retention as a time.Duration.
func (c *RedisConfig) RetentionDuration() time.Duration {
	d, _ := time.ParseDuration(c.Retention)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *RedisConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if c.DB < 0 {
		return fmt.Errorf("invalid db: %d", c.DB)
	}
	if _, err := time.ParseDuration(c.Retention); err != nil {
		return fmt.Errorf("invalid retention: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *RedisConfig) Merge(overlay *RedisConfig) {
	if overlay.Addr != "" {
		c.Addr = overlay.Addr
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.DB != 0 {
		c.DB = overlay.DB
	}
	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
	if overlay.Channel != "" {
		c.Channel = overlay.Channel
	}
	if overlay.Retention != "" {
		c.Retention = overlay.Retention
	}
}

func (c *RedisConfig) loadDefaults() {
	if c.Prefix == "" {
		c.Prefix = "agora:moderation:"
	}
	if c.Channel == "" {
		c.Channel = "agora:post-events"
	}
	if c.Retention == "" {
		c.Retention = "168h"
	}
}

func (c *RedisConfig) loadEnv() {
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Addr = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		c.Password = v
	}
	if v := os.Getenv(EnvRedisDB); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.DB = db
		}
	}
	if v := os.Getenv(EnvRedisPrefix); v != "" {
		c.Prefix = v
	}
	if v := os.Getenv(EnvRedisChannel); v != "" {
		c.Channel = v
	}
	if v := os.Getenv(EnvRedisRetention); v != "" {
		c.Retention = v
	}
}
