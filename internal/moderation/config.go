package moderation

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds the moderation pipeline settings shared by every provider.
type Config struct {
	CacheBackend    string `toml:"cache_backend"`
	CacheCapacity   int    `toml:"cache_capacity"`
	Timeout         string `toml:"timeout"`
	MaxRetries      int    `toml:"max_retries"`
	BreakerFailures uint32 `toml:"breaker_failures"`
	BreakerCooldown string `toml:"breaker_cooldown"`
}

// Env names the environment variables that override Config fields.
type Env struct {
	CacheBackend    string
	CacheCapacity   string
	Timeout         string
	MaxRetries      string
	BreakerFailures string
	BreakerCooldown string
}

// TimeoutDuration is the per-call provider timeout.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Breaker returns the circuit breaker settings.
func (c *Config) Breaker() BreakerConfig {
	d, _ := time.ParseDuration(c.BreakerCooldown)
	return BreakerConfig{Failures: c.BreakerFailures, Cooldown: d}
}

// Finalize applies defaults, environment overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.CacheBackend != "" {
		c.CacheBackend = overlay.CacheBackend
	}
	if overlay.CacheCapacity != 0 {
		c.CacheCapacity = overlay.CacheCapacity
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
	if overlay.BreakerFailures != 0 {
		c.BreakerFailures = overlay.BreakerFailures
	}
	if overlay.BreakerCooldown != "" {
		c.BreakerCooldown = overlay.BreakerCooldown
	}
}

func (c *Config) loadDefaults() {
	if c.CacheBackend == "" {
		c.CacheBackend = CacheMemory
	}
	if c.CacheCapacity == 0 {
		c.CacheCapacity = 10000
	}
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = 5
	}
	if c.BreakerCooldown == "" {
		c.BreakerCooldown = "30s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := lookup(env.CacheBackend); v != "" {
		c.CacheBackend = v
	}
	if v := lookup(env.CacheCapacity); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.CacheCapacity = n
		}
	}
	if v := lookup(env.Timeout); v != "" {
		c.Timeout = v
	}
	if v := lookup(env.MaxRetries); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := lookup(env.BreakerFailures); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			c.BreakerFailures = uint32(n)
		}
	}
	if v := lookup(env.BreakerCooldown); v != "" {
		c.BreakerCooldown = v
	}
}

func (c *Config) validate() error {
	if c.CacheBackend != CacheMemory && c.CacheBackend != CacheRedis {
		return fmt.Errorf("unknown cache_backend %q", c.CacheBackend)
	}
	if c.CacheCapacity < 1 {
		return fmt.Errorf("cache_capacity must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout %q", c.Timeout)
	}
	if _, err := time.ParseDuration(c.BreakerCooldown); err != nil {
		return fmt.Errorf("invalid breaker_cooldown: %w", err)
	}
	return nil
}

func lookup(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
