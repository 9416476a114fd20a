package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost              = "AGORA_SERVER_HOST"
	EnvServerPort              = "AGORA_SERVER_PORT"
	EnvServerReadTimeout       = "AGORA_SERVER_READ_TIMEOUT"
	EnvServerReadHeaderTimeout = "AGORA_SERVER_READ_HEADER_TIMEOUT"
	EnvServerWriteTimeout      = "AGORA_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout       = "AGORA_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout   = "AGORA_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP listener parameters. Durations are Go duration
// strings.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadTimeout       string `toml:"read_timeout"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	return duration(c.ReadTimeout)
}

func (c *ServerConfig) ReadHeaderTimeoutDuration() time.Duration {
	return duration(c.ReadHeaderTimeout)
}

func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	return duration(c.WriteTimeout)
}

func (c *ServerConfig) IdleTimeoutDuration() time.Duration {
	return duration(c.IdleTimeout)
}

func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return duration(c.ShutdownTimeout)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for dst, v := range c.durations(overlay) {
		if v != "" {
			*dst = v
		}
	}
}

func (c *ServerConfig) durations(from *ServerConfig) map[*string]string {
	return map[*string]string{
		&c.ReadTimeout:       from.ReadTimeout,
		&c.ReadHeaderTimeout: from.ReadHeaderTimeout,
		&c.WriteTimeout:      from.WriteTimeout,
		&c.IdleTimeout:       from.IdleTimeout,
		&c.ShutdownTimeout:   from.ShutdownTimeout,
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	defaults := &ServerConfig{
		ReadTimeout:       "30s",
		ReadHeaderTimeout: "10s",
		WriteTimeout:      "1m",
		IdleTimeout:       "2m",
		ShutdownTimeout:   "30s",
	}
	for dst, v := range c.durations(defaults) {
		if *dst == "" {
			*dst = v
		}
	}
}

func (c *ServerConfig) loadEnv() {
	env := &ServerConfig{
		Host:              os.Getenv(EnvServerHost),
		ReadTimeout:       os.Getenv(EnvServerReadTimeout),
		ReadHeaderTimeout: os.Getenv(EnvServerReadHeaderTimeout),
		WriteTimeout:      os.Getenv(EnvServerWriteTimeout),
		IdleTimeout:       os.Getenv(EnvServerIdleTimeout),
		ShutdownTimeout:   os.Getenv(EnvServerShutdownTimeout),
	}
	if port, err := strconv.Atoi(os.Getenv(EnvServerPort)); err == nil {
		env.Port = port
	}
	c.Merge(env)
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for name, v := range map[string]string{
		"read_timeout":        c.ReadTimeout,
		"read_header_timeout": c.ReadHeaderTimeout,
		"write_timeout":       c.WriteTimeout,
		"idle_timeout":        c.IdleTimeout,
		"shutdown_timeout":    c.ShutdownTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}

func duration(v string) time.Duration {
	d, _ := time.ParseDuration(v)
	return d
}
