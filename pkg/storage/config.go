package storage

import (
	"fmt"
	"net/url"
	"os"

	"github.com/JaimeStill/agora/pkg/formatting"
)

// Config holds Azure Blob Storage parameters for post images.
// Storage is disabled when ConnectionString is empty.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	// PublicURL is the base URL that image URLs are built from,
	// e.g. https://account.blob.core.windows.net/post-images.
	PublicURL   string `toml:"public_url"`
	MaxFileSize string `toml:"max_file_size"`
}

// Env names the environment variables that override Config fields.
type Env struct {
	ContainerName    string
	ConnectionString string
	PublicURL        string
	MaxFileSize      string
}

// Enabled reports whether a connection string is configured.
func (c *Config) Enabled() bool {
	return c.ConnectionString != ""
}

// MaxFileSizeBytes is the upload limit for a single image.
func (c *Config) MaxFileSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxFileSize)
	if err != nil {
		return 5 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.ContainerName == "" {
		c.ContainerName = "post-images"
	}
	if c.MaxFileSize == "" {
		c.MaxFileSize = "5MB"
	}
	if env != nil {
		envString(env.ContainerName, &c.ContainerName)
		envString(env.ConnectionString, &c.ConnectionString)
		envString(env.PublicURL, &c.PublicURL)
		envString(env.MaxFileSize, &c.MaxFileSize)
	}

	if size, err := formatting.ParseBytes(c.MaxFileSize); err != nil || size <= 0 {
		return fmt.Errorf("invalid max_file_size %q", c.MaxFileSize)
	}
	if !c.Enabled() {
		return nil
	}
	if c.PublicURL == "" {
		return fmt.Errorf("public_url required when storage is enabled")
	}
	if u, err := url.Parse(c.PublicURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid public_url %q", c.PublicURL)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	mergeString(&c.ContainerName, overlay.ContainerName)
	mergeString(&c.ConnectionString, overlay.ConnectionString)
	mergeString(&c.PublicURL, overlay.PublicURL)
	mergeString(&c.MaxFileSize, overlay.MaxFileSize)
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func envString(name string, dst *string) {
	if name == "" {
		return
	}
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}
