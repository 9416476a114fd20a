package auth

import (
	"fmt"
	"os"
)

const (
	ModeHMAC = "hmac"
	ModeOIDC = "oidc"
)

// Config selects how bearer tokens are verified.
type Config struct {
	Mode string `toml:"mode"`
	// Secret signs HS256 tokens in hmac mode.
	Secret string `toml:"secret"`
	Issuer string `toml:"issuer"`
	// Audience is the expected aud claim; in oidc mode it is the client ID.
	Audience string `toml:"audience"`
	// JWKSURL skips OIDC discovery when set.
	JWKSURL string `toml:"jwks_url"`
	// AdminRole is the roles claim value that grants system administration.
	AdminRole string `toml:"admin_role"`
}

// Env names the environment variables that override Config fields.
type Env struct {
	Mode      string
	Secret    string
	Issuer    string
	Audience  string
	JWKSURL   string
	AdminRole string
}

// Finalize applies defaults, environment overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.Mode == "" {
		c.Mode = ModeHMAC
	}
	if c.AdminRole == "" {
		c.AdminRole = "system_admin"
	}
	if env != nil {
		envString(env.Mode, &c.Mode)
		envString(env.Secret, &c.Secret)
		envString(env.Issuer, &c.Issuer)
		envString(env.Audience, &c.Audience)
		envString(env.JWKSURL, &c.JWKSURL)
		envString(env.AdminRole, &c.AdminRole)
	}

	switch c.Mode {
	case ModeHMAC:
		if len(c.Secret) < 32 {
			return fmt.Errorf("secret must be at least 32 bytes in hmac mode")
		}
	case ModeOIDC:
		if c.Issuer == "" || c.Audience == "" {
			return fmt.Errorf("issuer and audience required in oidc mode")
		}
	default:
		return fmt.Errorf("unknown auth mode %q", c.Mode)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	mergeString(&c.Mode, overlay.Mode)
	mergeString(&c.Secret, overlay.Secret)
	mergeString(&c.Issuer, overlay.Issuer)
	mergeString(&c.Audience, overlay.Audience)
	mergeString(&c.JWKSURL, overlay.JWKSURL)
	mergeString(&c.AdminRole, overlay.AdminRole)
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
