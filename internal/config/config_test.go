package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/agora/internal/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

const baseConfig = `
shutdown_timeout = "20s"

[server]
port = 8081

[database]
name = "agora"
user = "agora"

[api]
base_path = "/v1"

[api.pagination]
default_page_size = 25
max_page_size = 50

[auth]
secret = "0123456789abcdef0123456789abcdef"

[moderation]
cache_capacity = 500
timeout = "3s"

[moderation.providers.openai]
api_key = "sk-test"
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[log]
format = "json"
`

func setup(t *testing.T, files map[string]string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	t.Chdir(dir)
}

func minimalEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AGORA_DB_NAME", "agora")
	t.Setenv("AGORA_DB_USER", "agora")
	t.Setenv("AGORA_AUTH_SECRET", testSecret)
}

func TestLoadDefaults(t *testing.T) {
	setup(t, nil)
	minimalEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr = %s", cfg.Server.Addr())
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("shutdown timeout = %v", cfg.ShutdownTimeoutDuration())
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("base path = %s", cfg.API.BasePath)
	}
	if cfg.API.MaxBodySizeBytes() != 1024*1024 {
		t.Errorf("max body = %d", cfg.API.MaxBodySizeBytes())
	}
	if cfg.Log.Format != config.LogFormatText {
		t.Errorf("log format = %s", cfg.Log.Format)
	}
	if cfg.Redis.Enabled() {
		t.Error("redis should be disabled without an address")
	}
	if cfg.Storage.Enabled() {
		t.Error("storage should be disabled without a connection string")
	}
	if cfg.Moderation.CacheBackend != "memory" {
		t.Errorf("cache backend = %s", cfg.Moderation.CacheBackend)
	}
	if cfg.Moderation.Providers.HuggingFace.Priority != 1 || cfg.Moderation.Providers.Azure.Priority != 4 {
		t.Errorf("provider priorities = %+v", cfg.Moderation.Providers)
	}
}

func TestLoadBaseFile(t *testing.T) {
	setup(t, map[string]string{"config.toml": baseConfig})

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8081 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.API.BasePath != "/v1" {
		t.Errorf("base path = %s", cfg.API.BasePath)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 || cfg.API.Pagination.MaxPageSize != 50 {
		t.Errorf("pagination = %+v", cfg.API.Pagination)
	}
	if cfg.Moderation.CacheCapacity != 500 {
		t.Errorf("cache capacity = %d", cfg.Moderation.CacheCapacity)
	}
	if cfg.Moderation.TimeoutDuration() != 3*time.Second {
		t.Errorf("timeout = %v", cfg.Moderation.TimeoutDuration())
	}
	if cfg.Moderation.Providers.OpenAI.APIKey != "sk-test" {
		t.Errorf("openai key = %q", cfg.Moderation.Providers.OpenAI.APIKey)
	}
}

func TestLoadOverlay(t *testing.T) {
	setup(t, map[string]string{
		"config.toml":         baseConfig,
		"config.staging.toml": overlayConfig,
	})
	t.Setenv("AGORA_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Env() != "staging" {
		t.Errorf("env = %s", cfg.Env())
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host = %s", cfg.Database.Host)
	}
	if cfg.Database.Name != "agora" {
		t.Errorf("db name lost in overlay: %q", cfg.Database.Name)
	}
	if cfg.Log.Format != config.LogFormatJSON {
		t.Errorf("log format = %s", cfg.Log.Format)
	}
	if cfg.ShutdownTimeout != "20s" {
		t.Errorf("shutdown timeout = %s", cfg.ShutdownTimeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setup(t, map[string]string{"config.toml": baseConfig})
	t.Setenv("AGORA_SERVER_PORT", "7000")
	t.Setenv("AGORA_API_BASE_PATH", "/env")
	t.Setenv("AGORA_REDIS_ADDR", "localhost:6379")
	t.Setenv("AGORA_MODERATION_CACHE_BACKEND", "redis")
	t.Setenv("AGORA_GOOGLE_API_KEY", "g-key")
	t.Setenv("AGORA_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.API.BasePath != "/env" {
		t.Errorf("base path = %s", cfg.API.BasePath)
	}
	if !cfg.Redis.Enabled() || cfg.Moderation.CacheBackend != "redis" {
		t.Errorf("redis = %+v, backend = %s", cfg.Redis, cfg.Moderation.CacheBackend)
	}
	if cfg.Redis.RetentionDuration() != 168*time.Hour {
		t.Errorf("retention = %v", cfg.Redis.RetentionDuration())
	}
	if cfg.Moderation.Providers.Google.APIKey != "g-key" {
		t.Errorf("google key = %q", cfg.Moderation.Providers.Google.APIKey)
	}
	if cfg.Log.SlogLevel().String() != "DEBUG" {
		t.Errorf("log level = %s", cfg.Log.SlogLevel())
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "redis backend without address",
			env:  map[string]string{"AGORA_MODERATION_CACHE_BACKEND": "redis"},
			want: "redis",
		},
		{
			name: "unknown log format",
			env:  map[string]string{"AGORA_LOG_FORMAT": "xml"},
			want: "log",
		},
		{
			name: "short auth secret",
			env:  map[string]string{"AGORA_AUTH_SECRET": "short"},
			want: "auth",
		},
		{
			name: "bad server port",
			env:  map[string]string{"AGORA_SERVER_PORT": "70000"},
			want: "server",
		},
		{
			name: "bad shutdown timeout",
			env:  map[string]string{"AGORA_SHUTDOWN_TIMEOUT": "soon"},
			want: "shutdown_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t, nil)
			minimalEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
