package infrastructure_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/JaimeStill/agora/internal/config"
	"github.com/JaimeStill/agora/internal/infrastructure"
	"github.com/JaimeStill/agora/internal/moderation"
	"github.com/JaimeStill/agora/pkg/auth"
	"github.com/JaimeStill/agora/pkg/cache"
	"github.com/JaimeStill/agora/pkg/database"
	"github.com/JaimeStill/agora/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=agorastore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/agorastore;"

func validConfig() *config.Config {
	cfg := &config.Config{
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "agora",
			User:            "agora",
			Password:        "agora",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnMaxIdleTime: "5m",
			ConnTimeout:     "5s",
		},
		Auth: auth.Config{
			Mode:      auth.ModeHMAC,
			Secret:    "0123456789abcdef0123456789abcdef",
			AdminRole: "system_admin",
		},
		Log:     config.LogConfig{Level: "info", Format: config.LogFormatText},
		Version: "0.1.0",
	}
	cfg.Moderation.CacheBackend = moderation.CacheMemory
	cfg.Moderation.CacheCapacity = 100
	cfg.Moderation.Timeout = "5s"
	return cfg
}

func TestNew(t *testing.T) {
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer infra.Database.Connection().Close()

	if infra.Lifecycle == nil {
		t.Error("Lifecycle is nil")
	}
	if infra.Logger == nil {
		t.Error("Logger is nil")
	}
	if infra.Database == nil {
		t.Error("Database is nil")
	}
	if infra.Verifier == nil {
		t.Error("Verifier is nil")
	}
	if infra.HTTPClient == nil {
		t.Error("HTTPClient is nil")
	}
	if infra.Storage != nil {
		t.Error("Storage should be nil without a connection string")
	}
	if infra.Redis != nil {
		t.Error("Redis should be nil without an address")
	}
	if infra.Credential != nil {
		t.Error("Credential should be nil unless Entra ID is requested")
	}
	if _, ok := infra.Cache.(*cache.MemoryStore); !ok {
		t.Errorf("Cache = %T, want *cache.MemoryStore", infra.Cache)
	}
}

func TestNewWithStorage(t *testing.T) {
	cfg := validConfig()
	cfg.Storage = storage.Config{
		ContainerName:    "post-images",
		ConnectionString: azuriteConnString,
		PublicURL:        "http://127.0.0.1:10000/agorastore/post-images",
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer infra.Database.Connection().Close()

	if infra.Storage == nil {
		t.Fatal("Storage is nil")
	}
}

func TestNewRedisCache(t *testing.T) {
	cfg := validConfig()
	cfg.Redis = config.RedisConfig{Addr: "127.0.0.1:6379", Prefix: "test:", Retention: "1h"}
	cfg.Moderation.CacheBackend = moderation.CacheRedis

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer infra.Database.Connection().Close()
	defer infra.Redis.Close()

	if _, ok := infra.Cache.(*cache.RedisStore); !ok {
		t.Errorf("Cache = %T, want *cache.RedisStore", infra.Cache)
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{
			name: "invalid storage connection string",
			mutate: func(c *config.Config) {
				c.Storage.ConnectionString = "not-a-connection-string"
			},
		},
		{
			name: "redis backend without redis",
			mutate: func(c *config.Config) {
				c.Moderation.CacheBackend = moderation.CacheRedis
			},
		},
		{
			name: "unknown auth mode",
			mutate: func(c *config.Config) {
				c.Auth.Mode = "basic"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if _, err := infrastructure.New(cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := infrastructure.NewLogger(&config.LogConfig{Level: "warn", Format: config.LogFormatJSON}, &buf)

	logger.Info("dropped")
	logger.Warn("kept", "post", "p1")

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "dropped") {
		t.Errorf("info record written at warn level: %s", out)
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(out), &record); err != nil {
		t.Fatalf("output is not json: %v (%s)", err, out)
	}
	if record["msg"] != "kept" || record["post"] != "p1" {
		t.Errorf("record = %v", record)
	}
}
