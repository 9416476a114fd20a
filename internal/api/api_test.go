package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/JaimeStill/agora/internal/api"
	"github.com/JaimeStill/agora/internal/config"
	"github.com/JaimeStill/agora/internal/infrastructure"
	"github.com/JaimeStill/agora/internal/moderation"
	"github.com/JaimeStill/agora/pkg/auth"
	"github.com/JaimeStill/agora/pkg/database"
	"github.com/JaimeStill/agora/pkg/middleware"
	"github.com/JaimeStill/agora/pkg/module"
	"github.com/JaimeStill/agora/pkg/pagination"
)

const secret = "0123456789abcdef0123456789abcdef"

func validConfig() *config.Config {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     "1m",
			WriteTimeout:    "15m",
			ShutdownTimeout: "30s",
		},
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
		API: config.APIConfig{
			BasePath:    "/api",
			MaxBodySize: "64B",
			CORS:        middleware.CORSConfig{Enabled: false},
			Pagination: pagination.Config{
				DefaultPageSize: 20,
				MaxPageSize:     100,
			},
		},
		Auth: auth.Config{
			Mode:      auth.ModeHMAC,
			Secret:    secret,
			AdminRole: "system_admin",
		},
		Log:     config.LogConfig{Level: "error", Format: config.LogFormatText},
		Version: "0.1.0",
	}
	cfg.Moderation.CacheBackend = moderation.CacheMemory
	cfg.Moderation.CacheCapacity = 100
	cfg.Moderation.Timeout = "5s"
	return cfg
}

func newModule(t *testing.T) *module.Module {
	t.Helper()
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	t.Cleanup(func() { infra.Database.Connection().Close() })

	m, err := api.NewModule(validConfig(), infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}
	return m
}

func token(t *testing.T) string {
	t.Helper()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func serve(m *module.Module, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	m.Serve(rec, req)
	return rec
}

func TestNewModule(t *testing.T) {
	m := newModule(t)
	if m.Prefix() != "/api" {
		t.Errorf("Prefix() = %s, want /api", m.Prefix())
	}
}

func TestModuleRequiresToken(t *testing.T) {
	m := newModule(t)

	rec := serve(m, httptest.NewRequest("GET", "/api/moderation/providers", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestModuleProviders(t *testing.T) {
	m := newModule(t)

	req := httptest.NewRequest("GET", "/api/moderation/providers", nil)
	req.Header.Set("Authorization", "Bearer "+token(t))
	rec := serve(m, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	var body map[string][]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body["providers"]) != 0 {
		t.Errorf("providers = %v, want none without credentials", body["providers"])
	}
}

func TestModuleRejectsWithoutDatabase(t *testing.T) {
	m := newModule(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{
			name:   "unknown entity type",
			method: "GET",
			target: "/api/moderation-settings?entityType=9",
			want:   http.StatusBadRequest,
		},
		{
			name:   "body over limit",
			method: "PUT",
			target: "/api/moderation-settings/page",
			body:   `{"pageId":"` + strings.Repeat("x", 256) + `"}`,
			want:   http.StatusBadRequest,
		},
		{
			name:   "image upload without storage",
			method: "POST",
			target: "/api/images",
			body:   "ignored",
			want:   http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			req.Header.Set("Authorization", "Bearer "+token(t))
			rec := serve(m, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}
