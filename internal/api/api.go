// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/agora/internal/config"
	"github.com/JaimeStill/agora/internal/infrastructure"
	"github.com/JaimeStill/agora/pkg/auth"
	"github.com/JaimeStill/agora/pkg/middleware"
	"github.com/JaimeStill/agora/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// Every route requires a bearer token.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain, err := NewDomain(runtime)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(auth.Middleware(runtime.Verifier, runtime.Logger))

	return m, nil
}
