package api

import (
	"net/http"

	"github.com/JaimeStill/agora/internal/config"
	"github.com/JaimeStill/agora/pkg/handlers"
	"github.com/JaimeStill/agora/pkg/middleware"
	"github.com/JaimeStill/agora/pkg/routes"
)

// registerRoutes caps JSON request bodies at api.max_body_size. Image
// uploads bypass that cap and are bounded by storage.max_file_size.
func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	jsonMux := http.NewServeMux()
	routes.Register(
		jsonMux,
		domain.Policies.Handler().Routes(),
		domain.Pages.Handler().Routes(),
		domain.Groups.Handler().Routes(),
		domain.Posts.Handler().Routes(),
		moderationRoutes(domain),
	)
	mux.Handle("/", middleware.MaxBytes(cfg.API.MaxBodySizeBytes())(jsonMux))

	routes.Register(mux, domain.Images.Routes())

	runtime.Logger.Info("routes registered", "base_path", cfg.API.BasePath)
}

func moderationRoutes(domain *Domain) routes.Group {
	return routes.Group{
		Prefix: "/moderation",
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "/providers",
				Handler: func(w http.ResponseWriter, r *http.Request) {
					handlers.RespondJSON(w, http.StatusOK, map[string][]string{
						"providers": domain.Chain.Providers(),
					})
				},
			},
		},
	}
}
