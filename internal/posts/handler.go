package posts

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/agora/internal/policies"
	"github.com/JaimeStill/agora/pkg/auth"
	"github.com/JaimeStill/agora/pkg/handlers"
	"github.com/JaimeStill/agora/pkg/pagination"
	"github.com/JaimeStill/agora/pkg/routes"
)

// Handler provides HTTP endpoints for post operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "posts"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for post endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/post",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "POST", Pattern: "/page/{pageId}", Handler: h.CreatePage},
			{Method: "POST", Pattern: "/group/{groupId}", Handler: h.CreateGroup},
			{Method: "PUT", Pattern: "/status", Handler: h.Review},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// List returns a paginated list of posts. Filters: entity_type, entity_id,
// status, author_id, kind.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Create publishes a post to the author's feed.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, policies.Global())
}

func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	scope, err := policies.NewScope(int(policies.EntityPage), r.PathValue("pageId"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.create(w, r, scope)
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	scope, err := policies.NewScope(int(policies.EntityGroup), r.PathValue("groupId"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.create(w, r, scope)
}

// Review applies a manual moderation decision to a pending post.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.ActorFrom(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	cmd, err := handlers.DecodeJSON[ReviewCommand](r)
	if err != nil {
		h.fail(w, ErrInvalidBody)
		return
	}

	post, err := h.sys.Review(r.Context(), actor, cmd)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, post)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.fail(w, ErrInvalidID)
		return
	}

	post, err := h.sys.Find(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, post)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.ActorFrom(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.fail(w, ErrInvalidID)
		return
	}

	if err := h.sys.Delete(r.Context(), actor, id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, scope policies.Scope) {
	actor, err := auth.ActorFrom(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	cmd, err := handlers.DecodeJSON[CreateCommand](r)
	if err != nil {
		h.fail(w, ErrInvalidBody)
		return
	}

	result, err := h.sys.Create(r.Context(), actor, scope, cmd)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, result)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := MapHTTPStatus(err)
	if status == http.StatusInternalServerError {
		status = auth.MapHTTPStatus(err)
	}
	handlers.RespondError(w, h.logger, status, err)
}
