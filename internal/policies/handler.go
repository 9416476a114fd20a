package policies

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/agora/pkg/auth"
	"github.com/JaimeStill/agora/pkg/handlers"
	"github.com/JaimeStill/agora/pkg/routes"
)

// Handler provides HTTP endpoints for moderation settings.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// SettingsRequest is the body of PUT /moderation-settings.
type SettingsRequest struct {
	EntityType int    `json:"entityType"`
	EntityID   string `json:"entityId,omitempty"`
	UpdateCommand
}

// PageSettingsRequest is the body of PUT /moderation-settings/page.
type PageSettingsRequest struct {
	PageID string `json:"pageId"`
	UpdateCommand
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "policies"),
	}
}

// Routes returns the route group definition for moderation settings.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/moderation-settings",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Get},
			{Method: "PUT", Pattern: "", Handler: h.Put},
			{Method: "GET", Pattern: "/page/{pageId}", Handler: h.GetPage},
			{Method: "PUT", Pattern: "/page", Handler: h.PutPage},
			{Method: "GET", Pattern: "/group/{groupId}", Handler: h.GetGroup},
			{Method: "PUT", Pattern: "/group/{groupId}", Handler: h.PutGroup},
			{Method: "GET", Pattern: "/global", Handler: h.GetGlobal},
			{Method: "PUT", Pattern: "/global", Handler: h.PutGlobal},
			{Method: "GET", Pattern: "/list", Handler: h.List},
		},
	}
}

// Get resolves the policy named by the entityType and entityId query parameters.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	entityType, err := strconv.Atoi(r.URL.Query().Get("entityType"))
	if err != nil {
		h.fail(w, ErrInvalidEntityType)
		return
	}

	scope, err := NewScope(entityType, r.URL.Query().Get("entityId"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.resolve(w, r, scope)
}

// Put updates the policy named in the request body.
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[SettingsRequest](r)
	if err != nil {
		h.fail(w, ErrInvalidBody)
		return
	}

	scope, err := NewScope(req.EntityType, req.EntityID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.update(w, r, scope, req.UpdateCommand)
}

func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	scope, err := NewScope(int(EntityPage), r.PathValue("pageId"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.resolve(w, r, scope)
}

func (h *Handler) PutPage(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[PageSettingsRequest](r)
	if err != nil {
		h.fail(w, ErrInvalidBody)
		return
	}

	scope, err := NewScope(int(EntityPage), req.PageID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.update(w, r, scope, req.UpdateCommand)
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	scope, err := NewScope(int(EntityGroup), r.PathValue("groupId"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.resolve(w, r, scope)
}

func (h *Handler) PutGroup(w http.ResponseWriter, r *http.Request) {
	scope, err := NewScope(int(EntityGroup), r.PathValue("groupId"))
	if err != nil {
		h.fail(w, err)
		return
	}

	cmd, err := handlers.DecodeJSON[UpdateCommand](r)
	if err != nil {
		h.fail(w, ErrInvalidBody)
		return
	}
	h.update(w, r, scope, cmd)
}

func (h *Handler) GetGlobal(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, Global())
}

// PutGlobal replaces the global policy.
func (h *Handler) PutGlobal(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[UpdateCommand](r)
	if err != nil {
		h.fail(w, ErrInvalidBody)
		return
	}
	h.update(w, r, Global(), cmd)
}

// List returns every policy of the entity type given by the kind query
// parameter, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	kind, err := strconv.Atoi(r.URL.Query().Get("kind"))
	if err != nil || !EntityType(kind).Valid() {
		h.fail(w, ErrInvalidEntityType)
		return
	}

	actor, err := auth.ActorFrom(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	policies, err := h.sys.List(r.Context(), EntityType(kind), actor.ID)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, policies)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, scope Scope) {
	p, err := h.sys.Resolve(r.Context(), scope)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, scope Scope, cmd UpdateCommand) {
	actor, err := auth.ActorFrom(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}

	p, err := h.sys.Update(r.Context(), actor, scope, cmd)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, p)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := MapHTTPStatus(err)
	if status == http.StatusInternalServerError {
		status = auth.MapHTTPStatus(err)
	}
	handlers.RespondError(w, h.logger, status, err)
}
