package pages

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/agora/pkg/auth"
	"github.com/JaimeStill/agora/pkg/handlers"
	"github.com/JaimeStill/agora/pkg/pagination"
	"github.com/JaimeStill/agora/pkg/routes"
)

// Handler provides HTTP endpoints for pages and their members.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "pages"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for page endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/pages",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "GET", Pattern: "/{id}/members", Handler: h.Members},
			{Method: "POST", Pattern: "/{id}/members", Handler: h.AddMember},
			{Method: "DELETE", Pattern: "/{id}/members/{userId}", Handler: h.RemoveMember},
		},
	}
}

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

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
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

	p, err := h.sys.Create(r.Context(), actor, cmd)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, p)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pageID(w, r)
	if !ok {
		return
	}

	p, err := h.sys.Find(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.ActorFrom(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	id, ok := h.pageID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), actor, id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pageID(w, r)
	if !ok {
		return
	}

	members, err := h.sys.Members(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, members)
}

func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.ActorFrom(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	id, ok := h.pageID(w, r)
	if !ok {
		return
	}

	cmd, err := handlers.DecodeJSON[MemberCommand](r)
	if err != nil {
		h.fail(w, ErrInvalidBody)
		return
	}

	m, err := h.sys.AddMember(r.Context(), actor, id, cmd)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, m)
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.ActorFrom(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	id, ok := h.pageID(w, r)
	if !ok {
		return
	}
	userID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		h.fail(w, ErrInvalidMember)
		return
	}

	if err := h.sys.RemoveMember(r.Context(), actor, id, userID); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pageID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.fail(w, ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := MapHTTPStatus(err)
	if status == http.StatusInternalServerError {
		status = auth.MapHTTPStatus(err)
	}
	handlers.RespondError(w, h.logger, status, err)
}
