package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"felicity/internal/event"
	"felicity/internal/transport/http/shared"
	dErrors "felicity/pkg/domain-errors"
	request "felicity/pkg/platform/middleware/request"
)

// Service defines the catalog operations the handler needs.
type Service interface {
	Create(ctx context.Context, in event.CreateInput) (*event.Event, error)
	List(ctx context.Context, category string, liveOnly bool) ([]*event.Event, error)
}

// Handler serves the public catalog plus the admin create endpoint.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated catalog listing.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/events", h.handleList)
}

// RegisterAdmin mounts event creation; the caller's group applies the role
// check.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/events", h.handleCreate)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events, err := h.service.List(r.Context(), q.Get("category"), q.Get("live") == "true")
	if err != nil {
		h.fail(w, r, "list events", err)
		return
	}
	if events == nil {
		events = []*event.Event{}
	}
	shared.WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in event.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, "create event", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, op+" failed",
			"error", err,
			"request_id", request.GetRequestID(ctx),
		)
	}
	shared.WriteError(w, err)
}
