package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"felicity/internal/profile"
	"felicity/internal/transport/http/shared"
	dErrors "felicity/pkg/domain-errors"
	"felicity/pkg/platform/audit"
	authmw "felicity/pkg/platform/middleware/auth"
	metadata "felicity/pkg/platform/middleware/metadata"
	request "felicity/pkg/platform/middleware/request"
)

// Service defines the profile operations the handler needs.
type Service interface {
	Onboard(ctx context.Context, authID string, in profile.OnboardingInput) (*profile.Profile, error)
	Get(ctx context.Context, authID string) (*profile.Profile, error)
	Update(ctx context.Context, authID string, in profile.UpdateInput) (*profile.Profile, error)
}

// Handler serves the onboarding and profile endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
	auditor *audit.Publisher
}

func New(service Service, logger *slog.Logger, auditor *audit.Publisher) *Handler {
	return &Handler{service: service, logger: logger, auditor: auditor}
}

// Register mounts the profile routes. RequireAuth is applied by the caller's
// route group.
func (h *Handler) Register(r chi.Router) {
	r.Get("/onboarding", h.handleOnboardingState)
	r.Post("/onboarding", h.handleOnboard)
	r.Get("/users", h.handleGet)
	r.Patch("/users", h.handleUpdate)
}

type onboardingState struct {
	Completed bool             `json:"completed"`
	Profile   *profile.Profile `json:"profile,omitempty"`
}

func (h *Handler) handleOnboardingState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := h.service.Get(ctx, authmw.GetUserID(ctx))
	if dErrors.Is(err, dErrors.CodeNotFound) {
		shared.WriteJSON(w, http.StatusOK, onboardingState{Completed: false})
		return
	}
	if err != nil {
		h.fail(w, r, "load onboarding state", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, onboardingState{Completed: p.OnboardingCompleted, Profile: p})
}

func (h *Handler) handleOnboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in profile.OnboardingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	p, err := h.service.Onboard(ctx, authmw.GetUserID(ctx), in)
	if err != nil {
		h.fail(w, r, "onboarding", err)
		return
	}
	h.auditor.Emit(audit.Event{
		Action:    audit.ActionUserOnboarded,
		ActorID:   authmw.GetUserID(ctx),
		SubjectID: p.ID,
		RequestID: request.GetRequestID(ctx),
		ClientIP:  metadata.GetClientIP(ctx),
		Device:    metadata.GetDevice(ctx),
	})
	shared.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := h.service.Get(ctx, authmw.GetUserID(ctx))
	if err != nil {
		h.fail(w, r, "load profile", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in profile.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	p, err := h.service.Update(ctx, authmw.GetUserID(ctx), in)
	if err != nil {
		h.fail(w, r, "update profile", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, p)
}

// fail logs internal failures with request correlation and writes the domain
// error envelope.
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
