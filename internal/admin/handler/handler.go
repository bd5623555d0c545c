package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"felicity/internal/platform/metrics"
	"felicity/internal/registration"
	"felicity/internal/transport/http/shared"
	dErrors "felicity/pkg/domain-errors"
	"felicity/pkg/platform/audit"
	authmw "felicity/pkg/platform/middleware/auth"
	metadata "felicity/pkg/platform/middleware/metadata"
	request "felicity/pkg/platform/middleware/request"
)

//go:generate mockgen -source=handler.go -destination=../mocks/service_mock.go -package=mocks

// Service defines the verification desk operations the handler needs.
type Service interface {
	ListRegistrations(ctx context.Context, eventID string, status registration.Status) ([]*registration.Registration, error)
	PendingSubmissions(ctx context.Context) ([]*registration.PaymentSubmission, error)
	Verify(ctx context.Context, registrationID, verifierID, note string) (*registration.Registration, error)
	Reject(ctx context.Context, registrationID, verifierID, note string) (*registration.Registration, error)
	Backfill(ctx context.Context, teamName, eventID, verifierID, note string) (*registration.Registration, error)
}

// Handler serves the admin verification endpoints. Role gating happens in
// the route group that mounts it.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor *audit.Publisher
}

func New(service Service, logger *slog.Logger, m *metrics.Metrics, auditor *audit.Publisher) *Handler {
	return &Handler{service: service, logger: logger, metrics: m, auditor: auditor}
}

// Register mounts the admin-only routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/registrations", h.handleList)
	r.Get("/payment-submissions", h.handleSubmissions)
	r.Post("/verify-payment", h.handleVerify)
}

// RegisterSuperAdmin mounts the superadmin-only escape hatches.
func (h *Handler) RegisterSuperAdmin(r chi.Router) {
	r.Post("/backfill-registration", h.handleBackfill)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	regs, err := h.service.ListRegistrations(ctx,
		r.URL.Query().Get("event"),
		registration.Status(r.URL.Query().Get("status")),
	)
	if err != nil {
		h.fail(w, r, "list registrations", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, regs)
}

func (h *Handler) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subs, err := h.service.PendingSubmissions(ctx)
	if err != nil {
		h.fail(w, r, "list payment submissions", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, subs)
}

type verifyRequest struct {
	RegistrationID string `json:"registrationId"`
	Approve        bool   `json:"approve"`
	Note           string `json:"note"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.RegistrationID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "registrationId is required"))
		return
	}
	verifier := authmw.GetUserID(ctx)

	var (
		reg    *registration.Registration
		err    error
		action audit.Action
	)
	if in.Approve {
		reg, err = h.service.Verify(ctx, in.RegistrationID, verifier, in.Note)
		action = audit.ActionPaymentVerified
	} else {
		reg, err = h.service.Reject(ctx, in.RegistrationID, verifier, in.Note)
		action = audit.ActionPaymentRejected
	}
	if err != nil {
		h.fail(w, r, "verify payment", err)
		return
	}
	if in.Approve {
		h.metrics.PaymentsVerified.Inc()
	} else {
		h.metrics.PaymentsRejected.Inc()
	}
	h.auditor.Emit(audit.Event{
		Action:    action,
		ActorID:   verifier,
		SubjectID: reg.ID,
		RequestID: request.GetRequestID(ctx),
		ClientIP:  metadata.GetClientIP(ctx),
		Device:    metadata.GetDevice(ctx),
		Detail:    map[string]string{"note": in.Note},
	})
	if in.Approve && reg.TeamID != "" && reg.Status.Settled() {
		h.auditor.Emit(audit.Event{
			Action:    audit.ActionTeamLocked,
			ActorID:   verifier,
			SubjectID: reg.TeamID,
			RequestID: request.GetRequestID(ctx),
			ClientIP:  metadata.GetClientIP(ctx),
			Device:    metadata.GetDevice(ctx),
			Detail:    map[string]string{"registration_id": reg.ID, "event_id": reg.EventID},
		})
	}
	shared.WriteJSON(w, http.StatusOK, reg)
}

type backfillRequest struct {
	TeamName string `json:"teamName"`
	EventID  string `json:"eventId"`
	Note     string `json:"note"`
}

func (h *Handler) handleBackfill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in backfillRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.TeamName == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "teamName is required"))
		return
	}
	verifier := authmw.GetUserID(ctx)
	reg, err := h.service.Backfill(ctx, in.TeamName, in.EventID, verifier, in.Note)
	if err != nil {
		h.fail(w, r, "backfill registration", err)
		return
	}
	h.auditor.Emit(audit.Event{
		Action:    audit.ActionRegistrationBackfill,
		ActorID:   verifier,
		SubjectID: reg.ID,
		RequestID: request.GetRequestID(ctx),
		ClientIP:  metadata.GetClientIP(ctx),
		Device:    metadata.GetDevice(ctx),
		Detail:    map[string]string{"team": in.TeamName, "event_id": reg.EventID},
	})
	shared.WriteJSON(w, http.StatusCreated, reg)
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
