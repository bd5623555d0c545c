package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"felicity/internal/event"
	"felicity/internal/platform/metrics"
	"felicity/internal/registration"
	"felicity/internal/transport/http/shared"
	dErrors "felicity/pkg/domain-errors"
	"felicity/pkg/platform/audit"
	authmw "felicity/pkg/platform/middleware/auth"
	metadata "felicity/pkg/platform/middleware/metadata"
	request "felicity/pkg/platform/middleware/request"
)

// Service defines the registration operations the handler needs.
type Service interface {
	Register(ctx context.Context, authID, eventID string, selectedMembers []string) (*registration.Registration, error)
	ConfirmPayment(ctx context.Context, registrationID, gatewayPaymentID string, amount int) (*registration.Registration, error)
	FailPayment(ctx context.Context, registrationID, note string) (*registration.Registration, error)
	SubmitPayment(ctx context.Context, authID string, in registration.SubmissionInput) (*registration.PaymentSubmission, error)
	Mine(ctx context.Context, authID string) ([]*registration.Registration, error)
}

// EventCatalog expands cart entries into event documents for display.
type EventCatalog interface {
	Get(ctx context.Context, id string) (*event.Event, error)
}

// Handler serves registration, payment callback and cart endpoints.
type Handler struct {
	service Service
	carts   registration.CartStore
	events  EventCatalog
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor *audit.Publisher
}

func New(service Service, carts registration.CartStore, events EventCatalog, logger *slog.Logger, m *metrics.Metrics, auditor *audit.Publisher) *Handler {
	return &Handler{service: service, carts: carts, events: events, logger: logger, metrics: m, auditor: auditor}
}

// Register mounts the registration routes. RequireAuth is applied by the
// caller's route group.
func (h *Handler) Register(r chi.Router) {
	r.Get("/registrations", h.handleMine)
	r.Post("/registrations", h.handleRegister)
	r.Post("/registrations/confirm", h.handleConfirm)
	r.Post("/payment-submissions", h.handleSubmission)

	r.Get("/cart", h.handleCartList)
	r.Post("/cart", h.handleCartAdd)
	r.Delete("/cart", h.handleCartClear)
	r.Delete("/cart/{eventID}", h.handleCartRemove)
}

type registerRequest struct {
	EventID         string   `json:"eventId"`
	SelectedMembers []string `json:"selectedMembers"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in registerRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.EventID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "eventId is required"))
		return
	}
	reg, err := h.service.Register(ctx, authmw.GetUserID(ctx), in.EventID, in.SelectedMembers)
	if err != nil {
		h.fail(w, r, "register", err)
		return
	}
	// Registering removes the event from the staging cart.
	if err := h.carts.Remove(ctx, authmw.GetUserID(ctx), in.EventID); err != nil {
		h.logger.WarnContext(ctx, "cart cleanup failed", "error", err, "request_id", request.GetRequestID(ctx))
	}
	h.metrics.RegistrationsCreated.Inc()
	h.auditor.Emit(audit.Event{
		Action:    audit.ActionRegistrationCreated,
		ActorID:   authmw.GetUserID(ctx),
		SubjectID: reg.ID,
		RequestID: request.GetRequestID(ctx),
		ClientIP:  metadata.GetClientIP(ctx),
		Device:    metadata.GetDevice(ctx),
		Detail:    map[string]string{"event_id": reg.EventID, "status": string(reg.Status)},
	})
	// Free events settle inline and lock the team straight away.
	h.emitTeamLocked(ctx, reg)
	shared.WriteJSON(w, http.StatusCreated, reg)
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	regs, err := h.service.Mine(ctx, authmw.GetUserID(ctx))
	if err != nil {
		h.fail(w, r, "list registrations", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, regs)
}

type confirmRequest struct {
	RegistrationID string `json:"registrationId"`
	PaymentID      string `json:"paymentId"`
	Amount         int    `json:"amount"`
	Success        bool   `json:"success"`
	Note           string `json:"note"`
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.RegistrationID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "registrationId is required"))
		return
	}

	if !in.Success {
		reg, err := h.service.FailPayment(ctx, in.RegistrationID, in.Note)
		if err != nil {
			h.fail(w, r, "fail payment", err)
			return
		}
		h.auditor.Emit(audit.Event{
			Action:    audit.ActionPaymentFailed,
			ActorID:   authmw.GetUserID(ctx),
			SubjectID: reg.ID,
			RequestID: request.GetRequestID(ctx),
			ClientIP:  metadata.GetClientIP(ctx),
			Device:    metadata.GetDevice(ctx),
			Detail:    map[string]string{"note": in.Note},
		})
		shared.WriteJSON(w, http.StatusOK, reg)
		return
	}

	reg, err := h.service.ConfirmPayment(ctx, in.RegistrationID, in.PaymentID, in.Amount)
	if err != nil {
		h.fail(w, r, "confirm payment", err)
		return
	}
	h.auditor.Emit(audit.Event{
		Action:    audit.ActionPaymentConfirmed,
		ActorID:   authmw.GetUserID(ctx),
		SubjectID: reg.ID,
		RequestID: request.GetRequestID(ctx),
		ClientIP:  metadata.GetClientIP(ctx),
		Device:    metadata.GetDevice(ctx),
		Detail:    map[string]string{"amount": strconv.Itoa(in.Amount)},
	})
	h.emitTeamLocked(ctx, reg)
	shared.WriteJSON(w, http.StatusOK, reg)
}

// emitTeamLocked records the lock cascade that settling triggers on team
// registrations.
func (h *Handler) emitTeamLocked(ctx context.Context, reg *registration.Registration) {
	if reg.TeamID == "" || !reg.Status.Settled() {
		return
	}
	h.auditor.Emit(audit.Event{
		Action:    audit.ActionTeamLocked,
		ActorID:   authmw.GetUserID(ctx),
		SubjectID: reg.TeamID,
		RequestID: request.GetRequestID(ctx),
		ClientIP:  metadata.GetClientIP(ctx),
		Device:    metadata.GetDevice(ctx),
		Detail:    map[string]string{"registration_id": reg.ID, "event_id": reg.EventID},
	})
}

func (h *Handler) handleSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in registration.SubmissionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.RegistrationID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "registrationId is required"))
		return
	}
	sub, err := h.service.SubmitPayment(ctx, authmw.GetUserID(ctx), in)
	if err != nil {
		h.fail(w, r, "submit payment report", err)
		return
	}
	h.auditor.Emit(audit.Event{
		Action:    audit.ActionPaymentReportReceived,
		ActorID:   authmw.GetUserID(ctx),
		SubjectID: sub.RegistrationID,
		RequestID: request.GetRequestID(ctx),
		ClientIP:  metadata.GetClientIP(ctx),
		Device:    metadata.GetDevice(ctx),
		Detail:    map[string]string{"transaction_id": sub.TransactionID},
	})
	shared.WriteJSON(w, http.StatusCreated, sub)
}

type cartAddRequest struct {
	EventID string `json:"eventId"`
}

func (h *Handler) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in cartAddRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.EventID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "eventId is required"))
		return
	}
	if _, err := h.events.Get(ctx, in.EventID); err != nil {
		h.fail(w, r, "check event", err)
		return
	}
	if err := h.carts.Add(ctx, authmw.GetUserID(ctx), in.EventID); err != nil {
		h.fail(w, r, "add to cart", dErrors.Wrap(dErrors.CodeInternal, "failed to update cart", err))
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "added to cart"})
}

type cartResponse struct {
	Events []*event.Event `json:"events"`
}

func (h *Handler) handleCartList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ids, err := h.carts.List(ctx, authmw.GetUserID(ctx))
	if err != nil {
		h.fail(w, r, "list cart", dErrors.Wrap(dErrors.CodeInternal, "failed to read cart", err))
		return
	}
	out := cartResponse{Events: []*event.Event{}}
	for _, id := range ids {
		ev, err := h.events.Get(ctx, id)
		if err != nil {
			// An event deleted after being carted is skipped, not an error.
			continue
		}
		out.Events = append(out.Events, ev)
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID := chi.URLParam(r, "eventID")
	if err := h.carts.Remove(ctx, authmw.GetUserID(ctx), eventID); err != nil {
		h.fail(w, r, "remove from cart", dErrors.Wrap(dErrors.CodeInternal, "failed to update cart", err))
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "removed from cart"})
}

func (h *Handler) handleCartClear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.carts.Clear(ctx, authmw.GetUserID(ctx)); err != nil {
		h.fail(w, r, "clear cart", dErrors.Wrap(dErrors.CodeInternal, "failed to clear cart", err))
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
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
