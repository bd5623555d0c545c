package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"felicity/internal/platform/metrics"
	"felicity/internal/team"
	"felicity/internal/transport/http/shared"
	dErrors "felicity/pkg/domain-errors"
	"felicity/pkg/platform/audit"
	authmw "felicity/pkg/platform/middleware/auth"
	metadata "felicity/pkg/platform/middleware/metadata"
	request "felicity/pkg/platform/middleware/request"
)

// Service defines the team operations the handler needs.
type Service interface {
	Create(ctx context.Context, authID, name string, esports bool) (*team.Team, error)
	RequestJoin(ctx context.Context, authID, teamID string) error
	ApproveJoin(ctx context.Context, authID, teamID, requesterID string) (*team.Team, error)
	LeaveOrDisband(ctx context.Context, authID string, esports bool) error
	Mine(ctx context.Context, authID string) (*team.Team, *team.Team, error)
}

// Handler serves the team lifecycle endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor *audit.Publisher
}

func New(service Service, logger *slog.Logger, m *metrics.Metrics, auditor *audit.Publisher) *Handler {
	return &Handler{service: service, logger: logger, metrics: m, auditor: auditor}
}

// Register mounts the team routes. RequireAuth is applied by the caller's
// route group.
func (h *Handler) Register(r chi.Router) {
	r.Get("/teams", h.handleMine)
	r.Post("/teams", h.handleCreate)
	r.Post("/teams/join", h.handleJoin)
	r.Post("/teams/approve", h.handleApprove)
	r.Post("/teams/leave", h.handleLeave)
}

type createRequest struct {
	Name    string `json:"name"`
	Esports bool   `json:"esports"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in createRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	t, err := h.service.Create(ctx, authmw.GetUserID(ctx), in.Name, in.Esports)
	if err != nil {
		h.fail(w, r, "create team", err)
		return
	}
	h.metrics.TeamsCreated.Inc()
	h.auditor.Emit(audit.Event{
		Action:    audit.ActionTeamCreated,
		ActorID:   authmw.GetUserID(ctx),
		SubjectID: t.ID,
		RequestID: request.GetRequestID(ctx),
		ClientIP:  metadata.GetClientIP(ctx),
		Device:    metadata.GetDevice(ctx),
		Detail:    map[string]string{"name": t.Name},
	})
	shared.WriteJSON(w, http.StatusCreated, t)
}

type mineResponse struct {
	Team        *team.Team `json:"team,omitempty"`
	EsportsTeam *team.Team `json:"esportsTeam,omitempty"`
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	current, esports, err := h.service.Mine(ctx, authmw.GetUserID(ctx))
	if err != nil {
		h.fail(w, r, "load teams", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, mineResponse{Team: current, EsportsTeam: esports})
}

type joinRequest struct {
	TeamID string `json:"teamId"`
}

func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in joinRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.TeamID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "teamId is required"))
		return
	}
	if err := h.service.RequestJoin(ctx, authmw.GetUserID(ctx), in.TeamID); err != nil {
		h.fail(w, r, "request join", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "join request submitted"})
}

type approveRequest struct {
	TeamID      string `json:"teamId"`
	RequesterID string `json:"requesterId"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in approveRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.TeamID == "" || in.RequesterID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "teamId and requesterId are required"))
		return
	}
	t, err := h.service.ApproveJoin(ctx, authmw.GetUserID(ctx), in.TeamID, in.RequesterID)
	if err != nil {
		h.fail(w, r, "approve join", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, t)
}

type leaveRequest struct {
	Esports bool `json:"esports"`
}

func (h *Handler) handleLeave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in leaveRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	if err := h.service.LeaveOrDisband(ctx, authmw.GetUserID(ctx), in.Esports); err != nil {
		h.fail(w, r, "leave team", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "left team"})
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
