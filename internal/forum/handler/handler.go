package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"felicity/internal/forum"
	"felicity/internal/platform/metrics"
	"felicity/internal/transport/http/shared"
	dErrors "felicity/pkg/domain-errors"
	authmw "felicity/pkg/platform/middleware/auth"
	request "felicity/pkg/platform/middleware/request"
)

// Service defines the forum operations the handler needs.
type Service interface {
	Channel(ctx context.Context, authID, role, eventID string) (*forum.Channel, error)
	ListPosts(ctx context.Context, authID, role, eventID string) ([]*forum.Post, error)
	CreatePost(ctx context.Context, authID, role, eventID, body string) (*forum.Post, error)
	ListComments(ctx context.Context, authID, role, postID string) ([]*forum.Comment, error)
	CreateComment(ctx context.Context, authID, role, postID, body string) (*forum.Comment, error)
	ReactToPost(ctx context.Context, authID, role, postID, emoji string) (*forum.Post, error)
	ReactToComment(ctx context.Context, authID, role, commentID, emoji string) (*forum.Comment, error)
	SetPinned(ctx context.Context, postID string, pinned bool) (*forum.Post, error)
	SetLocked(ctx context.Context, postID string, locked bool) (*forum.Post, error)
}

// Handler serves the per-event forum endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(service Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{service: service, logger: logger, metrics: m}
}

// Register mounts the forum routes. RequireAuth is applied by the caller's
// route group.
func (h *Handler) Register(r chi.Router) {
	r.Get("/channels/{eventID}", h.handleChannel)
	r.Get("/channels/{eventID}/posts", h.handleListPosts)
	r.Post("/channels/{eventID}/posts", h.handleCreatePost)
	r.Get("/posts/{postID}/comments", h.handleListComments)
	r.Post("/posts/{postID}/comments", h.handleCreateComment)
	r.Post("/posts/{postID}/react", h.handleReactPost)
	r.Post("/comments/{commentID}/react", h.handleReactComment)
}

// RegisterAdmin mounts moderation routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/posts/{postID}/pin", h.handlePin)
	r.Post("/posts/{postID}/lock", h.handleLock)
}

func (h *Handler) handleChannel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ch, err := h.service.Channel(ctx, authmw.GetUserID(ctx), authmw.GetRole(ctx), chi.URLParam(r, "eventID"))
	if err != nil {
		h.fail(w, r, "get channel", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, ch)
}

func (h *Handler) handleListPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	posts, err := h.service.ListPosts(ctx, authmw.GetUserID(ctx), authmw.GetRole(ctx), chi.URLParam(r, "eventID"))
	if err != nil {
		h.fail(w, r, "list posts", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, posts)
}

type bodyRequest struct {
	Body string `json:"body"`
}

func (h *Handler) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in bodyRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	p, err := h.service.CreatePost(ctx, authmw.GetUserID(ctx), authmw.GetRole(ctx), chi.URLParam(r, "eventID"), in.Body)
	if err != nil {
		h.fail(w, r, "create post", err)
		return
	}
	h.metrics.PostsCreated.Inc()
	shared.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleListComments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	comments, err := h.service.ListComments(ctx, authmw.GetUserID(ctx), authmw.GetRole(ctx), chi.URLParam(r, "postID"))
	if err != nil {
		h.fail(w, r, "list comments", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, comments)
}

func (h *Handler) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in bodyRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	c, err := h.service.CreateComment(ctx, authmw.GetUserID(ctx), authmw.GetRole(ctx), chi.URLParam(r, "postID"), in.Body)
	if err != nil {
		h.fail(w, r, "create comment", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, c)
}

type reactRequest struct {
	Emoji string `json:"emoji"`
}

func (h *Handler) handleReactPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in reactRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Emoji == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "emoji is required"))
		return
	}
	p, err := h.service.ReactToPost(ctx, authmw.GetUserID(ctx), authmw.GetRole(ctx), chi.URLParam(r, "postID"), in.Emoji)
	if err != nil {
		h.fail(w, r, "react to post", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleReactComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in reactRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Emoji == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "emoji is required"))
		return
	}
	c, err := h.service.ReactToComment(ctx, authmw.GetUserID(ctx), authmw.GetRole(ctx), chi.URLParam(r, "commentID"), in.Emoji)
	if err != nil {
		h.fail(w, r, "react to comment", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, c)
}

type moderateRequest struct {
	On bool `json:"on"`
}

func (h *Handler) handlePin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in moderateRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	p, err := h.service.SetPinned(ctx, chi.URLParam(r, "postID"), in.On)
	if err != nil {
		h.fail(w, r, "pin post", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleLock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in moderateRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	p, err := h.service.SetLocked(ctx, chi.URLParam(r, "postID"), in.On)
	if err != nil {
		h.fail(w, r, "lock post", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, p)
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
