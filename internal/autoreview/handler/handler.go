// Package handler exposes the auto-review batch jobs to administrators.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"casework/internal/autoreview"
	id "casework/pkg/domain"
	dErrors "casework/pkg/domain-errors"
	"casework/pkg/platform/httputil"
	"casework/pkg/requestcontext"
)

type Service interface {
	ProcessAll(ctx context.Context, actor id.Actor) (*autoreview.BatchResult, error)
	CleanupStaleDrafts(ctx context.Context, actor id.Actor, olderThan time.Duration) (int, error)
	CreateForClient(ctx context.Context, actor id.Actor, ref id.ClientRef) (*autoreview.Plan, error)
}

type Handler struct {
	service       Service
	staleDraftAge time.Duration
	logger        *slog.Logger
}

// New builds the handler. staleDraftAge is used when a cleanup request names no age.
func New(service Service, staleDraftAge time.Duration, logger *slog.Logger) *Handler {
	return &Handler{service: service, staleDraftAge: staleDraftAge, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Post("/auto-reviews/run", h.HandleRun)
		r.Post("/auto-reviews/cleanup", h.HandleCleanup)
		r.Post("/clients/{clientRef}/auto-reviews", h.HandleCreateForClient)
	})
}

// CleanupRequest is the optional body of POST /admin/auto-reviews/cleanup.
type CleanupRequest struct {
	OlderThanDays int `json:"older_than_days" validate:"omitempty,gt=0,lte=3650"`
}

type cleanupResponse struct {
	Deleted   int    `json:"deleted"`
	OlderThan string `json:"older_than"`
}

func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.service.ProcessAll(ctx, actorFrom(ctx))
	if err != nil {
		h.fail(w, r, "run auto-review sweep", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleCleanup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CleanupRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	olderThan := h.staleDraftAge
	if req.OlderThanDays > 0 {
		olderThan = time.Duration(req.OlderThanDays) * 24 * time.Hour
	}
	deleted, err := h.service.CleanupStaleDrafts(ctx, actorFrom(ctx), olderThan)
	if err != nil {
		h.fail(w, r, "cleanup stale drafts", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cleanupResponse{Deleted: deleted, OlderThan: olderThan.String()})
}

func (h *Handler) HandleCreateForClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ref, err := id.ParseClientRef(chi.URLParam(r, "clientRef"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	plan, err := h.service.CreateForClient(ctx, actorFrom(ctx), ref)
	if err != nil {
		h.fail(w, r, "create auto reviews", err)
		return
	}
	status := http.StatusOK
	if len(plan.Created) > 0 {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, plan)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "request failed", "operation", op, "request_id", requestcontext.RequestID(ctx), "error", err)
	} else {
		h.logger.WarnContext(ctx, "request rejected", "operation", op, "request_id", requestcontext.RequestID(ctx), "error", err)
	}
	httputil.WriteError(w, err)
}

func actorFrom(ctx context.Context) id.Actor {
	actor, _ := requestcontext.Actor(ctx)
	return actor
}
