// Package handler exposes the review workflow over HTTP. It only decodes,
// delegates to the service and encodes; every rule lives in the service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"casework/internal/review/models"
	"casework/internal/review/service"
	id "casework/pkg/domain"
	dErrors "casework/pkg/domain-errors"
	"casework/pkg/platform/httputil"
	"casework/pkg/requestcontext"
)

// Service is the review service as seen by the HTTP layer.
type Service interface {
	CreateReview(ctx context.Context, actor id.Actor, clientRef id.ClientRef, reviewType models.ReviewType, comments string) (*models.Review, error)
	GetReview(ctx context.Context, reviewID id.ReviewID) (*models.Review, error)
	ListReviews(ctx context.Context, filter models.ReviewFilter) ([]*models.Review, error)
	DeleteReview(ctx context.Context, actor id.Actor, reviewID id.ReviewID) error
	Submit(ctx context.Context, actor id.Actor, reviewID id.ReviewID) (*models.Review, error)
	StartReview(ctx context.Context, actor id.Actor, reviewID id.ReviewID) (*models.Review, error)
	Approve(ctx context.Context, actor id.Actor, reviewID id.ReviewID, comments string) (*models.Review, error)
	Reject(ctx context.Context, actor id.Actor, reviewID id.ReviewID, reason, comments string) (*models.Review, error)
	ResetToDraft(ctx context.Context, actor id.Actor, reviewID id.ReviewID) (*models.Review, error)
	AddComment(ctx context.Context, actor id.Actor, reviewID id.ReviewID, text string) (*models.Review, error)
	Readiness(ctx context.Context, reviewID id.ReviewID) (*service.ReadinessReport, error)

	GetQuestionnaire(ctx context.Context, reviewID id.ReviewID) (*models.KYCQuestionnaire, error)
	UpdateQuestionnaire(ctx context.Context, actor id.Actor, reviewID id.ReviewID, update models.QuestionnaireUpdate) (*models.KYCQuestionnaire, error)
	AddSourceOfFundsDoc(ctx context.Context, actor id.Actor, reviewID id.ReviewID, docID string) (*models.KYCQuestionnaire, error)
	RemoveSourceOfFundsDoc(ctx context.Context, actor id.Actor, reviewID id.ReviewID, docID string) (*models.KYCQuestionnaire, error)

	RegisterDocument(ctx context.Context, actor id.Actor, reviewID id.ReviewID, docType models.DocumentType, fileName string) (*models.Document, error)
	ListDocuments(ctx context.Context, reviewID id.ReviewID) ([]*models.Document, error)

	OpenException(ctx context.Context, actor id.Actor, reviewID id.ReviewID, req service.OpenExceptionRequest) (*models.Exception, error)
	GetException(ctx context.Context, exceptionID id.ExceptionID) (*models.Exception, error)
	ListExceptions(ctx context.Context, reviewID id.ReviewID, filter models.ExceptionFilter) ([]*models.Exception, error)
	ListOverdueExceptions(ctx context.Context) ([]*models.Exception, error)
	StartException(ctx context.Context, actor id.Actor, exceptionID id.ExceptionID) (*models.Exception, error)
	ResolveException(ctx context.Context, actor id.Actor, exceptionID id.ExceptionID, notes string) (*models.Exception, error)
	CloseException(ctx context.Context, actor id.Actor, exceptionID id.ExceptionID) (*models.Exception, error)
	EscalateException(ctx context.Context, actor id.Actor, exceptionID id.ExceptionID, reason string) (*models.Exception, error)
	AssignException(ctx context.Context, actor id.Actor, exceptionID id.ExceptionID, assignee id.UserID) (*models.Exception, error)
}

// Handler wires review endpoints to the review service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the review and exception endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/reviews", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Route("/{reviewID}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Delete("/", h.HandleDelete)
			r.Post("/submit", h.HandleSubmit)
			r.Post("/start-review", h.HandleStartReview)
			r.Post("/approve", h.HandleApprove)
			r.Post("/reject", h.HandleReject)
			r.Post("/reset", h.HandleReset)
			r.Post("/comments", h.HandleComment)
			r.Get("/readiness", h.HandleReadiness)
			r.Get("/questionnaire", h.HandleGetQuestionnaire)
			r.Patch("/questionnaire", h.HandleUpdateQuestionnaire)
			r.Post("/questionnaire/source-of-funds", h.HandleAddSourceOfFunds)
			r.Delete("/questionnaire/source-of-funds/{docID}", h.HandleRemoveSourceOfFunds)
			r.Get("/documents", h.HandleListDocuments)
			r.Post("/documents", h.HandleRegisterDocument)
			r.Get("/exceptions", h.HandleListExceptions)
			r.Post("/exceptions", h.HandleOpenException)
		})
	})
	r.Route("/exceptions", func(r chi.Router) {
		r.Get("/overdue", h.HandleListOverdue)
		r.Route("/{exceptionID}", func(r chi.Router) {
			r.Get("/", h.HandleGetException)
			r.Post("/start", h.HandleStartException)
			r.Post("/resolve", h.HandleResolveException)
			r.Post("/close", h.HandleCloseException)
			r.Post("/escalate", h.HandleEscalateException)
			r.Post("/assign", h.HandleAssignException)
		})
	})
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateReviewRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	review, err := h.service.CreateReview(ctx, actorFrom(ctx), req.clientRef, req.reviewType, req.Comments)
	if err != nil {
		h.fail(w, r, "create review", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, review)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseReviewFilter(r.URL.Query())
	if err != nil {
		h.fail(w, r, "list reviews", err)
		return
	}
	reviews, err := h.service.ListReviews(r.Context(), filter)
	if err != nil {
		h.fail(w, r, "list reviews", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse[*models.Review]{Items: reviews, Count: len(reviews)})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := h.reviewID(w, r)
	if !ok {
		return
	}
	review, err := h.service.GetReview(r.Context(), reviewID)
	if err != nil {
		h.fail(w, r, "get review", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, review)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := h.reviewID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteReview(r.Context(), actorFrom(r.Context()), reviewID); err != nil {
		h.fail(w, r, "delete review", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	h.reviewAction(w, r, "submit review", h.service.Submit)
}

func (h *Handler) HandleStartReview(w http.ResponseWriter, r *http.Request) {
	h.reviewAction(w, r, "start review", h.service.StartReview)
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.reviewAction(w, r, "reset review", h.service.ResetToDraft)
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := h.reviewID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ApproveRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	review, err := h.service.Approve(ctx, actorFrom(ctx), reviewID, req.Comments)
	if err != nil {
		h.fail(w, r, "approve review", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, review)
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := h.reviewID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[RejectRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	review, err := h.service.Reject(ctx, actorFrom(ctx), reviewID, req.Reason, req.Comments)
	if err != nil {
		h.fail(w, r, "reject review", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, review)
}

func (h *Handler) HandleComment(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := h.reviewID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CommentRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	review, err := h.service.AddComment(ctx, actorFrom(ctx), reviewID, req.Text)
	if err != nil {
		h.fail(w, r, "add comment", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, review)
}

func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := h.reviewID(w, r)
	if !ok {
		return
	}
	report, err := h.service.Readiness(r.Context(), reviewID)
	if err != nil {
		h.fail(w, r, "readiness", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) HandleGetQuestionnaire(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := h.reviewID(w, r)
	if !ok {
		return
	}
	q, err := h.service.GetQuestionnaire(r.Context(), reviewID)
	if err != nil {
		h.fail(w, r, "get questionnaire", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, q)
}

func (h *Handler) HandleUpdateQuestionnaire(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := h.reviewID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[QuestionnaireRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	q, err := h.service.UpdateQuestionnaire(ctx, actorFrom(ctx), reviewID, req.ToUpdate())
	if err != nil {
		h.fail(w, r, "update questionnaire", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, q)
}

func (h *Handler) HandleAddSourceOfFunds(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := h.reviewID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[SourceOfFundsDocRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	q, err := h.service.AddSourceOfFundsDoc(ctx, actorFrom(ctx), reviewID, req.DocID)
	if err != nil {
		h.fail(w, r, "add source of funds document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, q)
}

func (h *Handler) HandleRemoveSourceOfFunds(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := h.reviewID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	q, err := h.service.RemoveSourceOfFundsDoc(ctx, actorFrom(ctx), reviewID, chi.URLParam(r, "docID"))
	if err != nil {
		h.fail(w, r, "remove source of funds document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, q)
}

func (h *Handler) HandleListDocuments(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := h.reviewID(w, r)
	if !ok {
		return
	}
	docs, err := h.service.ListDocuments(r.Context(), reviewID)
	if err != nil {
		h.fail(w, r, "list documents", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse[*models.Document]{Items: docs, Count: len(docs)})
}

func (h *Handler) HandleRegisterDocument(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := h.reviewID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[RegisterDocumentRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	doc, err := h.service.RegisterDocument(ctx, actorFrom(ctx), reviewID, req.documentType, req.FileName)
	if err != nil {
		h.fail(w, r, "register document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, doc)
}

func (h *Handler) HandleListExceptions(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := h.reviewID(w, r)
	if !ok {
		return
	}
	filter, err := parseExceptionFilter(r.URL.Query())
	if err != nil {
		h.fail(w, r, "list exceptions", err)
		return
	}
	exceptions, err := h.service.ListExceptions(r.Context(), reviewID, filter)
	if err != nil {
		h.fail(w, r, "list exceptions", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse[*models.Exception]{Items: exceptions, Count: len(exceptions)})
}

func (h *Handler) HandleOpenException(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := h.reviewID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[OpenExceptionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	ex, err := h.service.OpenException(ctx, actorFrom(ctx), reviewID, req.parsed)
	if err != nil {
		h.fail(w, r, "open exception", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ex)
}

func (h *Handler) HandleListOverdue(w http.ResponseWriter, r *http.Request) {
	exceptions, err := h.service.ListOverdueExceptions(r.Context())
	if err != nil {
		h.fail(w, r, "list overdue exceptions", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse[*models.Exception]{Items: exceptions, Count: len(exceptions)})
}

func (h *Handler) HandleGetException(w http.ResponseWriter, r *http.Request) {
	exceptionID, ok := h.exceptionID(w, r)
	if !ok {
		return
	}
	ex, err := h.service.GetException(r.Context(), exceptionID)
	if err != nil {
		h.fail(w, r, "get exception", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ex)
}

func (h *Handler) HandleStartException(w http.ResponseWriter, r *http.Request) {
	h.exceptionAction(w, r, "start exception", h.service.StartException)
}

func (h *Handler) HandleCloseException(w http.ResponseWriter, r *http.Request) {
	h.exceptionAction(w, r, "close exception", h.service.CloseException)
}

func (h *Handler) HandleResolveException(w http.ResponseWriter, r *http.Request) {
	exceptionID, ok := h.exceptionID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ResolveExceptionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	ex, err := h.service.ResolveException(ctx, actorFrom(ctx), exceptionID, req.Notes)
	if err != nil {
		h.fail(w, r, "resolve exception", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ex)
}

func (h *Handler) HandleEscalateException(w http.ResponseWriter, r *http.Request) {
	exceptionID, ok := h.exceptionID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[EscalateExceptionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	ex, err := h.service.EscalateException(ctx, actorFrom(ctx), exceptionID, req.Reason)
	if err != nil {
		h.fail(w, r, "escalate exception", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ex)
}

func (h *Handler) HandleAssignException(w http.ResponseWriter, r *http.Request) {
	exceptionID, ok := h.exceptionID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[AssignExceptionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	ex, err := h.service.AssignException(ctx, actorFrom(ctx), exceptionID, id.UserID(req.AssigneeID))
	if err != nil {
		h.fail(w, r, "assign exception", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ex)
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func (h *Handler) reviewAction(w http.ResponseWriter, r *http.Request, op string,
	fn func(context.Context, id.Actor, id.ReviewID) (*models.Review, error),
) {
	reviewID, ok := h.reviewID(w, r)
	if !ok {
		return
	}
	review, err := fn(r.Context(), actorFrom(r.Context()), reviewID)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, review)
}

func (h *Handler) exceptionAction(w http.ResponseWriter, r *http.Request, op string,
	fn func(context.Context, id.Actor, id.ExceptionID) (*models.Exception, error),
) {
	exceptionID, ok := h.exceptionID(w, r)
	if !ok {
		return
	}
	ex, err := fn(r.Context(), actorFrom(r.Context()), exceptionID)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ex)
}

func (h *Handler) reviewID(w http.ResponseWriter, r *http.Request) (id.ReviewID, bool) {
	reviewID, err := id.ParseReviewID(chi.URLParam(r, "reviewID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ReviewID{}, false
	}
	return reviewID, true
}

func (h *Handler) exceptionID(w http.ResponseWriter, r *http.Request) (id.ExceptionID, bool) {
	exceptionID, err := id.ParseExceptionID(chi.URLParam(r, "exceptionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ExceptionID{}, false
	}
	return exceptionID, true
}

// fail logs the error at a level matching its class and writes the response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	attrs := []any{
		"operation", op,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "request failed", attrs...)
	} else {
		h.logger.WarnContext(ctx, "request rejected", attrs...)
	}
	httputil.WriteError(w, err)
}

// actorFrom returns the authenticated actor, or the zero actor which the service
// rejects as unauthorized.
func actorFrom(ctx context.Context) id.Actor {
	actor, _ := requestcontext.Actor(ctx)
	return actor
}
