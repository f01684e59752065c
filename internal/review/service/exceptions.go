package service

import (
	"context"
	"time"

	"casework/internal/review/models"
	id "casework/pkg/domain"
	dErrors "casework/pkg/domain-errors"
	"casework/pkg/platform/audit"
	"casework/pkg/requestcontext"
)

// OpenExceptionRequest carries the fields of a new exception.
type OpenExceptionRequest struct {
	Type        models.ExceptionType
	Title       string
	Description string
	Priority    models.ExceptionPriority
	DueDate     *time.Time
}

// OpenException raises an exception against a review that is not yet approved.
func (s *Service) OpenException(ctx context.Context, actor id.Actor, reviewID id.ReviewID, req OpenExceptionRequest) (_ *models.Exception, err error) {
	ctx, end := s.begin(ctx, opOpenException, append(actorAttrs(actor), reviewAttr(reviewID))...)
	defer end(&err)

	if err := requireRole(actor, "open exceptions", exceptionRoles...); err != nil {
		return nil, err
	}

	var opened *models.Exception
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := s.reviews.FindForUpdate(txCtx, reviewID)
		if err != nil {
			return wrapReviewErr(err, "failed to load review")
		}
		if !r.IsActive() {
			return dErrors.Newf(dErrors.CodeInvalidTransition, "cannot open exception on review in status %s", r.Status)
		}
		ex, err := models.NewException(id.NewExceptionID(), reviewID, req.Type, req.Title, req.Description,
			req.Priority, req.DueDate, actor.ID, requestcontext.Now(txCtx))
		if err != nil {
			return wrapExceptionErr(err, "failed to open exception")
		}
		if err := s.reviews.CreateException(txCtx, ex); err != nil {
			return wrapReviewErr(err, "failed to open exception")
		}
		if err := s.auditEmitter.emitException(txCtx, actor, audit.ActionExceptionOpened, ex, "", ex.Title); err != nil {
			return err
		}
		opened = ex
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementExceptionTransition("open", string(opened.Status))
	return opened, nil
}

func (s *Service) StartException(ctx context.Context, actor id.Actor, exceptionID id.ExceptionID) (*models.Exception, error) {
	now := requestcontext.Now(ctx)
	return s.exceptionTransition(ctx, actor, exceptionID, "start", audit.ActionExceptionStarted, "",
		(*models.Exception).CanStartWork,
		func(e *models.Exception) { e.ApplyStartWork(now) },
	)
}

// ResolveException records the resolution. Notes are mandatory.
func (s *Service) ResolveException(ctx context.Context, actor id.Actor, exceptionID id.ExceptionID, notes string) (*models.Exception, error) {
	now := requestcontext.Now(ctx)
	return s.exceptionTransition(ctx, actor, exceptionID, "resolve", audit.ActionExceptionResolved, notes,
		func(e *models.Exception) error { return e.CanResolve(notes) },
		func(e *models.Exception) { e.ApplyResolve(notes, actor.ID, now) },
	)
}

func (s *Service) CloseException(ctx context.Context, actor id.Actor, exceptionID id.ExceptionID) (*models.Exception, error) {
	now := requestcontext.Now(ctx)
	return s.exceptionTransition(ctx, actor, exceptionID, "close", audit.ActionExceptionClosed, "",
		(*models.Exception).CanClose,
		func(e *models.Exception) { e.ApplyClose(now) },
	)
}

// EscalateException is a manual transition; nothing escalates automatically.
func (s *Service) EscalateException(ctx context.Context, actor id.Actor, exceptionID id.ExceptionID, reason string) (*models.Exception, error) {
	now := requestcontext.Now(ctx)
	return s.exceptionTransition(ctx, actor, exceptionID, "escalate", audit.ActionExceptionEscalated, reason,
		(*models.Exception).CanEscalate,
		func(e *models.Exception) { e.ApplyEscalate(now) },
	)
}

func (s *Service) AssignException(ctx context.Context, actor id.Actor, exceptionID id.ExceptionID, assignee id.UserID) (*models.Exception, error) {
	if assignee.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "assignee is required")
	}
	now := requestcontext.Now(ctx)
	return s.exceptionTransition(ctx, actor, exceptionID, "assign", audit.ActionExceptionAssigned, "assigned to "+assignee.String(),
		(*models.Exception).CanAssign,
		func(e *models.Exception) { e.ApplyAssign(assignee, now) },
	)
}

func (s *Service) GetException(ctx context.Context, exceptionID id.ExceptionID) (*models.Exception, error) {
	ex, err := s.reviews.FindException(ctx, exceptionID)
	if err != nil {
		return nil, wrapExceptionErr(err, "failed to load exception")
	}
	return ex, nil
}

func (s *Service) ListExceptions(ctx context.Context, reviewID id.ReviewID, filter models.ExceptionFilter) ([]*models.Exception, error) {
	exceptions, err := s.reviews.ListExceptions(ctx, reviewID, filter)
	if err != nil {
		return nil, wrapReviewErr(err, "failed to list exceptions")
	}
	return exceptions, nil
}

// ListOverdueExceptions returns active exceptions past their due date, oldest
// due date first.
func (s *Service) ListOverdueExceptions(ctx context.Context) ([]*models.Exception, error) {
	exceptions, err := s.reviews.ListOverdueExceptions(ctx, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list overdue exceptions")
	}
	return exceptions, nil
}

func (s *Service) exceptionTransition(
	ctx context.Context,
	actor id.Actor,
	exceptionID id.ExceptionID,
	action string,
	auditAction audit.Action,
	comment string,
	validate func(*models.Exception) error,
	mutate func(*models.Exception),
) (_ *models.Exception, err error) {
	ctx, end := s.begin(ctx, opExceptionTransition, append(actorAttrs(actor), exceptionAttr(exceptionID))...)
	defer end(&err)

	if err := requireRole(actor, action+" exceptions", exceptionRoles...); err != nil {
		return nil, err
	}

	var updated *models.Exception
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var from models.ExceptionStatus
		ex, err := s.reviews.ExecuteException(txCtx, exceptionID,
			func(e *models.Exception) error {
				from = e.Status
				return validate(e)
			},
			mutate,
		)
		if err != nil {
			return wrapExceptionErr(err, "failed to update exception")
		}
		if err := s.auditEmitter.emitException(txCtx, actor, auditAction, ex, from, comment); err != nil {
			return err
		}
		updated = ex
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementExceptionTransition(action, string(updated.Status))
	return updated, nil
}
