package service

import (
	"context"
	"log/slog"

	"casework/internal/review/models"
	id "casework/pkg/domain"
	dErrors "casework/pkg/domain-errors"
	"casework/pkg/platform/audit"
)

// auditEmitter turns workflow changes into audit events. Emission runs inside the
// caller's unit of work, so a failed emit aborts the transition it describes.
type auditEmitter struct {
	logger    *slog.Logger
	publisher AuditPublisher
}

func newAuditEmitter(logger *slog.Logger, publisher AuditPublisher) *auditEmitter {
	return &auditEmitter{logger: logger, publisher: publisher}
}

func (e *auditEmitter) emit(ctx context.Context, event audit.Event) error {
	if e.publisher == nil {
		return nil
	}
	if err := e.publisher.Emit(ctx, event); err != nil {
		e.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", string(event.Action),
			"entity_id", event.EntityID,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

func (e *auditEmitter) emitReview(ctx context.Context, actor id.Actor, action audit.Action, r *models.Review, from models.ReviewStatus, comment string) error {
	return e.emit(ctx, audit.Event{
		EntityType: audit.EntityReview,
		EntityID:   r.ID.String(),
		Action:     action,
		FromStatus: string(from),
		ToStatus:   string(r.Status),
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Comment:    comment,
	})
}

func (e *auditEmitter) emitException(ctx context.Context, actor id.Actor, action audit.Action, ex *models.Exception, from models.ExceptionStatus, comment string) error {
	return e.emit(ctx, audit.Event{
		EntityType: audit.EntityException,
		EntityID:   ex.ID.String(),
		Action:     action,
		FromStatus: string(from),
		ToStatus:   string(ex.Status),
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Comment:    comment,
	})
}
