package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	id "casework/pkg/domain"
	dErrors "casework/pkg/domain-errors"
)

const (
	opCreateReview        = "create_review"
	opReadiness           = "readiness"
	opSubmit              = "submit"
	opStartReview         = "start_review"
	opApprove             = "approve"
	opReject              = "reject"
	opResetToDraft        = "reset_to_draft"
	opAddComment          = "add_comment"
	opDeleteReview        = "delete_review"
	opUpdateQuestionnaire = "update_questionnaire"
	opRegisterDocument    = "register_document"
	opOpenException       = "open_exception"
	opExceptionTransition = "exception_transition"
)

// begin starts a span and a timer for one operation. The returned func records
// the failure code, if any, and must be deferred with the named error result.
func (s *Service) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "review."+op, trace.WithAttributes(attrs...))
	return ctx, func(errp *error) {
		if err := *errp; err != nil {
			code := dErrors.CodeOf(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, string(code))
			s.metrics.IncrementFailure(op, string(code))
		}
		s.metrics.ObserveOperation(op, start)
		span.End()
	}
}

func reviewAttr(reviewID id.ReviewID) attribute.KeyValue {
	return attribute.String("review.id", reviewID.String())
}

func exceptionAttr(exceptionID id.ExceptionID) attribute.KeyValue {
	return attribute.String("exception.id", exceptionID.String())
}

func actorAttrs(actor id.Actor) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64("actor.id", int64(actor.ID)),
		attribute.String("actor.role", string(actor.Role)),
	}
}
