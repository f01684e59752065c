package service

import (
	"context"
	"fmt"
	"strings"

	"casework/internal/review/models"
	id "casework/pkg/domain"
	dErrors "casework/pkg/domain-errors"
	"casework/pkg/platform/audit"
	"casework/pkg/requestcontext"
)

// CreateReview opens a manual draft review for an existing client.
func (s *Service) CreateReview(ctx context.Context, actor id.Actor, clientRef id.ClientRef, reviewType models.ReviewType, comments string) (_ *models.Review, err error) {
	ctx, end := s.begin(ctx, opCreateReview, actorAttrs(actor)...)
	defer end(&err)

	if err := requireRole(actor, "create reviews", makerRoles...); err != nil {
		return nil, err
	}
	if _, err := s.clients.FindByRef(ctx, clientRef); err != nil {
		return nil, translateErr(err, "client not found", "failed to load client")
	}

	var review *models.Review
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)
		r, err := models.NewReview(id.NewReviewID(), clientRef, reviewType, actor.ID, false, now)
		if err != nil {
			return wrapReviewErr(err, "failed to create review")
		}
		r.AddComment(comments, now)
		if err := s.reviews.Create(txCtx, r); err != nil {
			return wrapReviewErr(err, "failed to create review")
		}
		if err := s.auditEmitter.emitReview(txCtx, actor, audit.ActionReviewCreated, r, "", ""); err != nil {
			return err
		}
		review = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementTransition(opCreateReview, string(review.Status))
	return review, nil
}

func (s *Service) GetReview(ctx context.Context, reviewID id.ReviewID) (*models.Review, error) {
	r, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, wrapReviewErr(err, "failed to load review")
	}
	return r, nil
}

// ListReviews returns reviews matching filter, newest first.
func (s *Service) ListReviews(ctx context.Context, filter models.ReviewFilter) ([]*models.Review, error) {
	if filter.CreatedFrom != nil && filter.CreatedTo != nil && !filter.CreatedFrom.Before(*filter.CreatedTo) {
		return nil, dErrors.New(dErrors.CodeValidation, "created_from must be before created_to")
	}
	reviews, err := s.reviews.List(ctx, filter.Normalized())
	if err != nil {
		return nil, wrapReviewErr(err, "failed to list reviews")
	}
	return reviews, nil
}

// Submit hands a draft to the checkers once it is ready. Readiness is evaluated
// with the review row locked so a concurrent edit cannot slip in between.
func (s *Service) Submit(ctx context.Context, actor id.Actor, reviewID id.ReviewID) (_ *models.Review, err error) {
	ctx, end := s.begin(ctx, opSubmit, append(actorAttrs(actor), reviewAttr(reviewID))...)
	defer end(&err)

	if err := requireRole(actor, "submit reviews", makerRoles...); err != nil {
		return nil, err
	}

	var review *models.Review
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.reviews.FindForUpdate(txCtx, reviewID)
		if err != nil {
			return wrapReviewErr(err, "failed to load review")
		}
		if err := current.CanSubmit(); err != nil {
			return err
		}
		report, err := s.readiness(txCtx, current)
		if err != nil {
			return err
		}
		if !report.Ready {
			return dErrors.New(dErrors.CodeNotEligible, "review is not ready for submission: "+strings.Join(report.Reasons, "; "))
		}

		now := requestcontext.Now(txCtx)
		r, err := s.reviews.Execute(txCtx, reviewID,
			func(r *models.Review) error { return r.CanSubmit() },
			func(r *models.Review) { r.ApplySubmit(actor.ID, now) },
		)
		if err != nil {
			return wrapReviewErr(err, "failed to submit review")
		}
		if err := s.auditEmitter.emitReview(txCtx, actor, audit.ActionReviewSubmitted, r, current.Status, ""); err != nil {
			return err
		}
		review = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementTransition(opSubmit, string(review.Status))
	return review, nil
}

// StartReview assigns the calling checker. A review already under review may be
// picked up by another checker.
func (s *Service) StartReview(ctx context.Context, actor id.Actor, reviewID id.ReviewID) (_ *models.Review, err error) {
	ctx, end := s.begin(ctx, opStartReview, append(actorAttrs(actor), reviewAttr(reviewID))...)
	defer end(&err)

	if err := requireRole(actor, "review submissions", checkerRoles...); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	return s.transition(ctx, actor, reviewID, opStartReview, audit.ActionReviewStarted, "",
		func(r *models.Review) error {
			if err := r.CanStartReview(); err != nil {
				return err
			}
			return checkFourEyes(r, actor, "review")
		},
		func(r *models.Review) { r.ApplyStartReview(actor.ID, now) },
	)
}

// Approve records a positive decision. Active exceptions are tolerated and noted
// in the audit trail unless approval blocking is enabled.
func (s *Service) Approve(ctx context.Context, actor id.Actor, reviewID id.ReviewID, comments string) (_ *models.Review, err error) {
	ctx, end := s.begin(ctx, opApprove, append(actorAttrs(actor), reviewAttr(reviewID))...)
	defer end(&err)

	if err := requireRole(actor, "approve reviews", checkerRoles...); err != nil {
		return nil, err
	}

	var (
		review *models.Review
		active int
	)
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.reviews.FindForUpdate(txCtx, reviewID)
		if err != nil {
			return wrapReviewErr(err, "failed to load review")
		}
		if err := current.CanApprove(); err != nil {
			return err
		}
		if err := checkFourEyes(current, actor, "approve"); err != nil {
			return err
		}
		active, err = s.reviews.CountActiveExceptions(txCtx, reviewID)
		if err != nil {
			return wrapReviewErr(err, "failed to count exceptions")
		}
		if active > 0 && s.blockApprovalOnOpenExceptions {
			return dErrors.Newf(dErrors.CodeNotEligible, "review has %d active exception(s)", active)
		}

		now := requestcontext.Now(txCtx)
		r, err := s.reviews.Execute(txCtx, reviewID,
			func(r *models.Review) error {
				if err := r.CanApprove(); err != nil {
					return err
				}
				return checkFourEyes(r, actor, "approve")
			},
			func(r *models.Review) { r.ApplyApprove(actor.ID, comments, now) },
		)
		if err != nil {
			return wrapReviewErr(err, "failed to approve review")
		}

		note := strings.TrimSpace(comments)
		if active > 0 {
			note = strings.TrimSpace(fmt.Sprintf("approved with %d active exception(s). %s", active, note))
		}
		if err := s.auditEmitter.emitReview(txCtx, actor, audit.ActionReviewApproved, r, current.Status, note); err != nil {
			return err
		}
		review = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	if active > 0 {
		s.logger.WarnContext(ctx, "review approved with active exceptions",
			"review_id", reviewID.String(),
			"active_exceptions", active,
		)
		s.metrics.IncrementApprovedWithActiveExceptions()
	}
	s.metrics.IncrementTransition(opApprove, string(review.Status))
	return review, nil
}

// Reject records a negative decision. The reason is mandatory.
func (s *Service) Reject(ctx context.Context, actor id.Actor, reviewID id.ReviewID, reason, comments string) (_ *models.Review, err error) {
	ctx, end := s.begin(ctx, opReject, append(actorAttrs(actor), reviewAttr(reviewID))...)
	defer end(&err)

	if err := requireRole(actor, "reject reviews", checkerRoles...); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	return s.transition(ctx, actor, reviewID, opReject, audit.ActionReviewRejected, strings.TrimSpace(reason),
		func(r *models.Review) error {
			if err := r.CanReject(reason); err != nil {
				return err
			}
			return checkFourEyes(r, actor, "reject")
		},
		func(r *models.Review) { r.ApplyReject(actor.ID, reason, comments, now) },
	)
}

// ResetToDraft reopens a rejected review for rework.
func (s *Service) ResetToDraft(ctx context.Context, actor id.Actor, reviewID id.ReviewID) (_ *models.Review, err error) {
	ctx, end := s.begin(ctx, opResetToDraft, append(actorAttrs(actor), reviewAttr(reviewID))...)
	defer end(&err)

	if err := requireRole(actor, "reset reviews", makerRoles...); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	return s.transition(ctx, actor, reviewID, opResetToDraft, audit.ActionReviewReset, "",
		func(r *models.Review) error { return r.CanResetToDraft() },
		func(r *models.Review) { r.ApplyResetToDraft(now) },
	)
}

// AddComment appends a timestamped comment in any status.
func (s *Service) AddComment(ctx context.Context, actor id.Actor, reviewID id.ReviewID, text string) (_ *models.Review, err error) {
	ctx, end := s.begin(ctx, opAddComment, append(actorAttrs(actor), reviewAttr(reviewID))...)
	defer end(&err)

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "comment text is required")
	}
	now := requestcontext.Now(ctx)
	return s.transition(ctx, actor, reviewID, opAddComment, audit.ActionReviewCommented, text,
		func(*models.Review) error { return nil },
		func(r *models.Review) { r.AddComment(text, now) },
	)
}

// DeleteReview removes a review and everything it owns.
func (s *Service) DeleteReview(ctx context.Context, actor id.Actor, reviewID id.ReviewID) (err error) {
	ctx, end := s.begin(ctx, opDeleteReview, append(actorAttrs(actor), reviewAttr(reviewID))...)
	defer end(&err)

	if err := requireRole(actor, "delete reviews", adminRoles...); err != nil {
		return err
	}
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.reviews.FindForUpdate(txCtx, reviewID)
		if err != nil {
			return wrapReviewErr(err, "failed to load review")
		}
		if err := s.reviews.Delete(txCtx, reviewID); err != nil {
			return wrapReviewErr(err, "failed to delete review")
		}
		return s.auditEmitter.emit(txCtx, audit.Event{
			EntityType: audit.EntityReview,
			EntityID:   reviewID.String(),
			Action:     audit.ActionReviewDeleted,
			FromStatus: string(current.Status),
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
		})
	})
}

// transition runs one guarded review mutation and its audit event in a unit of work.
func (s *Service) transition(
	ctx context.Context,
	actor id.Actor,
	reviewID id.ReviewID,
	op string,
	action audit.Action,
	comment string,
	validate func(*models.Review) error,
	mutate func(*models.Review),
) (*models.Review, error) {
	var review *models.Review
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var from models.ReviewStatus
		r, err := s.reviews.Execute(txCtx, reviewID,
			func(r *models.Review) error {
				from = r.Status
				return validate(r)
			},
			mutate,
		)
		if err != nil {
			return wrapReviewErr(err, "failed to update review")
		}
		if err := s.auditEmitter.emitReview(txCtx, actor, action, r, from, comment); err != nil {
			return err
		}
		review = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementTransition(op, string(review.Status))
	return review, nil
}
