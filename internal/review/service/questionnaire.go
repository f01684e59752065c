package service

import (
	"context"
	"time"

	"casework/internal/review/models"
	id "casework/pkg/domain"
	"casework/pkg/platform/audit"
	"casework/pkg/requestcontext"
)

func (s *Service) GetQuestionnaire(ctx context.Context, reviewID id.ReviewID) (*models.KYCQuestionnaire, error) {
	if _, err := s.reviews.FindByID(ctx, reviewID); err != nil {
		return nil, wrapReviewErr(err, "failed to load review")
	}
	q, err := s.reviews.FindQuestionnaire(ctx, reviewID)
	if err != nil {
		return nil, translateErr(err, "questionnaire not found", "failed to load questionnaire")
	}
	return q, nil
}

// UpdateQuestionnaire applies a partial update, creating the questionnaire on
// first write. Only draft reviews accept changes.
func (s *Service) UpdateQuestionnaire(ctx context.Context, actor id.Actor, reviewID id.ReviewID, update models.QuestionnaireUpdate) (*models.KYCQuestionnaire, error) {
	return s.editQuestionnaire(ctx, actor, reviewID, "", func(q *models.KYCQuestionnaire, now time.Time) error {
		return q.Apply(update, now)
	})
}

// AddSourceOfFundsDoc links a document id to the questionnaire. Adding an id
// twice keeps one copy.
func (s *Service) AddSourceOfFundsDoc(ctx context.Context, actor id.Actor, reviewID id.ReviewID, docID string) (*models.KYCQuestionnaire, error) {
	return s.editQuestionnaire(ctx, actor, reviewID, "source of funds document added", func(q *models.KYCQuestionnaire, now time.Time) error {
		return q.AddSourceOfFundsDoc(docID, now)
	})
}

func (s *Service) RemoveSourceOfFundsDoc(ctx context.Context, actor id.Actor, reviewID id.ReviewID, docID string) (*models.KYCQuestionnaire, error) {
	return s.editQuestionnaire(ctx, actor, reviewID, "source of funds document removed", func(q *models.KYCQuestionnaire, now time.Time) error {
		q.RemoveSourceOfFundsDoc(docID, now)
		return nil
	})
}

func (s *Service) editQuestionnaire(
	ctx context.Context,
	actor id.Actor,
	reviewID id.ReviewID,
	comment string,
	edit func(q *models.KYCQuestionnaire, now time.Time) error,
) (_ *models.KYCQuestionnaire, err error) {
	ctx, end := s.begin(ctx, opUpdateQuestionnaire, append(actorAttrs(actor), reviewAttr(reviewID))...)
	defer end(&err)

	if err := requireRole(actor, "edit questionnaires", makerRoles...); err != nil {
		return nil, err
	}

	var saved *models.KYCQuestionnaire
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := s.reviews.FindForUpdate(txCtx, reviewID)
		if err != nil {
			return wrapReviewErr(err, "failed to load review")
		}
		if err := requireEditable(r); err != nil {
			return err
		}

		now := requestcontext.Now(txCtx)
		q, err := s.reviews.FindQuestionnaire(txCtx, reviewID)
		switch {
		case err == nil:
		case isNotFound(err):
			q = models.NewQuestionnaire(reviewID, now)
		default:
			return wrapReviewErr(err, "failed to load questionnaire")
		}

		if err := edit(q, now); err != nil {
			return translateErr(err, "questionnaire not found", "failed to update questionnaire")
		}
		if err := s.reviews.SaveQuestionnaire(txCtx, q); err != nil {
			return wrapReviewErr(err, "failed to save questionnaire")
		}
		if err := s.auditEmitter.emitReview(txCtx, actor, audit.ActionQuestionnaireUpdated, r, r.Status, comment); err != nil {
			return err
		}
		saved = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}
