package service

import (
	"context"

	"casework/internal/review/documents"
	"casework/internal/review/models"
	id "casework/pkg/domain"
)

// ReadinessReport explains whether a review may be submitted. Conditional
// violations are informational and never make a review unready.
type ReadinessReport struct {
	Ready                 bool             `json:"ready"`
	QuestionnaireRequired bool             `json:"questionnaire_required"`
	QuestionnairePresent  bool             `json:"questionnaire_present"`
	QuestionnaireComplete bool             `json:"questionnaire_complete"`
	MissingFields         []string         `json:"missing_fields"`
	ConditionalViolations []string         `json:"conditional_violations"`
	Documents             documents.Result `json:"documents"`
	DocumentsEnforced     bool             `json:"documents_enforced"`
	Reasons               []string         `json:"reasons"`
}

// Readiness evaluates the submission gate without changing anything.
func (s *Service) Readiness(ctx context.Context, reviewID id.ReviewID) (_ *ReadinessReport, err error) {
	ctx, end := s.begin(ctx, opReadiness, reviewAttr(reviewID))
	defer end(&err)

	r, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, wrapReviewErr(err, "failed to load review")
	}
	return s.readiness(ctx, r)
}

func (s *Service) readiness(ctx context.Context, r *models.Review) (*ReadinessReport, error) {
	report := &ReadinessReport{
		QuestionnaireRequired: r.ReviewType.RequiresQuestionnaire(),
		MissingFields:         []string{},
		ConditionalViolations: []string{},
		DocumentsEnforced:     s.requireDocuments,
		Reasons:               []string{},
	}

	q, err := s.reviews.FindQuestionnaire(ctx, r.ID)
	switch {
	case err == nil:
		report.QuestionnairePresent = true
		report.QuestionnaireComplete = q.IsComplete()
		if missing := q.MissingFields(); len(missing) > 0 {
			report.MissingFields = missing
		}
		if violations := q.ValidateConditionalFields(s.seniorPolicy); len(violations) > 0 {
			report.ConditionalViolations = violations
		}
	case isNotFound(err):
	default:
		return nil, wrapReviewErr(err, "failed to load questionnaire")
	}

	if report.QuestionnaireRequired && !report.QuestionnairePresent {
		report.Reasons = append(report.Reasons, "KYC questionnaire is required")
	}
	if report.QuestionnairePresent && !report.QuestionnaireComplete {
		report.Reasons = append(report.Reasons, "KYC questionnaire is incomplete")
	}

	client, err := s.clients.FindByRef(ctx, r.ClientRef)
	if err != nil {
		return nil, translateErr(err, "client not found", "failed to load client")
	}
	docs, err := s.reviews.ListDocuments(ctx, r.ID)
	if err != nil {
		return nil, wrapReviewErr(err, "failed to list documents")
	}
	report.Documents = s.documents.Check(client.RiskLevel, docs)
	if s.requireDocuments && !report.Documents.Satisfied {
		report.Reasons = append(report.Reasons, "required documents are missing")
	}

	report.Ready = len(report.Reasons) == 0
	return report, nil
}
