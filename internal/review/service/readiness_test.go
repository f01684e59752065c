package service

import (
	"casework/internal/review/documents"
	"casework/internal/review/models"
	dErrors "casework/pkg/domain-errors"
)

func (s *ServiceSuite) TestReadiness() {
	s.Run("kyc review without a questionnaire is not ready", func() {
		s.seedClient("CL-kyc", models.RiskLow)
		r := s.createReview("CL-kyc", models.ReviewTypeKYC)
		s.registerDocs(r.ID, models.DocumentIdentity)

		report, err := s.service.Readiness(s.ctx, r.ID)
		s.Require().NoError(err)
		s.False(report.Ready)
		s.True(report.QuestionnaireRequired)
		s.False(report.QuestionnairePresent)
		s.Contains(report.Reasons, "KYC questionnaire is required")

		_, err = s.service.Submit(s.ctx, maker, r.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotEligible))
	})

	s.Run("complete questionnaire and required documents make it ready", func() {
		s.seedClient("CL-high", models.RiskHigh)
		r := s.createReview("CL-high", models.ReviewTypeKYC)
		s.completeQuestionnaire(r.ID)
		s.registerDocs(r.ID, models.DocumentIdentity, models.DocumentProofOfAddress)

		report, err := s.service.Readiness(s.ctx, r.ID)
		s.Require().NoError(err)
		s.False(report.Ready)
		s.Equal([]models.DocumentType{models.DocumentSourceOfFunds}, report.Documents.MissingRequired)

		s.registerDocs(r.ID, models.DocumentSourceOfFunds)
		report, err = s.service.Readiness(s.ctx, r.ID)
		s.Require().NoError(err)
		s.True(report.Ready)
		s.True(report.QuestionnaireComplete)
		s.Empty(report.MissingFields)
		s.ElementsMatch([]models.DocumentType{models.DocumentBankStatement, models.DocumentFinancialStatement},
			report.Documents.MissingRecommended)

		submitted, err := s.service.Submit(s.ctx, maker, r.ID)
		s.Require().NoError(err)
		s.Equal(models.ReviewStatusSubmitted, submitted.Status)
	})

	s.Run("an attached incomplete questionnaire blocks a manual review", func() {
		s.seedClient("CL-partial", models.RiskLow)
		r := s.createReview("CL-partial", models.ReviewTypeManual)
		s.registerDocs(r.ID, models.DocumentIdentity)
		purpose := "savings"
		_, err := s.service.UpdateQuestionnaire(s.ctx, maker, r.ID, models.QuestionnaireUpdate{PurposeOfAccount: &purpose})
		s.Require().NoError(err)

		report, err := s.service.Readiness(s.ctx, r.ID)
		s.Require().NoError(err)
		s.False(report.Ready)
		s.True(report.QuestionnairePresent)
		s.Contains(report.MissingFields, models.FieldKYCDocumentsComplete)
		s.Contains(report.MissingFields, models.FieldSourceOfFundsDocs)
	})

	s.Run("conditional violations are reported without blocking", func() {
		s.seedClient("CL-remedial", models.RiskLow)
		r := s.createReview("CL-remedial", models.ReviewTypeKYC)
		s.registerDocs(r.ID, models.DocumentIdentity)
		update := completeUpdate()
		no := "no"
		update.StaticDataCorrect = &no
		_, err := s.service.UpdateQuestionnaire(s.ctx, maker, r.ID, update)
		s.Require().NoError(err)

		report, err := s.service.Readiness(s.ctx, r.ID)
		s.Require().NoError(err)
		s.True(report.Ready)
		s.Len(report.ConditionalViolations, 1)
	})

	s.Run("document enforcement can be disabled", func() {
		svc := s.newService(WithRequireDocuments(false))
		s.seedClient("CL-nodocs", models.RiskHigh)
		r := s.createReview("CL-nodocs", models.ReviewTypeManual)

		report, err := svc.Readiness(s.ctx, r.ID)
		s.Require().NoError(err)
		s.True(report.Ready)
		s.False(report.DocumentsEnforced)
		s.False(report.Documents.Satisfied)
	})

	s.Run("injected policies shape the report", func() {
		checker := documents.NewChecker(map[models.RiskLevel]documents.Requirement{
			models.RiskLow: {Required: []models.DocumentType{models.DocumentIdentity, models.DocumentBankStatement}},
		})
		svc := s.newService(WithSeniorApprovalPolicy(alwaysSenior{}), WithDocumentChecker(checker))
		s.seedClient("CL-senior", models.RiskLow)
		r := s.createReview("CL-senior", models.ReviewTypeKYC)
		s.completeQuestionnaire(r.ID)
		s.registerDocs(r.ID, models.DocumentIdentity)

		report, err := svc.Readiness(s.ctx, r.ID)
		s.Require().NoError(err)
		s.False(report.Ready)
		s.Equal([]models.DocumentType{models.DocumentBankStatement}, report.Documents.MissingRequired)
		s.Contains(report.ConditionalViolations, "senior management approval is required")
	})
}

// The KYC review from an auto-review plan stays unsubmittable until a
// questionnaire with the missing details explained is attached.
func (s *ServiceSuite) TestKYCSubmissionScenario() {
	s.seedClient("CL-C", models.RiskLow)
	r := s.createReview("CL-C", models.ReviewTypeKYC)
	s.registerDocs(r.ID, models.DocumentIdentity)

	_, err := s.service.Submit(s.ctx, maker, r.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotEligible))

	update := completeUpdate()
	no := "no"
	update.KYCDocumentsComplete = &no
	_, err = s.service.UpdateQuestionnaire(s.ctx, maker, r.ID, update)
	s.Require().NoError(err)

	_, err = s.service.Submit(s.ctx, maker, r.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotEligible))

	details := "passport expired"
	remedial := "request new passport"
	_, err = s.service.UpdateQuestionnaire(s.ctx, maker, r.ID, models.QuestionnaireUpdate{
		MissingKYCDetails: &details,
		RemedialActions:   &remedial,
	})
	s.Require().NoError(err)

	submitted, err := s.service.Submit(s.ctx, maker, r.ID)
	s.Require().NoError(err)
	s.Equal(models.ReviewStatusSubmitted, submitted.Status)
}

type alwaysSenior struct{}

func (alwaysSenior) RequiresSeniorApproval(*models.KYCQuestionnaire) bool { return true }
