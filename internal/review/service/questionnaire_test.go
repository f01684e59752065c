package service

import (
	"casework/internal/review/models"
	dErrors "casework/pkg/domain-errors"
	"casework/pkg/platform/audit"
)

func (s *ServiceSuite) TestQuestionnaireEditing() {
	s.seedClient("CL-1", models.RiskLow)
	r := s.createReview("CL-1", models.ReviewTypeKYC)

	s.Run("get before first write is not found", func() {
		_, err := s.service.GetQuestionnaire(s.ctx, r.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("partial updates accumulate", func() {
		purpose := "trade finance"
		_, err := s.service.UpdateQuestionnaire(s.ctx, maker, r.ID, models.QuestionnaireUpdate{PurposeOfAccount: &purpose})
		s.Require().NoError(err)
		yes := "YES"
		q, err := s.service.UpdateQuestionnaire(s.ctx, maker, r.ID, models.QuestionnaireUpdate{KYCDocumentsComplete: &yes})
		s.Require().NoError(err)
		s.Equal("trade finance", q.PurposeOfAccount)
		s.Equal(models.Yes, q.KYCDocumentsComplete)
	})

	s.Run("invalid answers leave the questionnaire unchanged", func() {
		purpose := "changed"
		maybe := "maybe"
		_, err := s.service.UpdateQuestionnaire(s.ctx, maker, r.ID, models.QuestionnaireUpdate{
			PurposeOfAccount:  &purpose,
			StaticDataCorrect: &maybe,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		q, err := s.service.GetQuestionnaire(s.ctx, r.ID)
		s.Require().NoError(err)
		s.Equal("trade finance", q.PurposeOfAccount)
	})

	s.Run("source of funds documents are a set", func() {
		_, err := s.service.AddSourceOfFundsDoc(s.ctx, maker, r.ID, "DOC-9")
		s.Require().NoError(err)
		q, err := s.service.AddSourceOfFundsDoc(s.ctx, maker, r.ID, "DOC-9")
		s.Require().NoError(err)
		s.Equal([]string{"DOC-9"}, q.SourceOfFundsDocs)

		q, err = s.service.RemoveSourceOfFundsDoc(s.ctx, maker, r.ID, "DOC-unknown")
		s.Require().NoError(err)
		s.Equal([]string{"DOC-9"}, q.SourceOfFundsDocs)

		q, err = s.service.RemoveSourceOfFundsDoc(s.ctx, maker, r.ID, "DOC-9")
		s.Require().NoError(err)
		s.Empty(q.SourceOfFundsDocs)
	})

	s.Run("each edit is audited", func() {
		actions := s.auditActions(audit.EntityReview, r.ID.String())
		s.Contains(actions, audit.ActionQuestionnaireUpdated)
	})
}

func (s *ServiceSuite) TestEditGate() {
	r := s.submittedReview("CL-1")
	purpose := "late change"

	_, err := s.service.UpdateQuestionnaire(s.ctx, maker, r.ID, models.QuestionnaireUpdate{PurposeOfAccount: &purpose})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	s.Contains(dErrors.MessageOf(err), "cannot edit review in status submitted")

	_, err = s.service.AddSourceOfFundsDoc(s.ctx, maker, r.ID, "DOC-1")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	_, err = s.service.RegisterDocument(s.ctx, maker, r.ID, models.DocumentBankStatement, "statement.pdf")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	docs, err := s.service.ListDocuments(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Len(docs, 1)
}

func (s *ServiceSuite) TestRegisterDocumentValidation() {
	s.seedClient("CL-1", models.RiskLow)
	r := s.createReview("CL-1", models.ReviewTypeManual)

	_, err := s.service.RegisterDocument(s.ctx, maker, r.ID, models.DocumentIdentity, "  ")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.RegisterDocument(s.ctx, checker, r.ID, models.DocumentIdentity, "passport.pdf")
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	doc, err := s.service.RegisterDocument(s.ctx, maker, r.ID, models.DocumentIdentity, "passport.pdf")
	s.Require().NoError(err)
	s.Equal(maker.ID, doc.UploadedBy)
	s.Equal(s.now, doc.UploadedAt)
}
