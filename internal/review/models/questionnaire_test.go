package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"casework/internal/review/models"
	id "casework/pkg/domain"
	dErrors "casework/pkg/domain-errors"
)

type QuestionnaireSuite struct {
	suite.Suite
	now time.Time
}

func TestQuestionnaireSuite(t *testing.T) {
	suite.Run(t, new(QuestionnaireSuite))
}

func (s *QuestionnaireSuite) SetupTest() {
	s.now = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
}

func (s *QuestionnaireSuite) complete() *models.KYCQuestionnaire {
	q := models.NewQuestionnaire(id.NewReviewID(), s.now)
	q.PurposeOfAccount = "Payroll"
	q.KYCDocumentsComplete = models.Yes
	q.AccountPurposeAligned = models.Yes
	q.AdverseMediaCompleted = models.Yes
	q.PEPApprovalObtained = models.AnswerNotApplicable
	q.StaticDataCorrect = models.Yes
	q.KYCDocumentsValid = models.Yes
	q.RegulatedBusinessLicense = models.AnswerNo
	q.SourceOfFundsDocs = []string{"doc-1"}
	return q
}

func (s *QuestionnaireSuite) TestIsComplete() {
	s.Run("fully answered is complete", func() {
		q := s.complete()
		s.True(q.IsComplete())
		s.Empty(q.MissingFields())
	})

	s.Run("empty questionnaire lists every base field", func() {
		q := models.NewQuestionnaire(id.NewReviewID(), s.now)
		s.False(q.IsComplete())
		s.Equal([]string{
			models.FieldPurposeOfAccount,
			models.FieldKYCDocumentsComplete,
			models.FieldAccountPurposeAligned,
			models.FieldAdverseMediaCompleted,
			models.FieldPEPApprovalObtained,
			models.FieldStaticDataCorrect,
			models.FieldKYCDocumentsValid,
			models.FieldRegulatedBusinessLicense,
			models.FieldSourceOfFundsDocs,
		}, q.MissingFields())
	})

	s.Run("each base field gates completeness", func() {
		clears := map[string]func(q *models.KYCQuestionnaire){
			"purpose":       func(q *models.KYCQuestionnaire) { q.PurposeOfAccount = "  " },
			"docs complete": func(q *models.KYCQuestionnaire) { q.KYCDocumentsComplete = "" },
			"aligned":       func(q *models.KYCQuestionnaire) { q.AccountPurposeAligned = "" },
			"adverse media": func(q *models.KYCQuestionnaire) { q.AdverseMediaCompleted = "" },
			"pep":           func(q *models.KYCQuestionnaire) { q.PEPApprovalObtained = "" },
			"static data":   func(q *models.KYCQuestionnaire) { q.StaticDataCorrect = "" },
			"docs valid":    func(q *models.KYCQuestionnaire) { q.KYCDocumentsValid = "" },
			"license":       func(q *models.KYCQuestionnaire) { q.RegulatedBusinessLicense = "" },
			"funds docs":    func(q *models.KYCQuestionnaire) { q.SourceOfFundsDocs = nil },
		}
		for name, clear := range clears {
			q := s.complete()
			clear(q)
			s.False(q.IsComplete(), name)
		}
	})

	s.Run("senior approval and remedial actions are outside the base gate", func() {
		q := s.complete()
		q.SeniorMgmtApproval = ""
		q.AccountPurposeAligned = models.No
		q.RemedialActions = ""
		s.True(q.IsComplete())
	})
}

func (s *QuestionnaireSuite) TestConditionalMissingDetails() {
	q := s.complete()
	q.KYCDocumentsComplete = models.No
	q.MissingKYCDetails = ""
	s.True(q.RequiresMissingKYCDetails())
	s.False(q.IsComplete())
	s.Contains(q.MissingFields(), models.FieldMissingKYCDetails)

	q.MissingKYCDetails = "passport expired"
	s.True(q.IsComplete())
}

func (s *QuestionnaireSuite) TestRequiresRemedialActions() {
	for name, set := range map[string]func(q *models.KYCQuestionnaire){
		"docs complete": func(q *models.KYCQuestionnaire) { q.KYCDocumentsComplete = models.No },
		"aligned":       func(q *models.KYCQuestionnaire) { q.AccountPurposeAligned = models.No },
		"static data":   func(q *models.KYCQuestionnaire) { q.StaticDataCorrect = models.No },
		"docs valid":    func(q *models.KYCQuestionnaire) { q.KYCDocumentsValid = models.No },
	} {
		q := s.complete()
		set(q)
		s.True(q.RequiresRemedialActions(), name)
	}

	q := s.complete()
	q.AdverseMediaCompleted = models.No
	s.False(q.RequiresRemedialActions(), "adverse media is not a remedial trigger")
}

type alwaysSenior struct{}

func (alwaysSenior) RequiresSeniorApproval(*models.KYCQuestionnaire) bool { return true }

func (s *QuestionnaireSuite) TestValidateConditionalFields() {
	s.Run("complete answers have no violations", func() {
		s.Empty(s.complete().ValidateConditionalFields(nil))
	})

	s.Run("reports missing details and remedial actions", func() {
		q := s.complete()
		q.KYCDocumentsComplete = models.No
		violations := q.ValidateConditionalFields(models.NoSeniorApproval{})
		s.Len(violations, 2)
		s.Contains(violations[0], "missing KYC details")
		s.Contains(violations[1], "remedial actions")
	})

	s.Run("senior approval follows the policy", func() {
		q := s.complete()
		s.Empty(q.ValidateConditionalFields(models.NoSeniorApproval{}))
		s.Len(q.ValidateConditionalFields(alwaysSenior{}), 1)

		q.SeniorMgmtApproval = models.Yes
		s.Empty(q.ValidateConditionalFields(alwaysSenior{}))
	})
}

func (s *QuestionnaireSuite) TestSourceOfFundsDocs() {
	q := models.NewQuestionnaire(id.NewReviewID(), s.now)

	s.Require().NoError(q.AddSourceOfFundsDoc("doc-1", s.now))
	s.Require().NoError(q.AddSourceOfFundsDoc("doc-1", s.now))
	s.Require().NoError(q.AddSourceOfFundsDoc("doc-2", s.now))
	s.Equal([]string{"doc-1", "doc-2"}, q.SourceOfFundsDocs)

	q.RemoveSourceOfFundsDoc("absent", s.now)
	s.Len(q.SourceOfFundsDocs, 2)

	q.RemoveSourceOfFundsDoc("doc-1", s.now)
	s.Equal([]string{"doc-2"}, q.SourceOfFundsDocs)

	err := q.AddSourceOfFundsDoc("  ", s.now)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *QuestionnaireSuite) TestApply() {
	str := func(v string) *string { return &v }

	s.Run("partial update changes only supplied fields", func() {
		q := s.complete()
		err := q.Apply(models.QuestionnaireUpdate{
			KYCDocumentsComplete: str("NO"),
			MissingKYCDetails:    str(" passport expired "),
		}, s.now.Add(time.Hour))
		s.Require().NoError(err)
		s.Equal(models.No, q.KYCDocumentsComplete)
		s.Equal("passport expired", q.MissingKYCDetails)
		s.Equal("Payroll", q.PurposeOfAccount)
		s.Equal(s.now.Add(time.Hour), q.UpdatedAt)
	})

	s.Run("answer outside the allowed set fails without changes", func() {
		q := s.complete()
		before := *q
		err := q.Apply(models.QuestionnaireUpdate{
			PurposeOfAccount:    str("Savings"),
			PEPApprovalObtained: str("maybe"),
		}, s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(before.PurposeOfAccount, q.PurposeOfAccount)
		s.Equal(before.PEPApprovalObtained, q.PEPApprovalObtained)
	})

	s.Run("yes/no fields reject not_applicable", func() {
		q := s.complete()
		err := q.Apply(models.QuestionnaireUpdate{StaticDataCorrect: str("not_applicable")}, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("source of funds list is replaced and deduplicated", func() {
		q := s.complete()
		s.Require().NoError(q.Apply(models.QuestionnaireUpdate{
			SourceOfFundsDocs: []string{"a", "b", "a"},
		}, s.now))
		s.Equal([]string{"a", "b"}, q.SourceOfFundsDocs)
	})
}
