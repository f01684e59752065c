package service

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"casework/internal/review/models"
	id "casework/pkg/domain"
	dErrors "casework/pkg/domain-errors"
	"casework/pkg/platform/audit"
)

func (s *ServiceSuite) TestCreateReview() {
	s.seedClient("CL-1", models.RiskLow)

	s.Run("creates a manual draft", func() {
		r, err := s.service.CreateReview(s.ctx, maker, "CL-1", models.ReviewTypeKYC, "annual cycle")
		s.Require().NoError(err)
		s.Equal(models.ReviewStatusDraft, r.Status)
		s.False(r.AutoCreated)
		s.Equal(maker.ID, r.CreatedBy)
		s.Contains(r.Comments, "annual cycle")
		s.Equal([]audit.Action{audit.ActionReviewCreated}, s.auditActions(audit.EntityReview, r.ID.String()))
	})

	s.Run("unknown client is not found", func() {
		_, err := s.service.CreateReview(s.ctx, maker, "CL-missing", models.ReviewTypeKYC, "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("checkers cannot create reviews", func() {
		_, err := s.service.CreateReview(s.ctx, checker, "CL-1", models.ReviewTypeKYC, "")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("missing actor is unauthorized", func() {
		_, err := s.service.CreateReview(s.ctx, id.Actor{}, "CL-1", models.ReviewTypeKYC, "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("invalid type is a validation error", func() {
		_, err := s.service.CreateReview(s.ctx, maker, "CL-1", models.ReviewType("quarterly"), "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestHappyPath() {
	r := s.readyLowRiskReview("CL-1")

	submitted, err := s.service.Submit(s.ctx, maker, r.ID)
	s.Require().NoError(err)
	s.Equal(models.ReviewStatusSubmitted, submitted.Status)
	s.Require().NotNil(submitted.SubmittedAt)
	s.Equal(s.now, *submitted.SubmittedAt)

	started, err := s.service.StartReview(s.ctx, checker, r.ID)
	s.Require().NoError(err)
	s.Equal(models.ReviewStatusUnderReview, started.Status)
	s.Equal(checker.ID, *started.ReviewerID)

	approved, err := s.service.Approve(s.ctx, checker, r.ID, "all good")
	s.Require().NoError(err)
	s.Equal(models.ReviewStatusApproved, approved.Status)
	s.Equal(checker.ID, *approved.ReviewedBy)
	s.Equal("all good", approved.Comments)

	s.Equal([]audit.Action{
		audit.ActionReviewCreated,
		audit.ActionDocumentRegistered,
		audit.ActionReviewSubmitted,
		audit.ActionReviewStarted,
		audit.ActionReviewApproved,
	}, s.auditActions(audit.EntityReview, r.ID.String()))

	events, err := s.auditStore.ListByEntity(s.ctx, audit.EntityReview, r.ID.String())
	s.Require().NoError(err)
	last := events[len(events)-1]
	s.Equal("under_review", last.FromStatus)
	s.Equal("approved", last.ToStatus)
	s.Equal(checker.ID, last.ActorID)
	s.Equal("req-test", last.RequestID)
	s.Equal(s.now, last.Timestamp)

	s.InDelta(1, testutil.ToFloat64(s.metrics.Transitions.WithLabelValues(opApprove, "approved")), 0)
}

func (s *ServiceSuite) TestApprovedIsTerminal() {
	r := s.submittedReview("CL-1")
	_, err := s.service.Approve(s.ctx, checker, r.ID, "")
	s.Require().NoError(err)

	_, err = s.service.Submit(s.ctx, maker, r.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	_, err = s.service.StartReview(s.ctx, checker, r.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	_, err = s.service.Approve(s.ctx, checker, r.ID, "")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	_, err = s.service.Reject(s.ctx, checker, r.ID, "late", "")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	_, err = s.service.ResetToDraft(s.ctx, maker, r.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

	found, err := s.service.GetReview(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(models.ReviewStatusApproved, found.Status)
	s.InDelta(1, testutil.ToFloat64(s.metrics.Failures.WithLabelValues(opReject, string(dErrors.CodeInvalidTransition))), 0)
}

func (s *ServiceSuite) TestReject() {
	s.Run("requires a reason", func() {
		r := s.submittedReview("CL-blank")
		for _, reason := range []string{"", "   "} {
			_, err := s.service.Reject(s.ctx, checker, r.ID, reason, "")
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), "reason %q", reason)
		}
		found, err := s.service.GetReview(s.ctx, r.ID)
		s.Require().NoError(err)
		s.Equal(models.ReviewStatusSubmitted, found.Status)
	})

	s.Run("stores the reason and resets back to draft", func() {
		r := s.submittedReview("CL-reject")
		rejected, err := s.service.Reject(s.ctx, checker, r.ID, "bad data", "see notes")
		s.Require().NoError(err)
		s.Equal(models.ReviewStatusRejected, rejected.Status)
		s.Equal("bad data", *rejected.RejectionReason)
		s.Contains(rejected.Comments, "see notes")

		reset, err := s.service.ResetToDraft(s.ctx, maker, r.ID)
		s.Require().NoError(err)
		s.Equal(models.ReviewStatusDraft, reset.Status)
		s.Nil(reset.RejectionReason)
		s.Nil(reset.ReviewedBy)
		s.Nil(reset.ReviewedAt)
		s.Nil(reset.ReviewerID)
		s.Equal(rejected.Comments, reset.Comments)

		resubmitted, err := s.service.Submit(s.ctx, maker, r.ID)
		s.Require().NoError(err)
		s.Equal(models.ReviewStatusSubmitted, resubmitted.Status)
	})
}

func (s *ServiceSuite) TestFourEyes() {
	r := s.readyLowRiskReview("CL-1")
	_, err := s.service.Submit(s.ctx, admin, r.ID)
	s.Require().NoError(err)

	_, err = s.service.StartReview(s.ctx, admin, r.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	_, err = s.service.Approve(s.ctx, admin, r.ID, "")
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	_, err = s.service.Reject(s.ctx, admin, r.ID, "nope", "")
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	otherAdmin := id.Actor{ID: 31, Role: id.RoleAdmin}
	approved, err := s.service.Approve(s.ctx, otherAdmin, r.ID, "")
	s.Require().NoError(err)
	s.Equal(models.ReviewStatusApproved, approved.Status)
}

func (s *ServiceSuite) TestRoles() {
	r := s.submittedReview("CL-1")

	_, err := s.service.Approve(s.ctx, maker2, r.ID, "")
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	_, err = s.service.StartReview(s.ctx, maker2, r.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	_, err = s.service.Submit(s.ctx, checker, r.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	err = s.service.DeleteReview(s.ctx, maker, r.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestStartReviewReassigns() {
	r := s.submittedReview("CL-1")
	second := id.Actor{ID: 21, Role: id.RoleChecker}

	_, err := s.service.StartReview(s.ctx, checker, r.ID)
	s.Require().NoError(err)
	reassigned, err := s.service.StartReview(s.ctx, second, r.ID)
	s.Require().NoError(err)
	s.Equal(models.ReviewStatusUnderReview, reassigned.Status)
	s.Equal(second.ID, *reassigned.ReviewerID)
}

func (s *ServiceSuite) TestAddComment() {
	r := s.submittedReview("CL-1")
	_, err := s.service.Approve(s.ctx, checker, r.ID, "")
	s.Require().NoError(err)

	s.Run("allowed in a terminal status", func() {
		commented, err := s.service.AddComment(s.ctx, checker, r.ID, "filed with regulator")
		s.Require().NoError(err)
		s.Contains(commented.Comments, "] filed with regulator")
		s.Equal(models.ReviewStatusApproved, commented.Status)
	})

	s.Run("blank text is rejected", func() {
		_, err := s.service.AddComment(s.ctx, checker, r.ID, "  ")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown review is not found", func() {
		_, err := s.service.AddComment(s.ctx, checker, id.NewReviewID(), "hello")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestApproveWithActiveExceptions() {
	s.Run("permissive by default and noted in the audit trail", func() {
		r := s.submittedReview("CL-permissive")
		_, err := s.service.OpenException(s.ctx, checker, r.ID, OpenExceptionRequest{
			Type:  models.ExceptionTypeDocumentation,
			Title: "Address proof expired",
		})
		s.Require().NoError(err)

		approved, err := s.service.Approve(s.ctx, checker, r.ID, "accepting risk")
		s.Require().NoError(err)
		s.Equal(models.ReviewStatusApproved, approved.Status)

		events, err := s.auditStore.ListByAction(s.ctx, audit.ActionReviewApproved)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Contains(events[0].Comment, "approved with 1 active exception(s)")
		s.Contains(events[0].Comment, "accepting risk")
		s.InDelta(1, testutil.ToFloat64(s.metrics.ApprovedWithActive), 0)
	})

	s.Run("blocked when the policy switch is on", func() {
		svc := s.newService(WithBlockApprovalOnOpenExceptions(true))
		r := s.submittedReview("CL-blocking")
		_, err := svc.OpenException(s.ctx, checker, r.ID, OpenExceptionRequest{
			Type:  models.ExceptionTypeCompliance,
			Title: "Sanctions hit pending",
		})
		s.Require().NoError(err)

		_, err = svc.Approve(s.ctx, checker, r.ID, "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotEligible))

		found, err := svc.GetReview(s.ctx, r.ID)
		s.Require().NoError(err)
		s.Equal(models.ReviewStatusSubmitted, found.Status)
	})
}

func (s *ServiceSuite) TestConcurrentDecisions() {
	r := s.submittedReview("CL-1")
	second := id.Actor{ID: 21, Role: id.RoleChecker}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = s.service.Approve(s.ctx, checker, r.ID, "")
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = s.service.Reject(s.ctx, second, r.ID, "bad data", "")
	}()
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	}
	s.Equal(1, succeeded)
}

func (s *ServiceSuite) TestDeleteReviewCascades() {
	s.seedClient("CL-1", models.RiskLow)
	r := s.createReview("CL-1", models.ReviewTypeKYC)
	s.completeQuestionnaire(r.ID)
	s.registerDocs(r.ID, models.DocumentIdentity)
	ex, err := s.service.OpenException(s.ctx, maker, r.ID, OpenExceptionRequest{
		Type:  models.ExceptionTypeDocumentation,
		Title: "Missing passport",
	})
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteReview(s.ctx, admin, r.ID))

	_, err = s.service.GetReview(s.ctx, r.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	_, err = s.service.GetException(s.ctx, ex.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	_, err = s.reviews.FindQuestionnaire(s.ctx, r.ID)
	s.Error(err)
	s.Contains(s.auditActions(audit.EntityReview, r.ID.String()), audit.ActionReviewDeleted)
}

func (s *ServiceSuite) TestListReviews() {
	s.seedClient("CL-1", models.RiskLow)
	s.seedClient("CL-2", models.RiskLow)
	s.createReview("CL-1", models.ReviewTypeKYC)
	s.createReview("CL-1", models.ReviewTypeAML)
	s.createReview("CL-2", models.ReviewTypeKYC)

	ref := id.ClientRef("CL-1")
	reviews, err := s.service.ListReviews(s.ctx, models.ReviewFilter{ClientRef: &ref})
	s.Require().NoError(err)
	s.Len(reviews, 2)

	kyc := models.ReviewTypeKYC
	reviews, err = s.service.ListReviews(s.ctx, models.ReviewFilter{ReviewType: &kyc})
	s.Require().NoError(err)
	s.Len(reviews, 2)

	to := s.now
	from := s.now.Add(1)
	_, err = s.service.ListReviews(s.ctx, models.ReviewFilter{CreatedFrom: &from, CreatedTo: &to})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}
