package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"casework/internal/review/models"
	id "casework/pkg/domain"
	dErrors "casework/pkg/domain-errors"
	"casework/pkg/platform/audit"
)

func (s *ServiceSuite) openException(reviewID id.ReviewID, due *time.Time) *models.Exception {
	ex, err := s.service.OpenException(s.ctx, maker, reviewID, OpenExceptionRequest{
		Type:     models.ExceptionTypeKYCNonCompliance,
		Title:    "Expired passport",
		Priority: models.PriorityHigh,
		DueDate:  due,
	})
	s.Require().NoError(err)
	return ex
}

func (s *ServiceSuite) TestExceptionLifecycle() {
	s.seedClient("CL-1", models.RiskLow)
	r := s.createReview("CL-1", models.ReviewTypeKYC)

	s.Run("open, start, resolve, close", func() {
		ex := s.openException(r.ID, nil)
		s.Equal(models.ExceptionStatusOpen, ex.Status)

		ex, err := s.service.StartException(s.ctx, checker, ex.ID)
		s.Require().NoError(err)
		s.Equal(models.ExceptionStatusInProgress, ex.Status)

		ex, err = s.service.ResolveException(s.ctx, checker, ex.ID, "new passport on file")
		s.Require().NoError(err)
		s.Equal(models.ExceptionStatusResolved, ex.Status)
		s.Equal("new passport on file", *ex.ResolutionNotes)
		s.Equal(checker.ID, *ex.ResolvedBy)

		ex, err = s.service.CloseException(s.ctx, checker, ex.ID)
		s.Require().NoError(err)
		s.Equal(models.ExceptionStatusClosed, ex.Status)

		_, err = s.service.ResolveException(s.ctx, checker, ex.ID, "again")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

		s.Equal([]audit.Action{
			audit.ActionExceptionOpened,
			audit.ActionExceptionStarted,
			audit.ActionExceptionResolved,
			audit.ActionExceptionClosed,
		}, s.auditActions(audit.EntityException, ex.ID.String()))
		s.InDelta(1, testutil.ToFloat64(s.metrics.ExceptionEvents.WithLabelValues("close", "closed")), 0)
	})

	s.Run("resolution requires notes", func() {
		ex := s.openException(r.ID, nil)
		_, err := s.service.ResolveException(s.ctx, checker, ex.ID, " ")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("close only from resolved", func() {
		ex := s.openException(r.ID, nil)
		_, err := s.service.CloseException(s.ctx, checker, ex.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

		_, err = s.service.StartException(s.ctx, checker, ex.ID)
		s.Require().NoError(err)
		_, err = s.service.CloseException(s.ctx, checker, ex.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("escalated exceptions stay active and can be resolved", func() {
		ex := s.openException(r.ID, nil)
		escalated, err := s.service.EscalateException(s.ctx, checker, ex.ID, "no response from client")
		s.Require().NoError(err)
		s.Equal(models.ExceptionStatusEscalated, escalated.Status)
		s.Equal(s.now, *escalated.EscalatedAt)

		_, err = s.service.EscalateException(s.ctx, checker, ex.ID, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))

		count, err := s.reviews.CountActiveExceptions(s.ctx, r.ID)
		s.Require().NoError(err)
		s.Positive(count)

		resolved, err := s.service.ResolveException(s.ctx, checker, ex.ID, "client replied")
		s.Require().NoError(err)
		s.Equal(models.ExceptionStatusResolved, resolved.Status)

		_, err = s.service.EscalateException(s.ctx, checker, ex.ID, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("assign while active", func() {
		ex := s.openException(r.ID, nil)
		assigned, err := s.service.AssignException(s.ctx, checker, ex.ID, id.UserID(42))
		s.Require().NoError(err)
		s.Equal(id.UserID(42), *assigned.AssignedTo)

		_, err = s.service.AssignException(s.ctx, checker, ex.ID, id.UserID(0))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown exception is not found", func() {
		_, err := s.service.StartException(s.ctx, checker, id.NewExceptionID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal("exception not found", dErrors.MessageOf(err))
	})

	s.Run("list filters by status", func() {
		open := models.ExceptionStatusOpen
		exceptions, err := s.service.ListExceptions(s.ctx, r.ID, models.ExceptionFilter{Status: &open})
		s.Require().NoError(err)
		for _, ex := range exceptions {
			s.Equal(models.ExceptionStatusOpen, ex.Status)
		}
	})
}

func (s *ServiceSuite) TestOpenExceptionRules() {
	s.Run("approved reviews accept no new exceptions", func() {
		r := s.submittedReview("CL-approved")
		_, err := s.service.Approve(s.ctx, checker, r.ID, "")
		s.Require().NoError(err)

		_, err = s.service.OpenException(s.ctx, checker, r.ID, OpenExceptionRequest{
			Type:  models.ExceptionTypeOperational,
			Title: "Too late",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("title is required and priority defaults to medium", func() {
		s.seedClient("CL-title", models.RiskLow)
		r := s.createReview("CL-title", models.ReviewTypeAML)
		_, err := s.service.OpenException(s.ctx, maker, r.ID, OpenExceptionRequest{Type: models.ExceptionTypeTechnical})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		ex, err := s.service.OpenException(s.ctx, maker, r.ID, OpenExceptionRequest{
			Type:  models.ExceptionTypeTechnical,
			Title: "Screening feed down",
		})
		s.Require().NoError(err)
		s.Equal(models.PriorityMedium, ex.Priority)
	})

	s.Run("unknown review is not found", func() {
		_, err := s.service.OpenException(s.ctx, maker, id.NewReviewID(), OpenExceptionRequest{
			Type:  models.ExceptionTypeTechnical,
			Title: "Orphan",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestListOverdueExceptions() {
	s.seedClient("CL-1", models.RiskLow)
	r := s.createReview("CL-1", models.ReviewTypeKYC)

	older := s.now.Add(-72 * time.Hour)
	newer := s.now.Add(-24 * time.Hour)
	future := s.now.Add(24 * time.Hour)
	second := s.openException(r.ID, &newer)
	first := s.openException(r.ID, &older)
	s.openException(r.ID, &future)
	resolved := s.openException(r.ID, &older)
	_, err := s.service.ResolveException(s.ctx, checker, resolved.ID, "done")
	s.Require().NoError(err)

	overdue, err := s.service.ListOverdueExceptions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(overdue, 2)
	s.Equal(first.ID, overdue[0].ID)
	s.Equal(second.ID, overdue[1].ID)
}
