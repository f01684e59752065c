package models_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"casework/internal/review/models"
	id "casework/pkg/domain"
	dErrors "casework/pkg/domain-errors"
)

type ReviewSuite struct {
	suite.Suite
	now   time.Time
	maker id.UserID
	check id.UserID
}

func TestReviewSuite(t *testing.T) {
	suite.Run(t, new(ReviewSuite))
}

func (s *ReviewSuite) SetupTest() {
	s.now = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	s.maker = 1
	s.check = 7
}

func (s *ReviewSuite) newReview(status models.ReviewStatus) *models.Review {
	r, err := models.NewReview(id.NewReviewID(), "CL-1", models.ReviewTypeKYC, s.maker, false, s.now)
	s.Require().NoError(err)
	switch status {
	case models.ReviewStatusDraft:
	case models.ReviewStatusSubmitted:
		s.Require().NoError(r.Submit(s.maker, s.now))
	case models.ReviewStatusUnderReview:
		s.Require().NoError(r.Submit(s.maker, s.now))
		s.Require().NoError(r.StartReview(s.check, s.now))
	case models.ReviewStatusApproved:
		s.Require().NoError(r.Submit(s.maker, s.now))
		s.Require().NoError(r.Approve(s.check, "", s.now))
	case models.ReviewStatusRejected:
		s.Require().NoError(r.Submit(s.maker, s.now))
		s.Require().NoError(r.Reject(s.check, "bad data", "", s.now))
	}
	return r
}

func (s *ReviewSuite) TestConstruction() {
	s.Run("starts in draft and editable", func() {
		r := s.newReview(models.ReviewStatusDraft)
		s.Equal(models.ReviewStatusDraft, r.Status)
		s.True(r.IsEditable())
		s.True(r.IsActive())
		s.Nil(r.ReviewedBy)
	})

	s.Run("rejects empty client reference", func() {
		_, err := models.NewReview(id.NewReviewID(), "", models.ReviewTypeKYC, s.maker, false, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("rejects unknown review type", func() {
		_, err := models.NewReview(id.NewReviewID(), "CL-1", models.ReviewType("quarterly"), s.maker, false, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

// TestGuardTable walks every (status, action) pair of the workflow.
func (s *ReviewSuite) TestGuardTable() {
	type action struct {
		name string
		run  func(r *models.Review) error
	}
	actions := []action{
		{"submit", func(r *models.Review) error { return r.Submit(s.maker, s.now) }},
		{"start_review", func(r *models.Review) error { return r.StartReview(s.check, s.now) }},
		{"approve", func(r *models.Review) error { return r.Approve(s.check, "", s.now) }},
		{"reject", func(r *models.Review) error { return r.Reject(s.check, "reason", "", s.now) }},
		{"reset_to_draft", func(r *models.Review) error { return r.ResetToDraft(s.now) }},
	}

	allowed := map[models.ReviewStatus]map[string]models.ReviewStatus{
		models.ReviewStatusDraft: {"submit": models.ReviewStatusSubmitted},
		models.ReviewStatusSubmitted: {
			"start_review": models.ReviewStatusUnderReview,
			"approve":      models.ReviewStatusApproved,
			"reject":       models.ReviewStatusRejected,
		},
		models.ReviewStatusUnderReview: {
			"start_review": models.ReviewStatusUnderReview,
			"approve":      models.ReviewStatusApproved,
			"reject":       models.ReviewStatusRejected,
		},
		models.ReviewStatusApproved: {},
		models.ReviewStatusRejected: {"reset_to_draft": models.ReviewStatusDraft},
	}

	for from, permitted := range allowed {
		for _, a := range actions {
			s.Run(string(from)+"/"+a.name, func() {
				r := s.newReview(from)
				before := *r
				err := a.run(r)
				if to, ok := permitted[a.name]; ok {
					s.Require().NoError(err)
					s.Equal(to, r.Status)
					return
				}
				s.Require().Error(err)
				s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
				s.Contains(err.Error(), string(from))
				s.Equal(before, *r, "failed transition must not mutate")
			})
		}
	}
}

func (s *ReviewSuite) TestSubmitRecordsSubmitter() {
	r := s.newReview(models.ReviewStatusDraft)
	s.Require().NoError(r.Submit(s.maker, s.now))
	s.Require().NotNil(r.SubmittedBy)
	s.Equal(s.maker, *r.SubmittedBy)
	s.Equal(s.now, *r.SubmittedAt)
	s.False(r.IsEditable())
}

func (s *ReviewSuite) TestStartReviewReassigns() {
	r := s.newReview(models.ReviewStatusUnderReview)
	s.Require().NoError(r.StartReview(9, s.now))
	s.Equal(id.UserID(9), *r.ReviewerID)
	s.Nil(r.ReviewedBy, "assignment is not a decision")
}

func (s *ReviewSuite) TestApprove() {
	s.Run("records decision and keeps comments when none given", func() {
		r := s.newReview(models.ReviewStatusSubmitted)
		r.Comments = "original"
		s.Require().NoError(r.Approve(s.check, "  ", s.now))
		s.Equal(models.ReviewStatusApproved, r.Status)
		s.Equal(s.check, *r.ReviewedBy)
		s.Equal(s.now, *r.ReviewedAt)
		s.Equal("original", r.Comments)
		s.False(r.IsActive())
	})

	s.Run("overwrites comments when given", func() {
		r := s.newReview(models.ReviewStatusUnderReview)
		r.Comments = "original"
		s.Require().NoError(r.Approve(s.check, "looks good", s.now))
		s.Equal("looks good", r.Comments)
	})

	s.Run("approved is terminal", func() {
		r := s.newReview(models.ReviewStatusApproved)
		s.Error(r.Submit(s.maker, s.now))
		s.Error(r.StartReview(s.check, s.now))
		s.Error(r.Approve(s.check, "", s.now))
		s.Error(r.Reject(s.check, "x", "", s.now))
		s.Error(r.ResetToDraft(s.now))
		s.Equal(models.ReviewStatusApproved, r.Status)
	})
}

func (s *ReviewSuite) TestRejectRequiresReason() {
	for _, reason := range []string{"", "   ", "\t\n"} {
		s.Run("blank reason "+strings.TrimSpace(reason), func() {
			r := s.newReview(models.ReviewStatusSubmitted)
			err := r.Reject(s.check, reason, "", s.now)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
			s.Equal(models.ReviewStatusSubmitted, r.Status)
			s.Nil(r.RejectionReason)
		})
	}

	s.Run("valid reason from submitted", func() {
		r := s.newReview(models.ReviewStatusSubmitted)
		s.Require().NoError(r.Reject(s.check, "valid reason", "", s.now))
		s.Equal(models.ReviewStatusRejected, r.Status)
		s.Equal("valid reason", *r.RejectionReason)
		s.Equal(s.check, *r.ReviewedBy)
	})

	s.Run("state is checked before reason", func() {
		r := s.newReview(models.ReviewStatusDraft)
		err := r.Reject(s.check, "", "", s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("appends comments", func() {
		r := s.newReview(models.ReviewStatusSubmitted)
		r.Comments = "X"
		s.Require().NoError(r.Reject(s.check, "reason", "see notes", s.now))
		s.Equal("X\n[2026-05-04T09:30:00Z] see notes", r.Comments)
	})
}

func (s *ReviewSuite) TestResetToDraftPreservesComments() {
	r := s.newReview(models.ReviewStatusSubmitted)
	r.Comments = "X"
	s.Require().NoError(r.Reject(7, "bad data", "", s.now))
	s.Require().Equal("bad data", *r.RejectionReason)

	s.Require().NoError(r.ResetToDraft(s.now.Add(time.Hour)))
	s.Equal(models.ReviewStatusDraft, r.Status)
	s.Equal("X", r.Comments)
	s.Nil(r.RejectionReason)
	s.Nil(r.ReviewedBy)
	s.Nil(r.ReviewedAt)
	s.Nil(r.ReviewerID)

	s.Run("resumes the forward path", func() {
		s.Require().NoError(r.Submit(s.maker, s.now))
		s.Require().NoError(r.Approve(s.check, "", s.now))
		s.Equal(models.ReviewStatusApproved, r.Status)
	})
}

func (s *ReviewSuite) TestAddComment() {
	s.Run("ignores blank text", func() {
		r := s.newReview(models.ReviewStatusDraft)
		s.False(r.AddComment("   ", s.now))
		s.Empty(r.Comments)
	})

	s.Run("appends timestamped lines in every status", func() {
		for _, status := range []models.ReviewStatus{
			models.ReviewStatusDraft, models.ReviewStatusSubmitted, models.ReviewStatusUnderReview,
			models.ReviewStatusApproved, models.ReviewStatusRejected,
		} {
			r := s.newReview(status)
			r.Comments = ""
			s.True(r.AddComment("first", s.now))
			s.True(r.AddComment(" second ", s.now.Add(time.Minute)))
			s.Equal("[2026-05-04T09:30:00Z] first\n[2026-05-04T09:31:00Z] second", r.Comments)
			s.Equal(status, r.Status)
		}
	})
}

func (s *ReviewSuite) TestNeverSubmittedAutoDraft() {
	r, err := models.NewReview(id.NewReviewID(), "CL-1", models.ReviewTypeAML, id.UserID(1), true, s.now)
	s.Require().NoError(err)
	s.True(r.IsNeverSubmittedAutoDraft())

	s.Require().NoError(r.Submit(s.maker, s.now))
	s.Require().NoError(r.Reject(s.check, "x", "", s.now))
	s.Require().NoError(r.ResetToDraft(s.now))
	s.False(r.IsNeverSubmittedAutoDraft(), "a reset review was submitted once")
}
