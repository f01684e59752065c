package models

import (
	"strings"
	"time"

	id "casework/pkg/domain"
	dErrors "casework/pkg/domain-errors"
)

// commentTimeLayout prefixes every appended comment line.
const commentTimeLayout = time.RFC3339

// Review is the aggregate root of one periodic review cycle for a client.
//
// Invariants:
//   - ReviewedBy, ReviewedAt and RejectionReason are set only while Status is
//     approved or rejected
//   - RejectionReason is non-empty whenever Status is rejected
//   - approved is terminal; rejected only returns to draft
//   - ReviewerID is the checker assigned by start_review and survives the decision
//
// Each transition is split into CanX (guard) and ApplyX (mutation) so stores can
// run both under one lock; X combines them for callers that hold the aggregate
// exclusively.
type Review struct {
	ID              id.ReviewID  `json:"id"`
	ClientRef       id.ClientRef `json:"client_ref"`
	ReviewType      ReviewType   `json:"review_type"`
	Status          ReviewStatus `json:"status"`
	AutoCreated     bool         `json:"auto_created"`
	Comments        string       `json:"comments"`
	RejectionReason *string      `json:"rejection_reason,omitempty"`
	CreatedBy       id.UserID    `json:"created_by"`
	SubmittedBy     *id.UserID   `json:"submitted_by,omitempty"`
	SubmittedAt     *time.Time   `json:"submitted_at,omitempty"`
	ReviewerID      *id.UserID   `json:"reviewer_id,omitempty"`
	ReviewedBy      *id.UserID   `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time   `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// NewReview creates a draft review.
func NewReview(reviewID id.ReviewID, clientRef id.ClientRef, reviewType ReviewType, createdBy id.UserID, autoCreated bool, now time.Time) (*Review, error) {
	if reviewID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "review id is required")
	}
	if clientRef == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "client reference is required")
	}
	if !reviewType.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "invalid review type: %q", reviewType)
	}
	if createdBy.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "creator is required")
	}
	return &Review{
		ID:          reviewID,
		ClientRef:   clientRef,
		ReviewType:  reviewType,
		Status:      ReviewStatusDraft,
		AutoCreated: autoCreated,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsEditable reports whether the maker may still change the review and its children.
func (r *Review) IsEditable() bool {
	return r.Status == ReviewStatusDraft
}

// IsActive reports whether exceptions may still be raised against the review.
func (r *Review) IsActive() bool {
	return r.Status != ReviewStatusApproved
}

// IsNeverSubmittedAutoDraft reports whether the review is an auto-created draft
// that no maker has ever submitted.
func (r *Review) IsNeverSubmittedAutoDraft() bool {
	return r.AutoCreated && r.Status == ReviewStatusDraft && r.SubmittedAt == nil
}

func (r *Review) CanSubmit() error {
	switch r.Status {
	case ReviewStatusDraft:
		return nil
	case ReviewStatusSubmitted, ReviewStatusUnderReview, ReviewStatusApproved, ReviewStatusRejected:
		return invalidReviewTransition("submit", r.Status)
	}
	return invalidReviewTransition("submit", r.Status)
}

func (r *Review) ApplySubmit(by id.UserID, now time.Time) {
	r.Status = ReviewStatusSubmitted
	r.SubmittedBy = &by
	r.SubmittedAt = &now
	r.UpdatedAt = now
}

func (r *Review) Submit(by id.UserID, now time.Time) error {
	if err := r.CanSubmit(); err != nil {
		return err
	}
	r.ApplySubmit(by, now)
	return nil
}

// CanStartReview allows re-assignment while already under review.
func (r *Review) CanStartReview() error {
	switch r.Status {
	case ReviewStatusSubmitted, ReviewStatusUnderReview:
		return nil
	case ReviewStatusDraft, ReviewStatusApproved, ReviewStatusRejected:
		return invalidReviewTransition("start review of", r.Status)
	}
	return invalidReviewTransition("start review of", r.Status)
}

func (r *Review) ApplyStartReview(by id.UserID, now time.Time) {
	r.Status = ReviewStatusUnderReview
	r.ReviewerID = &by
	r.UpdatedAt = now
}

func (r *Review) StartReview(by id.UserID, now time.Time) error {
	if err := r.CanStartReview(); err != nil {
		return err
	}
	r.ApplyStartReview(by, now)
	return nil
}

func (r *Review) CanApprove() error {
	if !r.awaitingDecision() {
		return invalidReviewTransition("approve", r.Status)
	}
	return nil
}

// ApplyApprove records the decision. A non-blank comments value replaces the
// existing comments.
func (r *Review) ApplyApprove(by id.UserID, comments string, now time.Time) {
	r.Status = ReviewStatusApproved
	r.ReviewedBy = &by
	r.ReviewedAt = &now
	if c := strings.TrimSpace(comments); c != "" {
		r.Comments = c
	}
	r.UpdatedAt = now
}

func (r *Review) Approve(by id.UserID, comments string, now time.Time) error {
	if err := r.CanApprove(); err != nil {
		return err
	}
	r.ApplyApprove(by, comments, now)
	return nil
}

// CanReject checks the state first, then the reason.
func (r *Review) CanReject(reason string) error {
	if !r.awaitingDecision() {
		return invalidReviewTransition("reject", r.Status)
	}
	if strings.TrimSpace(reason) == "" {
		return dErrors.New(dErrors.CodeValidation, "rejection reason is required")
	}
	return nil
}

// ApplyReject records the decision. A non-blank comments value is appended as a
// timestamped line.
func (r *Review) ApplyReject(by id.UserID, reason, comments string, now time.Time) {
	trimmed := strings.TrimSpace(reason)
	r.Status = ReviewStatusRejected
	r.ReviewedBy = &by
	r.ReviewedAt = &now
	r.RejectionReason = &trimmed
	r.AddComment(comments, now)
	r.UpdatedAt = now
}

func (r *Review) Reject(by id.UserID, reason, comments string, now time.Time) error {
	if err := r.CanReject(reason); err != nil {
		return err
	}
	r.ApplyReject(by, reason, comments, now)
	return nil
}

func (r *Review) CanResetToDraft() error {
	switch r.Status {
	case ReviewStatusRejected:
		return nil
	case ReviewStatusDraft, ReviewStatusSubmitted, ReviewStatusUnderReview, ReviewStatusApproved:
		return invalidReviewTransition("reset to draft", r.Status)
	}
	return invalidReviewTransition("reset to draft", r.Status)
}

// ApplyResetToDraft clears the decision and the assigned reviewer. Comments and
// the submission record are kept.
func (r *Review) ApplyResetToDraft(now time.Time) {
	r.Status = ReviewStatusDraft
	r.ReviewerID = nil
	r.ReviewedBy = nil
	r.ReviewedAt = nil
	r.RejectionReason = nil
	r.UpdatedAt = now
}

func (r *Review) ResetToDraft(now time.Time) error {
	if err := r.CanResetToDraft(); err != nil {
		return err
	}
	r.ApplyResetToDraft(now)
	return nil
}

// AddComment appends "[timestamp] text" on its own line. Blank text is ignored
// and reported as false. It is allowed in every status.
func (r *Review) AddComment(text string, now time.Time) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	line := "[" + now.UTC().Format(commentTimeLayout) + "] " + text
	if r.Comments == "" {
		r.Comments = line
	} else {
		r.Comments += "\n" + line
	}
	r.UpdatedAt = now
	return true
}

func (r *Review) awaitingDecision() bool {
	switch r.Status {
	case ReviewStatusSubmitted, ReviewStatusUnderReview:
		return true
	case ReviewStatusDraft, ReviewStatusApproved, ReviewStatusRejected:
		return false
	}
	return false
}

func invalidReviewTransition(action string, status ReviewStatus) error {
	return dErrors.Newf(dErrors.CodeInvalidTransition, "cannot %s review in status %s", action, status)
}
