package models

import (
	"strings"
	"time"

	id "casework/pkg/domain"
	dErrors "casework/pkg/domain-errors"
)

const maxExceptionTitleLength = 200

// Exception is a compliance issue raised against a review. It is owned by the
// review and deleted with it, but moves through its own lifecycle:
//
//	open -> in_progress -> resolved -> closed
//	open | in_progress -> escalated -> resolved
//
// Invariants:
//   - ResolutionNotes, ResolvedBy and ResolvedAt are set only on entering resolved
//   - resolution requires non-empty notes
//   - nothing leaves closed, and resolved never returns to an earlier state
type Exception struct {
	ID              id.ExceptionID    `json:"id"`
	ReviewID        id.ReviewID       `json:"review_id"`
	Type            ExceptionType     `json:"exception_type"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Priority        ExceptionPriority `json:"priority"`
	Status          ExceptionStatus   `json:"status"`
	DueDate         *time.Time        `json:"due_date,omitempty"`
	CreatedBy       id.UserID         `json:"created_by"`
	AssignedTo      *id.UserID        `json:"assigned_to,omitempty"`
	ResolvedBy      *id.UserID        `json:"resolved_by,omitempty"`
	ResolutionNotes *string           `json:"resolution_notes,omitempty"`
	ResolvedAt      *time.Time        `json:"resolved_at,omitempty"`
	EscalatedAt     *time.Time        `json:"escalated_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// NewException creates an open exception. An empty priority defaults to medium.
func NewException(
	exceptionID id.ExceptionID,
	reviewID id.ReviewID,
	exceptionType ExceptionType,
	title, description string,
	priority ExceptionPriority,
	dueDate *time.Time,
	createdBy id.UserID,
	now time.Time,
) (*Exception, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "exception title is required")
	}
	if len(title) > maxExceptionTitleLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "exception title must be 200 characters or less")
	}
	if !exceptionType.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "invalid exception type: %q", exceptionType)
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "invalid exception priority: %q", priority)
	}
	if createdBy.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "creator is required")
	}
	return &Exception{
		ID:          exceptionID,
		ReviewID:    reviewID,
		Type:        exceptionType,
		Title:       title,
		Description: strings.TrimSpace(description),
		Priority:    priority,
		Status:      ExceptionStatusOpen,
		DueDate:     dueDate,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (e *Exception) IsActive() bool {
	return e.Status.IsActive()
}

// IsOverdue reports whether an active exception is past its due date.
func (e *Exception) IsOverdue(now time.Time) bool {
	return e.DueDate != nil && e.DueDate.Before(now) && e.IsActive()
}

func (e *Exception) IsHighPriority() bool {
	return e.Priority == PriorityHigh || e.Priority == PriorityCritical
}

func (e *Exception) CanStartWork() error {
	if e.Status != ExceptionStatusOpen {
		return invalidExceptionTransition("start work on", e.Status)
	}
	return nil
}

func (e *Exception) ApplyStartWork(now time.Time) {
	e.Status = ExceptionStatusInProgress
	e.UpdatedAt = now
}

func (e *Exception) StartWork(now time.Time) error {
	if err := e.CanStartWork(); err != nil {
		return err
	}
	e.ApplyStartWork(now)
	return nil
}

// CanResolve checks the state first, then the notes.
func (e *Exception) CanResolve(notes string) error {
	switch e.Status {
	case ExceptionStatusOpen, ExceptionStatusInProgress, ExceptionStatusEscalated:
	case ExceptionStatusResolved, ExceptionStatusClosed:
		return invalidExceptionTransition("resolve", e.Status)
	default:
		return invalidExceptionTransition("resolve", e.Status)
	}
	if strings.TrimSpace(notes) == "" {
		return dErrors.New(dErrors.CodeValidation, "resolution notes are required")
	}
	return nil
}

func (e *Exception) ApplyResolve(notes string, resolver id.UserID, now time.Time) {
	trimmed := strings.TrimSpace(notes)
	e.Status = ExceptionStatusResolved
	e.ResolutionNotes = &trimmed
	e.ResolvedBy = &resolver
	e.ResolvedAt = &now
	e.UpdatedAt = now
}

func (e *Exception) Resolve(notes string, resolver id.UserID, now time.Time) error {
	if err := e.CanResolve(notes); err != nil {
		return err
	}
	e.ApplyResolve(notes, resolver, now)
	return nil
}

func (e *Exception) CanClose() error {
	if e.Status != ExceptionStatusResolved {
		return invalidExceptionTransition("close", e.Status)
	}
	return nil
}

func (e *Exception) ApplyClose(now time.Time) {
	e.Status = ExceptionStatusClosed
	e.UpdatedAt = now
}

func (e *Exception) Close(now time.Time) error {
	if err := e.CanClose(); err != nil {
		return err
	}
	e.ApplyClose(now)
	return nil
}

// CanEscalate allows escalation only before any resolution.
func (e *Exception) CanEscalate() error {
	switch e.Status {
	case ExceptionStatusOpen, ExceptionStatusInProgress:
		return nil
	case ExceptionStatusEscalated, ExceptionStatusResolved, ExceptionStatusClosed:
		return invalidExceptionTransition("escalate", e.Status)
	}
	return invalidExceptionTransition("escalate", e.Status)
}

func (e *Exception) ApplyEscalate(now time.Time) {
	e.Status = ExceptionStatusEscalated
	e.EscalatedAt = &now
	e.UpdatedAt = now
}

func (e *Exception) Escalate(now time.Time) error {
	if err := e.CanEscalate(); err != nil {
		return err
	}
	e.ApplyEscalate(now)
	return nil
}

func (e *Exception) CanAssign() error {
	if !e.IsActive() {
		return invalidExceptionTransition("assign", e.Status)
	}
	return nil
}

func (e *Exception) ApplyAssign(assignee id.UserID, now time.Time) {
	e.AssignedTo = &assignee
	e.UpdatedAt = now
}

func invalidExceptionTransition(action string, status ExceptionStatus) error {
	return dErrors.Newf(dErrors.CodeInvalidTransition, "cannot %s exception in status %s", action, status)
}
