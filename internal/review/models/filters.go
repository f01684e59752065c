package models

import (
	"time"

	id "casework/pkg/domain"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// ReviewFilter narrows ListReviews. Zero-valued fields match everything.
type ReviewFilter struct {
	Status      *ReviewStatus
	ReviewType  *ReviewType
	ClientRef   *id.ClientRef
	AutoCreated *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// Matches applies the filter to one review. CreatedFrom is inclusive and
// CreatedTo exclusive.
func (f ReviewFilter) Matches(r *Review) bool {
	if f.Status != nil && r.Status != *f.Status {
		return false
	}
	if f.ReviewType != nil && r.ReviewType != *f.ReviewType {
		return false
	}
	if f.ClientRef != nil && r.ClientRef != *f.ClientRef {
		return false
	}
	if f.AutoCreated != nil && r.AutoCreated != *f.AutoCreated {
		return false
	}
	if f.CreatedFrom != nil && r.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && !r.CreatedAt.Before(*f.CreatedTo) {
		return false
	}
	return true
}

// Normalized clamps paging values.
func (f ReviewFilter) Normalized() ReviewFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ExceptionFilter narrows ListExceptions. Zero-valued fields match everything.
type ExceptionFilter struct {
	Status   *ExceptionStatus
	Priority *ExceptionPriority
}

func (f ExceptionFilter) Matches(e *Exception) bool {
	if f.Status != nil && e.Status != *f.Status {
		return false
	}
	if f.Priority != nil && e.Priority != *f.Priority {
		return false
	}
	return true
}
