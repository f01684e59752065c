package audit

import (
	"context"
	"time"

	id "casework/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// apply different retention and routing.
type EventCategory string

const (
	// CategoryCompliance covers workflow decisions with regulatory significance.
	CategoryCompliance EventCategory = "compliance"
	// CategoryOperations covers routine activity and batch housekeeping.
	CategoryOperations EventCategory = "operations"
)

// EntityType names the aggregate an event is about.
type EntityType string

const (
	EntityReview    EntityType = "review"
	EntityException EntityType = "exception"
	EntityClient    EntityType = "client"
	EntitySweep     EntityType = "auto_review_sweep"
)

// Event is one workflow-history entry. Keep it transport-agnostic so stores and
// sinks can fan out.
type Event struct {
	EntityType EntityType
	EntityID   string
	Action     Action
	FromStatus string
	ToStatus   string
	ActorID    id.UserID
	ActorRole  id.Role
	Timestamp  time.Time
	Comment    string
	RequestID  string
}

type Action string

const (
	// Review workflow
	ActionReviewCreated        Action = "review_created"
	ActionReviewSubmitted      Action = "review_submitted"
	ActionReviewStarted        Action = "review_started"
	ActionReviewApproved       Action = "review_approved"
	ActionReviewRejected       Action = "review_rejected"
	ActionReviewReset          Action = "review_reset_to_draft"
	ActionReviewCommented      Action = "review_commented"
	ActionReviewDeleted        Action = "review_deleted"
	ActionQuestionnaireUpdated Action = "questionnaire_updated"
	ActionDocumentRegistered   Action = "document_registered"

	// Exception lifecycle
	ActionExceptionOpened    Action = "exception_opened"
	ActionExceptionStarted   Action = "exception_started"
	ActionExceptionResolved  Action = "exception_resolved"
	ActionExceptionClosed    Action = "exception_closed"
	ActionExceptionEscalated Action = "exception_escalated"
	ActionExceptionAssigned  Action = "exception_assigned"

	// Auto-review
	ActionAutoReviewCreated  Action = "auto_review_created"
	ActionAutoReviewFailed   Action = "auto_review_failed"
	ActionStaleDraftsDeleted Action = "stale_drafts_deleted"
)

var actionCategories = map[Action]EventCategory{
	ActionReviewSubmitted:    CategoryCompliance,
	ActionReviewStarted:      CategoryCompliance,
	ActionReviewApproved:     CategoryCompliance,
	ActionReviewRejected:     CategoryCompliance,
	ActionReviewReset:        CategoryCompliance,
	ActionReviewDeleted:      CategoryCompliance,
	ActionExceptionResolved:  CategoryCompliance,
	ActionExceptionClosed:    CategoryCompliance,
	ActionExceptionEscalated: CategoryCompliance,
	ActionAutoReviewFailed:   CategoryCompliance,
	ActionStaleDraftsDeleted: CategoryCompliance,
}

// Category returns the EventCategory for this action.
// Unlisted actions default to CategoryOperations.
func (a Action) Category() EventCategory {
	if cat, ok := actionCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

func (a Action) String() string { return string(a) }

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByEntity(ctx context.Context, entityType EntityType, entityID string) ([]Event, error)
}
