// Package publisher fans audit events out to a store and the structured log.
package publisher

import (
	"context"
	"log/slog"

	audit "casework/pkg/platform/audit"
	"casework/pkg/requestcontext"
)

// Publisher writes audit events synchronously so that, with a transactional store,
// the history row commits or rolls back together with the transition it records.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit fills in the timestamp and request id from the context when absent, logs
// the event and appends it to the store.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if p.logger != nil {
		p.logger.InfoContext(ctx, string(event.Action),
			"log_type", "audit",
			"category", string(event.Action.Category()),
			"entity_type", string(event.EntityType),
			"entity_id", event.EntityID,
			"from_status", event.FromStatus,
			"to_status", event.ToStatus,
			"actor_id", int64(event.ActorID),
			"request_id", event.RequestID,
		)
	}
	if p.store == nil {
		return nil
	}
	return p.store.Append(ctx, event)
}

// List returns the history of one entity.
func (p *Publisher) List(ctx context.Context, entityType audit.EntityType, entityID string) ([]audit.Event, error) {
	if p.store == nil {
		return nil, nil
	}
	return p.store.ListByEntity(ctx, entityType, entityID)
}
