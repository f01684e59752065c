package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "casework/pkg/domain"
	audit "casework/pkg/platform/audit"
	txcontext "casework/pkg/platform/tx"
)

// Store implements audit.Store with the transactional outbox pattern.
// Each event is written to workflow_history for querying and to outbox for the
// relay to publish. When a transaction is present in the context both rows
// commit together with the workflow change that produced them.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) execer(ctx context.Context) txcontext.Execer {
	return txcontext.Executor(ctx, s.db)
}

// OutboxPayload is the JSON document published to Kafka.
type OutboxPayload struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Action     string `json:"action"`
	FromStatus string `json:"from_status,omitempty"`
	ToStatus   string `json:"to_status,omitempty"`
	ActorID    int64  `json:"actor_id,omitempty"`
	ActorRole  string `json:"actor_role,omitempty"`
	Comment    string `json:"comment,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// Append writes the event to workflow_history and the outbox.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO workflow_history (
			id, entity_type, entity_id, action, from_status, to_status,
			actor_id, actor_role, comment, request_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		eventID,
		string(event.EntityType),
		event.EntityID,
		string(event.Action),
		event.FromStatus,
		event.ToStatus,
		int64(event.ActorID),
		string(event.ActorRole),
		event.Comment,
		event.RequestID,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert workflow history: %w", err)
	}

	payload, err := json.Marshal(OutboxPayload{
		ID:         eventID.String(),
		Category:   string(event.Action.Category()),
		EntityType: string(event.EntityType),
		EntityID:   event.EntityID,
		Action:     string(event.Action),
		FromStatus: event.FromStatus,
		ToStatus:   event.ToStatus,
		ActorID:    int64(event.ActorID),
		ActorRole:  string(event.ActorRole),
		Comment:    event.Comment,
		RequestID:  event.RequestID,
		Timestamp:  event.Timestamp.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	_, err = s.execer(ctx).ExecContext(ctx, `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		uuid.New(),
		string(event.EntityType),
		event.EntityID,
		string(event.Action),
		payload,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// ListByEntity returns the workflow history of one entity, oldest first.
func (s *Store) ListByEntity(ctx context.Context, entityType audit.EntityType, entityID string) ([]audit.Event, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT entity_type, entity_id, action, from_status, to_status,
			   actor_id, actor_role, comment, request_id, created_at
		FROM workflow_history
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at, id
	`, string(entityType), entityID)
	if err != nil {
		return nil, fmt.Errorf("query workflow history: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event     audit.Event
			entType   string
			action    string
			actorID   int64
			actorRole string
		)
		if err := rows.Scan(
			&entType,
			&event.EntityID,
			&action,
			&event.FromStatus,
			&event.ToStatus,
			&actorID,
			&actorRole,
			&event.Comment,
			&event.RequestID,
			&event.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan workflow history: %w", err)
		}
		event.EntityType = audit.EntityType(entType)
		event.Action = audit.Action(action)
		event.ActorID = id.UserID(actorID)
		event.ActorRole = id.Role(actorRole)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflow history: %w", err)
	}
	return events, nil
}
