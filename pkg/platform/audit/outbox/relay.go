// Package outbox relays committed audit events from the outbox table to a broker.
package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultBatchSize    = 100
)

// Message is one outbox row ready for publishing.
type Message struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// Producer publishes outbox messages. Implementations must return only after the
// broker acknowledged the write.
type Producer interface {
	Publish(ctx context.Context, msgs []Message) error
}

// Relay polls unpublished outbox rows and hands them to the producer.
// Rows are claimed with FOR UPDATE SKIP LOCKED so several instances can run the
// relay without publishing the same row twice in one pass.
type Relay struct {
	db           *sql.DB
	producer     Producer
	logger       *slog.Logger
	pollInterval time.Duration
	batchSize    int
}

type Option func(*Relay)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.pollInterval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func NewRelay(db *sql.DB, producer Producer, opts ...Option) *Relay {
	r := &Relay{
		db:           db,
		producer:     producer,
		logger:       slog.Default(),
		pollInterval: defaultPollInterval,
		batchSize:    defaultBatchSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until the context is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for {
				n, err := r.RelayOnce(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					r.logger.ErrorContext(ctx, "outbox relay failed", "error", err)
					break
				}
				if n < r.batchSize {
					break
				}
			}
		}
	}
}

// RelayOnce publishes one batch and marks it published. It returns the number
// of rows relayed.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin outbox batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at, id
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("claim outbox rows: %w", err)
	}

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.AggregateType, &m.AggregateID, &m.EventType, &m.Payload); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan outbox row: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("iterate outbox rows: %w", err)
	}
	rows.Close()

	if len(msgs) == 0 {
		return 0, nil
	}

	if err := r.producer.Publish(ctx, msgs); err != nil {
		return 0, fmt.Errorf("publish outbox batch: %w", err)
	}

	ids := make([]string, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID.String()
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE outbox SET published_at = $1 WHERE id = ANY(CAST($2 AS TEXT)::uuid[])`,
		time.Now(), pq.Array(ids),
	); err != nil {
		return 0, fmt.Errorf("mark outbox published: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit outbox batch: %w", err)
	}

	r.logger.DebugContext(ctx, "outbox batch relayed", "count", len(msgs))
	return len(msgs), nil
}
