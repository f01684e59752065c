package publisher

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "casework/pkg/platform/audit"
	"casework/pkg/platform/audit/store/memory"
	"casework/pkg/requestcontext"
)

func TestPublisher_AppendsToStore(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	err := pub.Emit(context.Background(), audit.Event{
		EntityType: audit.EntityReview,
		EntityID:   "r-1",
		Action:     audit.ActionReviewSubmitted,
		FromStatus: "draft",
		ToStatus:   "submitted",
		ActorID:    7,
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), audit.EntityReview, "r-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionReviewSubmitted, events[0].Action)
	assert.Equal(t, "submitted", events[0].ToStatus)
}

func TestPublisher_SetsTimestampAndRequestID(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), fixed)
	ctx = requestcontext.WithRequestID(ctx, "req-42")

	require.NoError(t, pub.Emit(ctx, audit.Event{EntityType: audit.EntityReview, EntityID: "r-1", Action: audit.ActionReviewCreated}))

	events, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, fixed, events[0].Timestamp)
	assert.Equal(t, "req-42", events[0].RequestID)
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	original := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		EntityType: audit.EntityException,
		EntityID:   "e-1",
		Action:     audit.ActionExceptionOpened,
		Timestamp:  original,
	}))

	events, err := store.ListByEntity(context.Background(), audit.EntityException, "e-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, original, events[0].Timestamp)
}

func TestPublisher_LogsAuditLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	pub := NewPublisher(nil, WithLogger(logger))

	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		EntityType: audit.EntityReview,
		EntityID:   "r-9",
		Action:     audit.ActionReviewApproved,
	}))

	assert.Contains(t, buf.String(), `"log_type":"audit"`)
	assert.Contains(t, buf.String(), `"category":"compliance"`)
	assert.Contains(t, buf.String(), `"entity_id":"r-9"`)
}

func TestPublisher_SeparatesEntities(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	ctx := context.Background()

	require.NoError(t, pub.Emit(ctx, audit.Event{EntityType: audit.EntityReview, EntityID: "a", Action: audit.ActionReviewCreated}))
	require.NoError(t, pub.Emit(ctx, audit.Event{EntityType: audit.EntityReview, EntityID: "b", Action: audit.ActionReviewCreated}))
	require.NoError(t, pub.Emit(ctx, audit.Event{EntityType: audit.EntityException, EntityID: "a", Action: audit.ActionExceptionOpened}))

	events, err := pub.List(ctx, audit.EntityReview, "a")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
