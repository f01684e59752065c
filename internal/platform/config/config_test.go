package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"CASEWORK_ADDR", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "AUDIT_TOPIC",
		"JWT_SIGNING_KEY", "JWT_ISSUER", "AUTO_REVIEW_SCHEDULE", "CLEANUP_SCHEDULE",
		"STALE_DRAFT_AGE", "REQUIRE_DOCUMENTS", "BLOCK_APPROVAL_ON_OPEN_EXCEPTIONS",
		"OUTBOX_POLL_INTERVAL", "LOG_LEVEL", "SYSTEM_ACTOR_ID", "TRACING_ENABLED", "TRACE_SAMPLE_RATIO",
	} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.True(t, cfg.UsesDevSigningKey())
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultAuditTopic, cfg.Kafka.AuditTopic)
	assert.Equal(t, DefaultOutboxPollInterval, cfg.Kafka.OutboxPollInterval)
	assert.Equal(t, DefaultAutoReviewSchedule, cfg.Schedule.AutoReview)
	assert.Equal(t, DefaultCleanupSchedule, cfg.Schedule.Cleanup)
	assert.Equal(t, DefaultStaleDraftAge, cfg.Workflow.StaleDraftAge)
	assert.True(t, cfg.Workflow.RequireDocuments)
	assert.False(t, cfg.Workflow.BlockApprovalOnOpenExceptions)
	assert.Equal(t, int64(DefaultSystemActorID), cfg.Workflow.SystemActorID)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CASEWORK_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("STALE_DRAFT_AGE", "7d")
	t.Setenv("OUTBOX_POLL_INTERVAL", "500ms")
	t.Setenv("REQUIRE_DOCUMENTS", "false")
	t.Setenv("BLOCK_APPROVAL_ON_OPEN_EXCEPTIONS", "true")
	t.Setenv("SYSTEM_ACTOR_ID", "42")
	t.Setenv("JWT_SIGNING_KEY", "s3cret")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 7*24*time.Hour, cfg.Workflow.StaleDraftAge)
	assert.Equal(t, 500*time.Millisecond, cfg.Kafka.OutboxPollInterval)
	assert.False(t, cfg.Workflow.RequireDocuments)
	assert.True(t, cfg.Workflow.BlockApprovalOnOpenExceptions)
	assert.Equal(t, int64(42), cfg.Workflow.SystemActorID)
	assert.False(t, cfg.UsesDevSigningKey())
}

func TestFromEnvRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"STALE_DRAFT_AGE", "soon"},
		{"STALE_DRAFT_AGE", "-1h"},
		{"REQUIRE_DOCUMENTS", "maybe"},
		{"SYSTEM_ACTOR_ID", "0"},
		{"SYSTEM_ACTOR_ID", "abc"},
		{"OUTBOX_POLL_INTERVAL", "fast"},
		{"TRACE_SAMPLE_RATIO", "1.5"},
		{"TRACE_SAMPLE_RATIO", "half"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			require.Error(t, err)
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	// godotenv never overrides variables that are already set.
	t.Setenv("AUDIT_TOPIC", "placeholder")
	require.NoError(t, os.Unsetenv("AUDIT_TOPIC"))
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("AUDIT_TOPIC=from-file\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Kafka.AuditTopic)
}

func TestLoadToleratesMissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
}
