package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	strutil "casework/pkg/platform/strings"
)

const (
	DefaultAddr               = ":8080"
	DefaultAuditTopic         = "casework.audit"
	DefaultAutoReviewSchedule = "0 2 * * *"
	DefaultCleanupSchedule    = "30 3 * * *"
	DefaultStaleDraftAge      = 30 * 24 * time.Hour
	DefaultOutboxPollInterval = 2 * time.Second
	DefaultSystemActorID      = 1

	devSigningKey = "dev-secret-key-change-in-production"
)

// Config is the process configuration.
type Config struct {
	Server   Server
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Workflow WorkflowConfig
	Schedule ScheduleConfig
	Tracing  TracingConfig
	LogLevel string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
}

// DatabaseConfig selects Postgres persistence. An empty URL means in-memory stores.
type DatabaseConfig struct {
	URL string
}

// RedisConfig configures the sweep lock client. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit outbox relay. No brokers disables the relay.
type KafkaConfig struct {
	Brokers            []string
	AuditTopic         string
	OutboxPollInterval time.Duration
}

// WorkflowConfig holds review policy switches.
type WorkflowConfig struct {
	RequireDocuments              bool
	BlockApprovalOnOpenExceptions bool
	StaleDraftAge                 time.Duration
	SystemActorID                 int64
}

// ScheduleConfig holds cron expressions for the batch jobs.
type ScheduleConfig struct {
	AutoReview string
	Cleanup    string
}

// TracingConfig controls the OpenTelemetry tracer provider.
type TracingConfig struct {
	Enabled     bool
	SampleRatio float64
}

// Load reads an optional .env file and builds the configuration from the environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	cfg := Config{
		Server: Server{
			Addr:          envString("CASEWORK_ADDR", DefaultAddr),
			JWTSigningKey: envString("JWT_SIGNING_KEY", devSigningKey),
			JWTIssuer:     os.Getenv("JWT_ISSUER"),
		},
		Database: DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:    strutil.SplitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: envString("AUDIT_TOPIC", DefaultAuditTopic),
		},
		Schedule: ScheduleConfig{
			AutoReview: envString("AUTO_REVIEW_SCHEDULE", DefaultAutoReviewSchedule),
			Cleanup:    envString("CLEANUP_SCHEDULE", DefaultCleanupSchedule),
		},
		LogLevel: envString("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Kafka.OutboxPollInterval, err = envDuration("OUTBOX_POLL_INTERVAL", DefaultOutboxPollInterval); err != nil {
		return Config{}, err
	}
	if cfg.Workflow.StaleDraftAge, err = envDuration("STALE_DRAFT_AGE", DefaultStaleDraftAge); err != nil {
		return Config{}, err
	}
	if cfg.Workflow.RequireDocuments, err = envBool("REQUIRE_DOCUMENTS", true); err != nil {
		return Config{}, err
	}
	if cfg.Workflow.BlockApprovalOnOpenExceptions, err = envBool("BLOCK_APPROVAL_ON_OPEN_EXCEPTIONS", false); err != nil {
		return Config{}, err
	}
	if cfg.Tracing.Enabled, err = envBool("TRACING_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.Tracing.SampleRatio, err = envFloat("TRACE_SAMPLE_RATIO", 1); err != nil {
		return Config{}, err
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		return Config{}, fmt.Errorf("TRACE_SAMPLE_RATIO must be between 0 and 1, got %g", cfg.Tracing.SampleRatio)
	}
	if cfg.Workflow.SystemActorID, err = envInt("SYSTEM_ACTOR_ID", DefaultSystemActorID); err != nil {
		return Config{}, err
	}
	if cfg.Workflow.SystemActorID <= 0 {
		return Config{}, fmt.Errorf("SYSTEM_ACTOR_ID must be positive, got %d", cfg.Workflow.SystemActorID)
	}
	if cfg.Workflow.StaleDraftAge <= 0 {
		return Config{}, fmt.Errorf("STALE_DRAFT_AGE must be positive, got %s", cfg.Workflow.StaleDraftAge)
	}
	return cfg, nil
}

// UsesDevSigningKey reports whether the built-in development key is active.
func (c Config) UsesDevSigningKey() bool {
	return c.Server.JWTSigningKey == devSigningKey
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// envDuration accepts Go durations plus a "d" suffix for whole days.
func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("parse %s: %w", key, err)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func envBool(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}

func envInt(key string, fallback int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}
