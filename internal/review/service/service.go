// Package service orchestrates the review workflow: role and four-eyes checks,
// readiness evaluation, atomic transitions and audit emission.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks ReviewStore,ClientStore,AuditPublisher

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"casework/internal/review/documents"
	reviewmetrics "casework/internal/review/metrics"
	"casework/internal/review/models"
	id "casework/pkg/domain"
	"casework/pkg/platform/audit"
)

const tracerName = "casework/internal/review/service"

// ReviewStore persists reviews and the children they own.
//
// Execute and ExecuteException validate and mutate atomically; a validate error
// is returned unchanged and nothing is written. FindForUpdate locks the review
// row for the rest of the surrounding transaction where the store supports it.
type ReviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, reviewID id.ReviewID) (*models.Review, error)
	FindForUpdate(ctx context.Context, reviewID id.ReviewID) (*models.Review, error)
	List(ctx context.Context, filter models.ReviewFilter) ([]*models.Review, error)
	Execute(ctx context.Context, reviewID id.ReviewID, validate func(*models.Review) error, mutate func(*models.Review)) (*models.Review, error)
	Delete(ctx context.Context, reviewID id.ReviewID) error

	FindQuestionnaire(ctx context.Context, reviewID id.ReviewID) (*models.KYCQuestionnaire, error)
	SaveQuestionnaire(ctx context.Context, q *models.KYCQuestionnaire) error

	AddDocument(ctx context.Context, doc *models.Document) error
	ListDocuments(ctx context.Context, reviewID id.ReviewID) ([]*models.Document, error)

	CreateException(ctx context.Context, ex *models.Exception) error
	FindException(ctx context.Context, exceptionID id.ExceptionID) (*models.Exception, error)
	ListExceptions(ctx context.Context, reviewID id.ReviewID, filter models.ExceptionFilter) ([]*models.Exception, error)
	ExecuteException(ctx context.Context, exceptionID id.ExceptionID, validate func(*models.Exception) error, mutate func(*models.Exception)) (*models.Exception, error)
	ListOverdueExceptions(ctx context.Context, now time.Time) ([]*models.Exception, error)
	CountActiveExceptions(ctx context.Context, reviewID id.ReviewID) (int, error)
}

// ClientStore resolves the client a review is about.
type ClientStore interface {
	FindByRef(ctx context.Context, ref id.ClientRef) (*models.Client, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates review, questionnaire, document and exception operations.
type Service struct {
	reviews      ReviewStore
	clients      ClientStore
	documents    *documents.Checker
	seniorPolicy models.SeniorApprovalPolicy
	auditEmitter *auditEmitter
	metrics      *reviewmetrics.Metrics
	logger       *slog.Logger
	tracer       trace.Tracer
	tx           StoreTx

	requireDocuments              bool
	blockApprovalOnOpenExceptions bool
}

type serviceConfig struct {
	logger                        *slog.Logger
	auditPublisher                AuditPublisher
	metrics                       *reviewmetrics.Metrics
	tx                            StoreTx
	checker                       *documents.Checker
	seniorPolicy                  models.SeniorApprovalPolicy
	requireDocuments              bool
	blockApprovalOnOpenExceptions bool
}

type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(c *serviceConfig) {
		c.auditPublisher = publisher
	}
}

func WithMetrics(m *reviewmetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

// WithTx sets the unit-of-work runner. Defaults to an in-memory lock.
func WithTx(tx StoreTx) Option {
	return func(c *serviceConfig) {
		c.tx = tx
	}
}

func WithDocumentChecker(checker *documents.Checker) Option {
	return func(c *serviceConfig) {
		c.checker = checker
	}
}

func WithSeniorApprovalPolicy(policy models.SeniorApprovalPolicy) Option {
	return func(c *serviceConfig) {
		c.seniorPolicy = policy
	}
}

// WithRequireDocuments controls whether missing required documents block submission.
func WithRequireDocuments(enabled bool) Option {
	return func(c *serviceConfig) {
		c.requireDocuments = enabled
	}
}

// WithBlockApprovalOnOpenExceptions makes approval fail while active exceptions exist.
func WithBlockApprovalOnOpenExceptions(enabled bool) Option {
	return func(c *serviceConfig) {
		c.blockApprovalOnOpenExceptions = enabled
	}
}

// New constructs a Service. Document requirements are enforced unless disabled.
func New(reviews ReviewStore, clients ClientStore, opts ...Option) *Service {
	cfg := &serviceConfig{requireDocuments: true}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.tx == nil {
		cfg.tx = newInMemoryStoreTx()
	}
	if cfg.checker == nil {
		cfg.checker = documents.NewChecker(nil)
	}
	if cfg.seniorPolicy == nil {
		cfg.seniorPolicy = models.NoSeniorApproval{}
	}
	return &Service{
		reviews:                       reviews,
		clients:                       clients,
		documents:                     cfg.checker,
		seniorPolicy:                  cfg.seniorPolicy,
		auditEmitter:                  newAuditEmitter(cfg.logger, cfg.auditPublisher),
		metrics:                       cfg.metrics,
		logger:                        cfg.logger,
		tracer:                        otel.Tracer(tracerName),
		tx:                            cfg.tx,
		requireDocuments:              cfg.requireDocuments,
		blockApprovalOnOpenExceptions: cfg.blockApprovalOnOpenExceptions,
	}
}
