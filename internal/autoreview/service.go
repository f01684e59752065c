package autoreview

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks ReviewStore,ClientStore,AuditPublisher,Locker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	autometrics "casework/internal/autoreview/metrics"
	"casework/internal/review/models"
	id "casework/pkg/domain"
	dErrors "casework/pkg/domain-errors"
	"casework/pkg/platform/audit"
	"casework/pkg/platform/sentinel"
	"casework/pkg/requestcontext"
)

const (
	tracerName = "casework/internal/autoreview"

	sweepLockKey        = "auto-review-sweep"
	defaultSweepLockTTL = 15 * time.Minute
)

// ErrSweepInProgress is returned by ProcessAll when another sweep holds the lock.
var ErrSweepInProgress = dErrors.New(dErrors.CodeConflict, "an auto-review sweep is already in progress")

var (
	sweepRoles  = []id.Role{id.RoleAdmin, id.RoleSystem}
	createRoles = []id.Role{id.RoleAdmin, id.RoleSystem}
)

// ReviewStore is the part of the review store the policy needs.
type ReviewStore interface {
	// CreateAutoIfAbsent inserts the review unless an open auto-created review
	// exists for the same client and type, in which case it returns
	// sentinel.ErrAlreadyUsed.
	CreateAutoIfAbsent(ctx context.Context, review *models.Review) error
	DeleteStaleAutoDrafts(ctx context.Context, cutoff time.Time) ([]id.ReviewID, error)
}

type ClientStore interface {
	FindByRef(ctx context.Context, ref id.ClientRef) (*models.Client, error)
	ListAutoReviewEligible(ctx context.Context) ([]*models.Client, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// StoreTx runs fn in one unit of work. Without one, calls run directly.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Plan is the outcome of CreateMissing for one client.
type Plan struct {
	ClientRef id.ClientRef        `json:"client_ref"`
	Created   []*models.Review    `json:"created"`
	Skipped   []models.ReviewType `json:"skipped"`
}

// ClientFailure records why one client failed during a sweep.
type ClientFailure struct {
	ClientRef id.ClientRef `json:"client_ref"`
	Error     string       `json:"error"`
}

// BatchResult summarises one sweep. ClientsProcessed counts clients handled
// without error; failed clients are counted in Errors.
type BatchResult struct {
	ClientsProcessed int             `json:"clients_processed"`
	ReviewsCreated   int             `json:"reviews_created"`
	ReviewsSkipped   int             `json:"reviews_skipped"`
	Errors           int             `json:"errors"`
	Failures         []ClientFailure `json:"failures,omitempty"`
	StartedAt        time.Time       `json:"started_at"`
	FinishedAt       time.Time       `json:"finished_at"`
}

// Service applies the auto-review policy.
type Service struct {
	reviews      ReviewStore
	clients      ClientStore
	publisher    AuditPublisher
	locker       Locker
	tx           StoreTx
	metrics      *autometrics.Metrics
	logger       *slog.Logger
	tracer       trace.Tracer
	sweepLockTTL time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func WithMetrics(m *autometrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLocker sets the sweep lock. Defaults to an in-process lock.
func WithLocker(locker Locker) Option {
	return func(s *Service) {
		s.locker = locker
	}
}

func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

// WithSweepLockTTL bounds how long a crashed sweep can block the next one.
func WithSweepLockTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sweepLockTTL = ttl
		}
	}
}

func New(reviews ReviewStore, clients ClientStore, opts ...Option) *Service {
	s := &Service{
		reviews:      reviews,
		clients:      clients,
		tracer:       otel.Tracer(tracerName),
		sweepLockTTL: defaultSweepLockTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.locker == nil {
		s.locker = NewMemoryLocker()
	}
	if s.tx == nil {
		s.tx = directTx{}
	}
	return s
}

type directTx struct{}

func (directTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// CreateForClient loads a client by reference and creates its missing auto reviews.
func (s *Service) CreateForClient(ctx context.Context, actor id.Actor, ref id.ClientRef) (*Plan, error) {
	client, err := s.clients.FindByRef(ctx, ref)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "client not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load client")
	}
	return s.CreateMissing(ctx, actor, client)
}

// CreateMissing creates a draft auto review for every type the client is flagged
// for, skipping types that already have an open auto review.
func (s *Service) CreateMissing(ctx context.Context, actor id.Actor, client *models.Client) (_ *Plan, err error) {
	ctx, span := s.tracer.Start(ctx, "autoreview.create_missing")
	defer endSpan(span, &err)

	if err := requireRole(actor, "create auto reviews", createRoles...); err != nil {
		return nil, err
	}
	types, err := PlanForClient(client)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("client.ref", string(client.Ref)))

	plan := &Plan{ClientRef: client.Ref, Created: []*models.Review{}, Skipped: []models.ReviewType{}}
	now := requestcontext.Now(ctx)
	for _, reviewType := range types {
		review, err := s.createOne(ctx, actor, client, reviewType, now)
		if err != nil {
			s.metrics.IncrementOutcome(string(reviewType), "failed")
			return plan, err
		}
		if review == nil {
			s.metrics.IncrementOutcome(string(reviewType), "skipped")
			plan.Skipped = append(plan.Skipped, reviewType)
			continue
		}
		s.metrics.IncrementOutcome(string(reviewType), "created")
		plan.Created = append(plan.Created, review)
	}
	return plan, nil
}

// createOne returns nil without error when an open auto review already exists.
func (s *Service) createOne(ctx context.Context, actor id.Actor, client *models.Client, reviewType models.ReviewType, now time.Time) (*models.Review, error) {
	review, err := models.NewReview(id.NewReviewID(), client.Ref, reviewType, actor.ID, true, now)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
	}
	comment := fmt.Sprintf("Auto-created: high-risk client flagged for %s review", reviewType)
	review.AddComment(comment, now)

	var skipped bool
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.reviews.CreateAutoIfAbsent(txCtx, review); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				skipped = true
				return nil
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create auto review")
		}
		return s.emit(txCtx, audit.Event{
			EntityType: audit.EntityReview,
			EntityID:   review.ID.String(),
			Action:     audit.ActionAutoReviewCreated,
			ToStatus:   string(review.Status),
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Comment:    comment,
		})
	})
	if err != nil {
		return nil, err
	}
	if skipped {
		return nil, nil
	}
	return review, nil
}

// ProcessAll runs CreateMissing for every eligible client. A failing client is
// recorded and the sweep moves on.
func (s *Service) ProcessAll(ctx context.Context, actor id.Actor) (_ *BatchResult, err error) {
	ctx, span := s.tracer.Start(ctx, "autoreview.process_all")
	defer endSpan(span, &err)

	if err := requireRole(actor, "run the auto-review sweep", sweepRoles...); err != nil {
		return nil, err
	}

	unlock, acquired, err := s.locker.TryLock(ctx, sweepLockKey, s.sweepLockTTL)
	if err != nil {
		s.metrics.IncrementSweep("failed")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to acquire sweep lock")
	}
	if !acquired {
		s.metrics.IncrementSweep("locked")
		s.logger.InfoContext(ctx, "auto-review sweep skipped, lock held elsewhere")
		return nil, ErrSweepInProgress
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.WarnContext(ctx, "failed to release sweep lock", "error", err)
		}
	}()

	start := time.Now()
	now := requestcontext.Now(ctx)
	ctx = requestcontext.WithTime(ctx, now)
	result := &BatchResult{StartedAt: now}

	clients, err := s.clients.ListAutoReviewEligible(ctx)
	if err != nil {
		s.metrics.IncrementSweep("failed")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list eligible clients")
	}

	for _, client := range clients {
		if err := ctx.Err(); err != nil {
			s.metrics.IncrementSweep("failed")
			return result, dErrors.Wrap(err, dErrors.CodeTimeout, "auto-review sweep interrupted")
		}
		plan, err := s.CreateMissing(ctx, actor, client)
		if plan != nil {
			result.ReviewsCreated += len(plan.Created)
			result.ReviewsSkipped += len(plan.Skipped)
		}
		if err != nil {
			result.Errors++
			result.Failures = append(result.Failures, ClientFailure{ClientRef: client.Ref, Error: dErrors.MessageOf(err)})
			s.recordFailure(ctx, actor, client.Ref, err)
			continue
		}
		result.ClientsProcessed++
	}

	result.FinishedAt = time.Now().UTC()
	s.metrics.IncrementSweep("completed")
	s.metrics.ObserveSweep(start)
	s.logger.InfoContext(ctx, "auto-review sweep completed",
		"clients_processed", result.ClientsProcessed,
		"reviews_created", result.ReviewsCreated,
		"reviews_skipped", result.ReviewsSkipped,
		"errors", result.Errors,
	)
	return result, nil
}

// recordFailure logs a per-client failure and writes it to the audit trail. An
// audit failure here is logged only; it must not stop the sweep.
func (s *Service) recordFailure(ctx context.Context, actor id.Actor, ref id.ClientRef, cause error) {
	s.logger.WarnContext(ctx, "auto-review creation failed",
		"client_ref", string(ref),
		"error", cause,
	)
	message := dErrors.MessageOf(cause)
	if message == "" {
		message = cause.Error()
	}
	err := s.emit(ctx, audit.Event{
		EntityType: audit.EntityClient,
		EntityID:   string(ref),
		Action:     audit.ActionAutoReviewFailed,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Comment:    message,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to record auto-review failure", "client_ref", string(ref), "error", err)
	}
}

// CleanupStaleDrafts deletes auto-created drafts that were never submitted and
// are older than olderThan, together with everything they own.
func (s *Service) CleanupStaleDrafts(ctx context.Context, actor id.Actor, olderThan time.Duration) (_ int, err error) {
	ctx, span := s.tracer.Start(ctx, "autoreview.cleanup_stale_drafts")
	defer endSpan(span, &err)

	if err := requireRole(actor, "clean up stale drafts", sweepRoles...); err != nil {
		return 0, err
	}
	if olderThan <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "olderThan must be positive")
	}

	cutoff := requestcontext.Now(ctx).Add(-olderThan)
	var deleted []id.ReviewID
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		ids, err := s.reviews.DeleteStaleAutoDrafts(txCtx, cutoff)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete stale drafts")
		}
		deleted = ids
		if len(ids) == 0 {
			return nil
		}
		return s.emit(txCtx, audit.Event{
			EntityType: audit.EntitySweep,
			EntityID:   "stale-drafts",
			Action:     audit.ActionStaleDraftsDeleted,
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Comment:    fmt.Sprintf("deleted %d auto-created draft(s) created before %s", len(ids), cutoff.UTC().Format(time.RFC3339)),
		})
	})
	if err != nil {
		return 0, err
	}
	s.metrics.AddStaleDraftsDeleted(len(deleted))
	s.logger.InfoContext(ctx, "stale auto drafts cleaned up", "deleted", len(deleted), "cutoff", cutoff)
	return len(deleted), nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

func requireRole(actor id.Actor, action string, roles ...id.Role) error {
	if actor.IsZero() || !actor.Role.IsValid() {
		return dErrors.New(dErrors.CodeUnauthorized, "an identified actor is required")
	}
	if !actor.HasRole(roles...) {
		return dErrors.Newf(dErrors.CodeForbidden, "role %s may not %s", actor.Role, action)
	}
	return nil
}

func endSpan(span trace.Span, errp *error) {
	if err := *errp; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}
