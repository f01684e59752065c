package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"casework/internal/autoreview"
	autohandler "casework/internal/autoreview/handler"
	autometrics "casework/internal/autoreview/metrics"
	"casework/internal/platform/config"
	"casework/internal/platform/identity"
	"casework/internal/platform/kafka"
	"casework/internal/platform/metrics"
	"casework/internal/platform/postgres"
	"casework/internal/platform/redis"
	reviewhandler "casework/internal/review/handler"
	reviewmetrics "casework/internal/review/metrics"
	"casework/internal/review/service"
	clientstore "casework/internal/review/store/client"
	reviewstore "casework/internal/review/store/review"
	id "casework/pkg/domain"
	"casework/pkg/platform/audit"
	"casework/pkg/platform/audit/outbox"
	"casework/pkg/platform/audit/publisher"
	auditmemory "casework/pkg/platform/audit/store/memory"
	auditpostgres "casework/pkg/platform/audit/store/postgres"
	"casework/pkg/platform/httputil"
	"casework/pkg/platform/middleware/auth"
	"casework/pkg/platform/middleware/request"
	"casework/pkg/platform/middleware/requesttime"
	txcontext "casework/pkg/platform/tx"
)

const auditTopicPartitions = 3

type reviewStore interface {
	service.ReviewStore
	autoreview.ReviewStore
}

type clientStore interface {
	service.ClientStore
	autoreview.ClientStore
}

// app holds the long-lived dependencies of one server process.
type app struct {
	cfg    config.Config
	logger *slog.Logger

	db       *sql.DB
	redis    *redis.Client
	producer *kafka.Producer
	relay    *outbox.Relay

	registry   *prometheus.Registry
	reviews    *service.Service
	autoReview *autoreview.Service
	scheduler  *autoreview.Scheduler
	validator  *identity.Validator
}

func buildApp(ctx context.Context, cfg config.Config, log *slog.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: log}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	var (
		reviews    reviewStore
		clients    clientStore
		auditStore audit.Store
		dbTx       *txcontext.DBTx
	)
	if cfg.Database.URL != "" {
		if a.db, err = postgres.Open(ctx, cfg.Database.URL); err != nil {
			return nil, err
		}
		if err = postgres.Migrate(a.db); err != nil {
			return nil, err
		}
		dbTx = txcontext.NewDBTx(a.db, 0)
		reviews = reviewstore.NewPostgres(a.db)
		clients = clientstore.NewPostgres(a.db)
		auditStore = auditpostgres.New(a.db)
	} else {
		log.Warn("DATABASE_URL not set; using in-memory stores")
		reviews = reviewstore.NewInMemory()
		clients = clientstore.NewInMemory()
		auditStore = auditmemory.NewInMemoryStore()
	}

	if a.redis, err = redis.New(ctx, cfg.Redis); err != nil {
		return nil, err
	}
	if err = a.connectKafka(ctx); err != nil {
		return nil, err
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	auditPublisher := publisher.NewPublisher(auditStore, publisher.WithLogger(log))

	reviewOpts := []service.Option{
		service.WithLogger(log),
		service.WithAuditPublisher(auditPublisher),
		service.WithMetrics(reviewmetrics.New(a.registry)),
		service.WithRequireDocuments(cfg.Workflow.RequireDocuments),
		service.WithBlockApprovalOnOpenExceptions(cfg.Workflow.BlockApprovalOnOpenExceptions),
	}
	autoOpts := []autoreview.Option{
		autoreview.WithLogger(log),
		autoreview.WithAuditPublisher(auditPublisher),
		autoreview.WithMetrics(autometrics.New(a.registry)),
	}
	if dbTx != nil {
		reviewOpts = append(reviewOpts, service.WithTx(dbTx))
		autoOpts = append(autoOpts, autoreview.WithTx(dbTx))
	}
	if a.redis != nil {
		autoOpts = append(autoOpts, autoreview.WithLocker(autoreview.NewRedisLocker(a.redis.Client)))
	} else {
		log.Warn("REDIS_URL not set; the sweep lock only covers this process")
	}

	a.reviews = service.New(reviews, clients, reviewOpts...)
	a.autoReview = autoreview.New(reviews, clients, autoOpts...)

	systemActor := id.Actor{ID: id.UserID(cfg.Workflow.SystemActorID), Role: id.RoleSystem}
	a.scheduler, err = autoreview.NewScheduler(a.autoReview, systemActor, autoreview.ScheduleConfig{
		AutoReview:    cfg.Schedule.AutoReview,
		Cleanup:       cfg.Schedule.Cleanup,
		StaleDraftAge: cfg.Workflow.StaleDraftAge,
		JobTimeout:    time.Hour,
	}, log)
	if err != nil {
		return nil, err
	}

	a.validator = identity.NewValidator(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer)
	return a, nil
}

// connectKafka starts the outbox relay. It needs both Postgres, which holds
// the outbox, and at least one broker.
func (a *app) connectKafka(ctx context.Context) error {
	if len(a.cfg.Kafka.Brokers) == 0 {
		return nil
	}
	if a.db == nil {
		a.logger.Warn("KAFKA_BROKERS set without DATABASE_URL; outbox relay disabled")
		return nil
	}
	producer, err := kafka.NewProducer(a.cfg.Kafka.Brokers, a.cfg.Kafka.AuditTopic)
	if err != nil {
		return err
	}
	a.producer = producer

	topicCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := producer.EnsureTopic(topicCtx, auditTopicPartitions, 1); err != nil {
		return fmt.Errorf("ensure audit topic %q: %w", a.cfg.Kafka.AuditTopic, err)
	}

	a.relay = outbox.NewRelay(a.db, producer,
		outbox.WithLogger(a.logger),
		outbox.WithPollInterval(a.cfg.Kafka.OutboxPollInterval),
	)
	return nil
}

func (a *app) router() http.Handler {
	httpMetrics := metrics.New(a.registry)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(httpMetrics.Middleware)
	r.Use(request.Logger(a.logger))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", a.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{Registry: a.registry}))

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireActor(a.validator, a.logger))
		reviewhandler.New(a.reviews, a.logger).Register(r)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(a.logger, id.RoleAdmin, id.RoleSystem))
			autohandler.New(a.autoReview, a.cfg.Workflow.StaleDraftAge, a.logger).Register(r)
		})
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (a *app) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: map[string]string{}}
	check := func(name string, fn func(context.Context) error) {
		if err := fn(ctx); err != nil {
			resp.Status = "degraded"
			resp.Checks[name] = err.Error()
			return
		}
		resp.Checks[name] = "ok"
	}
	if a.db != nil {
		check("postgres", a.db.PingContext)
	}
	if a.redis != nil {
		check("redis", a.redis.Health)
	}
	if a.producer != nil {
		check("kafka", a.producer.Health)
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, resp)
}

func (a *app) storageMode() string {
	if a.db != nil {
		return "postgres"
	}
	return "memory"
}

func (a *app) close() {
	if a.producer != nil {
		a.producer.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("close database", "error", err)
		}
	}
}
