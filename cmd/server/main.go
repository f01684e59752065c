package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"casework/internal/platform/config"
	"casework/internal/platform/httpserver"
	"casework/internal/platform/logger"
	"casework/internal/platform/tracing"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal service packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.UsesDevSigningKey() {
		log.Warn("using the development JWT signing key; set JWT_SIGNING_KEY in production")
	}

	shutdownTracing := tracing.Setup(cfg.Tracing, "casework")
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	app, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.close()

	srv := httpserver.New(cfg.Server.Addr, app.router())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting casework", "addr", cfg.Server.Addr, "storage", app.storageMode())
		return httpserver.Run(gctx, srv, log)
	})
	g.Go(func() error {
		return app.scheduler.Run(gctx)
	})
	if app.relay != nil {
		g.Go(func() error {
			return app.relay.Run(gctx)
		})
	}
	return g.Wait()
}
