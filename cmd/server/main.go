package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "mindweb/internal/adapters/http"
	"mindweb/internal/adapters/memory"
	pg "mindweb/internal/adapters/postgres"
	redisstore "mindweb/internal/adapters/redis"
	"mindweb/internal/config"
	"mindweb/internal/events"
	"mindweb/internal/logger"
	"mindweb/internal/metrics"
	"mindweb/internal/ports"
	"mindweb/internal/services/extractor"
	"mindweb/internal/services/mindmap"
	"mindweb/internal/services/scraper"
	"mindweb/internal/services/summarizer"
	"mindweb/internal/workers/pipelinerunner"
)

// shutdownGrace is added to the job timeout to bound HTTP shutdown plus
// draining of running jobs.
const shutdownGrace = 15 * time.Second

func main() {
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		lg.Error("server stopped", logger.Error(err))
		_ = lg.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, lg logger.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg.Store, lg)
	if err != nil {
		return err
	}
	defer closeStore()

	m := metrics.New(nil)
	hub := events.NewHub()
	jobs := hub.Wrap(store)

	var summaryOpts []summarizer.Option
	summaryOpts = append(summaryOpts, summarizer.WithDefaultLength(cfg.Summary.DefaultLength))
	if cfg.LLM.Enabled() {
		summaryOpts = append(summaryOpts, summarizer.WithModel(summarizer.NewAnthropicModel(cfg.LLM)))
		lg.Info("model summarizer enabled", logger.String("model", cfg.LLM.Model))
	}
	sum := summarizer.New(lg.With(logger.String("component", "summarizer")), summaryOpts...)
	ext := extractor.New(cfg.Fetch, lg.With(logger.String("component", "extractor")))
	builder := mindmap.New()

	pipeline := pipelinerunner.NewPipeline(ext, sum, builder, m)
	runner := pipelinerunner.New(jobs, pipeline, pipelinerunner.Config{
		Workers:    cfg.Workers.Count,
		QueueSize:  cfg.Workers.QueueSize,
		JobTimeout: cfg.Workers.JobTimeout,
	}, lg.With(logger.String("component", "runner")), m)
	// Resume before Start so every job marked running belongs to a previous process.
	if n, err := runner.Resume(ctx); err != nil {
		lg.Warn("resume queued jobs", logger.Error(err))
	} else if n > 0 {
		lg.Info("resumed queued jobs", logger.Int("count", n))
	}
	runner.Start(ctx)
	lg.Info("scrape workers started", logger.Int("workers", cfg.Workers.Count))

	svc := scraper.New(jobs, runner, pipeline, hub, cfg.Summary, lg.With(logger.String("component", "scraper")), m)
	api := httpadapter.New(svc, sum, builder, cfg.Summary,
		httpadapter.WithMetrics(m),
		httpadapter.WithLogger(lg.With(logger.String("component", "http"))),
		httpadapter.WithSyncTimeout(cfg.Workers.JobTimeout),
	)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	lg.Info("listening", logger.String("addr", cfg.ListenAddr), logger.String("store", cfg.Store.Backend))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		lg.Info("shutting down", logger.String("signal", sig.String()))
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Workers.JobTimeout+shutdownGrace)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Warn("http shutdown", logger.Error(err))
	}
	// Stop taking queued jobs; claimed ones finish within the same budget.
	cancel()
	if err := runner.Drain(shutdownCtx); err != nil {
		lg.Warn("jobs still running at exit", logger.Error(err))
	}
	return nil
}

// openStore connects the configured job store backend.
func openStore(ctx context.Context, cfg config.StoreConfig, lg logger.Logger) (ports.JobStore, func(), error) {
	switch cfg.Backend {
	case "redis":
		client, err := redisstore.Connect(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("redis connect: %w", err)
		}
		return redisstore.NewJobStore(client, cfg.RedisPrefix), func() { _ = client.Close() }, nil
	case "postgres":
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db connect: %w", err)
		}
		n, err := db.Migrate(ctx)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		lg.Info("migrations applied", logger.Int("count", n))
		return db, db.Close, nil
	default:
		return memory.NewJobStore(), func() {}, nil
	}
}
