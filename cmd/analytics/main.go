// Command analytics starts the analytics aggregation service.
//
// It consumes search and indexing events from Kafka, aggregates them in
// memory (latency percentiles, cache hit rate, top queries), snapshots the
// rollup to PostgreSQL periodically, and exposes GET /api/v1/analytics for
// dashboards.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/decimalpack/Static-Website-Search/internal/analytics"
	"github.com/decimalpack/Static-Website-Search/internal/analytics/aggregator"
	"github.com/decimalpack/Static-Website-Search/pkg/config"
	"github.com/decimalpack/Static-Website-Search/pkg/health"
	"github.com/decimalpack/Static-Website-Search/pkg/kafka"
	"github.com/decimalpack/Static-Website-Search/pkg/logger"
	"github.com/decimalpack/Static-Website-Search/pkg/middleware"
	"github.com/decimalpack/Static-Website-Search/pkg/postgres"
)

const snapshotInterval = 5 * time.Minute

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analytics service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agg := analytics.NewAggregator()
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, analytics.HandleEvent(agg))
	go func() {
		if err := consumer.Start(ctx); err != nil {
			slog.Error("analytics consumer error", "error", err)
		}
	}()
	slog.Info("analytics aggregator started", "topic", cfg.Kafka.Topics.AnalyticsEvents)

	// Snapshots are best-effort; the service still aggregates in memory when
	// postgres is down.
	var store *aggregator.Store
	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, snapshots disabled", "error", err)
	} else {
		defer db.Close()
		store = aggregator.NewStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			slog.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
		if last, err := store.LatestSnapshot(ctx); err != nil {
			slog.Warn("could not read latest snapshot", "error", err)
		} else if last != nil {
			slog.Info("resuming after persisted snapshot",
				"total_searches", last.TotalSearches,
				"total_docs_indexed", last.TotalDocIndexed,
			)
		}
		store.StartPeriodicSave(ctx, agg, snapshotInterval)
	}

	var snapshots analytics.SnapshotLister
	if store != nil {
		snapshots = store
	}
	analyticsHandler := analytics.NewHandler(agg, snapshots)

	checker := health.NewChecker()
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if db == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := db.DB.PingContext(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analytics", analyticsHandler.Stats)
	mux.HandleFunc("GET /api/v1/analytics/history", analyticsHandler.History)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("analytics service stopped")
}
