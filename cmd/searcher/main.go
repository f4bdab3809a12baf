// Command searcher serves ranked full-text search over the filter index.
//
// At startup it loads every filter record from PostgreSQL into an immutable
// in-memory index, then answers GET /api/v1/search?q=... by scoring all
// documents against the tokenized query. Results are cached in Redis when
// available, and search analytics events are published to Kafka.
//
// Usage:
//
//	go run ./cmd/searcher [-config configs/development.yaml] [-index index.json]
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
	"github.com/decimalpack/Static-Website-Search/internal/index"
	"github.com/decimalpack/Static-Website-Search/internal/indexer"
	"github.com/decimalpack/Static-Website-Search/internal/searcher/cache"
	"github.com/decimalpack/Static-Website-Search/internal/searcher/handler"
	"github.com/decimalpack/Static-Website-Search/internal/searcher/ranker"
	"github.com/decimalpack/Static-Website-Search/pkg/config"
	"github.com/decimalpack/Static-Website-Search/pkg/health"
	"github.com/decimalpack/Static-Website-Search/pkg/kafka"
	"github.com/decimalpack/Static-Website-Search/pkg/logger"
	"github.com/decimalpack/Static-Website-Search/pkg/metrics"
	"github.com/decimalpack/Static-Website-Search/pkg/middleware"
	"github.com/decimalpack/Static-Website-Search/pkg/postgres"
	pkgredis "github.com/decimalpack/Static-Website-Search/pkg/redis"
	"github.com/decimalpack/Static-Website-Search/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	indexPath := flag.String("index", "", "load the index from a JSON file instead of postgres")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting searcher service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdownMetrics(shutdownCtx)
		}()
	}

	var db *postgres.Client
	records, err := loadRecords(ctx, cfg, *indexPath, &db)
	if err != nil {
		slog.Error("failed to load index records", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	idx, err := index.Load(records)
	if err != nil {
		slog.Error("failed to build index", "error", err)
		os.Exit(1)
	}
	slog.Info("index loaded", "filters", idx.Len(), "skipped", idx.Skipped())
	if m != nil {
		m.FiltersLoaded.Set(float64(idx.Len()))
		m.FiltersSkippedTotal.Add(float64(idx.Skipped()))
	}

	var queryCache *cache.QueryCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis)
		slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
	defer analyticsProducer.Close()
	collector := analytics.NewCollector(analyticsProducer, 10000)
	collector.Start(ctx)
	defer collector.Close()

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		if idx.Len() > 0 {
			return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d filters", idx.Len())}
		}
		return health.ComponentHealth{Status: health.StatusDegraded, Message: "index is empty"}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := handler.New(ranker.New(idx), queryCache, collector, m, cfg.Search.DefaultLimit, cfg.Search.MaxResults)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.Timeout(cfg.Search.Timeout)(chain)
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

	slog.Info("searcher service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("searcher service stopped")
}

// loadRecords reads the filter records from a JSON export when indexPath is
// set, otherwise from PostgreSQL with retries so the searcher survives a
// database that is still coming up.
func loadRecords(ctx context.Context, cfg *config.Config, indexPath string, db **postgres.Client) ([]index.Record, error) {
	if indexPath != "" {
		f, err := os.Open(indexPath)
		if err != nil {
			return nil, fmt.Errorf("opening index file: %w", err)
		}
		defer f.Close()
		return indexer.ImportJSON(f)
	}

	var records []index.Record
	err := resilience.Retry(ctx, "load-index", resilience.RetryConfig{
		MaxAttempts:  5,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
	}, func() error {
		client, err := postgres.New(cfg.Postgres)
		if err != nil {
			return err
		}
		store := index.NewStore(client)
		records, err = store.LoadAll(ctx)
		if err != nil {
			client.Close()
			return err
		}
		*db = client
		return nil
	})
	return records, err
}
