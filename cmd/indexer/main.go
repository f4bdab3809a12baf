// Command indexer builds spectral filter records from documents.
//
// By default it consumes ingest events from Kafka and rebuilds one filter
// per event. Two maintenance modes run to completion and exit:
//
//	-rebuild        rebuild every filter from the documents table (applies
//	                width minimization when configured)
//	-export FILE    write the filter records to FILE as JSON
//
// Usage:
//
//	go run ./cmd/indexer [-config configs/development.yaml] [-rebuild] [-export index.json]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/decimalpack/Static-Website-Search/internal/analytics"
	"github.com/decimalpack/Static-Website-Search/internal/analytics/collector"
	"github.com/decimalpack/Static-Website-Search/internal/index"
	"github.com/decimalpack/Static-Website-Search/internal/indexer"
	"github.com/decimalpack/Static-Website-Search/internal/ingestion/publisher"
	"github.com/decimalpack/Static-Website-Search/pkg/config"
	"github.com/decimalpack/Static-Website-Search/pkg/kafka"
	"github.com/decimalpack/Static-Website-Search/pkg/logger"
	"github.com/decimalpack/Static-Website-Search/pkg/metrics"
	"github.com/decimalpack/Static-Website-Search/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	rebuild := flag.Bool("rebuild", false, "rebuild all filters from the documents table and exit")
	exportPath := flag.String("export", "", "export the filter records to a JSON file and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting indexer service",
		"fp_rate", cfg.Builder.FalsePositiveRate,
		"counter_width", cfg.Builder.CounterWidth,
		"minimize_widths", cfg.Builder.MinimizeWidths,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := index.NewStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	if *exportPath != "" {
		if err := exportIndex(ctx, store, *exportPath); err != nil {
			slog.Error("export failed", "error", err)
			os.Exit(1)
		}
		return
	}

	engine := indexer.NewEngine(store, cfg.Builder)

	if *rebuild {
		if err := rebuildIndex(ctx, db, store, engine); err != nil {
			slog.Error("rebuild failed", "error", err)
			os.Exit(1)
		}
		return
	}

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

	analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
	defer analyticsProducer.Close()
	batch := collector.NewBatchCollector(analyticsProducer, 100, 5*time.Second)
	batch.Start(ctx)
	defer batch.Close()

	track := func(event analytics.IndexEvent) {
		batch.Track("analytics", event)
		if m != nil {
			m.DocsIndexedTotal.Inc()
			m.FilterBuildDuration.Observe(float64(event.LatencyMs) / 1000)
			m.FilterSlots.Observe(float64(event.Slots))
		}
	}

	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngest, indexer.HandleMessage(engine, track))
	slog.Info("indexer consuming from kafka",
		"topic", cfg.Kafka.Topics.DocumentIngest,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := consumer.Start(ctx); err != nil {
		slog.Error("consumer error", "error", err)
		os.Exit(1)
	}
	slog.Info("indexer service stopped")
}

func exportIndex(ctx context.Context, store *index.Store, path string) error {
	records, err := store.LoadAll(ctx)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()
	if err := indexer.ExportJSON(records, f); err != nil {
		return err
	}
	slog.Info("index exported", "path", path, "records", len(records))
	return nil
}

func rebuildIndex(ctx context.Context, db *postgres.Client, store *index.Store, engine *indexer.Engine) error {
	events, err := publisher.LoadDocuments(ctx, db)
	if err != nil {
		return err
	}
	docs := make([]indexer.Document, len(events))
	for i, ev := range events {
		docs[i] = indexer.Document{Title: ev.Title, URL: ev.URL, Body: ev.Body}
	}
	records, err := engine.BuildBatch(ctx, docs)
	if err != nil {
		return err
	}
	total, err := store.Count(ctx)
	if err != nil {
		return err
	}
	slog.Info("index rebuilt", "documents", len(records), "filters_stored", total)
	return nil
}
