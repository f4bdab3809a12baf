// Package aggregator persists the analytics rollup to PostgreSQL so the
// stats survive restarts of the in-memory aggregator.
package aggregator

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/decimalpack/Static-Website-Search/internal/analytics"
	"github.com/decimalpack/Static-Website-Search/pkg/postgres"
)

// Store writes and reads stats snapshots in the analytics_snapshots table.
type Store struct {
	db  *postgres.Client
	log *slog.Logger
}

func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:  db,
		log: slog.Default().With("component", "analytics-store"),
	}
}

// EnsureSchema creates the snapshots table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analytics_snapshots (
			id          BIGSERIAL PRIMARY KEY,
			data        JSONB NOT NULL,
			captured_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("creating analytics_snapshots table: %w", err)
	}
	return nil
}

// SaveSnapshot stores one rollup as a JSONB row.
func (s *Store) SaveSnapshot(ctx context.Context, stats analytics.AggregatedStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling stats: %w", err)
	}
	_, err = s.db.DB.ExecContext(ctx,
		`INSERT INTO analytics_snapshots (data, captured_at) VALUES ($1, $2)`,
		data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving analytics snapshot: %w", err)
	}
	s.log.Info("analytics snapshot saved",
		"total_searches", stats.TotalSearches,
		"total_docs_indexed", stats.TotalDocIndexed,
	)
	return nil
}

// LatestSnapshot returns the most recent snapshot, or nil when the table
// is empty.
func (s *Store) LatestSnapshot(ctx context.Context) (*analytics.AggregatedStats, error) {
	var data []byte
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT data FROM analytics_snapshots ORDER BY captured_at DESC LIMIT 1`,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest snapshot: %w", err)
	}
	var stats analytics.AggregatedStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot: %w", err)
	}
	return &stats, nil
}

// ListSnapshots returns up to limit snapshots, newest first. Rows that no
// longer unmarshal are skipped.
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]analytics.AggregatedStats, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT data FROM analytics_snapshots ORDER BY captured_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []analytics.AggregatedStats
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		var stats analytics.AggregatedStats
		if err := json.Unmarshal(data, &stats); err != nil {
			s.log.Warn("skipping corrupt snapshot", "error", err)
			continue
		}
		out = append(out, stats)
	}
	return out, rows.Err()
}

// StartPeriodicSave snapshots the aggregator every interval until ctx is
// cancelled, then writes one final snapshot on the way out.
func (s *Store) StartPeriodicSave(ctx context.Context, agg *analytics.Aggregator, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.SaveSnapshot(ctx, agg.Stats()); err != nil {
					s.log.Error("periodic snapshot failed", "error", err)
				}
			case <-ctx.Done():
				final, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := s.SaveSnapshot(final, agg.Stats()); err != nil {
					s.log.Error("final snapshot failed", "error", err)
				}
				cancel()
				return
			}
		}
	}()
	s.log.Info("periodic snapshot started", "interval", interval)
}
