package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/decimalpack/Static-Website-Search/pkg/postgres"
)

// Store persists filter records in PostgreSQL. The indexer writes one row
// per document; the searcher reads the whole table once at startup.
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewStore creates a Store backed by the given PostgreSQL client.
func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "filter-store"),
	}
}

// EnsureSchema creates the filters table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS filters (
			id               BIGSERIAL PRIMARY KEY,
			url              TEXT NOT NULL UNIQUE,
			title            TEXT NOT NULL,
			sbf_base2p15     TEXT NOT NULL,
			n_hash_functions INTEGER NOT NULL,
			width            INTEGER NOT NULL,
			size             INTEGER NOT NULL,
			built_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("creating filters table: %w", err)
	}
	return nil
}

// Save upserts the record, keyed by URL. Rebuilding a document's filter
// replaces the stored encoding in place.
func (s *Store) Save(ctx context.Context, rec Record) error {
	_, err := s.db.DB.ExecContext(ctx, `
		INSERT INTO filters (url, title, sbf_base2p15, n_hash_functions, width, size)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			sbf_base2p15 = EXCLUDED.sbf_base2p15,
			n_hash_functions = EXCLUDED.n_hash_functions,
			width = EXCLUDED.width,
			size = EXCLUDED.size,
			built_at = NOW()`,
		rec.URL, rec.Title, rec.SBFBase2p15, rec.NHashFunctions, rec.Width, rec.Size,
	)
	if err != nil {
		return fmt.Errorf("saving filter for %s: %w", rec.URL, err)
	}
	s.logger.Debug("filter saved", "url", rec.URL, "slots", rec.Size, "width", rec.Width)
	return nil
}

// LoadAll returns every stored record in insertion order. The position in
// this slice is the tie-break order used by the ranker.
func (s *Store) LoadAll(ctx context.Context) ([]Record, error) {
	rows, err := s.db.DB.QueryContext(ctx, `
		SELECT url, title, sbf_base2p15, n_hash_functions, width, size
		FROM filters
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying filters: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.URL, &rec.Title, &rec.SBFBase2p15, &rec.NHashFunctions, &rec.Width, &rec.Size); err != nil {
			return nil, fmt.Errorf("scanning filter row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating filter rows: %w", err)
	}
	return records, nil
}

// Count returns the number of stored filter records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM filters`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting filters: %w", err)
	}
	return n, nil
}
