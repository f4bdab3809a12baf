// Package publisher persists documents to PostgreSQL and publishes ingest
// events to Kafka for downstream index building. Documents are keyed by
// URL; re-submitting an unchanged body is detected via a content hash and
// produces no event.
package publisher

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/decimalpack/Static-Website-Search/internal/ingestion"
	"github.com/decimalpack/Static-Website-Search/pkg/kafka"
	"github.com/decimalpack/Static-Website-Search/pkg/postgres"
)

// Publisher coordinates document persistence and Kafka event production.
type Publisher struct {
	db       *postgres.Client
	producer *kafka.Producer
	logger   *slog.Logger
}

// New creates a Publisher with the given database and Kafka producer.
func New(db *postgres.Client, producer *kafka.Producer) *Publisher {
	return &Publisher{
		db:       db,
		producer: producer,
		logger:   slog.Default().With("component", "publisher"),
	}
}

// EnsureSchema creates the documents table if it does not exist.
func (p *Publisher) EnsureSchema(ctx context.Context) error {
	_, err := p.db.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			id           BIGSERIAL PRIMARY KEY,
			url          TEXT NOT NULL UNIQUE,
			title        TEXT NOT NULL,
			body         TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			ingested_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("creating documents table: %w", err)
	}
	return nil
}

// Ingest upserts the document by URL and publishes an IngestEvent to Kafka.
// If the URL was already ingested with the same body, nothing is written or
// published and the response reports the document as unchanged.
func (p *Publisher) Ingest(ctx context.Context, req *ingestion.IngestRequest) (*ingestion.IngestResponse, error) {
	contentHash := fmt.Sprintf("%x", sha256.Sum256([]byte(req.Body)))

	var existingID int64
	var existingHash string
	err := p.db.DB.QueryRowContext(ctx,
		`SELECT id, content_hash FROM documents WHERE url=$1`, req.URL).
		Scan(&existingID, &existingHash)
	switch {
	case err == sql.ErrNoRows:
		// First time this URL is seen.
	case err != nil:
		return nil, fmt.Errorf("querying document by url: %w", err)
	case existingHash == contentHash:
		p.logger.Info("document unchanged, skipping",
			"url", req.URL,
			"doc_id", existingID,
		)
		return &ingestion.IngestResponse{
			DocumentID: strconv.FormatInt(existingID, 10),
			URL:        req.URL,
			Status:     ingestion.StatusUnchanged,
		}, nil
	}

	var docID int64
	err = p.db.InTx(ctx, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			INSERT INTO documents (url, title, body, content_hash, ingested_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (url) DO UPDATE
			SET title = EXCLUDED.title,
			    body = EXCLUDED.body,
			    content_hash = EXCLUDED.content_hash,
			    ingested_at = now()
			RETURNING id`,
			req.URL, req.Title, req.Body, contentHash).Scan(&docID)
	})
	if err != nil {
		return nil, fmt.Errorf("upserting document: %w", err)
	}

	event := kafka.Event{
		Key: req.URL,
		Value: ingestion.IngestEvent{
			DocumentID: strconv.FormatInt(docID, 10),
			Title:      req.Title,
			URL:        req.URL,
			Body:       req.Body,
			IngestedAt: time.Now().UTC(),
		},
	}
	if err := p.producer.Publish(ctx, event); err != nil {
		// The document row exists, so a later re-ingest or batch rebuild
		// can still pick it up.
		p.logger.Error("failed to publish ingest event",
			"doc_id", docID,
			"url", req.URL,
			"error", err,
		)
	}

	return &ingestion.IngestResponse{
		DocumentID: strconv.FormatInt(docID, 10),
		URL:        req.URL,
		Status:     ingestion.StatusAccepted,
	}, nil
}

// LoadDocuments returns every stored document in insertion order, the input
// for full index rebuilds.
func LoadDocuments(ctx context.Context, db *postgres.Client) ([]ingestion.IngestEvent, error) {
	rows, err := db.DB.QueryContext(ctx,
		`SELECT id, url, title, body, ingested_at FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []ingestion.IngestEvent
	for rows.Next() {
		var id int64
		var doc ingestion.IngestEvent
		if err := rows.Scan(&id, &doc.URL, &doc.Title, &doc.Body, &doc.IngestedAt); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		doc.DocumentID = strconv.FormatInt(id, 10)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
