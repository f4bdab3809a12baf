// Package indexer builds spectral filter records from documents: it
// tokenizes the text, accumulates term frequencies, builds the counting
// Bloom filter, and persists the encoded record.
package indexer

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/decimalpack/Static-Website-Search/internal/index"
	"github.com/decimalpack/Static-Website-Search/internal/indexer/tokenizer"
	"github.com/decimalpack/Static-Website-Search/internal/sbf"
	"github.com/decimalpack/Static-Website-Search/pkg/config"
)

// Document is the raw input to the builder.
type Document struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Body  string `json:"body"`
}

// RecordStore persists built filter records. *index.Store satisfies it.
type RecordStore interface {
	Save(ctx context.Context, rec index.Record) error
}

// Engine turns documents into persisted filter records.
type Engine struct {
	store  RecordStore
	cfg    config.BuilderConfig
	logger *slog.Logger
}

// NewEngine creates an Engine writing to the given store.
func NewEngine(store RecordStore, cfg config.BuilderConfig) *Engine {
	return &Engine{
		store:  store,
		cfg:    cfg,
		logger: slog.Default().With("component", "indexer"),
	}
}

// IndexDocument builds and persists the filter for a single document.
// Width minimization is a whole-corpus transform and does not apply here;
// use BuildBatch for that.
func (e *Engine) IndexDocument(ctx context.Context, doc Document) (index.Record, error) {
	termFreq := tokenizer.TermFrequencies(doc.Title + " " + doc.Body)
	f, err := sbf.Build(termFreq, e.cfg.FalsePositiveRate, e.cfg.CounterWidth, doc.Title, doc.URL)
	if err != nil {
		return index.Record{}, fmt.Errorf("building filter for %s: %w", doc.URL, err)
	}
	rec := index.FromFilter(f)
	if err := e.store.Save(ctx, rec); err != nil {
		return index.Record{}, err
	}
	e.logger.Info("document indexed",
		"url", doc.URL,
		"terms", len(termFreq),
		"slots", rec.Size,
		"encoded_chars", len([]rune(rec.SBFBase2p15)),
	)
	return rec, nil
}

// BuildBatch builds filters for a whole corpus at once. When width
// minimization is enabled, every document's frequencies are first rewritten
// to ranks so narrow counters keep the relative ordering between documents.
// Filters build in parallel; records persist in document order so the
// stored index keeps a stable tie-break order.
func (e *Engine) BuildBatch(ctx context.Context, docs []Document) ([]index.Record, error) {
	freqs := make([]map[string]uint32, len(docs))
	for i, doc := range docs {
		freqs[i] = tokenizer.TermFrequencies(doc.Title + " " + doc.Body)
	}
	if e.cfg.MinimizeWidths {
		freqs = MinimizeWidths(freqs)
	}

	records := make([]index.Record, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range docs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := sbf.Build(freqs[i], e.cfg.FalsePositiveRate, e.cfg.CounterWidth, docs[i].Title, docs[i].URL)
			if err != nil {
				return fmt.Errorf("building filter for %s: %w", docs[i].URL, err)
			}
			records[i] = index.FromFilter(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, rec := range records {
		if err := e.store.Save(ctx, rec); err != nil {
			return nil, err
		}
	}
	e.logger.Info("batch build complete",
		"documents", len(docs),
		"minimize_widths", e.cfg.MinimizeWidths,
	)
	return records, nil
}
