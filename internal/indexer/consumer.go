package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/decimalpack/Static-Website-Search/internal/analytics"
	"github.com/decimalpack/Static-Website-Search/internal/ingestion"
	"github.com/decimalpack/Static-Website-Search/pkg/kafka"
)

// HandleMessage returns a kafka.MessageHandler that rebuilds one
// document's filter per ingest event. track may be nil; when set it
// receives an analytics event per successful build.
func HandleMessage(engine *Engine, track func(analytics.IndexEvent)) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.IngestEvent](value)
		if err != nil {
			return fmt.Errorf("decoding ingest event: %w", err)
		}
		start := time.Now()
		rec, err := engine.IndexDocument(ctx, Document{
			Title: event.Title,
			URL:   event.URL,
			Body:  event.Body,
		})
		if err != nil {
			return err
		}
		if track != nil {
			track(analytics.IndexEvent{
				Type:         analytics.EventIndexDoc,
				DocumentID:   event.DocumentID,
				URL:          rec.URL,
				Slots:        rec.Size,
				EncodedChars: len([]rune(rec.SBFBase2p15)),
				LatencyMs:    time.Since(start).Milliseconds(),
				Timestamp:    time.Now().UTC(),
			})
		}
		return nil
	}
}
