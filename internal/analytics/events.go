// Package analytics collects search and indexing events, aggregates them
// in memory, and exposes the rolled-up stats over HTTP.
package analytics

import "time"

type EventType string

const (
	EventSearch     EventType = "search"
	EventCacheHit   EventType = "cache_hit"
	EventCacheMiss  EventType = "cache_miss"
	EventIndexDoc   EventType = "index_document"
	EventZeroResult EventType = "zero_result"
)

// SearchEvent describes one completed search request.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Terms     []string  `json:"terms"`
	TotalHits int       `json:"total_hits"`
	Returned  int       `json:"returned"`
	Skipped   int       `json:"skipped"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// IndexEvent describes one document filter build.
type IndexEvent struct {
	Type         EventType `json:"type"`
	DocumentID   string    `json:"document_id"`
	URL          string    `json:"url"`
	Slots        uint32    `json:"slots"`
	EncodedChars int       `json:"encoded_chars"`
	LatencyMs    int64     `json:"latency_ms"`
	Timestamp    time.Time `json:"timestamp"`
}
