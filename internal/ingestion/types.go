// Package ingestion defines the request/response types and Kafka event
// schemas used by the document ingestion pipeline.
package ingestion

import "time"

// IngestRequest is the JSON body accepted by the ingestion HTTP endpoint.
type IngestRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Body  string `json:"body"`
}

// IngestResponse is returned to the caller after a document is accepted.
type IngestResponse struct {
	DocumentID string `json:"document_id"`
	URL        string `json:"url"`
	Status     string `json:"status"`
}

// Ingestion outcomes reported in IngestResponse.Status.
const (
	StatusAccepted  = "accepted"
	StatusUnchanged = "unchanged"
)

// IngestEvent is the Kafka message payload produced after a document is
// persisted and ready for indexing.
type IngestEvent struct {
	DocumentID string    `json:"document_id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Body       string    `json:"body"`
	IngestedAt time.Time `json:"ingested_at"`
}
