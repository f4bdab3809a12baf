package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// SnapshotLister reads persisted stats snapshots, newest first.
type SnapshotLister interface {
	ListSnapshots(ctx context.Context, limit int) ([]AggregatedStats, error)
}

// Handler serves the live rollup and, when snapshots are configured, the
// persisted history.
type Handler struct {
	aggregator *Aggregator
	snapshots  SnapshotLister
	log        *slog.Logger
}

// NewHandler creates a Handler. snapshots may be nil when persistence is
// disabled; History then answers 503.
func NewHandler(aggregator *Aggregator, snapshots SnapshotLister) *Handler {
	return &Handler{
		aggregator: aggregator,
		snapshots:  snapshots,
		log:        slog.Default().With("component", "analytics-handler"),
	}
}

// Stats returns the current in-memory rollup.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.aggregator.Stats())
}

// History returns up to limit persisted snapshots, newest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		http.Error(w, `{"error":"snapshot storage not configured"}`, http.StatusServiceUnavailable)
		return
	}
	limit := 24
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, `{"error":"limit must be a positive integer"}`, http.StatusBadRequest)
			return
		}
		limit = n
	}
	snaps, err := h.snapshots.ListSnapshots(r.Context(), limit)
	if err != nil {
		h.log.Error("failed to list snapshots", "error", err)
		http.Error(w, `{"error":"failed to load snapshot history"}`, http.StatusInternalServerError)
		return
	}
	if snaps == nil {
		snaps = []AggregatedStats{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(snaps),
		"snapshots": snaps,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to write analytics response", "error", err)
	}
}
