// Package handler exposes the search HTTP API.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/decimalpack/Static-Website-Search/internal/analytics"
	"github.com/decimalpack/Static-Website-Search/internal/indexer/tokenizer"
	"github.com/decimalpack/Static-Website-Search/internal/searcher/cache"
	"github.com/decimalpack/Static-Website-Search/internal/searcher/ranker"
	"github.com/decimalpack/Static-Website-Search/pkg/logger"
	"github.com/decimalpack/Static-Website-Search/pkg/metrics"
	"github.com/decimalpack/Static-Website-Search/pkg/middleware"
)

// Searcher ranks a tokenized query against the index. *ranker.Ranker
// satisfies it.
type Searcher interface {
	Search(ctx context.Context, words []string, limit int) (*ranker.Ranked, error)
}

// SearchResponse is the JSON body returned by the search endpoint.
type SearchResponse struct {
	Query string `json:"query"`
	ranker.Ranked
}

type Handler struct {
	searcher     Searcher
	cache        *cache.QueryCache
	collector    *analytics.Collector
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// New creates a Handler. The cache, collector, and metrics may be nil;
// search then runs uncached and untracked.
func New(searcher Searcher, queryCache *cache.QueryCache, collector *analytics.Collector, m *metrics.Metrics, defaultLimit, maxResults int) *Handler {
	return &Handler{
		searcher:     searcher,
		cache:        queryCache,
		collector:    collector,
		metrics:      m,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > h.maxResults {
			parsed = h.maxResults
		}
		limit = parsed
	}

	// Queries go through the same normalisation as indexed documents. A
	// query of nothing but stop words matches no documents.
	words := tokenizer.Tokenize(query)
	if len(words) == 0 {
		h.writeJSON(w, http.StatusOK, &SearchResponse{
			Query:  query,
			Ranked: ranker.Ranked{Results: []ranker.Result{}},
		})
		return
	}

	var result *ranker.Ranked
	var err error
	cacheHit := false
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, words, limit, func() (*ranker.Ranked, error) {
			return h.searcher.Search(ctx, words, limit)
		})
	} else {
		result, err = h.searcher.Search(ctx, words, limit)
	}
	if err != nil {
		log.Error("search failed", "query", query, "error", err)
		if h.metrics != nil {
			h.metrics.SearchQueriesTotal.WithLabelValues("error").Inc()
		}
		h.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	latencyMs := time.Since(start).Milliseconds()
	if h.metrics != nil {
		resultType := "miss"
		cacheStatus := "miss"
		if cacheHit {
			resultType = "hit"
			cacheStatus = "hit"
			h.metrics.CacheHitsTotal.Inc()
		} else {
			h.metrics.CacheMissesTotal.Inc()
		}
		if result.TotalHits == 0 {
			resultType = "zero_result"
		}
		h.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
		h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(time.Since(start).Seconds())
		h.metrics.SearchResultsCount.Observe(float64(len(result.Results)))
	}
	log.Info("search completed",
		"query", query,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"latency_ms", latencyMs,
	)
	if h.collector != nil {
		eventType := analytics.EventCacheMiss
		if cacheHit {
			eventType = analytics.EventCacheHit
		}
		h.collector.Track(analytics.SearchEvent{
			Type:      eventType,
			Query:     query,
			Terms:     words,
			TotalHits: result.TotalHits,
			Returned:  len(result.Results),
			Skipped:   result.Skipped,
			LatencyMs: latencyMs,
			CacheHit:  cacheHit,
			Timestamp: time.Now().UTC(),
			RequestID: middleware.GetRequestID(ctx),
		})
	}

	h.writeJSON(w, http.StatusOK, &SearchResponse{Query: query, Ranked: *result})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": strconv.FormatFloat(hitRate, 'f', 1, 64) + "%",
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
