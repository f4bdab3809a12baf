// Package ranker scores every indexed document against a tokenized query
// using the spectral filters' count-min frequency estimates.
package ranker

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/decimalpack/Static-Website-Search/internal/index"
	"github.com/decimalpack/Static-Website-Search/internal/sbf"
)

// Result is one ranked document.
type Result struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Score uint64 `json:"score"`
}

// Ranked is the outcome of one query over the whole index.
type Ranked struct {
	Results   []Result `json:"results"`
	TotalHits int      `json:"total_hits"`
	Skipped   int      `json:"skipped"`
}

// Ranker runs queries against an immutable index. The index is never
// mutated after construction, so concurrent Search calls are safe.
type Ranker struct {
	idx    *index.Index
	logger *slog.Logger
}

// New creates a Ranker over the given index.
func New(idx *index.Index) *Ranker {
	return &Ranker{
		idx:    idx,
		logger: slog.Default().With("component", "ranker"),
	}
}

// Search scores every document as the sum of the count-min frequency
// estimates of the query words, keeps documents with a positive score,
// and orders them by score descending. Equal scores keep index order, so
// results are deterministic. An empty word list yields no results. A
// filter whose counters fail to decode is skipped and logged; the rest of
// the index still ranks.
func (r *Ranker) Search(ctx context.Context, words []string, limit int) (*Ranked, error) {
	out := &Ranked{Results: []Result{}}
	if len(words) == 0 || r.idx.Len() == 0 {
		return out, nil
	}

	type scored struct {
		pos   int
		score uint64
	}
	scores := make([]scored, r.idx.Len())
	var skipped atomic.Int64

	workers := runtime.GOMAXPROCS(0)
	if workers > r.idx.Len() {
		workers = r.idx.Len()
	}
	chunk := (r.idx.Len() + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > r.idx.Len() {
			end = r.idx.Len()
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				score, err := scoreFilter(r.idx.At(i), words)
				if err != nil {
					skipped.Add(1)
					r.logger.Warn("skipping filter during ranking",
						"url", r.idx.At(i).URL(),
						"error", err,
					)
					continue
				}
				scores[i] = scored{pos: i, score: score}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	matches := make([]scored, 0, len(scores))
	for _, s := range scores {
		if s.score > 0 {
			matches = append(matches, s)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].pos < matches[j].pos
	})

	out.TotalHits = len(matches)
	out.Skipped = int(skipped.Load())
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	for _, m := range matches {
		f := r.idx.At(m.pos)
		out.Results = append(out.Results, Result{
			Title: f.Title(),
			URL:   f.URL(),
			Score: m.score,
		})
	}
	return out, nil
}

// scoreFilter sums the frequency estimates of all query words for one
// document.
func scoreFilter(f *sbf.Filter, words []string) (uint64, error) {
	var total uint64
	for _, word := range words {
		freq, err := f.Frequency(word)
		if err != nil {
			return 0, err
		}
		total += uint64(freq)
	}
	return total, nil
}
