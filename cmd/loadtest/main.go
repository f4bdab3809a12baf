// Command loadtest drives the search API with concurrent queries and
// reports throughput and latency percentiles. With -ingest it also posts
// synthetic documents so the whole pipeline is exercised, and at the end
// it fetches the searcher's cache stats.
//
// Usage:
//
//	go run ./cmd/loadtest [-url http://localhost:8080] [-concurrency 10] [-duration 30s] [-ingest]
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"sort"
	"sync"
	"time"
)

var searchQueries = []string{
	"spectral bloom filter",
	"search engine",
	"static website",
	"indexing documents",
	"query processing",
	"cache optimization",
	"ranking algorithm",
	"counting filters",
	"hash functions",
	"frequency estimation",
	"full text search",
	"counter width",
	"false positive rate",
	"token stemming",
	"document ingestion",
}

type sample struct {
	latency time.Duration
	status  int
	failed  bool
}

type results struct {
	mu      sync.Mutex
	samples []sample
}

func (r *results) add(s sample) {
	r.mu.Lock()
	r.samples = append(r.samples, s)
	r.mu.Unlock()
}

func (r *results) snapshot() []sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sample, len(r.samples))
	copy(out, r.samples)
	return out
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the search service")
	ingestURL := flag.String("ingest-url", "http://localhost:8081", "base URL of the ingestion service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent search workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	limit := flag.Int("limit", 10, "search result limit")
	ingest := flag.Bool("ingest", false, "also post synthetic documents while searching")
	flag.Parse()

	fmt.Println("=== Static Website Search Load Test ===")
	fmt.Printf("Search target: %s\n", *baseURL)
	if *ingest {
		fmt.Printf("Ingest target: %s\n", *ingestURL)
	}
	fmt.Printf("Concurrency:   %d\n", *concurrency)
	fmt.Printf("Duration:      %s\n", *duration)
	fmt.Println()

	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        *concurrency * 2,
			MaxIdleConnsPerHost: *concurrency * 2,
		},
	}
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	searches := &results{}
	ingests := &results{}

	var wg sync.WaitGroup
	for w := 0; w < *concurrency; w++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			searchWorker(ctx, client, *baseURL, *limit, offset, searches)
		}(w)
	}
	if *ingest {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ingestWorker(ctx, client, *ingestURL, ingests)
		}()
	}

	fmt.Print("Running")
	progress := time.NewTicker(5 * time.Second)
	defer progress.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-progress.C:
				fmt.Print(".")
			}
		}
	}()
	wg.Wait()
	fmt.Println(" done!")
	fmt.Println()

	report("Search", searches.snapshot(), *duration)
	if *ingest {
		fmt.Println()
		report("Ingest", ingests.snapshot(), *duration)
	}
	printCacheStats(client, *baseURL)

	if len(searches.snapshot()) == 0 {
		fmt.Println()
		fmt.Println("WARNING: no search requests completed. Is the service running?")
		os.Exit(1)
	}
}

func searchWorker(ctx context.Context, client *http.Client, base string, limit, offset int, out *results) {
	for i := offset; ctx.Err() == nil; i++ {
		q := searchQueries[i%len(searchQueries)]
		target := fmt.Sprintf("%s/api/v1/search?q=%s&limit=%d", base, url.QueryEscape(q), limit)
		out.add(get(ctx, client, target))
	}
}

func ingestWorker(ctx context.Context, client *http.Client, base string, out *results) {
	// One slow writer alongside the readers keeps the ingest path warm
	// without dominating the test.
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		doc := map[string]string{
			"title": fmt.Sprintf("Synthetic document %d", i),
			"url":   fmt.Sprintf("https://loadtest.invalid/doc-%d", i),
			"body":  fmt.Sprintf("spectral bloom filter load test body %d with hash functions and counters", i),
		}
		payload, _ := json.Marshal(doc)
		start := time.Now()
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/v1/documents", bytes.NewReader(payload))
		if err != nil {
			out.add(sample{latency: time.Since(start), failed: true})
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := client.Do(req)
		if err != nil {
			out.add(sample{latency: time.Since(start), failed: true})
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		out.add(sample{latency: time.Since(start), status: resp.StatusCode})
	}
}

func get(ctx context.Context, client *http.Client, target string) sample {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return sample{latency: time.Since(start), failed: true}
	}
	resp, err := client.Do(req)
	if err != nil {
		return sample{latency: time.Since(start), failed: true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return sample{latency: time.Since(start), status: resp.StatusCode}
}

func report(name string, samples []sample, duration time.Duration) {
	fmt.Printf("=== %s Results ===\n", name)
	fmt.Printf("Total requests: %d\n", len(samples))
	if len(samples) == 0 {
		return
	}

	var ok int
	byStatus := map[int]int{}
	latencies := make([]time.Duration, 0, len(samples))
	for _, s := range samples {
		if !s.failed {
			byStatus[s.status]++
			if s.status >= 200 && s.status < 300 {
				ok++
			}
			latencies = append(latencies, s.latency)
		}
	}
	failed := len(samples) - len(latencies)

	fmt.Printf("Successful:     %d\n", ok)
	fmt.Printf("Failed:         %d (transport) / %d (non-2xx)\n", failed, len(latencies)-ok)
	fmt.Printf("Requests/sec:   %.2f\n", float64(len(samples))/duration.Seconds())

	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		fmt.Printf("Latency:        min=%s avg=%s p50=%s p95=%s p99=%s max=%s\n",
			latencies[0],
			sum/time.Duration(len(latencies)),
			quantile(latencies, 0.50),
			quantile(latencies, 0.95),
			quantile(latencies, 0.99),
			latencies[len(latencies)-1],
		)
	}

	codes := make([]int, 0, len(byStatus))
	for code := range byStatus {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Printf("  HTTP %d: %d\n", code, byStatus[code])
	}
}

func quantile(sorted []time.Duration, q float64) time.Duration {
	idx := int(math.Ceil(q*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func printCacheStats(client *http.Client, base string) {
	resp, err := client.Get(base + "/api/v1/cache/stats")
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return
	}
	fmt.Println()
	fmt.Printf("=== Cache Stats ===\n%s\n", bytes.TrimSpace(body))
}
