// Package health aggregates per-dependency probes into liveness and
// readiness endpoints.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Status is the health state of one component, or of the whole process.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// Check probes one dependency.
type Check func(ctx context.Context) ComponentHealth

// ComponentHealth is the outcome of a single Check.
type ComponentHealth struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Report combines every registered check into one verdict.
type Report struct {
	Status     Status                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
	Timestamp  string                     `json:"timestamp"`
}

// Checker runs registered checks in parallel on demand.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]Check
}

func NewChecker() *Checker {
	return &Checker{checks: make(map[string]Check)}
}

// Register adds a named check. Registering the same name twice replaces
// the earlier check.
func (c *Checker) Register(name string, check Check) {
	c.mu.Lock()
	c.checks[name] = check
	c.mu.Unlock()
}

type checkResult struct {
	name   string
	health ComponentHealth
}

// Run probes every registered check concurrently. The report status is the
// worst component status: any down component makes the report down, any
// degraded one makes it degraded.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	probes := make([]Check, 0, len(c.checks))
	for name, check := range c.checks {
		names = append(names, name)
		probes = append(probes, check)
	}
	c.mu.RUnlock()

	results := make(chan checkResult, len(probes))
	for i := range probes {
		go func(name string, probe Check) {
			start := time.Now()
			h := probe(ctx)
			h.Latency = time.Since(start).Round(time.Millisecond).String()
			results <- checkResult{name: name, health: h}
		}(names[i], probes[i])
	}

	report := Report{
		Status:     StatusUp,
		Components: make(map[string]ComponentHealth, len(probes)),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	for range probes {
		r := <-results
		report.Components[r.name] = r.health
		switch r.health.Status {
		case StatusDown:
			report.Status = StatusDown
		case StatusDegraded:
			if report.Status == StatusUp {
				report.Status = StatusDegraded
			}
		}
	}
	return report
}

// LiveHandler answers liveness probes. It only proves the process serves
// HTTP; dependency state is ReadyHandler's concern.
func (c *Checker) LiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
	}
}

// ReadyHandler runs all checks with a 5s budget and answers 503 unless
// every component is up.
func (c *Checker) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		report := c.Run(ctx)
		w.Header().Set("Content-Type", "application/json")
		if report.Status != StatusUp {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(report)
	}
}
