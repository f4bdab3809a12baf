// Package resilience wraps fallible operations with retry and backoff.
package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// RetryConfig controls the retry loop. Zero-valued fields take defaults.
type RetryConfig struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	JitterFraction float64
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = 100 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 10 * time.Second
	}
	if c.Multiplier <= 0 {
		c.Multiplier = 2.0
	}
	if c.JitterFraction <= 0 {
		c.JitterFraction = 0.1
	}
	return c
}

// Retry runs fn until it succeeds, the attempt budget is spent, or ctx is
// cancelled. Delays grow geometrically with symmetric jitter, capped at
// MaxDelay. name labels the operation in logs and the final error.
func Retry(ctx context.Context, name string, cfg RetryConfig, fn func() error) error {
	cfg = cfg.withDefaults()
	log := slog.Default().With("component", "retry", "operation", name)

	delay := cfg.InitialDelay
	var lastErr error
	for attempt := 1; ; attempt++ {
		if lastErr = fn(); lastErr == nil {
			if attempt > 1 {
				log.Info("succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if attempt == cfg.MaxAttempts {
			return fmt.Errorf("all %d attempts failed for %s: %w", cfg.MaxAttempts, name, lastErr)
		}

		wait := jittered(delay, cfg.JitterFraction)
		log.Warn("operation failed, retrying",
			"attempt", attempt,
			"max_attempts", cfg.MaxAttempts,
			"error", lastErr,
			"next_delay", wait,
		)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return fmt.Errorf("retry aborted for %s: %w", name, ctx.Err())
		}
		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
}

func jittered(d time.Duration, fraction float64) time.Duration {
	spread := float64(d) * fraction * (2*rand.Float64() - 1)
	out := time.Duration(float64(d) + spread)
	if out <= 0 {
		out = d
	}
	return out
}
