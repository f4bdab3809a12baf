// Package collector batches analytics events and ships them to Kafka in
// bulk, trading a little latency for far fewer producer round trips.
package collector

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/decimalpack/Static-Website-Search/pkg/kafka"
)

// BatchCollector buffers events and flushes once the buffer reaches
// batchSize or flushInterval elapses, whichever comes first.
type BatchCollector struct {
	producer *kafka.Producer
	log      *slog.Logger
	done     chan struct{}

	batchSize     int
	flushInterval time.Duration

	mu      sync.Mutex
	pending []kafka.Event
}

func NewBatchCollector(producer *kafka.Producer, batchSize int, flushInterval time.Duration) *BatchCollector {
	if batchSize <= 0 {
		batchSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}
	return &BatchCollector{
		producer:      producer,
		log:           slog.Default().With("component", "batch-collector"),
		done:          make(chan struct{}),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		pending:       make([]kafka.Event, 0, batchSize),
	}
}

// Start launches the periodic flush loop. On ctx cancellation one final
// flush runs with its own short deadline.
func (bc *BatchCollector) Start(ctx context.Context) {
	go func() {
		defer close(bc.done)
		ticker := time.NewTicker(bc.flushInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				bc.flush(ctx)
			case <-ctx.Done():
				final, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				bc.flush(final)
				cancel()
				return
			}
		}
	}()
	bc.log.Info("batch collector started",
		"batch_size", bc.batchSize,
		"flush_interval", bc.flushInterval,
	)
}

// Track buffers one event, triggering an early flush when the buffer
// fills. The flush runs off the caller's goroutine.
func (bc *BatchCollector) Track(key string, value any) {
	bc.mu.Lock()
	bc.pending = append(bc.pending, kafka.Event{Key: key, Value: value})
	full := len(bc.pending) >= bc.batchSize
	bc.mu.Unlock()
	if full {
		go bc.flush(context.Background())
	}
}

// Close waits for the flush loop started by Start to finish.
func (bc *BatchCollector) Close() {
	<-bc.done
}

func (bc *BatchCollector) flush(ctx context.Context) {
	bc.mu.Lock()
	if len(bc.pending) == 0 {
		bc.mu.Unlock()
		return
	}
	batch := bc.pending
	bc.pending = make([]kafka.Event, 0, bc.batchSize)
	bc.mu.Unlock()

	if err := bc.producer.PublishBatch(ctx, batch); err != nil {
		bc.log.Error("batch flush failed", "batch_size", len(batch), "error", err)
		bc.requeue(batch)
		return
	}
	bc.log.Debug("batch flushed", "events", len(batch))
}

// requeue puts a failed batch back at the front of the buffer, dropping
// the oldest overflow beyond three batches worth of events.
func (bc *BatchCollector) requeue(batch []kafka.Event) {
	limit := bc.batchSize * 3
	bc.mu.Lock()
	defer bc.mu.Unlock()
	bc.pending = append(batch, bc.pending...)
	if len(bc.pending) > limit {
		bc.log.Warn("buffer overflow, events dropped", "dropped", len(bc.pending)-limit)
		bc.pending = bc.pending[:limit]
	}
}
