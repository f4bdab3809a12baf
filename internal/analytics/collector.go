package analytics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/decimalpack/Static-Website-Search/pkg/kafka"
)

// Collector forwards search events to Kafka off the request path. Track
// never blocks; events are dropped when the buffer is full.
type Collector struct {
	producer *kafka.Producer
	events   chan any
	done     chan struct{}
	log      *slog.Logger

	mu     sync.Mutex
	closed bool
}

func NewCollector(producer *kafka.Producer, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer: producer,
		events:   make(chan any, bufferSize),
		done:     make(chan struct{}),
		log:      slog.Default().With("component", "analytics-collector"),
	}
}

// Start launches the forwarding loop. On ctx cancellation any buffered
// events are flushed before the loop exits.
func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
	c.log.Info("analytics collector started", "buffer_size", cap(c.events))
}

// Track enqueues an event without blocking the caller. Events tracked by
// handlers still in flight after Close are dropped, not sent.
func (c *Collector) Track(event any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		c.log.Debug("analytics event dropped (collector closed)")
		return
	}
	select {
	case c.events <- event:
	default:
		c.log.Warn("analytics event dropped (buffer full)")
	}
}

// Close stops accepting events and waits for the loop to finish. It is
// safe to call more than once.
func (c *Collector) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
	c.mu.Unlock()
	<-c.done
}

func (c *Collector) run(ctx context.Context) {
	defer close(c.done)
	for {
		select {
		case event, ok := <-c.events:
			if !ok {
				return
			}
			c.publish(ctx, event)
		case <-ctx.Done():
			c.drain()
			return
		}
	}
}

// drain empties whatever is buffered after shutdown begins, using a fresh
// context since the request context is already cancelled.
func (c *Collector) drain() {
	for {
		select {
		case event, ok := <-c.events:
			if !ok {
				return
			}
			c.publish(context.Background(), event)
		default:
			return
		}
	}
}

func (c *Collector) publish(ctx context.Context, event any) {
	err := c.producer.Publish(ctx, kafka.Event{Key: "analytics", Value: event})
	if err != nil {
		c.log.Error("failed to publish analytics event", "error", err)
	}
}
