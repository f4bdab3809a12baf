// Package kafka wraps segmentio/kafka-go with a JSON event producer and a
// consumer-group reader that dispatches to a handler callback.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/decimalpack/Static-Website-Search/pkg/config"
	"github.com/segmentio/kafka-go"
)

// MessageHandler processes one message. A non-nil error leaves the message
// uncommitted so the group can redeliver it.
type MessageHandler func(ctx context.Context, key, value []byte) error

// Consumer reads one topic as part of a consumer group.
type Consumer struct {
	reader  *kafka.Reader
	handler MessageHandler
	log     *slog.Logger
}

func NewConsumer(cfg config.KafkaConfig, topic string, handler MessageHandler) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.Brokers,
			Topic:       topic,
			GroupID:     cfg.ConsumerGroup,
			MinBytes:    1e3,
			MaxBytes:    10e6,
			StartOffset: kafka.LastOffset,
		}),
		handler: handler,
		log:     slog.Default().With("component", "kafka-consumer", "topic", topic),
	}
}

// Start fetches and processes messages until ctx is cancelled, committing
// each message only after its handler succeeds.
func (c *Consumer) Start(ctx context.Context) error {
	c.log.Info("consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("consumer stopping", "reason", ctx.Err())
				return c.reader.Close()
			}
			c.log.Error("fetch failed", "error", err)
			continue
		}
		c.process(ctx, msg)
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	log := c.log.With("partition", msg.Partition, "offset", msg.Offset)
	log.Debug("message received", "key", string(msg.Key), "value_size", len(msg.Value))
	if err := c.handler(ctx, msg.Key, msg.Value); err != nil {
		log.Error("handler failed", "error", err)
		return
	}
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		log.Error("commit failed", "error", err)
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

// DecodeJSON unmarshals a message value into T.
func DecodeJSON[T any](value []byte) (T, error) {
	var out T
	if err := json.Unmarshal(value, &out); err != nil {
		return out, fmt.Errorf("decoding kafka message: %w", err)
	}
	return out, nil
}
