package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/decimalpack/Static-Website-Search/pkg/config"
	"github.com/segmentio/kafka-go"
)

// Event pairs a partition key with a JSON-serialisable payload.
type Event struct {
	Key   string
	Value any
}

func (e Event) message() (kafka.Message, error) {
	value, err := json.Marshal(e.Value)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshaling event value: %w", err)
	}
	return kafka.Message{Key: []byte(e.Key), Value: value}, nil
}

// Producer writes JSON events to one Kafka topic. Writes are synchronous
// and wait for acknowledgement from all replicas.
type Producer struct {
	writer *kafka.Writer
	log    *slog.Logger
}

func NewProducer(cfg config.KafkaConfig, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			MaxAttempts:  3,
			RequiredAcks: kafka.RequireAll,
		},
		log: slog.Default().With("component", "kafka-producer", "topic", topic),
	}
}

// Publish writes one event.
func (p *Producer) Publish(ctx context.Context, event Event) error {
	msg, err := event.message()
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("publish failed", "key", event.Key, "error", err)
		return fmt.Errorf("publishing to kafka: %w", err)
	}
	p.log.Debug("event published", "key", event.Key, "value_size", len(msg.Value))
	return nil
}

// PublishBatch writes a slice of events in one producer call. A marshal
// failure on any event fails the whole batch before anything is sent.
func (p *Producer) PublishBatch(ctx context.Context, events []Event) error {
	msgs := make([]kafka.Message, len(events))
	for i, event := range events {
		msg, err := event.message()
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.log.Error("batch publish failed", "count", len(msgs), "error", err)
		return fmt.Errorf("publishing batch to kafka: %w", err)
	}
	p.log.Debug("batch published", "count", len(msgs))
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
