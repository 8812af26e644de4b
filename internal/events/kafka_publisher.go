package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ummahhub/community-api/internal/config"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher mirrors forum events onto a Kafka topic keyed by thread id, so
// every event of one thread lands on the same partition in order.
type KafkaPublisher struct {
	writer MessageWriter
	logger *zap.Logger
}

// NewKafkaWriter builds an async writer, or returns nil when no brokers are configured.
func NewKafkaWriter(cfg config.KafkaConfig, logger *zap.Logger) *kafka.Writer {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		logger.Warn("kafka was not configured, forum events will not be published")
		return nil
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("kafka delivery failed", zap.Int("messages", len(messages)), zap.Error(err))
			}
		},
	}
}

// NewKafkaPublisher wraps writer.
func NewKafkaPublisher(writer MessageWriter, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, logger: logger}
}

// Register subscribes the publisher to every forum event.
func (p *KafkaPublisher) Register(dispatcher Dispatcher) {
	if p == nil || p.writer == nil || dispatcher == nil {
		return
	}
	SubscribeAll(dispatcher, p.Handle)
}

// Handle writes one event.
func (p *KafkaPublisher) Handle(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.ThreadID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	p.logger.Debug("event published", zap.String("event_type", string(event.Type)), zap.String("thread_id", event.ThreadID))
	return nil
}

// Close flushes pending messages.
func (p *KafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
