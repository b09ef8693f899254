package events

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// Publisher publishes operation events to the operation topic
type Publisher interface {
	Publish(ctx context.Context, key string, event *OperationEvent) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
