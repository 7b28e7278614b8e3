// Package kafka provides a Kafka-backed implementation of the outbox
// Publisher contract, using segmentio/kafka-go as client.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/get-relayed/go-relayed/outbox"
)

// Interface implementation assertion.
var _ outbox.Publisher = Publisher{}

// Config carries the Kafka connection settings used by NewWriter.
type Config struct {
	Brokers []string
	Topic   string
}

// NewWriter returns a kafka.Writer configured for outbox publication.
//
// The Hash balancer routes messages carrying the same key to the same
// partition, which preserves the per-partition-key ordering of the records
// drained by a single Relay.
func NewWriter(config Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{},
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Async:        false,
	}
}

// Publisher publishes outbox Records to a Kafka topic.
//
// The staged Integration Event envelope is carried verbatim as message value,
// while its partition key becomes the Kafka message key, so that consumers
// observe events for the same entity in publication order.
type Publisher struct {
	Writer *kafka.Writer
	Logger *zap.Logger
}

// Publish implements outbox.Publisher.
func (p Publisher) Publish(ctx context.Context, record outbox.Record) error {
	evt, err := record.Event()
	if err != nil {
		return fmt.Errorf("kafka.Publisher: failed to read staged integration event, %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(evt.PartitionKey),
		Value: record.Payload,
		Headers: []kafka.Header{
			{Key: "event-name", Value: []byte(evt.EventName)},
			{Key: "tenant-id", Value: []byte(evt.TenantID)},
		},
	}

	if err := p.Writer.WriteMessages(ctx, msg); err != nil {
		p.Logger.Error("failed to publish record to kafka",
			zap.String("message_id", record.MessageID.String()),
			zap.String("event_type", record.EventType),
			zap.Error(err),
		)

		return fmt.Errorf("kafka.Publisher: failed to write message, %w", err)
	}

	p.Logger.Debug("record published to kafka",
		zap.String("message_id", record.MessageID.String()),
		zap.String("partition_key", evt.PartitionKey),
	)

	return nil
}
