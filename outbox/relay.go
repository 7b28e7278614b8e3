package outbox

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Publisher is the broker collaborator used by the Relay to transport staged
// Records. kafka.Publisher provides an implementation backed by Kafka.
type Publisher interface {
	Publish(ctx context.Context, record Record) error
}

// PublisherFunc is a functional implementation of the Publisher interface.
type PublisherFunc func(ctx context.Context, record Record) error

// Publish implements outbox.Publisher.
func (fn PublisherFunc) Publish(ctx context.Context, record Record) error {
	return fn(ctx, record)
}

// Relay drains pending outbox Records towards a Publisher, marking them
// published on success and rescheduling them through the Backoff policy
// on failure.
//
// Publication failures are transient infrastructure errors: they are never
// surfaced to the command caller that staged the Record, only recorded on
// the Record itself and retried on the next tick. Feed Relay.Tick to a
// poller.Worker to drain the outbox periodically.
type Relay struct {
	Store     Store
	Publisher Publisher
	Backoff   Backoff
	Logger    *zap.Logger

	// MaxAttempts only marks records exceeding the threshold in the logs,
	// for operator intervention. Records stay pending and keep being
	// rescheduled: the status set has no dead-letter terminal state.
	MaxAttempts int

	// Now is the clock used to select due records; defaults to time.Now.
	Now func() time.Time
}

func (r Relay) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}

	return time.Now().UTC()
}

// Tick performs a single drain pass: it lists the pending Records due for
// publication, up to batchSize, and publishes them one by one, oldest first.
//
// Records sharing a partition key keep their relative order only when a
// single Relay instance processes the batch sequentially, which Tick does.
func (r Relay) Tick(ctx context.Context, batchSize int) error {
	records, err := r.Store.ListPending(ctx, ListPendingRequest{
		Now:   r.now(),
		Limit: batchSize,
	})
	if err != nil {
		return fmt.Errorf("outbox.Relay: failed to list pending records, %w", err)
	}

	for _, record := range records {
		r.publish(ctx, record)
	}

	return nil
}

func (r Relay) publish(ctx context.Context, record Record) {
	if r.MaxAttempts > 0 && record.Attempts >= r.MaxAttempts {
		r.Logger.Error("record exceeded the maximum publication attempts, still pending",
			zap.String("message_id", record.MessageID.String()),
			zap.String("event_type", record.EventType),
			zap.Int("attempts", record.Attempts),
		)
	}

	if err := r.Publisher.Publish(ctx, record); err != nil {
		r.reschedule(ctx, record, err)
		return
	}

	if err := r.Store.MarkPublished(ctx, record.MessageID); err != nil {
		r.Logger.Error("failed to mark record as published",
			zap.String("message_id", record.MessageID.String()),
			zap.Error(err),
		)

		return
	}

	r.Logger.Debug("record published",
		zap.String("message_id", record.MessageID.String()),
		zap.String("event_type", record.EventType),
	)
}

func (r Relay) reschedule(ctx context.Context, record Record, publishErr error) {
	attempts := record.Attempts + 1

	if err := r.Store.MarkFailed(ctx, MarkFailedRequest{
		MessageID:     record.MessageID,
		Attempts:      attempts,
		NextAttemptAt: r.now().Add(r.Backoff(attempts)),
		LastError:     publishErr,
	}); err != nil {
		r.Logger.Error("failed to reschedule record",
			zap.String("message_id", record.MessageID.String()),
			zap.Error(err),
		)

		return
	}

	r.Logger.Warn("failed to publish record, rescheduled",
		zap.String("message_id", record.MessageID.String()),
		zap.String("event_type", record.EventType),
		zap.Int("attempts", attempts),
		zap.Error(publishErr),
	)
}
