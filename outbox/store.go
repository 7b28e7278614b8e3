package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecordNotFoundError is returned by Store implementations when addressing
// a message id that has never been staged.
type RecordNotFoundError struct {
	MessageID uuid.UUID
}

func (err RecordNotFoundError) Error() string {
	return fmt.Sprintf("outbox: no record staged with message id '%s'", err.MessageID)
}

// DuplicateRecordError is returned by Store.Append when staging a message id
// that has already been staged.
type DuplicateRecordError struct {
	MessageID uuid.UUID
}

func (err DuplicateRecordError) Error() string {
	return fmt.Sprintf("outbox: record already staged with message id '%s'", err.MessageID)
}

// ListPendingRequest selects the pending Records due for publication:
// those whose next attempt time is at or before Now, oldest first,
// up to Limit entries.
type ListPendingRequest struct {
	Now   time.Time
	Limit int
}

// MarkFailedRequest reschedules a Record after a failed publication attempt.
//
// Attempts carries the new attempt counter and NextAttemptAt the time the
// Record becomes due again, typically computed through a Backoff policy.
type MarkFailedRequest struct {
	MessageID     uuid.UUID
	Attempts      int
	NextAttemptAt time.Time
	LastError     error
}

// Store is the durable staging contract of the transactional outbox.
//
// Append must execute inside the same transaction as the aggregate state
// mutation that produced the events: this is what prevents events from being
// lost when the process crashes after the database commit but before the
// publication. Transactional implementations (e.g. postgres.OutboxStore)
// resolve the active transaction from the context.
//
// All outbox mutations go through this narrow contract: no other component
// is permitted to write the staging table directly.
type Store interface {
	Append(ctx context.Context, records ...Record) error
	ListPending(ctx context.Context, req ListPendingRequest) ([]Record, error)
	MarkPublished(ctx context.Context, messageID uuid.UUID) error
	MarkFailed(ctx context.Context, req MarkFailedRequest) error
}
