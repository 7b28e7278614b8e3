// Package outbox implements the transactional-outbox side of the dispatch
// core: durable staging of Integration Events to publish, and the Relay that
// drains them towards a message broker with at-least-once semantics.
package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/get-relayed/go-relayed/integration"
)

// Status describes the publication state of an outbox Record.
//
// The only legal transition is pending to published; published is terminal.
// Records are never deleted, so they remain available for audit and replay.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
)

// Record is a single Integration Event staged for publication.
//
// A Record is created transactionally alongside the aggregate write that
// produced the event, and is mutated only by the Relay through the Store
// contract (MarkPublished, MarkFailed). Attempts increases monotonically.
type Record struct {
	MessageID     uuid.UUID
	EventType     string
	OccurredAt    time.Time
	SchemaVersion int
	TenantID      string
	UserID        string
	RequestID     string
	Payload       []byte
	Status        Status
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewRecord stages the provided Integration Event as a pending outbox Record,
// using the event id as message id and the serialized envelope as payload.
func NewRecord(evt integration.Event) (Record, error) {
	messageID, err := uuid.Parse(evt.EventID)
	if err != nil {
		return Record{}, fmt.Errorf("outbox.NewRecord: event id is not a valid uuid, %w", err)
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return Record{}, fmt.Errorf("outbox.NewRecord: failed to serialize integration event, %w", err)
	}

	now := time.Now().UTC()

	return Record{
		MessageID:     messageID,
		EventType:     evt.EventName,
		OccurredAt:    evt.OccurredAt,
		SchemaVersion: evt.EventVersion,
		TenantID:      evt.TenantID,
		UserID:        evt.ActorID,
		RequestID:     evt.RequestID,
		Payload:       payload,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Event deserializes the Integration Event envelope staged in the Record.
func (r Record) Event() (integration.Event, error) {
	evt, err := integration.Parse(r.Payload)
	if err != nil {
		return integration.Event{}, fmt.Errorf("outbox.Record: failed to parse staged payload, %w", err)
	}

	return evt, nil
}
