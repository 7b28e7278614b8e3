// Package event contains the Event Store building blocks: stored Domain
// Events, per-aggregate Event Streams with monotonic versioning, and the
// Store contracts used to append and replay them.
package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/get-relayed/go-relayed/message"
	"github.com/get-relayed/go-relayed/version"
)

// Event is a Message representing some Domain information that has happened
// in the past, which is of vital information to the Domain itself.
//
// Event type names should be phrased in the past tense, to enforce the notion
// of "information happened in the past".
type Event message.Message

// Envelope carries both the Event and some optional Metadata attached to it.
type Envelope = message.Envelope[Event]

// ToEnvelope returns an Envelope instance with the provided Event
// and no Metadata.
func ToEnvelope(event Event) Envelope {
	return Envelope{
		Message:  event,
		Metadata: nil,
	}
}

// StreamID represents the unique identifier of an Event Stream,
// typically the string representation of the Aggregate id the
// events belong to.
type StreamID string

// Status describes the processing state of a Stored event.
type Status string

const (
	// StatusPending marks an event recorded in the store
	// but not processed by a projection or subscriber yet.
	StatusPending Status = "pending"

	// StatusProcessed marks an event already picked up by its consumer.
	StatusProcessed Status = "processed"
)

// Stored represents a Domain Event that has been recorded in the Event Store.
//
// Stored values are immutable: state transitions go through WithStatus,
// which returns an updated copy.
type Stored struct {
	Envelope

	ID         uuid.UUID
	StreamID   StreamID
	Version    version.Version
	OccurredAt time.Time
	Status     Status
}

// NewStored records the provided Event Envelope as a Stored event,
// assigning a fresh unique id, the current wall-clock time and
// the pending status.
func NewStored(id StreamID, v version.Version, env Envelope) Stored {
	return Stored{
		Envelope:   env,
		ID:         uuid.New(),
		StreamID:   id,
		Version:    v,
		OccurredAt: time.Now().UTC(),
		Status:     StatusPending,
	}
}

// Name returns the name of the recorded Domain Event.
func (s Stored) Name() string { return s.Message.Name() }

// WithStatus returns a copy of the Stored event with the provided
// processing status. The receiver value is unaffected.
func (s Stored) WithStatus(status Status) Stored {
	s.Status = status
	return s
}
