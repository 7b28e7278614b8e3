// Package integration defines the Integration Event contract: the versioned,
// externally-published envelope derived from Domain Events for cross-service
// consumption, together with its strict wire-format parser.
package integration

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Scope describes the audience boundary of an Integration Event.
type Scope string

const (
	// ScopeTenant events are visible to a single tenant.
	ScopeTenant Scope = "tenant"

	// ScopePlatform events are visible platform-wide.
	ScopePlatform Scope = "platform"
)

// Classification describes the data sensitivity of an Integration Event.
type Classification string

const (
	ClassificationPublic   Classification = "public"
	ClassificationInternal Classification = "internal"
	ClassificationPII      Classification = "pii"
)

// Event is the Integration Event envelope exchanged between services.
//
// EventID is the deduplication key used by consumer Inboxes; PartitionKey is
// the unit within which relative event ordering is meaningful. Both are
// required, together with EventName, EventVersion and TenantID.
//
// Event values are immutable once created by a producer; consumers receive
// their own copies from the wire.
type Event struct {
	EventID        string          `json:"eventId"`
	EventName      string          `json:"eventName"`
	EventVersion   int             `json:"eventVersion"`
	OccurredAt     time.Time       `json:"occurredAt,omitzero"`
	Source         string          `json:"source,omitempty"`
	TenantID       string          `json:"tenantId"`
	ActorID        string          `json:"actorId,omitempty"`
	RequestID      string          `json:"requestId,omitempty"`
	CorrelationID  string          `json:"correlationId,omitempty"`
	CausationID    string          `json:"causationId,omitempty"`
	Locale         string          `json:"locale,omitempty"`
	PartitionKey   string          `json:"partitionKey"`
	Scope          Scope           `json:"scope,omitempty"`
	Classification Classification  `json:"classification,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
}

// New mints a new Integration Event envelope with a fresh unique EventID and
// the current wall-clock time as occurrence time.
//
// The tenant id must come from the trusted, server-side authentication
// context of the producer, never from client-supplied input.
func New(eventName string, eventVersion int, tenantID, partitionKey string) Event {
	return Event{
		EventID:      uuid.NewString(),
		EventName:    eventName,
		EventVersion: eventVersion,
		OccurredAt:   time.Now().UTC(),
		TenantID:     tenantID,
		PartitionKey: partitionKey,
		Scope:        ScopeTenant,
	}
}

// ForTenant re-validates the envelope tenant against the tenant id resolved
// from the caller's authenticated context, and returns a copy of the Event
// with the trusted tenant id applied.
//
// A TenantMismatchError is returned when the envelope carries a different,
// non-empty tenant id: externally supplied envelopes must never override the
// server-side tenant resolution.
func (e Event) ForTenant(trustedTenantID string) (Event, error) {
	if e.TenantID != "" && e.TenantID != trustedTenantID {
		return Event{}, TenantMismatchError{
			Envelope:      e.TenantID,
			Authenticated: trustedTenantID,
		}
	}

	e.TenantID = trustedTenantID

	return e, nil
}
