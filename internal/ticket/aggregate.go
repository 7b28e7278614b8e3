// Package ticket serves as a small domain example of how to model
// an Aggregate using go-relayed.
//
// This package is used for integration tests in the parent module.
package ticket

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/get-relayed/go-relayed/aggregate"
	"github.com/get-relayed/go-relayed/event"
	"github.com/get-relayed/go-relayed/message"
)

// Type is the Ticket aggregate type.
var Type = aggregate.Type[uuid.UUID, *Ticket]{
	Name:    "Ticket",
	Factory: func() *Ticket { return new(Ticket) },
}

// Status is the lifecycle state of a Ticket.
type Status string

const (
	StatusOpen     Status = "open"
	StatusAssigned Status = "assigned"
	StatusClosed   Status = "closed"
)

// Ticket is a naive support ticket implementation, modeled as an Aggregate
// using go-relayed's API.
type Ticket struct {
	aggregate.BaseRoot

	// Aggregate fields should remain unexported if possible,
	// to enforce encapsulation.

	id       uuid.UUID
	tenantID string
	subject  string
	assignee string
	status   Status
	openedAt time.Time
}

// Apply implements aggregate.Applier.
func (t *Ticket) Apply(evt event.Event) error {
	ticketEvent, ok := evt.(*Event)
	if !ok {
		return fmt.Errorf("ticket.Apply: unexpected event type, %T", evt)
	}

	switch kind := ticketEvent.Kind.(type) {
	case *WasOpened:
		t.id = ticketEvent.ID
		t.tenantID = kind.TenantID
		t.subject = kind.Subject
		t.status = StatusOpen
		t.openedAt = ticketEvent.RecordTime
	case *WasAssigned:
		t.assignee = kind.Assignee
		t.status = StatusAssigned
	case *WasClosed:
		t.status = StatusClosed
	default:
		return fmt.Errorf("ticket.Apply: unexpected event kind type, %T", kind)
	}

	return nil
}

// AggregateID implements aggregate.Root.
func (t *Ticket) AggregateID() uuid.UUID {
	return t.id
}

// TenantID returns the tenant the Ticket belongs to.
func (t *Ticket) TenantID() string { return t.tenantID }

// Status returns the current lifecycle state of the Ticket.
func (t *Ticket) Status() Status { return t.status }

// All the errors returned by Ticket methods.
var (
	ErrInvalidTenantID = errors.New("ticket: invalid tenant id, is empty")
	ErrInvalidSubject  = errors.New("ticket: invalid subject, is empty")
	ErrInvalidAssignee = errors.New("ticket: invalid assignee, is empty")
	ErrAlreadyClosed   = errors.New("ticket: already closed")
)

// Open opens a new Ticket for the given tenant using the provided input.
func Open(id uuid.UUID, tenantID, subject string, now time.Time) (*Ticket, error) {
	if tenantID == "" {
		return nil, ErrInvalidTenantID
	}

	if subject == "" {
		return nil, ErrInvalidSubject
	}

	ticket := new(Ticket)

	if err := aggregate.RecordThat[uuid.UUID](ticket, event.ToEnvelope(&Event{
		ID:         id,
		RecordTime: now,
		Kind: &WasOpened{
			TenantID: tenantID,
			Subject:  subject,
		},
	})); err != nil {
		return nil, fmt.Errorf("ticket.Open: failed to record domain event, %w", err)
	}

	return ticket, nil
}

// Assign assigns the Ticket to the specified support agent.
func (t *Ticket) Assign(assignee string, now time.Time, metadata message.Metadata) error {
	if assignee == "" {
		return ErrInvalidAssignee
	}

	if t.status == StatusClosed {
		return ErrAlreadyClosed
	}

	if err := aggregate.RecordThat[uuid.UUID](t, event.Envelope{
		Metadata: metadata,
		Message: &Event{
			ID:         t.id,
			RecordTime: now,
			Kind:       &WasAssigned{Assignee: assignee},
		},
	}); err != nil {
		return fmt.Errorf("ticket.Assign: failed to record domain event, %w", err)
	}

	return nil
}

// Close closes the Ticket with the provided resolution.
// Closing an already-closed Ticket fails with ErrAlreadyClosed.
func (t *Ticket) Close(resolution string, now time.Time, metadata message.Metadata) error {
	if t.status == StatusClosed {
		return ErrAlreadyClosed
	}

	if err := aggregate.RecordThat[uuid.UUID](t, event.Envelope{
		Metadata: metadata,
		Message: &Event{
			ID:         t.id,
			RecordTime: now,
			Kind:       &WasClosed{Resolution: resolution},
		},
	}); err != nil {
		return fmt.Errorf("ticket.Close: failed to record domain event, %w", err)
	}

	return nil
}
