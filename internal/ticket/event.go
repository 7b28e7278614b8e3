package ticket

import (
	"time"

	"github.com/google/uuid"

	"github.com/get-relayed/go-relayed/event"
)

var _ event.Event = new(Event)

// Event is the Domain Event envelope for the Ticket aggregate,
// carrying the specific event kind that took place.
type Event struct {
	ID         uuid.UUID
	RecordTime time.Time
	Kind       eventKind
}

// Name implements event.Event.
func (evt *Event) Name() string { return evt.Kind.Name() }

type eventKind interface {
	event.Event
	isEventKind()
}

var (
	_ eventKind = new(WasOpened)
	_ eventKind = new(WasAssigned)
	_ eventKind = new(WasClosed)
)

// WasOpened is the domain event fired after a Ticket is opened.
type WasOpened struct {
	TenantID string
	Subject  string
}

// Name implements message.Message.
func (*WasOpened) Name() string { return "TicketWasOpened" }
func (*WasOpened) isEventKind() {}

// WasAssigned is the domain event fired after a Ticket is assigned
// to a support agent.
type WasAssigned struct {
	Assignee string
}

// Name implements message.Message.
func (*WasAssigned) Name() string { return "TicketWasAssigned" }
func (*WasAssigned) isEventKind() {}

// WasClosed is the domain event fired after a Ticket is closed.
type WasClosed struct {
	Resolution string
}

// Name implements message.Message.
func (*WasClosed) Name() string { return "TicketWasClosed" }
func (*WasClosed) isEventKind() {}
