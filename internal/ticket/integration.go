package ticket

import (
	"encoding/json"
	"fmt"

	"github.com/get-relayed/go-relayed/event"
	"github.com/get-relayed/go-relayed/integration"
	"github.com/get-relayed/go-relayed/message"
)

// Integration Event names published for the Ticket aggregate.
const (
	IntegrationTicketOpened   = "support.ticket.opened"
	IntegrationTicketAssigned = "support.ticket.assigned"
	IntegrationTicketClosed   = "support.ticket.closed"
)

// ToIntegration translates a recorded Ticket Domain Event into its
// Integration Event representation, suitable for staging on the outbox.
//
// The Ticket id acts as partition key, so consumers observe all the events
// of one Ticket in order. The boolean result is false for Domain Events
// that have no external representation.
func ToIntegration(t *Ticket, evt event.Envelope) (integration.Event, bool, error) {
	ticketEvent, ok := evt.Message.(*Event)
	if !ok {
		return integration.Event{}, false, fmt.Errorf("ticket.ToIntegration: unexpected event type, %T", evt.Message)
	}

	var (
		eventName string
		data      any
	)

	switch kind := ticketEvent.Kind.(type) {
	case *WasOpened:
		eventName = IntegrationTicketOpened
		data = struct {
			Subject string `json:"subject"`
		}{Subject: kind.Subject}

	case *WasAssigned:
		eventName = IntegrationTicketAssigned
		data = struct {
			Assignee string `json:"assignee"`
		}{Assignee: kind.Assignee}

	case *WasClosed:
		eventName = IntegrationTicketClosed
		data = struct {
			Resolution string `json:"resolution"`
		}{Resolution: kind.Resolution}

	default:
		return integration.Event{}, false, fmt.Errorf("ticket.ToIntegration: unexpected event kind, %T", kind)
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return integration.Event{}, false, fmt.Errorf("ticket.ToIntegration: failed to marshal event data, %w", err)
	}

	out := integration.New(eventName, 1, t.TenantID(), ticketEvent.ID.String())
	out.OccurredAt = ticketEvent.RecordTime
	out.Data = payload
	out.Classification = integration.ClassificationInternal
	out.ActorID = evt.Metadata.UserID()
	out.RequestID = evt.Metadata[message.RequestIDKey]
	out.CorrelationID = evt.Metadata.CorrelationID()

	return out, true, nil
}
