package ticket_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/get-relayed/go-relayed/aggregate"
	"github.com/get-relayed/go-relayed/command"
	"github.com/get-relayed/go-relayed/event"
	"github.com/get-relayed/go-relayed/internal/ticket"
	"github.com/get-relayed/go-relayed/message"
)

func TestOpenCommandHandler(t *testing.T) {
	newHandler := func(store event.Store) ticket.OpenCommandHandler {
		return ticket.OpenCommandHandler{
			UUIDGenerator:    func() uuid.UUID { return testTicketID },
			Clock:            func() time.Time { return openedAt },
			TicketRepository: aggregate.NewEventSourcedRepository(store, ticket.Type),
		}
	}

	t.Run("opening a new ticket records the opening event", func(t *testing.T) {
		command.
			Scenario[ticket.OpenCommand, ticket.OpenCommandHandler]().
			When(command.Envelope[ticket.OpenCommand]{
				Message:  ticket.OpenCommand{Subject: "printer is on fire"},
				Metadata: message.Metadata{}.With(message.TenantIDKey, "tenant-1"),
			}).
			Then(event.Stored{
				StreamID: event.StreamID(testTicketID.String()),
				Version:  1,
				Envelope: event.Envelope{
					Message:  wasOpened(),
					Metadata: nil,
				},
			}).
			AssertOn(t, newHandler)
	})

	t.Run("opening a ticket without an authenticated tenant fails", func(t *testing.T) {
		command.
			Scenario[ticket.OpenCommand, ticket.OpenCommandHandler]().
			When(command.ToEnvelope(ticket.OpenCommand{Subject: "printer is on fire"})).
			ThenError(ticket.ErrInvalidTenantID).
			AssertOn(t, newHandler)
	})

	t.Run("opening a ticket without a subject fails", func(t *testing.T) {
		command.
			Scenario[ticket.OpenCommand, ticket.OpenCommandHandler]().
			When(command.Envelope[ticket.OpenCommand]{
				Message:  ticket.OpenCommand{Subject: ""},
				Metadata: message.Metadata{}.With(message.TenantIDKey, "tenant-1"),
			}).
			ThenError(ticket.ErrInvalidSubject).
			AssertOn(t, newHandler)
	})
}
