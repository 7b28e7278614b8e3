package ticket

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/get-relayed/go-relayed/aggregate"
	"github.com/get-relayed/go-relayed/command"
)

//nolint:exhaustruct // Interface implementation assertion.
var (
	_ command.Command             = OpenCommand{}
	_ command.Handler[OpenCommand] = OpenCommandHandler{}
)

// OpenCommand is a domain command that can be used to open a new Ticket.
type OpenCommand struct {
	Subject string
}

// Name implements command.Command.
func (OpenCommand) Name() string { return "OpenTicket" }

// OpenCommandHandler is the command handler for OpenCommand domain commands.
type OpenCommandHandler struct {
	UUIDGenerator    func() uuid.UUID
	Clock            func() time.Time
	TicketRepository aggregate.Saver[uuid.UUID, *Ticket]
}

// Handle implements command.Handler.
func (h OpenCommandHandler) Handle(ctx context.Context, cmd command.Envelope[OpenCommand]) error {
	newTicketID := h.UUIDGenerator()

	tenantID := cmd.Metadata.TenantID()
	if tenantID == "" {
		return ErrInvalidTenantID
	}

	newTicket, err := Open(newTicketID, tenantID, cmd.Message.Subject, h.Clock())
	if err != nil {
		return fmt.Errorf("ticket.OpenCommandHandler: failed to open new Ticket, %w", err)
	}

	if err := h.TicketRepository.Save(ctx, newTicket); err != nil {
		return fmt.Errorf("ticket.OpenCommandHandler: failed to save new Ticket to repository, %w", err)
	}

	return nil
}
