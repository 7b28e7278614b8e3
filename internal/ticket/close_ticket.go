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
	_ command.Command               = CloseCommand{}
	_ command.Handler[CloseCommand] = CloseCommandHandler{}
)

// CloseCommand is a domain command that can be used to close an open Ticket.
type CloseCommand struct {
	TicketID   uuid.UUID
	Resolution string
}

// Name implements command.Command.
func (CloseCommand) Name() string { return "CloseTicket" }

// CloseCommandHandler is the command handler for CloseCommand domain commands.
type CloseCommandHandler struct {
	Clock            func() time.Time
	TicketRepository aggregate.Repository[uuid.UUID, *Ticket]
}

// Handle implements command.Handler.
func (h CloseCommandHandler) Handle(ctx context.Context, cmd command.Envelope[CloseCommand]) error {
	foundTicket, err := h.TicketRepository.Get(ctx, cmd.Message.TicketID)
	if err != nil {
		return fmt.Errorf("ticket.CloseCommandHandler: failed to get Ticket from repository, %w", err)
	}

	if err := foundTicket.Close(cmd.Message.Resolution, h.Clock(), cmd.Metadata); err != nil {
		return fmt.Errorf("ticket.CloseCommandHandler: failed to close Ticket, %w", err)
	}

	if err := h.TicketRepository.Save(ctx, foundTicket); err != nil {
		return fmt.Errorf("ticket.CloseCommandHandler: failed to save Ticket to repository, %w", err)
	}

	return nil
}
