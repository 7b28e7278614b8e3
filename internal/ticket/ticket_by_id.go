package ticket

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/get-relayed/go-relayed/event"
	"github.com/get-relayed/go-relayed/query"
	"github.com/get-relayed/go-relayed/version"
)

// View is a public-facing representation of a Ticket entity.
// Can be obtained through a Query handler.
type View struct {
	ID       uuid.UUID
	TenantID string
	Subject  string
	Assignee string
	Status   Status
	OpenedAt time.Time

	Version version.Version // NOTE: used to avoid re-processing of already-processed events.
}

// ErrNotFound is returned by a Query when a specific Ticket has not been found.
var ErrNotFound = errors.New("ticket: not found")

//nolint:exhaustruct // Interface implementation assertion.
var (
	_ query.Query                 = GetByID{}
	_ query.Handler[GetByID, View] = new(GetByIDHandler)
)

// GetByID is a Domain Query that can be used to fetch a specific Ticket given its id.
type GetByID struct {
	TicketID uuid.UUID
}

// Name implements query.Query.
func (GetByID) Name() string { return "GetTicketByID" }

// GetByIDHandler is a stateful Query Handler that maintains a list of Tickets
// indexed by their id, built from the Domain Events recorded in an Event Store.
//
// It can be used to answer GetByID queries.
//
// GetByIDHandler is thread-safe.
type GetByIDHandler struct {
	mx   sync.RWMutex
	data map[uuid.UUID]View
}

// NewGetByIDHandler creates a new GetByIDHandler instance.
func NewGetByIDHandler() *GetByIDHandler {
	return &GetByIDHandler{
		data: make(map[uuid.UUID]View),
	}
}

// Handle implements query.Handler.
func (handler *GetByIDHandler) Handle(_ context.Context, q query.Envelope[GetByID]) (View, error) {
	handler.mx.RLock()
	defer handler.mx.RUnlock()

	view, ok := handler.data[q.Message.TicketID]
	if !ok {
		return View{}, fmt.Errorf("ticket.GetByIDHandler: failed to get Ticket by id, %w", ErrNotFound)
	}

	return view, nil
}

// Process updates the read model with the provided recorded Domain Event.
// Events already folded into the View, by version, are skipped.
func (handler *GetByIDHandler) Process(_ context.Context, evt event.Stored) error {
	handler.mx.Lock()
	defer handler.mx.Unlock()

	ticketEvent, ok := evt.Message.(*Event)
	if !ok {
		return fmt.Errorf("ticket.GetByIDHandler: unexpected event type, %T", evt.Message)
	}

	view, ok := handler.data[ticketEvent.ID]
	if ok && view.Version >= evt.Version {
		return nil
	}

	switch kind := ticketEvent.Kind.(type) {
	case *WasOpened:
		view = View{
			ID:       ticketEvent.ID,
			TenantID: kind.TenantID,
			Subject:  kind.Subject,
			Status:   StatusOpen,
			OpenedAt: ticketEvent.RecordTime,
		}

	case *WasAssigned:
		if !ok {
			return fmt.Errorf("ticket.GetByIDHandler: expected view to be registered, none found")
		}

		view.Assignee = kind.Assignee
		view.Status = StatusAssigned

	case *WasClosed:
		if !ok {
			return fmt.Errorf("ticket.GetByIDHandler: expected view to be registered, none found")
		}

		view.Status = StatusClosed

	default:
		return fmt.Errorf("ticket.GetByIDHandler: unexpected Ticket event kind, %T", kind)
	}

	view.Version = evt.Version
	handler.data[ticketEvent.ID] = view

	return nil
}
