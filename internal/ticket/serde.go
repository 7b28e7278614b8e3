package ticket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/get-relayed/go-relayed/message"
	"github.com/get-relayed/go-relayed/serde"
)

// ticketState is the wire representation of the Ticket aggregate state,
// used by state-based Repository implementations.
type ticketState struct {
	ID       uuid.UUID `json:"id"`
	TenantID string    `json:"tenantId"`
	Subject  string    `json:"subject"`
	Assignee string    `json:"assignee,omitempty"`
	Status   Status    `json:"status"`
	OpenedAt time.Time `json:"openedAt"`
}

// StateSerde is the serde.Bytes implementation to map a Ticket aggregate
// to and from its JSON state representation.
var StateSerde serde.Bytes[*Ticket] = serde.Fused[*Ticket, []byte]{
	Serializer:   serde.SerializerFunc[*Ticket, []byte](serializeState),
	Deserializer: serde.DeserializerFunc[*Ticket, []byte](deserializeState),
}

func serializeState(t *Ticket) ([]byte, error) {
	data, err := json.Marshal(ticketState{
		ID:       t.id,
		TenantID: t.tenantID,
		Subject:  t.subject,
		Assignee: t.assignee,
		Status:   t.status,
		OpenedAt: t.openedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("ticket.serializeState: failed to marshal to json, %w", err)
	}

	return data, nil
}

func deserializeState(data []byte) (*Ticket, error) {
	var state ticketState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("ticket.deserializeState: failed to unmarshal from json, %w", err)
	}

	return &Ticket{
		id:       state.ID,
		tenantID: state.TenantID,
		subject:  state.Subject,
		assignee: state.Assignee,
		status:   state.Status,
		openedAt: state.OpenedAt,
	}, nil
}

// eventRecord is the wire representation of a Ticket domain event,
// carrying the event kind name used to pick the payload type back.
type eventRecord struct {
	ID         uuid.UUID       `json:"id"`
	RecordTime time.Time       `json:"recordTime"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
}

// EventSerde is the serde.Bytes implementation to map Ticket domain events
// to and from their JSON representation, suitable for Event Store adapters
// working on message.Message values.
var EventSerde serde.Bytes[message.Message] = serde.Fused[message.Message, []byte]{
	Serializer:   serde.SerializerFunc[message.Message, []byte](serializeEvent),
	Deserializer: serde.DeserializerFunc[message.Message, []byte](deserializeEvent),
}

func serializeEvent(msg message.Message) ([]byte, error) {
	evt, ok := msg.(*Event)
	if !ok {
		return nil, fmt.Errorf("ticket.serializeEvent: unexpected message type, %T", msg)
	}

	payload, err := json.Marshal(evt.Kind)
	if err != nil {
		return nil, fmt.Errorf("ticket.serializeEvent: failed to marshal event kind, %w", err)
	}

	data, err := json.Marshal(eventRecord{
		ID:         evt.ID,
		RecordTime: evt.RecordTime,
		Kind:       evt.Kind.Name(),
		Payload:    payload,
	})
	if err != nil {
		return nil, fmt.Errorf("ticket.serializeEvent: failed to marshal to json, %w", err)
	}

	return data, nil
}

func deserializeEvent(data []byte) (message.Message, error) {
	var record eventRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("ticket.deserializeEvent: failed to unmarshal from json, %w", err)
	}

	var kind eventKind

	switch record.Kind {
	case (&WasOpened{}).Name():
		kind = new(WasOpened)
	case (&WasAssigned{}).Name():
		kind = new(WasAssigned)
	case (&WasClosed{}).Name():
		kind = new(WasClosed)
	default:
		return nil, fmt.Errorf("ticket.deserializeEvent: unexpected event kind, %s", record.Kind)
	}

	if err := json.Unmarshal(record.Payload, kind); err != nil {
		return nil, fmt.Errorf("ticket.deserializeEvent: failed to unmarshal event kind, %w", err)
	}

	return &Event{
		ID:         record.ID,
		RecordTime: record.RecordTime,
		Kind:       kind,
	}, nil
}
