package ticket_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/get-relayed/go-relayed/event"
	"github.com/get-relayed/go-relayed/integration"
	"github.com/get-relayed/go-relayed/internal/ticket"
	"github.com/get-relayed/go-relayed/message"
)

func TestToIntegration(t *testing.T) {
	tkt, err := ticket.Open(testTicketID, "tenant-1", "printer is on fire", openedAt)
	require.NoError(t, err)

	t.Run("the opening event maps to its external representation", func(t *testing.T) {
		out, ok, err := ticket.ToIntegration(tkt, event.Envelope{
			Message: wasOpened(),
			Metadata: message.Metadata{}.
				With(message.UserIDKey, "user-1").
				With(message.CorrelationIDKey, "correlation-1"),
		})

		require.NoError(t, err)
		require.True(t, ok)

		assert.Equal(t, ticket.IntegrationTicketOpened, out.EventName)
		assert.Equal(t, 1, out.EventVersion)
		assert.NotEmpty(t, out.EventID)
		assert.Equal(t, "tenant-1", out.TenantID)
		assert.Equal(t, testTicketID.String(), out.PartitionKey)
		assert.Equal(t, openedAt, out.OccurredAt)
		assert.Equal(t, integration.ClassificationInternal, out.Classification)
		assert.Equal(t, "user-1", out.ActorID)
		assert.Equal(t, "correlation-1", out.CorrelationID)
		assert.JSONEq(t, `{"subject":"printer is on fire"}`, string(out.Data))
	})

	t.Run("assignment and closure carry their own payloads", func(t *testing.T) {
		out, ok, err := ticket.ToIntegration(tkt, event.ToEnvelope(&ticket.Event{
			ID:         testTicketID,
			RecordTime: closedAt,
			Kind:       &ticket.WasAssigned{Assignee: "agent-1"},
		}))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, ticket.IntegrationTicketAssigned, out.EventName)
		assert.JSONEq(t, `{"assignee":"agent-1"}`, string(out.Data))

		out, ok, err = ticket.ToIntegration(tkt, event.ToEnvelope(&ticket.Event{
			ID:         testTicketID,
			RecordTime: closedAt,
			Kind:       &ticket.WasClosed{Resolution: "rebooted the printer"},
		}))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, ticket.IntegrationTicketClosed, out.EventName)
		assert.JSONEq(t, `{"resolution":"rebooted the printer"}`, string(out.Data))
	})

	t.Run("the produced envelopes pass the wire-format contract", func(t *testing.T) {
		out, ok, err := ticket.ToIntegration(tkt, event.ToEnvelope(wasOpened()))
		require.NoError(t, err)
		require.True(t, ok)

		_, err = out.ForTenant("tenant-1")
		assert.NoError(t, err)
	})

	t.Run("an unexpected event type fails", func(t *testing.T) {
		_, _, err := ticket.ToIntegration(tkt, event.Envelope{Message: nil})
		assert.Error(t, err)
	})
}
