package ticket

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/get-relayed/go-relayed/aggregate"
	"github.com/get-relayed/go-relayed/event"
	"github.com/get-relayed/go-relayed/version"
)

// EventStoreSuite returns an executable testing suite running on the
// event.Store value provided in input.
func EventStoreSuite(eventStore event.Store) func(t *testing.T) {
	return func(t *testing.T) {
		ctx := context.Background()
		now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

		// Testing the Event-sourced repository implementation, which indirectly
		// tests the Event Store instance.
		AggregateRepositorySuite(aggregate.NewEventSourcedRepository(eventStore, Type))(t)

		t.Run("append works when used with version.Any", func(t *testing.T) {
			id := uuid.New()

			tkt, err := Open(id, "tenant-a", "Broken keyboard", now)
			require.NoError(t, err)

			require.NoError(t, tkt.Assign("agent-2", now, nil))

			eventsToCommit := tkt.FlushRecordedEvents()
			expectedVersion := version.Version(len(eventsToCommit))

			newVersion, err := eventStore.Append(
				ctx,
				event.StreamID(id.String()),
				version.Any,
				eventsToCommit...,
			)

			require.NoError(t, err)
			require.Equal(t, expectedVersion, newVersion)

			// Now let's update the Ticket event stream once more.

			require.NoError(t, tkt.Close("resolved", now, nil))

			newEventsToCommit := tkt.FlushRecordedEvents()
			expectedVersion += version.Version(len(newEventsToCommit))

			newVersion, err = eventStore.Append(
				ctx,
				event.StreamID(id.String()),
				version.Any,
				newEventsToCommit...,
			)

			require.NoError(t, err)
			require.Equal(t, expectedVersion, newVersion)

			// The recorded events can be replayed in order.

			stream, err := event.ReadStream(ctx, eventStore, event.StreamID(id.String()))
			require.NoError(t, err)
			require.Equal(t, expectedVersion, stream.Version())
			require.Equal(t, int(expectedVersion), stream.Len())
		})
	}
}
