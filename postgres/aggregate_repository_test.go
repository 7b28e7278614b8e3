package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/get-relayed/go-relayed/internal/ticket"
	"github.com/get-relayed/go-relayed/outbox"
	"github.com/get-relayed/go-relayed/postgres"
)

func TestAggregateRepository(t *testing.T) {
	pool := newTestDatabase(t)

	repository := postgres.NewAggregateRepository[uuid.UUID, *ticket.Ticket](
		pool,
		ticket.StateSerde,
		ticket.EventSerde,
	)

	ticket.AggregateRepositorySuite(repository)(t)
}

func TestAggregateRepositoryWithOutbox(t *testing.T) {
	pool := newTestDatabase(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	outboxStore := &postgres.OutboxStore{Conn: pool}

	repository := postgres.NewAggregateRepository[uuid.UUID, *ticket.Ticket](
		pool,
		ticket.StateSerde,
		ticket.EventSerde,
		postgres.WithOutbox[uuid.UUID, *ticket.Ticket](outboxStore, ticket.ToIntegration),
	)

	t.Run("saving an aggregate stages its integration events atomically", func(t *testing.T) {
		id := uuid.New()

		tkt, err := ticket.Open(id, "tenant-1", "printer is on fire", now)
		require.NoError(t, err)
		require.NoError(t, tkt.Assign("agent-1", now.Add(time.Minute), nil))

		require.NoError(t, repository.Save(ctx, tkt))

		pending, err := outboxStore.ListPending(ctx, outbox.ListPendingRequest{
			Now:   time.Now().UTC(),
			Limit: 10,
		})
		require.NoError(t, err)
		require.Len(t, pending, 2)

		assert.Equal(t, ticket.IntegrationTicketOpened, pending[0].EventType)
		assert.Equal(t, ticket.IntegrationTicketAssigned, pending[1].EventType)

		for _, record := range pending {
			assert.Equal(t, "tenant-1", record.TenantID)
			assert.Equal(t, outbox.StatusPending, record.Status)

			evt, err := record.Event()
			require.NoError(t, err)
			assert.Equal(t, id.String(), evt.PartitionKey)
		}
	})

	t.Run("the staged records survive a publish round-trip", func(t *testing.T) {
		pending, err := outboxStore.ListPending(ctx, outbox.ListPendingRequest{
			Now:   time.Now().UTC(),
			Limit: 10,
		})
		require.NoError(t, err)
		require.NotEmpty(t, pending)

		require.NoError(t, outboxStore.MarkPublished(ctx, pending[0].MessageID))

		remaining, err := outboxStore.ListPending(ctx, outbox.ListPendingRequest{
			Now:   time.Now().UTC(),
			Limit: 10,
		})
		require.NoError(t, err)
		assert.Len(t, remaining, len(pending)-1)
	})
}
