package ticket

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/get-relayed/go-relayed/aggregate"
	"github.com/get-relayed/go-relayed/message"
	"github.com/get-relayed/go-relayed/version"
)

// AggregateRepositorySuite returns an executable testing suite running on the
// aggregate.Repository value provided in input.
//
// Package ticket of this module exposes JSON-based serdes (StateSerde,
// EventSerde), which can be useful to test serialization and deserialization
// of data to the target repository implementation.
func AggregateRepositorySuite(repository aggregate.Repository[uuid.UUID, *Ticket]) func(t *testing.T) {
	return func(t *testing.T) {
		ctx := context.Background()
		now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

		t.Run("it can load and save aggregates from the database", func(t *testing.T) {
			var (
				id       = uuid.New()
				tenantID = "tenant-a"
				subject  = "Printer on fire"
			)

			_, err := repository.Get(ctx, id)
			if !assert.ErrorIs(t, err, aggregate.ErrRootNotFound) {
				return
			}

			tkt, err := Open(id, tenantID, subject, now)
			if !assert.NoError(t, err) {
				return
			}

			if err := repository.Save(ctx, tkt); !assert.NoError(t, err) {
				return
			}

			got, err := repository.Get(ctx, id)
			assert.NoError(t, err)
			assert.Equal(t, id, got.AggregateID())
			assert.Equal(t, tenantID, got.TenantID())
			assert.Equal(t, tkt.Version(), got.Version())
		})

		t.Run("optimistic locking of aggregates is also working fine", func(t *testing.T) {
			var (
				id       = uuid.New()
				tenantID = "tenant-a"
				subject  = "Cannot log in"
			)

			tkt, err := Open(id, tenantID, subject, now)
			require.NoError(t, err)

			require.NoError(t, tkt.Assign("agent-1", now, message.Metadata{
				"Testing-Metadata-Time": now.Format(time.RFC3339),
			}))

			if err := repository.Save(ctx, tkt); !assert.NoError(t, err) {
				return
			}

			// Try to open a new Ticket with the same id, but stop at Open.
			outdated, err := Open(id, tenantID, subject, now)
			require.NoError(t, err)

			err = repository.Save(ctx, outdated)

			expectedErr := version.ConflictError{
				Expected: 0,
				Actual:   2, //nolint:mnd // Version after two recorded events.
			}

			var conflictErr version.ConflictError

			assert.ErrorAs(t, err, &conflictErr)
			assert.Equal(t, expectedErr, conflictErr)
		})
	}
}
