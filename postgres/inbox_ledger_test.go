package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/get-relayed/go-relayed/inbox"
	"github.com/get-relayed/go-relayed/postgres"
)

func TestInboxLedger(t *testing.T) {
	pool := newTestDatabase(t)
	ctx := context.Background()
	ledger := postgres.InboxLedger{Conn: pool}

	t.Run("unseen messages are not processed", func(t *testing.T) {
		processed, err := ledger.IsProcessed(ctx, "message-1")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("marking a message twice is a no-op", func(t *testing.T) {
		require.NoError(t, ledger.MarkProcessed(ctx, "message-2"))
		require.NoError(t, ledger.MarkProcessed(ctx, "message-2"))

		processed, err := ledger.IsProcessed(ctx, "message-2")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("the ledger makes consumer side effects idempotent", func(t *testing.T) {
		var calls int

		sideEffect := func(context.Context) error {
			calls++
			return nil
		}

		ran, err := inbox.Process(ctx, ledger, "message-3", sideEffect)
		require.NoError(t, err)
		assert.True(t, ran)

		ran, err = inbox.Process(ctx, ledger, "message-3", sideEffect)
		require.NoError(t, err)
		assert.False(t, ran)

		assert.Equal(t, 1, calls)
	})
}
