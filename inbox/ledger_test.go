package inbox_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/get-relayed/go-relayed/inbox"
)

func TestProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("the side effect runs once per message id", func(t *testing.T) {
		ledger := inbox.NewInMemoryLedger()

		var calls int

		sideEffect := func(context.Context) error {
			calls++
			return nil
		}

		ran, err := inbox.Process(ctx, ledger, "message-1", sideEffect)
		require.NoError(t, err)
		assert.True(t, ran)

		ran, err = inbox.Process(ctx, ledger, "message-1", sideEffect)
		require.NoError(t, err)
		assert.False(t, ran)

		assert.Equal(t, 1, calls)
	})

	t.Run("different message ids are processed independently", func(t *testing.T) {
		ledger := inbox.NewInMemoryLedger()

		sideEffect := func(context.Context) error { return nil }

		ran, err := inbox.Process(ctx, ledger, "message-1", sideEffect)
		require.NoError(t, err)
		assert.True(t, ran)

		ran, err = inbox.Process(ctx, ledger, "message-2", sideEffect)
		require.NoError(t, err)
		assert.True(t, ran)
	})

	t.Run("a failing side effect leaves the message unprocessed", func(t *testing.T) {
		ledger := inbox.NewInMemoryLedger()
		sideEffectErr := errors.New("projection update failed")

		_, err := inbox.Process(ctx, ledger, "message-1", func(context.Context) error {
			return sideEffectErr
		})
		assert.ErrorIs(t, err, sideEffectErr)

		// The delivery can be retried: the message was never marked.
		ran, err := inbox.Process(ctx, ledger, "message-1", func(context.Context) error {
			return nil
		})
		require.NoError(t, err)
		assert.True(t, ran)
	})
}

func TestInMemoryLedger(t *testing.T) {
	ctx := context.Background()

	t.Run("unseen messages are not processed", func(t *testing.T) {
		ledger := inbox.NewInMemoryLedger()

		processed, err := ledger.IsProcessed(ctx, "message-1")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("marking a message twice is a no-op", func(t *testing.T) {
		ledger := inbox.NewInMemoryLedger()

		require.NoError(t, ledger.MarkProcessed(ctx, "message-1"))
		require.NoError(t, ledger.MarkProcessed(ctx, "message-1"))

		processed, err := ledger.IsProcessed(ctx, "message-1")
		require.NoError(t, err)
		assert.True(t, processed)
	})
}
