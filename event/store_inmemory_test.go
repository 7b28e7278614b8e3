package event_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/get-relayed/go-relayed/event"
	"github.com/get-relayed/go-relayed/version"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("streaming an empty stream yields no events", func(t *testing.T) {
		store := event.NewInMemoryStore()

		events, err := event.StreamToSlice(ctx, func(ctx context.Context, eventStream event.StreamWrite) error {
			return store.Stream(ctx, eventStream, "missing-stream", version.SelectFromBeginning)
		})

		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("appended events are replayed in order with monotonic versions", func(t *testing.T) {
		store := event.NewInMemoryStore()

		newVersion, err := store.Append(ctx, "test-stream", version.CheckExact(0),
			event.ToEnvelope(testEvent{Value: "first"}),
			event.ToEnvelope(testEvent{Value: "second"}),
		)
		require.NoError(t, err)
		assert.Equal(t, version.Version(2), newVersion)

		stream, err := event.ReadStream(ctx, store, "test-stream")
		require.NoError(t, err)
		require.Equal(t, 2, stream.Len())

		events := stream.Events()
		assert.Equal(t, version.Version(1), events[0].Version)
		assert.Equal(t, version.Version(2), events[1].Version)
		assert.Equal(t, testEvent{Value: "first"}, events[0].Message)
		assert.Equal(t, testEvent{Value: "second"}, events[1].Message)
		assert.Equal(t, event.StatusPending, events[0].Status)
		assert.NotEmpty(t, events[0].ID)
		assert.False(t, events[0].OccurredAt.IsZero())
	})

	t.Run("a version selector skips older events", func(t *testing.T) {
		store := event.NewInMemoryStore()

		_, err := store.Append(ctx, "test-stream", version.Any,
			event.ToEnvelope(testEvent{Value: "first"}),
			event.ToEnvelope(testEvent{Value: "second"}),
			event.ToEnvelope(testEvent{Value: "third"}),
		)
		require.NoError(t, err)

		events, err := event.StreamToSlice(ctx, func(ctx context.Context, eventStream event.StreamWrite) error {
			return store.Stream(ctx, eventStream, "test-stream", version.Selector{From: 3})
		})

		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, testEvent{Value: "third"}, events[0].Message)
	})

	t.Run("a stale expected version fails with a conflict", func(t *testing.T) {
		store := event.NewInMemoryStore()

		_, err := store.Append(ctx, "test-stream", version.CheckExact(0),
			event.ToEnvelope(testEvent{Value: "first"}),
		)
		require.NoError(t, err)

		_, err = store.Append(ctx, "test-stream", version.CheckExact(0),
			event.ToEnvelope(testEvent{Value: "conflicting"}),
		)

		var conflictErr version.ConflictError

		require.ErrorAs(t, err, &conflictErr)
		assert.Equal(t, version.Version(0), conflictErr.Expected)
		assert.Equal(t, version.Version(1), conflictErr.Actual)
	})

	t.Run("version.Any always appends at the tail", func(t *testing.T) {
		store := event.NewInMemoryStore()

		_, err := store.Append(ctx, "test-stream", version.Any, event.ToEnvelope(testEvent{Value: "first"}))
		require.NoError(t, err)

		newVersion, err := store.Append(ctx, "test-stream", version.Any, event.ToEnvelope(testEvent{Value: "second"}))
		require.NoError(t, err)
		assert.Equal(t, version.Version(2), newVersion)
	})

	t.Run("streams are isolated from each other", func(t *testing.T) {
		store := event.NewInMemoryStore()

		_, err := store.Append(ctx, "stream-1", version.Any, event.ToEnvelope(testEvent{Value: "first"}))
		require.NoError(t, err)

		newVersion, err := store.Append(ctx, "stream-2", version.CheckExact(0), event.ToEnvelope(testEvent{Value: "other"}))
		require.NoError(t, err)
		assert.Equal(t, version.Version(1), newVersion)
	})
}

func TestTrackingStore(t *testing.T) {
	ctx := context.Background()

	t.Run("successful appends are recorded deterministically", func(t *testing.T) {
		store := event.NewInMemoryStore()
		trackingStore := event.NewTrackingStore(store)

		_, err := trackingStore.Append(ctx, "test-stream", version.CheckExact(0),
			event.ToEnvelope(testEvent{Value: "first"}),
			event.ToEnvelope(testEvent{Value: "second"}),
		)
		require.NoError(t, err)

		assert.Equal(t, []event.Stored{
			storedAt("test-stream", 1, "first"),
			storedAt("test-stream", 2, "second"),
		}, trackingStore.Recorded())
	})

	t.Run("failed appends are not recorded", func(t *testing.T) {
		store := event.NewInMemoryStore()
		trackingStore := event.NewTrackingStore(store)

		_, err := trackingStore.Append(ctx, "test-stream", version.CheckExact(99),
			event.ToEnvelope(testEvent{Value: "first"}),
		)

		assert.Error(t, err)
		assert.Empty(t, trackingStore.Recorded())
	})
}
