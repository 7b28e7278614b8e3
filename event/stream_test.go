package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/get-relayed/go-relayed/event"
	"github.com/get-relayed/go-relayed/version"
)

type testEvent struct {
	Value string
}

func (testEvent) Name() string { return "TestEvent" }

func storedAt(id event.StreamID, v version.Version, value string) event.Stored {
	return event.Stored{
		Envelope: event.ToEnvelope(testEvent{Value: value}),
		StreamID: id,
		Version:  v,
	}
}

func TestStream(t *testing.T) {
	const streamID event.StreamID = "test-stream"

	t.Run("an empty stream has version 0", func(t *testing.T) {
		stream := event.NewStream(streamID)

		assert.Equal(t, streamID, stream.StreamID())
		assert.Equal(t, version.Version(0), stream.Version())
		assert.Zero(t, stream.Len())
		assert.Empty(t, stream.Events())
	})

	t.Run("the stream version is the version of its latest event", func(t *testing.T) {
		stream := event.NewStream(streamID,
			storedAt(streamID, 1, "first"),
			storedAt(streamID, 2, "second"),
			storedAt(streamID, 3, "third"),
		)

		assert.Equal(t, version.Version(3), stream.Version())
		assert.Equal(t, 3, stream.Len())
	})

	t.Run("append returns a new stream, leaving the receiver unaffected", func(t *testing.T) {
		stream := event.NewStream(streamID,
			storedAt(streamID, 1, "first"),
			storedAt(streamID, 2, "second"),
			storedAt(streamID, 3, "third"),
		)

		appended := stream.Append(storedAt(streamID, 4, "fourth"))

		assert.Equal(t, version.Version(4), appended.Version())
		assert.Equal(t, 4, appended.Len())

		assert.Equal(t, version.Version(3), stream.Version())
		assert.Equal(t, 3, stream.Len())
	})

	t.Run("append assigns the next version to an unversioned event", func(t *testing.T) {
		stream := event.NewStream(streamID, storedAt(streamID, 1, "first"))

		appended := stream.Append(event.Stored{
			Envelope: event.ToEnvelope(testEvent{Value: "second"}),
			StreamID: streamID,
		})

		events := appended.Events()
		require.Len(t, events, 2)
		assert.Equal(t, version.Version(2), events[1].Version)
		assert.Equal(t, version.Version(2), appended.Version())
	})

	t.Run("events returns a copy of the recorded events", func(t *testing.T) {
		stream := event.NewStream(streamID, storedAt(streamID, 1, "first"))

		events := stream.Events()
		events[0] = storedAt(streamID, 9, "mutated")

		assert.Equal(t, version.Version(1), stream.Events()[0].Version)
	})

	t.Run("after-version returns the suffix of newer events", func(t *testing.T) {
		stream := event.NewStream(streamID,
			storedAt(streamID, 1, "first"),
			storedAt(streamID, 2, "second"),
			storedAt(streamID, 3, "third"),
		)

		newer := stream.AfterVersion(1)
		require.Len(t, newer, 2)
		assert.Equal(t, version.Version(2), newer[0].Version)
		assert.Equal(t, version.Version(3), newer[1].Version)

		assert.Empty(t, stream.AfterVersion(3))
		assert.Empty(t, stream.AfterVersion(5))
	})
}
