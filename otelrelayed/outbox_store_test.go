package otelrelayed_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/get-relayed/go-relayed/integration"
	"github.com/get-relayed/go-relayed/otelrelayed"
	"github.com/get-relayed/go-relayed/outbox"
)

// The global providers default to no-op implementations: these tests assert
// that instrumentation is transparent to the wrapped store behavior.
func TestInstrumentedOutboxStore(t *testing.T) {
	ctx := context.Background()

	store, err := otelrelayed.NewInstrumentedOutboxStore(outbox.NewInMemoryStore())
	require.NoError(t, err)

	evt := integration.New("support.ticket.opened", 1, "tenant-1", "ticket-1")
	evt.Data = []byte(`{"subject":"hello"}`)

	record, err := outbox.NewRecord(evt)
	require.NoError(t, err)

	require.NoError(t, store.Append(ctx, record))

	pending, err := store.ListPending(ctx, outbox.ListPendingRequest{
		Now:   time.Now().UTC(),
		Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, store.MarkFailed(ctx, outbox.MarkFailedRequest{
		MessageID:     record.MessageID,
		Attempts:      1,
		NextAttemptAt: time.Now().UTC(),
		LastError:     errors.New("broker unreachable"),
	}))

	require.NoError(t, store.MarkPublished(ctx, record.MessageID))

	var duplicateErr outbox.DuplicateRecordError

	err = store.Append(ctx, record)
	assert.ErrorAs(t, err, &duplicateErr)
}

func TestCollector(t *testing.T) {
	ctx := context.Background()

	collector := otelrelayed.NewCollector()

	tags := map[string]string{"message": "OpenTicket", "success": "true"}

	assert.NotPanics(t, func() {
		collector.IncCounter(ctx, "relayed.dispatch.requests", tags)
		collector.IncCounter(ctx, "relayed.dispatch.requests", tags)
		collector.ObserveHistogram(ctx, "relayed.dispatch.duration.milliseconds", 12.5, tags)
	})
}
