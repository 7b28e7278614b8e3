package event

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/get-relayed/go-relayed/version"
)

// StreamWrite provides write-only access to a channel of Stored events,
// used by Streamer implementations to replay an Event Stream.
type StreamWrite chan<- Stored

// StreamRead provides read-only access to a channel of Stored events.
type StreamRead <-chan Stored

// StreamToSlice synchronously exhausts the stream produced by the provided
// closure into a Stored slice, and returns an error if the stream origin
// fails with one.
func StreamToSlice(ctx context.Context, f func(ctx context.Context, eventStream StreamWrite) error) ([]Stored, error) {
	ch := make(chan Stored, 1)
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error { return f(ctx, ch) })

	var events []Stored
	for event := range ch {
		events = append(events, event)
	}

	return events, group.Wait()
}

// SliceToStream produces a closed, buffered stream containing the provided
// Stored events, ready for synchronous consumption.
func SliceToStream(events []Stored) StreamRead {
	ch := make(chan Stored, len(events))

	for _, evt := range events {
		ch <- evt
	}

	close(ch)

	return ch
}

// Streamer is an Event Store trait used to open a specific Event Stream
// and replay the events recorded in it.
type Streamer interface {
	Stream(ctx context.Context, eventStream StreamWrite, id StreamID, selector version.Selector) error
}

// Appender is an Event Store trait used to append new Domain Events
// to an Event Stream.
type Appender interface {
	Append(ctx context.Context, id StreamID, expected version.Check, events ...Envelope) (version.Version, error)
}

// Store represents an Event Store, an append-only, per-aggregate log of
// Domain Events that supports ordered replay.
type Store interface {
	Appender
	Streamer
}

// FusedStore is a convenience type to fuse multiple Event Store traits
// where you might need to extend the functionality of the Store only
// partially, e.g. to decorate Append while keeping Stream untouched.
type FusedStore struct {
	Appender
	Streamer
}

// ReadStream opens the Event Stream with the provided id and exhausts it
// into a Stream value, replaying all the events recorded for the Aggregate.
func ReadStream(ctx context.Context, streamer Streamer, id StreamID) (Stream, error) {
	events, err := StreamToSlice(ctx, func(ctx context.Context, eventStream StreamWrite) error {
		return streamer.Stream(ctx, eventStream, id, version.SelectFromBeginning)
	})
	if err != nil {
		return Stream{}, err
	}

	return NewStream(id, events...), nil
}
