package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/get-relayed/go-relayed/version"
)

// Interface implementation assertion.
var _ Store = new(InMemoryStore)

// InMemoryStore is a thread-safe, in-memory event.Store implementation.
type InMemoryStore struct {
	mx     sync.RWMutex
	events map[StreamID][]Stored
}

// NewInMemoryStore creates a new event.InMemoryStore instance.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		events: make(map[StreamID][]Stored),
	}
}

func contextErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("event.InMemoryStore: context error, %w", err)
	}

	return nil
}

// Stream replays the committed events of the specified Event Stream onto the
// provided channel, starting from the version specified by the Selector.
//
// This call is synchronous, and returns when all the selected events have
// been written to the channel, or when the context has been canceled.
func (es *InMemoryStore) Stream(
	ctx context.Context,
	eventStream StreamWrite,
	id StreamID,
	selector version.Selector,
) error {
	es.mx.RLock()
	defer es.mx.RUnlock()
	defer close(eventStream)

	events, ok := es.events[id]
	if !ok {
		return nil
	}

	for _, event := range events {
		if event.Version < selector.From {
			continue
		}

		select {
		case eventStream <- event:
		case <-ctx.Done():
			return contextErr(ctx)
		}
	}

	return nil
}

// Append records the specified Domain Events at the tail of the Event Stream
// specified by the id, returning the new version of the Event Stream.
//
// `version.CheckExact` can be specified to enable an Optimistic Concurrency
// check on append, using the expected version of the Event Stream prior to
// appending the new events. Alternatively, `version.Any` can be used to skip
// the check.
//
// A `version.ConflictError` is returned if the optimistic locking check
// fails against the current version of the Event Stream.
func (es *InMemoryStore) Append(
	_ context.Context,
	id StreamID,
	expected version.Check,
	events ...Envelope,
) (version.Version, error) {
	es.mx.Lock()
	defer es.mx.Unlock()

	currentVersion := version.Version(len(es.events[id]))

	if v, ok := expected.(version.CheckExact); ok && currentVersion != version.Version(v) {
		return 0, fmt.Errorf("event.InMemoryStore: failed to append events, %w", version.ConflictError{
			Expected: version.Version(v),
			Actual:   currentVersion,
		})
	}

	for _, env := range events {
		currentVersion++
		es.events[id] = append(es.events[id], NewStored(id, currentVersion, env))
	}

	return currentVersion, nil
}
