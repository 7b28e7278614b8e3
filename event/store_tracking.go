package event

import (
	"context"
	"sync"

	"github.com/get-relayed/go-relayed/version"
)

// TrackingStore is an Event Store wrapper to track the Events
// committed to the inner Event Store.
//
// Useful for tests assertion.
type TrackingStore struct {
	Appender

	mx       sync.RWMutex
	recorded []Stored
}

// NewTrackingStore wraps an Event Store to capture events that get
// appended to it.
func NewTrackingStore(appender Appender) *TrackingStore {
	return &TrackingStore{Appender: appender}
}

// Recorded returns the list of Events that have been appended
// to the Event Store.
//
// The recorded entries only carry the Event Stream id, the version and the
// Envelope, computed from the Append inputs: the unique id, occurrence time
// and status assigned by the inner store are left zero-valued, keeping the
// entries deterministic for test assertions.
func (ts *TrackingStore) Recorded() []Stored {
	ts.mx.RLock()
	defer ts.mx.RUnlock()

	return ts.recorded
}

// Append forwards the call to the wrapped Event Store instance and,
// if the operation concludes successfully, records these events internally.
//
// The recorded events can be accessed by calling Recorded().
func (ts *TrackingStore) Append(
	ctx context.Context,
	id StreamID,
	expected version.Check,
	events ...Envelope,
) (version.Version, error) {
	ts.mx.Lock()
	defer ts.mx.Unlock()

	v, err := ts.Appender.Append(ctx, id, expected, events...)
	if err != nil {
		return v, err
	}

	previousVersion := v - version.Version(len(events))

	for i, evt := range events {
		ts.recorded = append(ts.recorded, Stored{
			Envelope: evt,
			StreamID: id,
			Version:  previousVersion + version.Version(i) + 1,
		})
	}

	return v, err
}
