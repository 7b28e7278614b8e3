// Package aggregate exposes the Aggregate Root building blocks: version
// tracking, Domain Event recording and event-sourced Repositories.
package aggregate

import (
	"fmt"

	"github.com/get-relayed/go-relayed/event"
	"github.com/get-relayed/go-relayed/version"
)

// ID represents an Aggregate ID type.
//
// Aggregate IDs should be able to be marshaled into a string format,
// in order to be saved onto a named Event Stream.
type ID interface {
	fmt.Stringer
}

// StringID is a string-typed Aggregate ID, for simple Aggregates that
// do not need a dedicated identifier type.
type StringID string

func (id StringID) String() string { return string(id) }

// Applier is the segregated interface, part of the Aggregate Root interface,
// that describes the left-folding behavior of Domain Events to update the
// Aggregate Root state.
type Applier interface {
	// Apply applies the specified Event to the Aggregate Root,
	// by causing a state change in the Aggregate Root instance.
	//
	// Since this method causes a state change, implementors should make sure
	// to use pointer semantics on their Aggregate Root method receivers.
	//
	// Please note, this method should not perform any kind of external request
	// and should be, save for the Aggregate Root state mutation, free of side effects.
	// For this reason, this method does not include a context.Context instance
	// in the input parameters.
	Apply(event.Event) error
}

// Root is the interface describing an Aggregate Root instance.
//
// This interface should be implemented by your Aggregate Root types.
// Make sure your Aggregate Root types embed the aggregate.BaseRoot type
// to complete the implementation of this interface.
type Root[I ID] interface {
	Applier

	// AggregateID returns the Aggregate Root identifier.
	AggregateID() I

	// Version returns the current Aggregate Root version.
	// The version gets updated each time a new event is recorded
	// through the aggregate.RecordThat function.
	Version() version.Version

	// FlushRecordedEvents returns and clears the Domain Events recorded
	// through aggregate.RecordThat but not committed to an Event Store yet.
	FlushRecordedEvents() []event.Envelope

	setVersion(version.Version)
	recordThat(Applier, ...event.Envelope) error
}

// RecordThat records the Domain Events for the specified Aggregate Root.
//
// An error is typically returned if applying the Domain Events on the
// Aggregate Root instance fails with an error.
func RecordThat[I ID](root Root[I], events ...event.Envelope) error {
	return root.recordThat(root, events...)
}

// BaseRoot segregates and completes the aggregate.Root interface implementation
// when embedded to a user-defined Aggregate Root type.
//
// BaseRoot provides some common traits, such as tracking the current Aggregate
// Root version, and the recorded-but-uncommitted Domain Events, through
// the aggregate.RecordThat function.
type BaseRoot struct {
	version        version.Version
	recordedEvents []event.Envelope
}

// Version returns the current version of the Aggregate Root instance.
func (br BaseRoot) Version() version.Version { return br.version }

// FlushRecordedEvents returns the Domain Events recorded through
// aggregate.RecordThat, clearing the internal buffer.
func (br *BaseRoot) FlushRecordedEvents() []event.Envelope {
	flushed := br.recordedEvents
	br.recordedEvents = nil

	return flushed
}

func (br *BaseRoot) setVersion(v version.Version) {
	br.version = v
}

func (br *BaseRoot) recordThat(root Applier, events ...event.Envelope) error {
	for _, evt := range events {
		if err := root.Apply(evt.Message); err != nil {
			return fmt.Errorf("aggregate.BaseRoot: failed to apply event, %w", err)
		}

		br.recordedEvents = append(br.recordedEvents, evt)
		br.version++
	}

	return nil
}
