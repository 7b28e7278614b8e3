package event

import "github.com/get-relayed/go-relayed/version"

// Stream is the ordered sequence of Domain Events recorded for a single
// Aggregate, with a monotonic version.
//
// Stream values are structurally immutable: Append returns a new Stream
// instance, leaving the receiver unaffected. This makes it safe to hand
// out Stream values to projections without defensive copying.
type Stream struct {
	id     StreamID
	events []Stored
}

// NewStream creates a Stream for the provided Aggregate id, computing its
// version from the supplied events: the version of an empty Stream is 0.
//
// The events are expected to be ordered by ascending version.
func NewStream(id StreamID, events ...Stored) Stream {
	return Stream{
		id:     id,
		events: events,
	}
}

// StreamID returns the id of the Aggregate the Stream belongs to.
func (s Stream) StreamID() StreamID { return s.id }

// Version returns the current version of the Stream, which is the version
// of its latest event, or 0 for an empty Stream.
func (s Stream) Version() version.Version {
	if len(s.events) == 0 {
		return 0
	}

	last := s.events[len(s.events)-1]
	if last.Version > 0 {
		return last.Version
	}

	return version.Version(len(s.events))
}

// Len returns the number of events recorded in the Stream.
func (s Stream) Len() int { return len(s.events) }

// Events returns a copy of the events recorded in the Stream,
// ordered by ascending version.
func (s Stream) Events() []Stored {
	events := make([]Stored, len(s.events))
	copy(events, s.events)

	return events
}

// Append returns a new Stream with the provided event appended to it and the
// Stream version incremented. The receiver Stream is unaffected.
//
// If the event carries no version, the next Stream version is assigned to it.
func (s Stream) Append(event Stored) Stream {
	if event.Version == 0 {
		event.Version = s.Version() + 1
	}

	events := make([]Stored, len(s.events), len(s.events)+1)
	copy(events, s.events)

	return Stream{
		id:     s.id,
		events: append(events, event),
	}
}

// AfterVersion returns the suffix of events whose version is greater than
// the provided one, in recording order. An empty slice is returned when the
// provided version is at or beyond the current Stream version.
//
// Use this for incremental projection rebuilds and catch-up subscribers.
func (s Stream) AfterVersion(v version.Version) []Stored {
	var events []Stored

	for _, event := range s.events {
		if event.Version > v {
			events = append(events, event)
		}
	}

	return events
}
