// Package version provides types to work with Event Stream versions.
package version

// Version is the type to specify Event Stream versions.
// Versions start from 1, as they represent the length of a single Event Stream.
type Version uint64

// SelectFromBeginning is a Selector value that returns all the events
// recorded in an Event Stream.
var SelectFromBeginning = Selector{From: 0}

// Selector specifies which slice of the Event Stream to select when streaming
// events from the Event Store.
type Selector struct {
	From Version
}

// Any is a Check value that skips any kind of version check when
// appending events to the Event Store.
var Any = CheckAny{}

// Check can be used to perform optimistic concurrency checks when
// appending events to the Event Store.
type Check interface {
	isVersionCheck()
}

// CheckAny performs no optimistic concurrency check.
type CheckAny struct{}

func (CheckAny) isVersionCheck() {}

// CheckExact ensures that new events are appended to the Event Stream only if
// its current version matches the expected one.
type CheckExact Version

func (CheckExact) isVersionCheck() {}
