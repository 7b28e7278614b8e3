package version

import "fmt"

// ConflictError is returned by an Event Store when appending events using an
// expected Event Stream version that does not match the current state
// of the Event Stream.
type ConflictError struct {
	Expected Version
	Actual   Version
}

func (err ConflictError) Error() string {
	return fmt.Sprintf(
		"version: conflict detected, expected event stream version: %d, actual: %d",
		err.Expected,
		err.Actual,
	)
}
