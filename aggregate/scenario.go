package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/get-relayed/go-relayed/event"
	"github.com/get-relayed/go-relayed/version"
)

// ScenarioInit is the entrypoint of the Aggregate Root scenario API.
//
// An Aggregate Root scenario can either set the current evaluation context
// by using Given(), or test a "clean-slate" scenario by using When() directly.
type ScenarioInit[I ID, T Root[I]] struct {
	typ Type[I, T]
}

// Scenario is a scenario type to test the result of methods called
// on an Aggregate Root and their effects.
//
// These methods are meant to produce side effects in the Aggregate Root state,
// enforcing the domain invariants represented by the Aggregate Root itself.
func Scenario[I ID, T Root[I]](typ Type[I, T]) ScenarioInit[I, T] {
	return ScenarioInit[I, T]{
		typ: typ,
	}
}

// Given sets the Aggregate Root scenario preconditions, the Domain Events
// recorded for the Aggregate thus far.
func (sc ScenarioInit[I, T]) Given(events ...event.Stored) ScenarioGiven[I, T] {
	return ScenarioGiven[I, T]{
		typ:   sc.typ,
		given: events,
	}
}

// When provides the domain method call to evaluate on a clean-slate
// Aggregate Root, typically a factory method.
func (sc ScenarioInit[I, T]) When(fn func() (T, error)) ScenarioWhen[I, T] {
	return ScenarioWhen[I, T]{
		typ: sc.typ,
		fn:  fn,
	}
}

// ScenarioGiven is the state of the scenario once a set of Domain Events
// have been provided using Given().
type ScenarioGiven[I ID, T Root[I]] struct {
	typ   Type[I, T]
	given []event.Stored
}

// When provides the domain method call to evaluate on the Aggregate Root
// rehydrated from the Given events.
func (sc ScenarioGiven[I, T]) When(fn func(T) error) ScenarioWhen[I, T] {
	return ScenarioWhen[I, T]{
		typ: sc.typ,
		fn: func() (T, error) {
			var zeroValue T

			root := sc.typ.Factory()

			if err := RehydrateFromEvents(root, event.SliceToStream(sc.given)); err != nil {
				return zeroValue, err
			}

			if err := fn(root); err != nil {
				return zeroValue, err
			}

			return root, nil
		},
	}
}

// ScenarioWhen is the state of the scenario once the domain method call
// to evaluate has been provided.
type ScenarioWhen[I ID, T Root[I]] struct {
	typ Type[I, T]
	fn  func() (T, error)
}

// Then sets a positive expectation on the scenario outcome: the Aggregate
// Root version and the new Domain Events recorded by the method call.
func (sc ScenarioWhen[I, T]) Then(v version.Version, events ...event.Envelope) ScenarioThen[I, T] {
	return ScenarioThen[I, T]{
		ScenarioWhen: sc,
		version:      v,
		expected:     events,
	}
}

// ThenError sets a negative expectation on the scenario outcome,
// to fail with an error matching the provided one through errors.Is().
func (sc ScenarioWhen[I, T]) ThenError(err error) ScenarioThen[I, T] {
	return ScenarioThen[I, T]{
		ScenarioWhen:  sc,
		expectedError: err,
		wantError:     true,
	}
}

// ThenFails sets a negative expectation on the scenario outcome,
// with no particular assertion on the error returned.
func (sc ScenarioWhen[I, T]) ThenFails() ScenarioThen[I, T] {
	return ScenarioThen[I, T]{
		ScenarioWhen: sc,
		wantError:    true,
	}
}

// ScenarioThen is the state of the scenario once the preconditions
// and expectations have been fully specified.
type ScenarioThen[I ID, T Root[I]] struct {
	ScenarioWhen[I, T]

	version       version.Version
	expected      []event.Envelope
	expectedError error
	wantError     bool
}

// AssertOn performs the specified expectations of the scenario.
func (sc ScenarioThen[I, T]) AssertOn(t *testing.T) {
	root, err := sc.fn()

	if !sc.wantError {
		assert.NoError(t, err)
		assert.Equal(t, sc.expected, root.FlushRecordedEvents())
		assert.Equal(t, sc.version, root.Version())

		return
	}

	assert.Error(t, err)

	if sc.expectedError != nil {
		assert.ErrorIs(t, err, sc.expectedError)
	}
}
