package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/get-relayed/go-relayed/event"
	"github.com/get-relayed/go-relayed/version"
)

// ScenarioInit is the entrypoint of the Command Handler scenario API.
//
// Seed the Event Store state through Given(), or start from an empty
// system by calling When() straight away.
type ScenarioInit[Cmd Command, T Handler[Cmd]] struct{}

// Scenario builds a behavioral test for a Command Handler.
//
// Since Command Handlers express their side effects as Domain Events
// recorded in the Event Store, the scenario runs a Command through the
// Handler under test and compares the Domain Events it records (or the
// error it returns) against the stated expectation.
func Scenario[Cmd Command, T Handler[Cmd]]() ScenarioInit[Cmd, T] {
	return ScenarioInit[Cmd, T]{}
}

// Given seeds the Event Store with the Domain Events that are supposed to
// have happened before the Command under test is dispatched.
//
// Leave it out (or pass no events) when the Command should run against an
// empty system.
func (sc ScenarioInit[Cmd, T]) Given(events ...event.Stored) ScenarioGiven[Cmd, T] {
	return ScenarioGiven[Cmd, T]{
		given: events,
	}
}

// When selects the Command to dispatch against an empty system.
func (sc ScenarioInit[Cmd, T]) When(cmd Envelope[Cmd]) ScenarioWhen[Cmd, T] {
	return ScenarioWhen[Cmd, T]{
		ScenarioGiven: ScenarioGiven[Cmd, T]{given: nil},
		when:          cmd,
	}
}

// ScenarioGiven holds the seeded Event Store state, waiting for the
// Command to dispatch.
type ScenarioGiven[Cmd Command, T Handler[Cmd]] struct {
	given []event.Stored
}

// When selects the Command to dispatch on top of the seeded state.
func (sc ScenarioGiven[Cmd, T]) When(cmd Envelope[Cmd]) ScenarioWhen[Cmd, T] {
	return ScenarioWhen[Cmd, T]{
		ScenarioGiven: sc,
		when:          cmd,
	}
}

// ScenarioWhen holds both the seeded state and the Command to dispatch,
// waiting for the expected outcome.
type ScenarioWhen[Cmd Command, T Handler[Cmd]] struct {
	ScenarioGiven[Cmd, T]

	when Envelope[Cmd]
}

// Then expects the Command to succeed and record exactly the provided
// Domain Events, in the provided order.
func (sc ScenarioWhen[Cmd, T]) Then(events ...event.Stored) ScenarioThen[Cmd, T] {
	return ScenarioThen[Cmd, T]{
		ScenarioWhen: sc,
		then:         events,
		thenError:    nil,
		wantError:    false,
	}
}

// ThenError expects the Command to fail with the provided error.
//
// The returned error is matched through errors.Is(), so wrapping the
// expected error in the Handler does not break the assertion.
func (sc ScenarioWhen[Cmd, T]) ThenError(err error) ScenarioThen[Cmd, T] {
	return ScenarioThen[Cmd, T]{
		ScenarioWhen: sc,
		then:         nil,
		thenError:    err,
		wantError:    true,
	}
}

// ThenFails expects the Command to fail, without asserting on the
// specific error value returned.
func (sc ScenarioWhen[Cmd, T]) ThenFails() ScenarioThen[Cmd, T] {
	return ScenarioThen[Cmd, T]{
		ScenarioWhen: sc,
		then:         nil,
		thenError:    nil,
		wantError:    true,
	}
}

// ScenarioThen is the fully specified scenario, ready to be asserted.
type ScenarioThen[Cmd Command, T Handler[Cmd]] struct {
	ScenarioWhen[Cmd, T]

	then      []event.Stored
	thenError error
	wantError bool
}

// AssertOn runs the scenario against a Command Handler built by the
// provided factory, which receives the in-memory Event Store the scenario
// recorded its expectations on.
func (sc ScenarioThen[Cmd, T]) AssertOn( //nolint:gocritic
	t *testing.T,
	handlerFactory func(event.Store) T,
) {
	ctx := context.Background()
	store := event.NewInMemoryStore()

	for _, evt := range sc.given {
		_, err := store.Append(ctx, evt.StreamID, version.Any, evt.Envelope)
		if !assert.NoError(t, err) {
			return
		}
	}

	trackingStore := event.NewTrackingStore(store)
	handler := handlerFactory(event.FusedStore{
		Appender: trackingStore,
		Streamer: store,
	})

	err := handler.Handle(context.Background(), sc.when)

	if !sc.wantError {
		assert.NoError(t, err)
		assert.Equal(t, sc.then, trackingStore.Recorded())

		return
	}

	if !assert.Error(t, err) {
		return
	}

	if sc.thenError != nil {
		assert.ErrorIs(t, err, sc.thenError)
	}
}
