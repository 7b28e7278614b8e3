package command

import (
	"context"
	"sync"
)

// Dispatcher represents a component that routes Domain Commands to
// their appropriate Command Handlers.
//
// Dispatching is synchronous to the caller: Dispatch returns when the
// Command Handler has finished execution, propagating its error unmodified.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd Envelope[Command]) error
}

// Bus is an in-memory, synchronous Command Dispatcher implementation,
// routing Commands to their Handlers by exact Command name match.
//
// A Bus instance owns its own routing table: construct one with NewBus
// during startup wiring and pass it by reference to every caller.
// The Bus holds no business logic and applies no retries.
type Bus struct {
	mx       sync.RWMutex
	handlers map[string]Handler[Command]
}

// Interface implementation assertion.
var _ Dispatcher = new(Bus)

// NewBus creates a new Bus instance with an empty routing table.
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string]Handler[Command]),
	}
}

// Register adds the specified Handler to the Bus routing table, bound to the
// provided Command name.
//
// A DuplicateHandlerError is returned if a Handler has already been
// registered for the same name, as Commands must have a single writer.
func (b *Bus) Register(commandName string, handler Handler[Command]) error {
	b.mx.Lock()
	defer b.mx.Unlock()

	if _, ok := b.handlers[commandName]; ok {
		return DuplicateHandlerError{CommandName: commandName}
	}

	b.handlers[commandName] = handler

	return nil
}

// MustRegister works like Register, but panics on registration failure.
//
// Duplicate Command Handler registrations are configuration errors:
// use MustRegister in the startup wiring step to make them fatal.
func (b *Bus) MustRegister(commandName string, handler Handler[Command]) {
	if err := b.Register(commandName, handler); err != nil {
		panic(err)
	}
}

// Deregister removes the Handler binding for the provided Command name.
// Deregistering a name that has no binding is a no-op.
func (b *Bus) Deregister(commandName string) {
	b.mx.Lock()
	defer b.mx.Unlock()

	delete(b.handlers, commandName)
}

// Dispatch routes the provided Command to the Handler registered for its
// name, and returns the Handler's error unmodified.
//
// A HandlerNotFoundError is returned if no Handler has been registered
// for the Command name.
func (b *Bus) Dispatch(ctx context.Context, cmd Envelope[Command]) error {
	commandName := cmd.Message.Name()

	b.mx.RLock()
	handler, ok := b.handlers[commandName]
	b.mx.RUnlock()

	if !ok {
		return HandlerNotFoundError{CommandName: commandName}
	}

	return handler.Handle(ctx, cmd)
}
