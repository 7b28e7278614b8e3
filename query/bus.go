package query

import (
	"context"
	"fmt"
	"sync"
)

// Dispatcher represents a component that routes Domain Queries to
// their appropriate Query Handlers.
//
// Differently from Command Handlers, Query Handlers return an Answer to
// the Domain Query dispatched, which usually is the Domain Read Model
// for the specific query type.
type Dispatcher interface {
	Dispatch(ctx context.Context, query Envelope[Query]) (Answer, error)
}

// Bus is an in-memory, synchronous Query Dispatcher implementation,
// routing Queries to their Handlers by exact Query name match.
//
// A Bus instance owns its own routing table: construct one with NewBus
// during startup wiring and pass it by reference to every caller.
type Bus struct {
	mx       sync.RWMutex
	handlers map[string]Handler[Query, Answer]
}

// Interface implementation assertion.
var _ Dispatcher = new(Bus)

// NewBus creates a new Bus instance with an empty routing table.
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string]Handler[Query, Answer]),
	}
}

// Register adds the specified Handler to the Bus routing table, bound to the
// provided Query name.
//
// A DuplicateHandlerError is returned if a Handler has already been
// registered for the same name, as Queries must have a single reader.
func (b *Bus) Register(queryName string, handler Handler[Query, Answer]) error {
	b.mx.Lock()
	defer b.mx.Unlock()

	if _, ok := b.handlers[queryName]; ok {
		return DuplicateHandlerError{QueryName: queryName}
	}

	b.handlers[queryName] = handler

	return nil
}

// MustRegister works like Register, but panics on registration failure.
//
// Duplicate Query Handler registrations are configuration errors:
// use MustRegister in the startup wiring step to make them fatal.
func (b *Bus) MustRegister(queryName string, handler Handler[Query, Answer]) {
	if err := b.Register(queryName, handler); err != nil {
		panic(err)
	}
}

// Deregister removes the Handler binding for the provided Query name.
// Deregistering a name that has no binding is a no-op.
func (b *Bus) Deregister(queryName string) {
	b.mx.Lock()
	defer b.mx.Unlock()

	delete(b.handlers, queryName)
}

// Dispatch routes the provided Query to the Handler registered for its name,
// and returns the produced Answer and error unmodified.
//
// A HandlerNotFoundError is returned if no Handler has been registered
// for the Query name.
func (b *Bus) Dispatch(ctx context.Context, query Envelope[Query]) (Answer, error) {
	queryName := query.Message.Name()

	b.mx.RLock()
	handler, ok := b.handlers[queryName]
	b.mx.RUnlock()

	if !ok {
		return nil, HandlerNotFoundError{QueryName: queryName}
	}

	return handler.Handle(ctx, query)
}

// Dispatch routes the provided Query through the given Dispatcher and
// asserts the Answer to the expected Read Model type.
func Dispatch[R any](ctx context.Context, dispatcher Dispatcher, query Envelope[Query]) (R, error) {
	var zeroValue R

	answer, err := dispatcher.Dispatch(ctx, query)
	if err != nil {
		return zeroValue, err
	}

	result, ok := answer.(R)
	if !ok {
		return zeroValue, fmt.Errorf("query.Dispatch: unexpected answer type, %T", answer)
	}

	return result, nil
}
