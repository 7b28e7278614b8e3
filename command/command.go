// Package command provides support and utilities to handle and implement
// Domain Commands in your application.
package command

import (
	"context"

	"github.com/get-relayed/go-relayed/message"
)

// Command is a Message representing an action being performed by something
// or somebody.
//
// In order to enforce this concept, it is suggested to name Command types
// using "present tense".
type Command message.Message

// Envelope carries both the Command and some optional Metadata attached to it.
type Envelope[T Command] message.Envelope[T]

// ToEnvelope is a convenience function that wraps the provided Command type
// into an Envelope, with no metadata attached to it.
func ToEnvelope[T Command](cmd T) Envelope[T] {
	return Envelope[T]{
		Message:  cmd,
		Metadata: nil,
	}
}

// Handler is the interface that defines a Command Handler,
// a component that receives a specific kind of Command
// and executes the business logic related to that particular Command.
type Handler[T Command] interface {
	Handle(ctx context.Context, cmd Envelope[T]) error
}

// HandlerFunc is a functional type that implements the Handler interface.
// Useful for testing and stateless Handlers.
type HandlerFunc[T Command] func(ctx context.Context, cmd Envelope[T]) error

// Handle implements command.Handler.
func (fn HandlerFunc[T]) Handle(ctx context.Context, cmd Envelope[T]) error {
	return fn(ctx, cmd)
}

// AsGeneric adapts a strongly-typed Handler implementation into a Handler
// that can be registered on a Bus, which routes Commands by name only.
//
// The adapted Handler fails with an UnexpectedCommandError if the
// dispatched Command name matches the registration but its concrete
// Go type does not.
func AsGeneric[T Command](handler Handler[T]) Handler[Command] {
	return HandlerFunc[Command](func(ctx context.Context, cmd Envelope[Command]) error {
		typedCommand, ok := cmd.Message.(T)
		if !ok {
			return UnexpectedCommandError{Command: cmd.Message}
		}

		return handler.Handle(ctx, Envelope[T]{
			Message:  typedCommand,
			Metadata: cmd.Metadata,
		})
	})
}
