// Package query provides support and utilities to handle and implement
// Domain Queries in your application.
package query

import (
	"context"

	"github.com/get-relayed/go-relayed/message"
)

// Query represents a Domain Query, a request for information.
// Queries should be phrased in the present, imperative tense, such as "ListUsers".
type Query message.Message

// Envelope represents a message containing a Domain Query,
// and optionally includes additional fields in the form of Metadata.
type Envelope[T Query] message.Envelope[T]

// ToEnvelope is a convenience function that wraps the provided Query type
// into an Envelope, with no metadata attached to it.
func ToEnvelope[T Query](query T) Envelope[T] {
	return Envelope[T]{
		Message:  query,
		Metadata: nil,
	}
}

// Answer is the result of a Domain Query evaluation, usually the
// Domain Read Model for the specific Query type dispatched.
type Answer any

// Handler is the interface that defines a Query Handler.
//
// Handler accepts a specific kind of Query, evaluates it
// and returns the desired Result.
type Handler[T Query, R any] interface {
	Handle(ctx context.Context, query Envelope[T]) (R, error)
}

// HandlerFunc is a functional type that implements the Handler interface.
// Useful for testing and stateless Handlers.
type HandlerFunc[T Query, R any] func(ctx context.Context, query Envelope[T]) (R, error)

// Handle implements query.Handler.
func (f HandlerFunc[T, R]) Handle(ctx context.Context, query Envelope[T]) (R, error) {
	return f(ctx, query)
}

// AsGeneric adapts a strongly-typed Handler implementation into a Handler
// that can be registered on a Bus, which routes Queries by name only.
//
// The adapted Handler fails with an UnexpectedQueryError if the dispatched
// Query name matches the registration but its concrete Go type does not.
func AsGeneric[T Query, R any](handler Handler[T, R]) Handler[Query, Answer] {
	return HandlerFunc[Query, Answer](func(ctx context.Context, query Envelope[Query]) (Answer, error) {
		typedQuery, ok := query.Message.(T)
		if !ok {
			return nil, UnexpectedQueryError{Query: query.Message}
		}

		return handler.Handle(ctx, Envelope[T]{
			Message:  typedQuery,
			Metadata: query.Metadata,
		})
	})
}
