// Package pipeline provides an ordered, composable middleware chain wrapping
// Command and Query dispatch, following the onion model: the first pipe wraps
// the second, which wraps the third, down to the terminal handler.
package pipeline

import (
	"context"

	"github.com/get-relayed/go-relayed/message"
)

// Next is the continuation invoked by a Pipe to hand control to the
// downstream chain, ultimately reaching the terminal handler.
type Next func(ctx context.Context) (any, error)

// Pipe is a single middleware stage of the dispatch pipeline.
//
// A Pipe must either call next exactly once, optionally transforming its
// result, or short-circuit by returning without calling next, in which case
// no downstream pipe nor the terminal handler runs.
type Pipe interface {
	Execute(ctx context.Context, execution *Execution, next Next) (any, error)
}

// PipeFunc is a functional type that implements the Pipe interface.
type PipeFunc func(ctx context.Context, execution *Execution, next Next) (any, error)

// Execute implements pipeline.Pipe.
func (fn PipeFunc) Execute(ctx context.Context, execution *Execution, next Next) (any, error) {
	return fn(ctx, execution, next)
}

// Execution is the context value shared by every Pipe in a single dispatch:
// it carries the request envelope, the identity metadata supplied by the
// authentication collaborator, and a mutable bag for cross-pipe annotations
// (e.g. validation findings recorded before authorization decides on them).
type Execution struct {
	Request message.GenericEnvelope

	values map[string]any
}

// NewExecution creates the Execution context for a single request dispatch.
func NewExecution(request message.GenericEnvelope) *Execution {
	return &Execution{
		Request: request,
		values:  make(map[string]any),
	}
}

// TenantID returns the tenant the request is executed for,
// as resolved server-side by the authentication collaborator.
func (e *Execution) TenantID() string { return e.Request.Metadata.TenantID() }

// UserID returns the user the request is executed for, if any.
func (e *Execution) UserID() string { return e.Request.Metadata.UserID() }

// CorrelationID returns the correlation identifier of the request, if any.
func (e *Execution) CorrelationID() string { return e.Request.Metadata.CorrelationID() }

// Set records a cross-pipe annotation on the Execution.
func (e *Execution) Set(key string, value any) { e.values[key] = value }

// Value returns the annotation recorded for the provided key,
// or nil if none has been set.
func (e *Execution) Value(key string) any { return e.values[key] }

// Compose folds the provided pipes, right to left, into a single Pipe,
// so that the first pipe wraps the second, which wraps the third, and so on
// down to the terminal handler passed as the continuation at execution time.
//
// Pipe ordering is deliberately caller-configured: place Validation before
// Authorization before Audit/Metrics as appropriate to your threat model.
func Compose(pipes ...Pipe) Pipe {
	return PipeFunc(func(ctx context.Context, execution *Execution, next Next) (any, error) {
		chain := next

		for i := len(pipes) - 1; i >= 0; i-- {
			pipe, downstream := pipes[i], chain

			chain = func(ctx context.Context) (any, error) {
				return pipe.Execute(ctx, execution, downstream)
			}
		}

		return chain(ctx)
	})
}
