package pipeline

import (
	"context"

	"github.com/get-relayed/go-relayed/command"
	"github.com/get-relayed/go-relayed/message"
	"github.com/get-relayed/go-relayed/query"
)

// WrapCommandDispatcher returns a command.Dispatcher that runs every
// dispatched Command through the provided pipes, in order, before it
// reaches the inner Dispatcher.
func WrapCommandDispatcher(dispatcher command.Dispatcher, pipes ...Pipe) command.Dispatcher {
	return commandDispatcher{
		inner: dispatcher,
		pipe:  Compose(pipes...),
	}
}

type commandDispatcher struct {
	inner command.Dispatcher
	pipe  Pipe
}

// Dispatch implements command.Dispatcher.
func (cd commandDispatcher) Dispatch(ctx context.Context, cmd command.Envelope[command.Command]) error {
	execution := NewExecution(message.GenericEnvelope{
		Message:  cmd.Message,
		Metadata: cmd.Metadata,
	})

	_, err := cd.pipe.Execute(ctx, execution, func(ctx context.Context) (any, error) {
		return nil, cd.inner.Dispatch(ctx, cmd)
	})

	return err
}

// WrapQueryDispatcher returns a query.Dispatcher that runs every dispatched
// Query through the provided pipes, in order, before it reaches the inner
// Dispatcher.
func WrapQueryDispatcher(dispatcher query.Dispatcher, pipes ...Pipe) query.Dispatcher {
	return queryDispatcher{
		inner: dispatcher,
		pipe:  Compose(pipes...),
	}
}

type queryDispatcher struct {
	inner query.Dispatcher
	pipe  Pipe
}

// Dispatch implements query.Dispatcher.
func (qd queryDispatcher) Dispatch(ctx context.Context, q query.Envelope[query.Query]) (query.Answer, error) {
	execution := NewExecution(message.GenericEnvelope{
		Message:  q.Message,
		Metadata: q.Metadata,
	})

	return qd.pipe.Execute(ctx, execution, func(ctx context.Context) (any, error) {
		return qd.inner.Dispatch(ctx, q)
	})
}
