package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/get-relayed/go-relayed/message"
	"github.com/get-relayed/go-relayed/pipeline"
)

type plainRequest struct{}

func (plainRequest) Name() string { return "PlainRequest" }

type validatedRequest struct {
	Err error
}

func (validatedRequest) Name() string { return "ValidatedRequest" }

func (r validatedRequest) Validate() error { return r.Err }

type protectedRequest struct{}

func (protectedRequest) Name() string { return "ProtectedRequest" }

func (protectedRequest) RequiredPermission() string { return "tickets:write" }

func newExecution(msg message.Message, metadata message.Metadata) *pipeline.Execution {
	return pipeline.NewExecution(message.GenericEnvelope{
		Message:  msg,
		Metadata: metadata,
	})
}

func recordingPipe(name string, trace *[]string) pipeline.Pipe {
	return pipeline.PipeFunc(func(ctx context.Context, _ *pipeline.Execution, next pipeline.Next) (any, error) {
		*trace = append(*trace, name+":before")
		result, err := next(ctx)
		*trace = append(*trace, name+":after")

		return result, err
	})
}

func TestCompose(t *testing.T) {
	ctx := context.Background()

	t.Run("the first pipe wraps all the following ones", func(t *testing.T) {
		var trace []string

		pipe := pipeline.Compose(
			recordingPipe("first", &trace),
			recordingPipe("second", &trace),
			recordingPipe("third", &trace),
		)

		result, err := pipe.Execute(ctx, newExecution(plainRequest{}, nil), func(context.Context) (any, error) {
			trace = append(trace, "handler")
			return "answer", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "answer", result)
		assert.Equal(t, []string{
			"first:before",
			"second:before",
			"third:before",
			"handler",
			"third:after",
			"second:after",
			"first:after",
		}, trace)
	})

	t.Run("a short-circuiting pipe stops the downstream chain", func(t *testing.T) {
		expectedErr := errors.New("rejected")

		var handlerCalls int

		pipe := pipeline.Compose(
			pipeline.PipeFunc(func(context.Context, *pipeline.Execution, pipeline.Next) (any, error) {
				return nil, expectedErr
			}),
			pipeline.PipeFunc(func(ctx context.Context, _ *pipeline.Execution, next pipeline.Next) (any, error) {
				handlerCalls++
				return next(ctx)
			}),
		)

		_, err := pipe.Execute(ctx, newExecution(plainRequest{}, nil), func(context.Context) (any, error) {
			handlerCalls++
			return nil, nil
		})

		assert.ErrorIs(t, err, expectedErr)
		assert.Zero(t, handlerCalls)
	})

	t.Run("composing no pipes yields a pass-through pipe", func(t *testing.T) {
		pipe := pipeline.Compose()

		result, err := pipe.Execute(ctx, newExecution(plainRequest{}, nil), func(context.Context) (any, error) {
			return 42, nil
		})

		require.NoError(t, err)
		assert.Equal(t, 42, result)
	})
}

func TestValidationPipe(t *testing.T) {
	ctx := context.Background()
	pipe := pipeline.ValidationPipe{}

	t.Run("a payload passing its schema checks flows through", func(t *testing.T) {
		result, err := pipe.Execute(ctx, newExecution(validatedRequest{Err: nil}, nil), func(context.Context) (any, error) {
			return "ok", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", result)
	})

	t.Run("a payload failing its schema checks is rejected", func(t *testing.T) {
		schemaErr := errors.New("subject must not be empty")

		var handlerCalled bool

		_, err := pipe.Execute(ctx, newExecution(validatedRequest{Err: schemaErr}, nil), func(context.Context) (any, error) {
			handlerCalled = true
			return nil, nil
		})

		var validationErr pipeline.ValidationError

		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, validatedRequest{}.Name(), validationErr.MessageName)
		assert.ErrorIs(t, err, schemaErr)
		assert.False(t, handlerCalled)
	})

	t.Run("a payload without schema checks passes through untouched", func(t *testing.T) {
		result, err := pipe.Execute(ctx, newExecution(plainRequest{}, nil), func(context.Context) (any, error) {
			return "ok", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", result)
	})
}

func TestAuthorizationPipe(t *testing.T) {
	ctx := context.Background()

	metadata := message.Metadata{}.
		With(message.TenantIDKey, "tenant-1").
		With(message.UserIDKey, "user-1")

	t.Run("an unprotected payload skips the permission check", func(t *testing.T) {
		pipe := pipeline.AuthorizationPipe{
			Checker: pipeline.PermissionCheckerFunc(func(context.Context, string, *pipeline.Execution) (bool, error) {
				t.Fatal("permission checker should not be consulted")
				return false, nil
			}),
		}

		result, err := pipe.Execute(ctx, newExecution(plainRequest{}, metadata), func(context.Context) (any, error) {
			return "ok", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", result)
	})

	t.Run("a granted permission lets the request through", func(t *testing.T) {
		var checkedPermission string

		pipe := pipeline.AuthorizationPipe{
			Checker: pipeline.PermissionCheckerFunc(func(_ context.Context, permission string, _ *pipeline.Execution) (bool, error) {
				checkedPermission = permission
				return true, nil
			}),
		}

		result, err := pipe.Execute(ctx, newExecution(protectedRequest{}, metadata), func(context.Context) (any, error) {
			return "ok", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, protectedRequest{}.RequiredPermission(), checkedPermission)
	})

	t.Run("a denied permission rejects the request with its identity context", func(t *testing.T) {
		pipe := pipeline.AuthorizationPipe{
			Checker: pipeline.PermissionCheckerFunc(func(context.Context, string, *pipeline.Execution) (bool, error) {
				return false, nil
			}),
		}

		var handlerCalled bool

		_, err := pipe.Execute(ctx, newExecution(protectedRequest{}, metadata), func(context.Context) (any, error) {
			handlerCalled = true
			return nil, nil
		})

		var authErr pipeline.AuthorizationError

		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, protectedRequest{}.Name(), authErr.MessageName)
		assert.Equal(t, protectedRequest{}.RequiredPermission(), authErr.Permission)
		assert.Equal(t, "tenant-1", authErr.TenantID)
		assert.Equal(t, "user-1", authErr.UserID)
		assert.False(t, handlerCalled)
	})

	t.Run("a failing permission checker fails the request", func(t *testing.T) {
		checkerErr := errors.New("permission store unreachable")

		pipe := pipeline.AuthorizationPipe{
			Checker: pipeline.PermissionCheckerFunc(func(context.Context, string, *pipeline.Execution) (bool, error) {
				return false, checkerErr
			}),
		}

		_, err := pipe.Execute(ctx, newExecution(protectedRequest{}, metadata), func(context.Context) (any, error) {
			return nil, nil
		})

		assert.ErrorIs(t, err, checkerErr)
	})
}
