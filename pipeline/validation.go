package pipeline

import (
	"context"
	"fmt"
)

// Validatable is implemented by Command and Query payloads that carry their
// own schema checks. ValidationPipe runs these checks before any downstream
// pipe can assume a well-formed payload.
type Validatable interface {
	Validate() error
}

// ValidationError is a request error returned by ValidationPipe when the
// request payload fails its schema checks.
type ValidationError struct {
	MessageName string
	Err         error
}

func (err ValidationError) Error() string {
	return fmt.Sprintf("pipeline: validation failed for '%s', %s", err.MessageName, err.Err)
}

// Unwrap returns the underlying schema check failure.
func (err ValidationError) Unwrap() error { return err.Err }

// ValidationPipe rejects requests whose payload fails its schema checks.
//
// Payloads that do not implement Validatable pass through untouched.
// Place this pipe before any pipe that assumes a well-formed payload.
type ValidationPipe struct{}

// Execute implements pipeline.Pipe.
func (ValidationPipe) Execute(ctx context.Context, execution *Execution, next Next) (any, error) {
	if payload, ok := execution.Request.Message.(Validatable); ok {
		if err := payload.Validate(); err != nil {
			return nil, ValidationError{
				MessageName: execution.Request.Message.Name(),
				Err:         err,
			}
		}
	}

	return next(ctx)
}
