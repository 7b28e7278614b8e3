package pipeline

import (
	"context"
	"fmt"
)

// PermissionChecker is the authorization collaborator consulted by
// AuthorizationPipe to decide whether the current Execution is allowed
// to perform a given action.
type PermissionChecker interface {
	Check(ctx context.Context, permission string, execution *Execution) (bool, error)
}

// PermissionCheckerFunc is a functional implementation of the
// PermissionChecker interface.
type PermissionCheckerFunc func(ctx context.Context, permission string, execution *Execution) (bool, error)

// Check implements pipeline.PermissionChecker.
func (fn PermissionCheckerFunc) Check(ctx context.Context, permission string, execution *Execution) (bool, error) {
	return fn(ctx, permission, execution)
}

// Protected is implemented by Command and Query payloads that require a
// permission to be executed. The returned permission is evaluated by
// AuthorizationPipe against its PermissionChecker.
type Protected interface {
	RequiredPermission() string
}

// AuthorizationError is a request error returned by AuthorizationPipe when
// the PermissionChecker denies the required permission.
type AuthorizationError struct {
	MessageName string
	Permission  string
	TenantID    string
	UserID      string
}

func (err AuthorizationError) Error() string {
	return fmt.Sprintf(
		"pipeline: user '%s' in tenant '%s' is not allowed to perform '%s' required by '%s'",
		err.UserID, err.TenantID, err.Permission, err.MessageName,
	)
}

// AuthorizationPipe rejects requests whose required permission is denied by
// the injected PermissionChecker.
//
// Payloads that do not implement Protected pass through untouched. Place
// this pipe after the tenant/user context has been populated, and before
// business execution to avoid wasted work.
type AuthorizationPipe struct {
	Checker PermissionChecker
}

// Execute implements pipeline.Pipe.
func (p AuthorizationPipe) Execute(ctx context.Context, execution *Execution, next Next) (any, error) {
	payload, ok := execution.Request.Message.(Protected)
	if !ok {
		return next(ctx)
	}

	permission := payload.RequiredPermission()

	allowed, err := p.Checker.Check(ctx, permission, execution)
	if err != nil {
		return nil, fmt.Errorf("pipeline.AuthorizationPipe: permission check failed, %w", err)
	}

	if !allowed {
		return nil, AuthorizationError{
			MessageName: execution.Request.Message.Name(),
			Permission:  permission,
			TenantID:    execution.TenantID(),
			UserID:      execution.UserID(),
		}
	}

	return next(ctx)
}
