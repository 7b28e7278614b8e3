package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AuditPipe records every request, its identity context and its outcome for
// compliance purposes.
//
// The pipe never swallows errors: the downstream result and error are always
// returned unmodified after recording.
type AuditPipe struct {
	Logger *zap.Logger
}

// Execute implements pipeline.Pipe.
func (p AuditPipe) Execute(ctx context.Context, execution *Execution, next Next) (any, error) {
	start := time.Now()

	result, err := next(ctx)

	fields := []zap.Field{
		zap.String("message", execution.Request.Message.Name()),
		zap.String("tenant_id", execution.TenantID()),
		zap.String("user_id", execution.UserID()),
		zap.String("correlation_id", execution.CorrelationID()),
		zap.Duration("duration", time.Since(start)),
	}

	if err != nil {
		p.Logger.Error("request failed", append(fields, zap.Error(err))...)
		return result, err
	}

	p.Logger.Info("request handled", fields...)

	return result, nil
}
