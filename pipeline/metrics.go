package pipeline

import (
	"context"
	"strconv"
	"time"
)

// Metric names recorded by MetricsPipe.
const (
	RequestsMetricName = "relayed.dispatch.requests"
	DurationMetricName = "relayed.dispatch.duration.milliseconds"
)

// MetricsCollector is the metrics collaborator used by MetricsPipe.
//
// otelrelayed provides an implementation backed by OpenTelemetry.
type MetricsCollector interface {
	IncCounter(ctx context.Context, name string, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// MetricsPipe records the duration and a success/failure counter for each
// request flowing through the pipeline.
//
// The timer covers the entire downstream chain, nested pipes and terminal
// handler included: place this pipe outermost to measure end-to-end latency.
type MetricsPipe struct {
	Collector MetricsCollector
}

// Execute implements pipeline.Pipe.
func (p MetricsPipe) Execute(ctx context.Context, execution *Execution, next Next) (any, error) {
	start := time.Now()

	result, err := next(ctx)

	tags := map[string]string{
		"message": execution.Request.Message.Name(),
		"success": strconv.FormatBool(err == nil),
	}

	p.Collector.IncCounter(ctx, RequestsMetricName, tags)
	p.Collector.ObserveHistogram(ctx, DurationMetricName, float64(time.Since(start).Milliseconds()), tags)

	return result, err
}
