package otelrelayed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/get-relayed/go-relayed/outbox"
)

// Attribute keys used by the InstrumentedOutboxStore instrumentation.
const (
	OutboxMessageIDKey  attribute.Key = "outbox.message_id"
	OutboxNumRecordsKey attribute.Key = "outbox.num_records"
	OutboxBatchLimitKey attribute.Key = "outbox.batch_limit"
	OutboxAttemptsKey   attribute.Key = "outbox.attempts"
)

// Interface implementation assertion.
var _ outbox.Store = &InstrumentedOutboxStore{}

// InstrumentedOutboxStore is a wrapper type over an outbox.Store
// instance to provide instrumentation, in the form of metrics and traces
// using OpenTelemetry.
//
// Use NewInstrumentedOutboxStore for constructing a new instance of this type.
type InstrumentedOutboxStore struct {
	store outbox.Store

	tracer          trace.Tracer
	appendDuration  metric.Float64Histogram
	listDuration    metric.Float64Histogram
	markedPublished metric.Int64Counter
	markedFailed    metric.Int64Counter
}

func (ios *InstrumentedOutboxStore) registerMetrics(meter metric.Meter) error {
	wrapErr := func(err error) error {
		return fmt.Errorf("otelrelayed.InstrumentedOutboxStore: failed to register metric, %w", err)
	}

	var err error

	if ios.appendDuration, err = meter.Float64Histogram(
		"relayed.outbox.append.duration.milliseconds",
		metric.WithUnit("ms"),
		metric.WithDescription("Duration in milliseconds of outbox.Store.Append operations performed."),
	); err != nil {
		return wrapErr(err)
	}

	if ios.listDuration, err = meter.Float64Histogram(
		"relayed.outbox.list_pending.duration.milliseconds",
		metric.WithUnit("ms"),
		metric.WithDescription("Duration in milliseconds of outbox.Store.ListPending operations performed."),
	); err != nil {
		return wrapErr(err)
	}

	if ios.markedPublished, err = meter.Int64Counter(
		"relayed.outbox.records.published",
		metric.WithDescription("Number of outbox records marked as published."),
	); err != nil {
		return wrapErr(err)
	}

	if ios.markedFailed, err = meter.Int64Counter(
		"relayed.outbox.records.failed",
		metric.WithDescription("Number of outbox records rescheduled after a failed publication attempt."),
	); err != nil {
		return wrapErr(err)
	}

	return nil
}

// NewInstrumentedOutboxStore returns a wrapper type to provide OpenTelemetry
// instrumentation (metrics and traces) around an outbox.Store.
//
// An error is returned if metrics could not be registered.
func NewInstrumentedOutboxStore(store outbox.Store, options ...Option) (*InstrumentedOutboxStore, error) {
	cfg := newConfig(options...)

	ios := &InstrumentedOutboxStore{
		store:  store,
		tracer: cfg.tracer(),
	}

	if err := ios.registerMetrics(cfg.meter()); err != nil {
		return nil, err
	}

	return ios, nil
}

// Append calls the wrapped outbox.Store.Append method and records metrics and traces around it.
func (ios *InstrumentedOutboxStore) Append(ctx context.Context, records ...outbox.Record) (err error) {
	ctx, span := ios.tracer.Start(ctx, "outbox.Store.Append", trace.WithAttributes(
		OutboxNumRecordsKey.Int(len(records)),
	))
	start := time.Now()

	defer func() {
		ios.appendDuration.Record(ctx, float64(time.Since(start).Milliseconds()),
			metric.WithAttributes(ErrorAttribute.Bool(err != nil)))

		if err != nil {
			span.RecordError(err)
		}

		span.End()
	}()

	err = ios.store.Append(ctx, records...)

	return
}

// ListPending calls the wrapped outbox.Store.ListPending method and records
// metrics and traces around it.
func (ios *InstrumentedOutboxStore) ListPending(
	ctx context.Context,
	req outbox.ListPendingRequest,
) (records []outbox.Record, err error) {
	ctx, span := ios.tracer.Start(ctx, "outbox.Store.ListPending", trace.WithAttributes(
		OutboxBatchLimitKey.Int(req.Limit),
	))
	start := time.Now()

	defer func() {
		ios.listDuration.Record(ctx, float64(time.Since(start).Milliseconds()),
			metric.WithAttributes(ErrorAttribute.Bool(err != nil)))

		if err != nil {
			span.RecordError(err)
		}

		span.End()
	}()

	records, err = ios.store.ListPending(ctx, req)

	return
}

// MarkPublished calls the wrapped outbox.Store.MarkPublished method and
// records metrics and traces around it.
func (ios *InstrumentedOutboxStore) MarkPublished(ctx context.Context, messageID uuid.UUID) (err error) {
	ctx, span := ios.tracer.Start(ctx, "outbox.Store.MarkPublished", trace.WithAttributes(
		OutboxMessageIDKey.String(messageID.String()),
	))

	defer func() {
		if err == nil {
			ios.markedPublished.Add(ctx, 1)
		} else {
			span.RecordError(err)
		}

		span.End()
	}()

	err = ios.store.MarkPublished(ctx, messageID)

	return
}

// MarkFailed calls the wrapped outbox.Store.MarkFailed method and records
// metrics and traces around it.
func (ios *InstrumentedOutboxStore) MarkFailed(ctx context.Context, req outbox.MarkFailedRequest) (err error) {
	ctx, span := ios.tracer.Start(ctx, "outbox.Store.MarkFailed", trace.WithAttributes(
		OutboxMessageIDKey.String(req.MessageID.String()),
		OutboxAttemptsKey.Int(req.Attempts),
	))

	defer func() {
		if err == nil {
			ios.markedFailed.Add(ctx, 1)
		} else {
			span.RecordError(err)
		}

		span.End()
	}()

	err = ios.store.MarkFailed(ctx, req)

	return
}
