// Package otelrelayed provides OpenTelemetry instrumentation (metrics and
// traces) for the dispatch pipeline, Event Stores and Repositories.
package otelrelayed

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/get-relayed/go-relayed/otelrelayed"

// Option allows to customize the instrumented components in this package.
type Option interface {
	apply(*config)
}

type option func(*config)

func (apply option) apply(cfg *config) { apply(cfg) }

type config struct {
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
}

func newConfig(options ...Option) config {
	cfg := config{}

	for _, opt := range options {
		opt.apply(&cfg)
	}

	return cfg
}

func (cfg config) meter() metric.Meter {
	if cfg.meterProvider != nil {
		return cfg.meterProvider.Meter(instrumentationName)
	}

	return otel.Meter(instrumentationName)
}

func (cfg config) tracer() trace.Tracer {
	if cfg.tracerProvider != nil {
		return cfg.tracerProvider.Tracer(instrumentationName)
	}

	return otel.Tracer(instrumentationName)
}

// WithMeterProvider specifies the metric.MeterProvider instance to use,
// instead of the global one.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return option(func(cfg *config) {
		cfg.meterProvider = provider
	})
}

// WithTracerProvider specifies the trace.TracerProvider instance to use,
// instead of the global one.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return option(func(cfg *config) {
		cfg.tracerProvider = provider
	})
}
