package otelrelayed

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/get-relayed/go-relayed/pipeline"
)

// Interface implementation assertion.
var _ pipeline.MetricsCollector = &Collector{}

// Collector is a pipeline.MetricsCollector implementation backed by
// OpenTelemetry, suitable for use with pipeline.MetricsPipe.
//
// Instruments are created lazily on first use, keyed by metric name.
// Use NewCollector for constructing a new instance of this type.
type Collector struct {
	meter metric.Meter

	mx         sync.Mutex
	counters   map[string]metric.Int64Counter
	histograms map[string]metric.Float64Histogram
}

// NewCollector returns a new OpenTelemetry-backed Collector.
func NewCollector(options ...Option) *Collector {
	cfg := newConfig(options...)

	return &Collector{
		meter:      cfg.meter(),
		counters:   make(map[string]metric.Int64Counter),
		histograms: make(map[string]metric.Float64Histogram),
	}
}

// IncCounter implements pipeline.MetricsCollector.
func (c *Collector) IncCounter(ctx context.Context, name string, tags map[string]string) {
	counter, err := c.counter(name)
	if err != nil {
		return
	}

	counter.Add(ctx, 1, metric.WithAttributes(toAttributes(tags)...))
}

// ObserveHistogram implements pipeline.MetricsCollector.
func (c *Collector) ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	histogram, err := c.histogram(name)
	if err != nil {
		return
	}

	histogram.Record(ctx, value, metric.WithAttributes(toAttributes(tags)...))
}

func (c *Collector) counter(name string) (metric.Int64Counter, error) {
	c.mx.Lock()
	defer c.mx.Unlock()

	if counter, ok := c.counters[name]; ok {
		return counter, nil
	}

	counter, err := c.meter.Int64Counter(name)
	if err != nil {
		return nil, fmt.Errorf("otelrelayed.Collector: failed to register counter, %w", err)
	}

	c.counters[name] = counter

	return counter, nil
}

func (c *Collector) histogram(name string) (metric.Float64Histogram, error) {
	c.mx.Lock()
	defer c.mx.Unlock()

	if histogram, ok := c.histograms[name]; ok {
		return histogram, nil
	}

	histogram, err := c.meter.Float64Histogram(name, metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("otelrelayed.Collector: failed to register histogram, %w", err)
	}

	c.histograms[name] = histogram

	return histogram, nil
}

func toAttributes(tags map[string]string) []attribute.KeyValue {
	attributes := make([]attribute.KeyValue, 0, len(tags))

	for key, value := range tags {
		attributes = append(attributes, attribute.String(key, value))
	}

	return attributes
}
