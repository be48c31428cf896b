package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Drop reasons attached to eventsender.events.dropped.
const (
	DropReasonRejected = "rejected"
	DropReasonOverflow = "overflow"
	DropReasonShutdown = "shutdown"
)

// MetricsRecorder records pipeline metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordSent counts events accepted by the engine.
	RecordSent(ctx context.Context, count int)

	// RecordBatch records a batch detached from the queue.
	RecordBatch(ctx context.Context, size int)

	// RecordUpload records one upload attempt and its latency.
	RecordUpload(ctx context.Context, duration time.Duration, err error)

	// RecordRetried counts events handed back for another attempt.
	RecordRetried(ctx context.Context, count int)

	// RecordDropped counts events that will never be delivered.
	RecordDropped(ctx context.Context, count int, reason string)
}

type otelMetrics struct {
	eventsSent     metric.Int64Counter
	batchesFlushed metric.Int64Counter
	batchSize      metric.Int64Histogram
	uploadLatency  metric.Float64Histogram
	uploadErrors   metric.Int64Counter
	eventsRetried  metric.Int64Counter
	eventsDropped  metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("eventsender")

	eventsSent, err := meter.Int64Counter("eventsender.events.sent",
		metric.WithDescription("Number of events accepted for delivery"),
	)
	if err != nil {
		return nil, err
	}

	batchesFlushed, err := meter.Int64Counter("eventsender.batches.flushed",
		metric.WithDescription("Number of batches detached from the queue"),
	)
	if err != nil {
		return nil, err
	}

	batchSize, err := meter.Int64Histogram("eventsender.batch.size",
		metric.WithDescription("Events per flushed batch"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	uploadLatency, err := meter.Float64Histogram("eventsender.upload.latency_ms",
		metric.WithDescription("Upload latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	uploadErrors, err := meter.Int64Counter("eventsender.upload.errors",
		metric.WithDescription("Number of failed upload calls"),
	)
	if err != nil {
		return nil, err
	}

	eventsRetried, err := meter.Int64Counter("eventsender.events.retried",
		metric.WithDescription("Number of events requeued after an upload"),
	)
	if err != nil {
		return nil, err
	}

	eventsDropped, err := meter.Int64Counter("eventsender.events.dropped",
		metric.WithDescription("Number of events permanently dropped"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		eventsSent:     eventsSent,
		batchesFlushed: batchesFlushed,
		batchSize:      batchSize,
		uploadLatency:  uploadLatency,
		uploadErrors:   uploadErrors,
		eventsRetried:  eventsRetried,
		eventsDropped:  eventsDropped,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder backed by the global OTel
// meter provider, or NoopMetrics if the instruments cannot be created.
// Configure the provider before the first call:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func (m *otelMetrics) RecordSent(ctx context.Context, count int) {
	m.eventsSent.Add(ctx, int64(count))
}

func (m *otelMetrics) RecordBatch(ctx context.Context, size int) {
	m.batchesFlushed.Add(ctx, 1)
	m.batchSize.Record(ctx, int64(size))
}

func (m *otelMetrics) RecordUpload(ctx context.Context, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.Bool("success", err == nil))
	m.uploadLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		m.uploadErrors.Add(ctx, 1)
	}
}

func (m *otelMetrics) RecordRetried(ctx context.Context, count int) {
	m.eventsRetried.Add(ctx, int64(count))
}

func (m *otelMetrics) RecordDropped(ctx context.Context, count int, reason string) {
	m.eventsDropped.Add(ctx, int64(count), metric.WithAttributes(attribute.String("reason", reason)))
}

// NoopMetrics discards all measurements.
type NoopMetrics struct{}

func (NoopMetrics) RecordSent(context.Context, int) {}

func (NoopMetrics) RecordBatch(context.Context, int) {}

func (NoopMetrics) RecordUpload(context.Context, time.Duration, error) {}

func (NoopMetrics) RecordRetried(context.Context, int) {}

func (NoopMetrics) RecordDropped(context.Context, int, string) {}

// OrNoopMetrics returns m, or NoopMetrics when m is nil.
func OrNoopMetrics(m MetricsRecorder) MetricsRecorder {
	if m == nil {
		return NoopMetrics{}
	}
	return m
}
