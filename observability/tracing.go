package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Uses the global OTel tracer provider.
var tracer = otel.Tracer("eventsender")

// StartUploadSpan starts a client span covering one batch upload.
func StartUploadSpan(ctx context.Context, batchID string, size int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "eventsender.upload",
		trace.WithAttributes(
			attribute.String("batch.id", batchID),
			attribute.Int("batch.size", size),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// EndSpan completes a span, recording err when non-nil.
func EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the recording span in ctx, if any.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
