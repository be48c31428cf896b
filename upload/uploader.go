// Package upload turns engine batches into PublishEvents calls and
// classifies the per-event outcome into retry or permanent drop.
//
// The RPC schema is assembled at runtime from a protobuf file descriptor,
// so no generated code is needed; ConnectPublisher speaks gRPC, gRPC-Web or
// the Connect protocol over net/http.
package upload

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tailored-agentic-units/eventsender/clock"
	"github.com/tailored-agentic-units/eventsender/engine"
	"github.com/tailored-agentic-units/eventsender/observability"
	"github.com/tailored-agentic-units/eventsender/value"
)

// Option configures an Uploader.
type Option func(*Uploader)

// WithClock overrides the real clock used for send times and latency.
func WithClock(c clock.Clock) Option {
	return func(u *Uploader) { u.clock = c }
}

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(u *Uploader) { u.observer = o }
}

// WithMetrics overrides the default no-op metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(u *Uploader) { u.metrics = m }
}

// Uploader implements engine.Uploader on top of a Publisher.
type Uploader struct {
	clientSecret string
	deadline     time.Duration
	publisher    Publisher
	clock        clock.Clock
	observer     observability.Observer
	metrics      observability.MetricsRecorder

	closeOnce sync.Once
	closeErr  error
}

var _ engine.Uploader = (*Uploader)(nil)

// New creates an Uploader. The client secret is mandatory; a zero
// deadline means DefaultDeadlineMS.
func New(cfg *Config, publisher Publisher, opts ...Option) (*Uploader, error) {
	if cfg == nil || cfg.ClientSecret == "" {
		return nil, ErrNoClientSecret
	}
	if publisher == nil {
		return nil, ErrNoTransport
	}

	deadline := cfg.Deadline()
	if deadline <= 0 {
		deadline = DefaultDeadlineMS * time.Millisecond
	}

	u := &Uploader{
		clientSecret: cfg.ClientSecret,
		deadline:     deadline,
		publisher:    publisher,
		clock:        clock.Real(),
		observer:     observability.NewSlogObserver(nil),
		metrics:      observability.NoopMetrics{},
	}

	for _, opt := range opts {
		opt(u)
	}

	u.observer = observability.OrNoOp(u.observer)
	u.metrics = observability.OrNoopMetrics(u.metrics)

	return u, nil
}

// Upload publishes batch and returns the events to retry, in batch order.
// Any call failure, including an expired deadline, retries everything.
func (u *Uploader) Upload(ctx context.Context, batch engine.Batch) []engine.Event {
	ctx, span := observability.StartUploadSpan(ctx, batch.ID(), batch.Len())

	req := u.request(batch)

	callCtx, cancel := context.WithTimeout(ctx, u.deadline)
	defer cancel()

	start := u.clock.Now()
	resp, err := u.publisher.Publish(callCtx, req)
	u.metrics.RecordUpload(ctx, u.clock.Now().Sub(start), err)

	if err != nil {
		u.observer.OnSignal(ctx, observability.Signal{
			Type:      SignalUploadFailed,
			Level:     observability.LevelWarning,
			Timestamp: u.clock.Now(),
			Source:    "upload.Upload",
			BatchID:   batch.ID(),
			Attrs: map[string]any{
				"size":  batch.Len(),
				"error": err.Error(),
			},
		})
		observability.EndSpan(span, err)
		return batch.Events()
	}

	retry := u.classify(ctx, batch, resp)

	u.observer.OnSignal(ctx, observability.Signal{
		Type:      SignalUploadCompleted,
		Level:     observability.LevelVerbose,
		Timestamp: u.clock.Now(),
		Source:    "upload.Upload",
		BatchID:   batch.ID(),
		Attrs: map[string]any{
			"size":   batch.Len(),
			"errors": len(resp.Errors),
			"retry":  len(retry),
		},
	})
	observability.AddSpanEvent(ctx, "classified",
		attribute.Int("errors", len(resp.Errors)),
		attribute.Int("retry", len(retry)),
	)
	observability.EndSpan(span, nil)

	return retry
}

// Close closes the publisher once. In-flight uploads are not awaited.
func (u *Uploader) Close() error {
	u.closeOnce.Do(func() {
		u.closeErr = u.publisher.Close()
	})
	return u.closeErr
}

func (u *Uploader) request(batch engine.Batch) *PublishRequest {
	req := &PublishRequest{
		ClientSecret: u.clientSecret,
		SendTime:     u.clock.Now().Truncate(time.Second),
		Events:       make([]WireEvent, batch.Len()),
	}
	for i := range batch.Len() {
		ev := batch.At(i)
		req.Events[i] = WireEvent{
			Definition: ev.Name,
			EventTime:  ev.EmitTime.Truncate(time.Second),
			Payload:    Payload(ev).ToProto(),
		}
	}
	return req
}

// Payload flattens an event into its wire payload: context fields
// overlaid by message fields, so the message wins on shared keys.
func Payload(ev engine.Event) value.Struct {
	fields := ev.Context.AsMap()
	maps.Copy(fields, ev.Message.AsMap())
	return value.NewStruct(fields)
}

// classify maps the sparse error list onto batch events. Out-of-range
// indices are ignored and an index listed twice is handled once.
func (u *Uploader) classify(ctx context.Context, batch engine.Batch, resp *PublishResponse) []engine.Event {
	seen := make(map[int]bool, len(resp.Errors))
	var retryIdx []int

	for _, e := range resp.Errors {
		if e.Index < 0 || e.Index >= batch.Len() {
			u.observer.OnSignal(ctx, observability.Signal{
				Type:      SignalIndexOutOfRange,
				Level:     observability.LevelWarning,
				Timestamp: u.clock.Now(),
				Source:    "upload.classify",
				BatchID:   batch.ID(),
				Attrs:     map[string]any{"index": e.Index, "size": batch.Len()},
			})
			continue
		}
		if seen[e.Index] {
			continue
		}
		seen[e.Index] = true

		if e.Reason.Retryable() {
			retryIdx = append(retryIdx, e.Index)
			continue
		}

		ev := batch.At(e.Index)
		u.metrics.RecordDropped(ctx, 1, observability.DropReasonRejected)
		u.observer.OnSignal(ctx, observability.Signal{
			Type:      SignalEventDropped,
			Level:     observability.LevelWarning,
			Timestamp: u.clock.Now(),
			Source:    "upload.classify",
			BatchID:   batch.ID(),
			Attrs: map[string]any{
				"event":   ev.Name,
				"index":   e.Index,
				"reason":  e.Reason.String(),
				"message": e.Message,
			},
		})
	}

	slices.Sort(retryIdx)
	retry := make([]engine.Event, len(retryIdx))
	for i, idx := range retryIdx {
		retry[i] = batch.At(idx)
	}
	return retry
}
