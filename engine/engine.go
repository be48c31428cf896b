// Package engine batches telemetry events and hands each batch to an
// Uploader on its own goroutine. Events the uploader returns are requeued
// at the front of the queue and ride along with the next batch.
//
//	e, err := engine.New(&cfg, uploader)
//	err = e.Send("checkout-completed", message, context)
//	defer e.Close()
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tailored-agentic-units/eventsender/clock"
	"github.com/tailored-agentic-units/eventsender/observability"
	"github.com/tailored-agentic-units/eventsender/value"
)

// Uploader delivers a batch and reports which events should be retried.
// A total failure is reported by returning every event of the batch.
// Upload must honor its own deadline; the engine never cancels it.
type Uploader interface {
	Upload(ctx context.Context, batch Batch) []Event
	Close() error
}

// Option configures an Engine after config-driven initialization.
type Option func(*Engine)

// WithClock overrides the real clock.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithMetrics overrides the default no-op metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithPolicies replaces the config-derived flush policies.
func WithPolicies(policies ...FlushPolicy) Option {
	return func(e *Engine) { e.policies = policies }
}

// Engine is the batching pipeline. Safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	pending  []Event
	policies []FlushPolicy
	closed   bool

	uploader      Uploader
	clock         clock.Clock
	observer      observability.Observer
	metrics       observability.MetricsRecorder
	maxPending    int
	flushInterval time.Duration

	inflight  sync.WaitGroup
	stop      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// New creates an Engine from configuration. A nil cfg means
// DefaultConfig. When cfg sets a flush interval, a background flusher
// runs until Close.
func New(cfg *Config, uploader Uploader, opts ...Option) (*Engine, error) {
	if uploader == nil {
		return nil, ErrNoUploader
	}
	if cfg == nil {
		d := DefaultConfig()
		cfg = &d
	}

	e := &Engine{
		uploader:      uploader,
		clock:         clock.Real(),
		observer:      observability.NewSlogObserver(nil),
		metrics:       observability.NoopMetrics{},
		maxPending:    cfg.MaxPending,
		flushInterval: cfg.FlushInterval(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.observer = observability.OrNoOp(e.observer)
	e.metrics = observability.OrNoopMetrics(e.metrics)

	if len(e.policies) == 0 {
		e.policies = []FlushPolicy{NewSizePolicy(cfg.BatchSize)}
		if age := cfg.MaxBatchAge(); age > 0 {
			e.policies = append(e.policies, NewIntervalPolicy(age, e.clock))
		}
	}

	if e.flushInterval > 0 {
		e.stop = make(chan struct{})
		e.stopped = make(chan struct{})
		go e.run(e.clock.NewTicker(e.flushInterval))
	}

	return e, nil
}

// Send queues an event stamped with the current time and dispatches a
// batch if any flush policy fires. It never blocks on network I/O.
func (e *Engine) Send(name string, message, eventContext value.Struct) error {
	if name == "" {
		return ErrEmptyName
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}

	event := Event{
		Name:     name,
		EmitTime: e.clock.Now(),
		Message:  message,
		Context:  eventContext,
	}
	e.pending = append(e.pending, event)
	overflow := e.trimLocked()

	fire := false
	for _, p := range e.policies {
		p.Hit(event)
		if p.ShouldFlush() {
			fire = true
		}
	}

	var batch Batch
	var ok bool
	if fire {
		batch, ok = e.detachLocked()
	}
	if ok {
		e.inflight.Add(1)
	}
	e.mu.Unlock()

	ctx := context.Background()
	e.metrics.RecordSent(ctx, 1)
	e.reportOverflow(ctx, overflow)
	if ok {
		go e.dispatch(batch)
	}
	return nil
}

// Flush dispatches everything pending regardless of policy state. It is
// a no-op when the queue is empty or the engine is closed.
func (e *Engine) Flush() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	batch, ok := e.detachLocked()
	if ok {
		e.inflight.Add(1)
	}
	e.mu.Unlock()

	if ok {
		go e.dispatch(batch)
	}
}

// Pending returns the number of queued events.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// Close stops accepting events, waits for in-flight uploads, uploads the
// remainder as a final batch and closes the uploader. Retries reported by
// the final upload are dropped. Close is idempotent.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.closeErr = e.close()
	})
	return e.closeErr
}

func (e *Engine) close() error {
	ctx := context.Background()

	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	if e.stop != nil {
		close(e.stop)
		<-e.stopped
	}

	e.inflight.Wait()

	e.mu.Lock()
	batch, ok := e.detachLocked()
	e.mu.Unlock()

	dropped := 0
	if ok {
		e.announce(ctx, batch)
		dropped = len(e.uploader.Upload(ctx, batch))
	}

	if dropped > 0 {
		e.metrics.RecordDropped(ctx, dropped, observability.DropReasonShutdown)
		e.observer.OnSignal(ctx, observability.Signal{
			Type:      SignalShutdownDropped,
			Level:     observability.LevelWarning,
			Timestamp: e.clock.Now(),
			Source:    "engine.Close",
			BatchID:   batch.ID(),
			Attrs:     map[string]any{"dropped": dropped},
		})
	}

	err := e.uploader.Close()

	e.observer.OnSignal(ctx, observability.Signal{
		Type:      SignalClosed,
		Level:     observability.LevelInfo,
		Timestamp: e.clock.Now(),
		Source:    "engine.Close",
		Attrs:     map[string]any{"dropped": dropped},
	})

	if err != nil {
		return fmt.Errorf("failed to close uploader: %w", err)
	}
	return nil
}

// detachLocked moves the whole queue into a Batch and resets every
// policy. e.mu must be held.
func (e *Engine) detachLocked() (Batch, bool) {
	for _, p := range e.policies {
		p.Reset()
	}
	if len(e.pending) == 0 {
		return Batch{}, false
	}

	batch := NewBatch(e.pending)
	e.pending = nil
	return batch, true
}

// trimLocked enforces maxPending by dropping the oldest events and
// returns how many were dropped. e.mu must be held.
func (e *Engine) trimLocked() int {
	if e.maxPending <= 0 || len(e.pending) <= e.maxPending {
		return 0
	}
	n := len(e.pending) - e.maxPending
	e.pending = append([]Event(nil), e.pending[n:]...)
	return n
}

func (e *Engine) dispatch(batch Batch) {
	defer e.inflight.Done()

	ctx := context.Background()
	e.announce(ctx, batch)

	retry := e.uploader.Upload(ctx, batch)
	e.requeue(ctx, retry)
}

func (e *Engine) announce(ctx context.Context, batch Batch) {
	e.metrics.RecordBatch(ctx, batch.Len())
	e.observer.OnSignal(ctx, observability.Signal{
		Type:      SignalBatchDispatched,
		Level:     observability.LevelVerbose,
		Timestamp: e.clock.Now(),
		Source:    "engine.dispatch",
		BatchID:   batch.ID(),
		Attrs:     map[string]any{"size": batch.Len()},
	})
}

// requeue puts events back at the front of the queue in their original
// order without touching policy state.
func (e *Engine) requeue(ctx context.Context, events []Event) {
	if len(events) == 0 {
		return
	}

	e.mu.Lock()
	e.pending = append(append(make([]Event, 0, len(events)+len(e.pending)), events...), e.pending...)
	overflow := e.trimLocked()
	e.mu.Unlock()

	e.metrics.RecordRetried(ctx, len(events))
	e.observer.OnSignal(ctx, observability.Signal{
		Type:      SignalEventsRequeued,
		Level:     observability.LevelInfo,
		Timestamp: e.clock.Now(),
		Source:    "engine.requeue",
		Attrs:     map[string]any{"count": len(events)},
	})
	e.reportOverflow(ctx, overflow)
}

func (e *Engine) reportOverflow(ctx context.Context, n int) {
	if n == 0 {
		return
	}
	e.metrics.RecordDropped(ctx, n, observability.DropReasonOverflow)
	e.observer.OnSignal(ctx, observability.Signal{
		Type:      SignalQueueOverflow,
		Level:     observability.LevelWarning,
		Timestamp: e.clock.Now(),
		Source:    "engine",
		Attrs:     map[string]any{"dropped": n, "max_pending": e.maxPending},
	})
}

func (e *Engine) run(ticker *clock.Ticker) {
	defer close(e.stopped)
	defer ticker.Stop()

	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			e.Flush()
		}
	}
}
