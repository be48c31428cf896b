// Package confidence is the client entry point: a context-scoped handle
// that stamps every event with its effective context and hands it to a
// shared batching sender.
//
// New builds every subsystem from configuration. Functional options
// replace any of them for tests.
//
//	c, err := confidence.New(&cfg)
//	c.UpdateContext("user_id", value.String("u-42"))
//	err = c.Send("checkout-completed", message)
//	defer c.Close()
package confidence

import (
	"fmt"
	"net/http"

	"github.com/tailored-agentic-units/eventsender/clock"
	"github.com/tailored-agentic-units/eventsender/contextual"
	"github.com/tailored-agentic-units/eventsender/engine"
	"github.com/tailored-agentic-units/eventsender/observability"
	"github.com/tailored-agentic-units/eventsender/upload"
	"github.com/tailored-agentic-units/eventsender/value"
)

// Sender accepts events with an already resolved context.
// *engine.Engine is the default implementation.
type Sender interface {
	Send(name string, message, context value.Struct) error
	Flush()
	Close() error
}

var _ Sender = (*engine.Engine)(nil)

type builder struct {
	publisher  upload.Publisher
	sender     Sender
	clock      clock.Clock
	observer   observability.Observer
	metrics    observability.MetricsRecorder
	httpClient *http.Client
}

// Option overrides a config-created subsystem.
type Option func(*builder)

// WithPublisher replaces the connect transport.
func WithPublisher(p upload.Publisher) Option {
	return func(b *builder) { b.publisher = p }
}

// WithSender replaces the whole pipeline; the upload and transport
// sections of the config are then ignored.
func WithSender(s Sender) Option {
	return func(b *builder) { b.sender = s }
}

// WithClock overrides the real clock.
func WithClock(c clock.Clock) Option {
	return func(b *builder) { b.clock = c }
}

// WithObserver overrides the observer named in the config.
func WithObserver(o observability.Observer) Option {
	return func(b *builder) { b.observer = o }
}

// WithMetrics overrides the OpenTelemetry metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(b *builder) { b.metrics = m }
}

// WithHTTPClient sets the HTTP client used by the connect transport.
func WithHTTPClient(c *http.Client) Option {
	return func(b *builder) { b.httpClient = c }
}

// Confidence is a context handle bound to a shared Sender. Handles made
// with WithContext inherit their parent's context and share its Sender.
type Confidence struct {
	store  *contextual.Store
	sender Sender
}

var _ contextual.Contextual = (*Confidence)(nil)

// New creates the root handle. A nil cfg means DefaultConfig.
func New(cfg *Config, opts ...Option) (*Confidence, error) {
	if cfg == nil {
		d := DefaultConfig()
		cfg = &d
	}

	b := &builder{clock: clock.Real()}
	for _, opt := range opts {
		opt(b)
	}

	sender := b.sender
	if sender == nil {
		e, err := newEngine(cfg, b)
		if err != nil {
			return nil, err
		}
		sender = e
	}

	return &Confidence{
		store:  contextual.NewStore(nil),
		sender: sender,
	}, nil
}

func newEngine(cfg *Config, b *builder) (*engine.Engine, error) {
	uploadCfg := cfg.Upload
	if cfg.ClientSecret != "" {
		uploadCfg.ClientSecret = cfg.ClientSecret
	}
	if uploadCfg.ClientSecret == "" {
		return nil, ErrNoClientSecret
	}

	observer := b.observer
	if observer == nil {
		obs, err := observability.GetObserver(cfg.Observer)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve observer: %w", err)
		}
		observer = obs
	}

	metrics := b.metrics
	if metrics == nil {
		metrics = observability.NewMetricsRecorder()
	}

	publisher := b.publisher
	if publisher == nil {
		p, err := upload.NewConnectPublisher(&cfg.Transport, b.httpClient)
		if err != nil {
			return nil, fmt.Errorf("failed to create transport: %w", err)
		}
		publisher = p
	}

	up, err := upload.New(&uploadCfg, publisher,
		upload.WithClock(b.clock),
		upload.WithObserver(observer),
		upload.WithMetrics(metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create uploader: %w", err)
	}

	e, err := engine.New(&cfg.Engine, up,
		engine.WithClock(b.clock),
		engine.WithObserver(observer),
		engine.WithMetrics(metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return e, nil
}

// Context returns the effective context: the parent's context overlaid
// with this handle's own entries, minus removed keys.
func (c *Confidence) Context() value.Struct { return c.store.Context() }

func (c *Confidence) SetContext(ctx value.Struct) { c.store.SetContext(ctx) }

func (c *Confidence) UpdateContext(key string, v value.Value) { c.store.UpdateContext(key, v) }

func (c *Confidence) RemoveContext(key string) { c.store.RemoveContext(key) }

func (c *Confidence) ClearContext() { c.store.ClearContext() }

// WithContext returns a child handle whose own context is ctx. The child
// sees later changes to this handle's context.
func (c *Confidence) WithContext(ctx value.Struct) *Confidence {
	return &Confidence{
		store:  c.store.Child(ctx),
		sender: c.sender,
	}
}

// Send emits an event carrying message and the handle's current
// effective context. Delivery is asynchronous; only local validation and
// closed-sender errors are returned.
func (c *Confidence) Send(name string, message value.Struct) error {
	return c.sender.Send(name, message, c.store.Context())
}

// Flush dispatches pending events without waiting for delivery.
func (c *Confidence) Flush() { c.sender.Flush() }

// Close flushes and closes the shared sender. Closing any handle closes
// it for every handle derived from the same root.
func (c *Confidence) Close() error { return c.sender.Close() }
