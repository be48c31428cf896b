package observability

import (
	"context"
	"log/slog"
	"maps"
	"slices"
)

// SlogObserver writes signals to a slog.Logger. The signal type becomes
// the log message. Source and batch_id come first, then the remaining
// attributes in sorted key order.
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver creates a SlogObserver. A nil logger means
// slog.Default().
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogObserver{logger: logger}
}

func (o *SlogObserver) OnSignal(ctx context.Context, signal Signal) {
	level := signal.Level.SlogLevel()
	if !o.logger.Enabled(ctx, level) {
		return
	}

	attrs := make([]slog.Attr, 0, len(signal.Attrs)+2)
	attrs = append(attrs, slog.String("source", signal.Source))
	if signal.BatchID != "" {
		attrs = append(attrs, slog.String("batch_id", signal.BatchID))
	}
	for _, k := range slices.Sorted(maps.Keys(signal.Attrs)) {
		attrs = append(attrs, slog.Any(k, signal.Attrs[k]))
	}

	o.logger.LogAttrs(ctx, level, string(signal.Type), attrs...)
}
