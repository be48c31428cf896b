// Package observability reports what the event pipeline is doing: queue
// flushes, uploads, retries and dropped events. Signals go to an Observer
// (structured logs by default); counters and latencies go to an
// OpenTelemetry MetricsRecorder; uploads are traced as spans.
//
// Level values align with OpenTelemetry SeverityNumbers so signals can be
// forwarded to an OTel collector without translation.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Level is signal severity. The values are the lower bounds of the
// OTel SeverityNumber ranges.
type Level int

const (
	LevelVerbose Level = 5
	LevelInfo    Level = 9
	LevelWarning Level = 13
	LevelError   Level = 17
)

// String returns the OTel severity text for the level.
func (l Level) String() string {
	switch {
	case l <= 4:
		return "TRACE"
	case l <= 8:
		return "DEBUG"
	case l <= 12:
		return "INFO"
	case l <= 16:
		return "WARN"
	case l <= 20:
		return "ERROR"
	default:
		return "FATAL"
	}
}

// SlogLevel maps l to the slog level used when logging it.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= 8:
		return slog.LevelDebug
	case l <= 12:
		return slog.LevelInfo
	case l <= 16:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// SignalType names a kind of signal. Each package declares its own
// constants, e.g. "engine.batch.dispatched" or "upload.event.dropped".
type SignalType string

// Signal is one observable occurrence inside the pipeline. It is distinct
// from the telemetry events the pipeline ships: signals describe the
// pipeline itself. BatchID is set for every signal tied to a batch, so a
// batch can be followed from dispatch to its final upload outcome.
type Signal struct {
	Type      SignalType
	Level     Level
	Timestamp time.Time
	Source    string
	BatchID   string
	Attrs     map[string]any
}

// Observer receives signals. Implementations must be safe for concurrent
// use: uploads complete on their own goroutines.
type Observer interface {
	OnSignal(ctx context.Context, signal Signal)
}
