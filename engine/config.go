package engine

import "time"

// Config holds batching parameters. Durations are milliseconds so the
// struct maps directly onto JSON and YAML files.
type Config struct {
	// BatchSize is the event count that triggers a flush.
	BatchSize int `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`

	// MaxBatchAgeMS, when set, adds an IntervalPolicy that flushes on Send
	// once the oldest unflushed event is this old.
	MaxBatchAgeMS int `json:"max_batch_age_ms,omitempty" yaml:"max_batch_age_ms,omitempty"`

	// FlushIntervalMS, when set, flushes whatever is pending on a timer.
	FlushIntervalMS int `json:"flush_interval_ms,omitempty" yaml:"flush_interval_ms,omitempty"`

	// MaxPending bounds the queue; the oldest events are dropped beyond it.
	// Zero means unbounded.
	MaxPending int `json:"max_pending,omitempty" yaml:"max_pending,omitempty"`
}

// DefaultConfig returns a size-only configuration with DefaultBatchSize.
func DefaultConfig() Config {
	return Config{BatchSize: DefaultBatchSize}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.BatchSize > 0 {
		c.BatchSize = source.BatchSize
	}
	if source.MaxBatchAgeMS > 0 {
		c.MaxBatchAgeMS = source.MaxBatchAgeMS
	}
	if source.FlushIntervalMS > 0 {
		c.FlushIntervalMS = source.FlushIntervalMS
	}
	if source.MaxPending > 0 {
		c.MaxPending = source.MaxPending
	}
}

// FlushInterval returns FlushIntervalMS as a duration.
func (c *Config) FlushInterval() time.Duration {
	return time.Duration(c.FlushIntervalMS) * time.Millisecond
}

// MaxBatchAge returns MaxBatchAgeMS as a duration.
func (c *Config) MaxBatchAge() time.Duration {
	return time.Duration(c.MaxBatchAgeMS) * time.Millisecond
}
