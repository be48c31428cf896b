package engine_test

import (
	"testing"
	"time"

	"github.com/tailored-agentic-units/eventsender/engine"
)

func TestDefaultConfig(t *testing.T) {
	cfg := engine.DefaultConfig()

	if cfg.BatchSize != 5 {
		t.Errorf("got BatchSize %d, want 5", cfg.BatchSize)
	}
	if cfg.FlushInterval() != 0 {
		t.Errorf("got FlushInterval %v, want 0", cfg.FlushInterval())
	}
	if cfg.MaxPending != 0 {
		t.Errorf("got MaxPending %d, want 0", cfg.MaxPending)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := engine.DefaultConfig()

	cfg.Merge(&engine.Config{
		BatchSize:       20,
		MaxBatchAgeMS:   250,
		FlushIntervalMS: 1500,
		MaxPending:      1000,
	})

	if cfg.BatchSize != 20 {
		t.Errorf("got BatchSize %d, want 20", cfg.BatchSize)
	}
	if cfg.MaxBatchAge() != 250*time.Millisecond {
		t.Errorf("got MaxBatchAge %v, want 250ms", cfg.MaxBatchAge())
	}
	if cfg.FlushInterval() != 1500*time.Millisecond {
		t.Errorf("got FlushInterval %v, want 1.5s", cfg.FlushInterval())
	}
	if cfg.MaxPending != 1000 {
		t.Errorf("got MaxPending %d, want 1000", cfg.MaxPending)
	}
}

func TestConfig_Merge_ZeroValuesPreserveDefaults(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.Merge(&engine.Config{})

	if cfg.BatchSize != engine.DefaultBatchSize {
		t.Errorf("got BatchSize %d, want %d (preserved default)", cfg.BatchSize, engine.DefaultBatchSize)
	}
}
