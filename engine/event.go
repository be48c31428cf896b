package engine

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/eventsender/value"
)

// Event is one emitted telemetry event. EmitTime is stamped by the engine
// when the event is accepted and survives retries unchanged.
type Event struct {
	Name     string
	EmitTime time.Time
	Message  value.Struct
	Context  value.Struct
}

// Batch is an immutable, uniquely identified run of events detached from
// the queue in one step.
type Batch struct {
	id     string
	events []Event
}

// NewBatch creates a Batch holding a copy of events under a fresh UUIDv7.
func NewBatch(events []Event) Batch {
	return Batch{
		id:     uuid.Must(uuid.NewV7()).String(),
		events: slices.Clone(events),
	}
}

// ID returns the batch identifier.
func (b Batch) ID() string { return b.id }

// Len returns the number of events in the batch.
func (b Batch) Len() int { return len(b.events) }

// At returns the event at index i.
func (b Batch) At(i int) Event { return b.events[i] }

// Events returns a copy of the batch's events in order.
func (b Batch) Events() []Event { return slices.Clone(b.events) }
