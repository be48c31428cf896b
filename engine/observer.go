package engine

import "github.com/tailored-agentic-units/eventsender/observability"

// Engine signal types.
const (
	SignalBatchDispatched observability.SignalType = "engine.batch.dispatched"
	SignalEventsRequeued  observability.SignalType = "engine.events.requeued"
	SignalQueueOverflow   observability.SignalType = "engine.queue.overflow"
	SignalShutdownDropped observability.SignalType = "engine.shutdown.dropped"
	SignalClosed          observability.SignalType = "engine.closed"
)
