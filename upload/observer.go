package upload

import "github.com/tailored-agentic-units/eventsender/observability"

// Upload signal types.
const (
	SignalUploadCompleted observability.SignalType = "upload.completed"
	SignalUploadFailed    observability.SignalType = "upload.failed"
	SignalEventDropped    observability.SignalType = "upload.event.dropped"
	SignalIndexOutOfRange observability.SignalType = "upload.index.out_of_range"
)
