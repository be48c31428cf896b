package upload

import "fmt"

// Reason classifies a per-event rejection reported by the backend.
type Reason int32

const (
	ReasonUnspecified                 Reason = 0
	ReasonEventDefinitionNotFound     Reason = 1
	ReasonEventSchemaValidationFailed Reason = 2
)

func (r Reason) String() string {
	switch r {
	case ReasonUnspecified:
		return "REASON_UNSPECIFIED"
	case ReasonEventDefinitionNotFound:
		return "EVENT_DEFINITION_NOT_FOUND"
	case ReasonEventSchemaValidationFailed:
		return "EVENT_SCHEMA_VALIDATION_FAILED"
	default:
		return fmt.Sprintf("UNRECOGNIZED(%d)", int32(r))
	}
}

// Retryable reports whether an event rejected for r should be sent again.
// Only the defined rejection reasons are permanent; unspecified and
// unknown reasons are retried.
func (r Reason) Retryable() bool {
	switch r {
	case ReasonEventDefinitionNotFound, ReasonEventSchemaValidationFailed:
		return false
	default:
		return true
	}
}
