package upload

import (
	"context"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Publisher performs the PublishEvents call. ConnectPublisher is the
// network implementation; tests substitute fakes.
type Publisher interface {
	Publish(ctx context.Context, req *PublishRequest) (*PublishResponse, error)
	Close() error
}

// PublishRequest mirrors confidence.events.v1.PublishEventsRequest.
type PublishRequest struct {
	ClientSecret string
	SendTime     time.Time
	Events       []WireEvent
}

// WireEvent mirrors confidence.events.v1.Event.
type WireEvent struct {
	Definition string
	EventTime  time.Time
	Payload    *structpb.Struct
}

// PublishResponse mirrors confidence.events.v1.PublishEventsResponse.
// Errors is sparse: events without an entry were accepted.
type PublishResponse struct {
	Errors []EventError
}

// EventError reports a rejected event by its index in the request.
type EventError struct {
	Index   int
	Reason  Reason
	Message string
}
