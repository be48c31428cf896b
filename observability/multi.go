package observability

import "context"

// NoOpObserver discards every signal.
type NoOpObserver struct{}

func (NoOpObserver) OnSignal(ctx context.Context, signal Signal) {}

// MultiObserver fans signals out to several observers in order.
type MultiObserver struct {
	observers []Observer
}

// NewMultiObserver creates a MultiObserver over the non-nil observers.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	filtered := make([]Observer, 0, len(observers))
	for _, obs := range observers {
		if obs != nil {
			filtered = append(filtered, obs)
		}
	}
	return &MultiObserver{observers: filtered}
}

func (m *MultiObserver) OnSignal(ctx context.Context, signal Signal) {
	for _, obs := range m.observers {
		obs.OnSignal(ctx, signal)
	}
}

// OrNoOp returns obs, or NoOpObserver when obs is nil.
func OrNoOp(obs Observer) Observer {
	if obs == nil {
		return NoOpObserver{}
	}
	return obs
}
