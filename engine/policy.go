package engine

import (
	"time"

	"github.com/tailored-agentic-units/eventsender/clock"
)

// DefaultBatchSize is the event count at which the default policy fires.
const DefaultBatchSize = 5

// FlushPolicy decides when the pending queue becomes a batch. The engine
// calls Hit for every accepted event, then ShouldFlush; after any policy
// fires, every policy is Reset. Calls are serialized by the engine.
type FlushPolicy interface {
	Hit(event Event)
	ShouldFlush() bool
	Reset()
}

// SizePolicy fires once it has seen a fixed number of events since the
// last reset. It counts hits, not queue length: requeued retries do not
// count toward the next flush.
type SizePolicy struct {
	size  int
	count int
}

// NewSizePolicy returns a SizePolicy firing every n events. n <= 0 means
// DefaultBatchSize.
func NewSizePolicy(n int) *SizePolicy {
	if n <= 0 {
		n = DefaultBatchSize
	}
	return &SizePolicy{size: n}
}

func (p *SizePolicy) Hit(Event) { p.count++ }

func (p *SizePolicy) ShouldFlush() bool { return p.count >= p.size }

func (p *SizePolicy) Reset() { p.count = 0 }

// IntervalPolicy fires when the oldest event seen since the last reset is
// at least maxAge old. It is only consulted on Send; quiet periods are
// covered by the engine's flush interval.
type IntervalPolicy struct {
	maxAge time.Duration
	clock  clock.Clock
	oldest time.Time
	seen   bool
}

// NewIntervalPolicy returns an IntervalPolicy measuring age with c.
func NewIntervalPolicy(maxAge time.Duration, c clock.Clock) *IntervalPolicy {
	return &IntervalPolicy{maxAge: maxAge, clock: c}
}

func (p *IntervalPolicy) Hit(Event) {
	if !p.seen {
		p.oldest = p.clock.Now()
		p.seen = true
	}
}

func (p *IntervalPolicy) ShouldFlush() bool {
	return p.seen && p.clock.Now().Sub(p.oldest) >= p.maxAge
}

func (p *IntervalPolicy) Reset() { p.seen = false }
