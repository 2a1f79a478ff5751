// Package publisher offers a non-blocking, bounded audit publisher. When the
// buffer is full the event is dropped and counted; domain code never blocks
// on audit delivery.
package publisher

import (
	"context"
	"sync/atomic"

	audit "onboard/pkg/platform/audit"
)

const defaultBuffer = 1024

// Publisher fans events into a buffered channel consumed by a worker.
type Publisher struct {
	outbox  chan audit.Event
	dropped atomic.Int64
}

// New creates a publisher with the given buffer capacity (or a default when
// capacity is not positive).
func New(capacity int) *Publisher {
	if capacity <= 0 {
		capacity = defaultBuffer
	}
	return &Publisher{outbox: make(chan audit.Event, capacity)}
}

// Publish enqueues an event without blocking. The category is derived from
// the action when the caller left it unset.
func (p *Publisher) Publish(ctx context.Context, event audit.Event) {
	if event.Category == "" {
		event.Category = audit.CategoryFor(event.Action)
	}
	select {
	case p.outbox <- event:
	default:
		p.dropped.Add(1)
	}
}

// Outbox exposes the consuming side for the worker.
func (p *Publisher) Outbox() <-chan audit.Event {
	return p.outbox
}

// Dropped reports how many events were discarded because the buffer was
// full.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}
