package audit

import "context"

// Sink receives audit events. Implementations must not block.
type Sink interface {
	Publish(ctx context.Context, event Event)
}

// Fanout delivers each event to every configured sink.
type Fanout struct {
	sinks []Sink
}

// NewFanout creates a fanout over the given sinks. Nil sinks are skipped.
func NewFanout(sinks ...Sink) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Publish hands the event to every sink.
func (f *Fanout) Publish(ctx context.Context, event Event) {
	if event.Category == "" {
		event.Category = CategoryFor(event.Action)
	}
	for _, s := range f.sinks {
		s.Publish(ctx, event)
	}
}
