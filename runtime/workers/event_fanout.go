package workers

import (
	"context"
	"draw-lab/contract"
	"draw-lab/domain/event"
	"log/slog"
	"sync"
	"time"
)

var _ contract.Worker = (*EventFanout)(nil)

// EventFanout delivers committed board events to every connected session
// except the one that originated the change.
//
// Each event is handed to all sinks in parallel, and the next event is not
// started before every sink accepted or gave up on the current one, so each
// session observes events in commit order. A sink that does not accept an
// event within sinkTimeout is expected to close itself; its session then
// resynchronizes through a fresh bootstrap.
type EventFanout struct {
	log         *slog.Logger
	registry    contract.IRegistry
	events      chan event.DomainEvent
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, registry contract.IRegistry,
	events chan event.DomainEvent, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{log: log, registry: registry, events: events, sinkTimeout: sinkTimeout}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt, ok := <-w.events:
			if !ok {
				return nil
			}
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		}
	}
}

// Fanout blocks until every recipient handled evt.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	var wg sync.WaitGroup
	for sessionID, sink := range w.registry.Sinks() {
		if sessionID == evt.Origin() {
			continue
		}
		wg.Add(1)
		go func(sessionID string, sink contract.EventSink) {
			defer wg.Done()
			sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
			defer cancel()
			if err := sink.Consume(sinkCtx, evt); err != nil {
				w.log.Warn("Session did not accept event",
					"session", sessionID, "version", evt.BoardVersion(), "error", err)
			}
		}(sessionID, sink)
	}
	wg.Wait()
}
