package sink

import (
	"context"
	"draw-lab/domain/event"
	"draw-lab/errors"
	"sync"
)

// SessionSink buffers board events for one connected session.
// The transport handler owns the receiving side and forwards events to the
// peer. A sink that cannot keep up closes itself instead of dropping events,
// since a replica that missed one event would silently diverge.
type SessionSink struct {
	events chan event.DomainEvent
	done   chan struct{}
	once   sync.Once
}

func NewSessionSink(bufferSize int) *SessionSink {
	return &SessionSink{
		events: make(chan event.DomainEvent, bufferSize),
		done:   make(chan struct{}),
	}
}

// Consume is called by fanout.
func (s *SessionSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case <-s.done:
		return errors.ErrSinkClosed
	default:
	}
	select {
	case s.events <- e:
		return nil
	case <-s.done:
		return errors.ErrSinkClosed
	case <-ctx.Done():
		s.Close()
		return errors.ErrSlowConsumer
	}
}

func (s *SessionSink) Events() <-chan event.DomainEvent { return s.events }

// Done is closed once the sink stopped accepting events.
func (s *SessionSink) Done() <-chan struct{} { return s.done }

func (s *SessionSink) Close() {
	s.once.Do(func() { close(s.done) })
}
