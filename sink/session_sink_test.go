package sink

import (
	"context"
	"draw-lab/domain/event"
	"draw-lab/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionSink_Consume(t *testing.T) {
	req := require.New(t)
	s := NewSessionSink(2)

	// When two events are consumed
	req.NoError(s.Consume(context.Background(), event.BoardCleared{Version: 1}))
	req.NoError(s.Consume(context.Background(), event.BoardCleared{Version: 2}))

	// Then they are available in order
	req.Equal(uint64(1), (<-s.Events()).BoardVersion())
	req.Equal(uint64(2), (<-s.Events()).BoardVersion())
}

func TestSessionSink_SlowConsumerClosesSink(t *testing.T) {
	req := require.New(t)
	s := NewSessionSink(1)
	req.NoError(s.Consume(context.Background(), event.BoardCleared{Version: 1}))

	// Given the buffer is full and nobody reads it
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// When another event arrives
	err := s.Consume(ctx, event.BoardCleared{Version: 2})

	// Then the sink gives up and closes itself
	req.ErrorIs(err, errors.ErrSlowConsumer)
	select {
	case <-s.Done():
	default:
		req.Fail("Sink should be closed")
	}
	req.ErrorIs(s.Consume(context.Background(), event.BoardCleared{Version: 3}), errors.ErrSinkClosed)
}

func TestSessionSink_CloseIsIdempotent(t *testing.T) {
	req := require.New(t)
	s := NewSessionSink(1)
	s.Close()
	s.Close()
	req.ErrorIs(s.Consume(context.Background(), event.BoardCleared{}), errors.ErrSinkClosed)
}
