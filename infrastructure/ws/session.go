package ws

import (
	"context"
	"draw-lab/errors"
	"draw-lab/services"
	"draw-lab/sink"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 1 << 20
)

// Session serves one websocket connection.
// The read pump handles one frame at a time and waits for the board to
// answer before reading the next, so the requests of a session are applied
// in the order they were sent. The write pump is the only writer of the
// connection.
type Session struct {
	id      string
	log     *slog.Logger
	conn    *websocket.Conn
	service services.IBoardService
	sink    *sink.SessionSink
	direct  chan outbound
}

// outbound is a frame sent to this session only. A non-zero version marks a
// board.init resync: events up to that version are then skipped.
type outbound struct {
	env     Envelope
	version uint64
}

func NewSession(id string, log *slog.Logger, conn *websocket.Conn,
	service services.IBoardService, bufferSize int) *Session {
	return &Session{
		id:      id,
		log:     log.With("session", id),
		conn:    conn,
		service: service,
		sink:    sink.NewSessionSink(bufferSize),
		direct:  make(chan outbound, 8),
	}
}

// Serve joins the board and pumps frames until the peer leaves, the sink
// falls behind or ctx is done.
func (s *Session) Serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	doc := s.service.Join(s.id, s.sink)
	defer s.service.Leave(s.id)
	defer s.sink.Close()

	hello, err := NewEnvelope(EventSessionHello, Hello{SessionID: s.id, Version: doc.Version})
	if err != nil {
		s.log.Error("Failed to encode hello", "error", err)
		return
	}
	board, err := InitEnvelope(doc)
	if err != nil {
		s.log.Error("Failed to encode board", "error", err)
		return
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		s.writePump(ctx, doc.Version, hello, board)
	}()

	s.readPump(ctx)
	cancel()
	wg.Wait()
	s.log.Info("Session disconnected")
}

func (s *Session) readPump(ctx context.Context) {
	defer func() { _ = s.conn.Close() }()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && ctx.Err() == nil {
				s.log.Info("Websocket read failed", "error", err)
			}
			return
		}
		env, err := DecodeEnvelope(raw)
		if err != nil {
			s.reject(ctx, "", err)
			continue
		}
		if err := s.handle(ctx, env); err != nil {
			s.reject(ctx, env.Event, err)
			if stderrors.Is(err, errors.ErrOutcomeUnknown) {
				s.resync(ctx)
			}
		}
	}
}

func (s *Session) handle(ctx context.Context, env Envelope) error {
	switch env.Event {
	case EventStrokeAdd:
		stroke, err := env.Stroke()
		if err != nil {
			return err
		}
		if stroke.Segments == nil {
			return fmt.Errorf("%w: %s without segments", errors.ErrMalformedEvent, env.Event)
		}
		return s.service.AddStroke(ctx, s.id, stroke)
	case EventStrokeRemove:
		key, err := env.Stroke()
		if err != nil {
			return err
		}
		return s.service.RemoveStroke(ctx, s.id, key)
	case EventBoardClear:
		return s.service.ClearAll(ctx, s.id)
	default:
		return fmt.Errorf("%w: %q", errors.ErrUnknownEvent, env.Event)
	}
}

// reject reports a failed request to this session only.
func (s *Session) reject(ctx context.Context, name string, cause error) {
	s.log.Warn("Request rejected", "event", name, "error", cause)
	env, err := NewEnvelope(EventError, ErrorPayload{Event: name, Message: cause.Error()})
	if err != nil {
		return
	}
	s.push(ctx, outbound{env: env})
}

// resync sends the committed board again after a request whose outcome is
// unknown, so the session's mirror cannot keep a change the board lost or
// miss one it applied.
func (s *Session) resync(ctx context.Context) {
	doc := s.service.Snapshot()
	env, err := InitEnvelope(doc)
	if err != nil {
		s.log.Error("Failed to encode board", "error", err)
		return
	}
	s.log.Info("Resynchronizing session", "version", doc.Version)
	s.push(ctx, outbound{env: env, version: doc.Version})
}

func (s *Session) push(ctx context.Context, out outbound) {
	select {
	case s.direct <- out:
	case <-ctx.Done():
	}
}

// writePump sends hello and the board first, then relays committed events.
// Events already contained in the board sent at join time are skipped.
func (s *Session) writePump(ctx context.Context, joinedAt uint64, first ...Envelope) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for _, env := range first {
		if err := s.write(env); err != nil {
			s.log.Info("Failed to send board", "error", err)
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.sink.Done():
			s.log.Warn("Session fell behind, closing connection")
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, errors.ErrSlowConsumer.Error()))
			return
		case evt := <-s.sink.Events():
			if evt.BoardVersion() <= joinedAt {
				continue
			}
			env, err := FromDomainEvent(evt)
			if err != nil {
				s.log.Error("Failed to encode event", "error", err)
				continue
			}
			if err := s.write(env); err != nil {
				s.log.Info("Failed to relay event", "error", err)
				return
			}
		case out := <-s.direct:
			if out.version > joinedAt {
				joinedAt = out.version
			}
			if err := s.write(out.env); err != nil {
				s.log.Info("Failed to send frame", "event", out.env.Event, "error", err)
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Session) write(env Envelope) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(env)
}
