// Package client connects a session replica to a board server over
// websocket.
package client

import (
	"context"
	"draw-lab/domain/drawing"
	"draw-lab/infrastructure/ws"
	"draw-lab/replica"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	outgoingBufferSize = 256
	writeWait          = 5 * time.Second
)

type Client struct {
	log      *slog.Logger
	conn     *websocket.Conn
	replica  *replica.Replica
	outgoing chan ws.Envelope
	done     chan struct{}
	ready    chan struct{}
	once     sync.Once
	closing  sync.Once

	mu      sync.Mutex
	onError func(ws.ErrorPayload)
}

// Dial opens the websocket at url (ws://host:port/ws). The replica is ready
// to draw once Ready is closed.
func Dial(ctx context.Context, url string, log *slog.Logger, opts ...replica.Option) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not connect to board at %s: %w", url, err)
	}
	c := &Client{
		log:      log,
		conn:     conn,
		outgoing: make(chan ws.Envelope, outgoingBufferSize),
		done:     make(chan struct{}),
		ready:    make(chan struct{}),
	}
	c.replica = replica.New(c, opts...)
	return c, nil
}

func (c *Client) Replica() *replica.Replica { return c.replica }

// Ready is closed once the board has been received.
func (c *Client) Ready() <-chan struct{} { return c.ready }

// Done is closed once the connection is gone.
func (c *Client) Done() <-chan struct{} { return c.done }

// OnError registers the callback receiving the requests the server rejected.
func (c *Client) OnError(fn func(ws.ErrorPayload)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = fn
}

// Run pumps frames until ctx is done or the server closes the connection.
func (c *Client) Run(ctx context.Context) error {
	defer c.Close()

	go c.writeLoop()
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-c.done:
		}
	}()

	for {
		var env ws.Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			c.replica.Abort()
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("board connection lost: %w", err)
		}
		if err := c.dispatch(env); err != nil {
			c.log.Warn("Ignoring frame", "event", env.Event, "error", err)
		}
	}
}

func (c *Client) dispatch(env ws.Envelope) error {
	switch env.Event {
	case ws.EventSessionHello:
		hello, err := env.Hello()
		if err != nil {
			return err
		}
		c.replica.SetSessionID(hello.SessionID)
		c.log.Debug("Session assigned", "session", hello.SessionID, "version", hello.Version)
	case ws.EventBoardInit:
		strokes, err := env.Strokes()
		if err != nil {
			return err
		}
		c.replica.OnBootstrap(strokes)
		c.once.Do(func() { close(c.ready) })
	case ws.EventStrokeAdd:
		stroke, err := env.Stroke()
		if err != nil {
			return err
		}
		c.replica.OnRemoteAdd(stroke)
	case ws.EventStrokeRemove:
		stroke, err := env.Stroke()
		if err != nil {
			return err
		}
		c.replica.OnRemoteRemove(stroke)
	case ws.EventBoardClear:
		c.replica.OnClear()
	case ws.EventError:
		payload, err := env.Failure()
		if err != nil {
			return err
		}
		c.log.Warn("Request rejected by board", "event", payload.Event, "message", payload.Message)
		c.mu.Lock()
		fn := c.onError
		c.mu.Unlock()
		if fn != nil {
			fn(payload)
		}
	default:
		c.log.Debug("Unknown frame", "event", env.Event)
	}
	return nil
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case env := <-c.outgoing:
			if err := c.conn.WriteJSON(env); err != nil {
				c.log.Warn("Failed to send frame", "event", env.Event, "error", err)
				c.Close()
				return
			}
		}
	}
}

// Close drops the connection. Frames not yet sent are lost.
func (c *Client) Close() {
	c.closing.Do(func() {
		close(c.done)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		_ = c.conn.Close()
	})
}

func (c *Client) AddStroke(stroke drawing.Stroke) {
	c.send(ws.EventStrokeAdd, stroke)
}

func (c *Client) RemoveStroke(stroke drawing.Stroke) {
	c.send(ws.EventStrokeRemove, stroke)
}

func (c *Client) ClearAll() {
	c.send(ws.EventBoardClear, nil)
}

func (c *Client) send(name string, payload any) {
	env, err := ws.NewEnvelope(name, payload)
	if err != nil {
		c.log.Error("Failed to encode frame", "event", name, "error", err)
		return
	}
	select {
	case c.outgoing <- env:
	case <-c.done:
		c.log.Debug("Connection closed, frame dropped", "event", name)
	}
}
