// Package ws carries the drawing board over websocket connections.
// Frames are JSON envelopes {"event": name, "data": payload}.
package ws

import (
	"bytes"
	"draw-lab/domain/drawing"
	"draw-lab/domain/event"
	"draw-lab/errors"
	"encoding/json"
	"fmt"
)

const (
	EventStrokeAdd    = "stroke.add"
	EventStrokeRemove = "stroke.remove"
	EventBoardClear   = "board.clear"
	EventBoardInit    = "board.init"
	EventSessionHello = "session.hello"
	EventError        = "error"
)

type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Hello is the first frame of every connection. SessionID is the owner id
// the server stamps on the strokes of this connection.
type Hello struct {
	SessionID string `json:"sessionId"`
	Version   uint64 `json:"version"`
}

// ErrorPayload is only ever sent to the session whose request failed.
type ErrorPayload struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

// BoardView is the JSON snapshot served over HTTP.
type BoardView struct {
	Version uint64           `json:"version"`
	Strokes []drawing.Stroke `json:"strokes"`
}

func NewEnvelope(name string, payload any) (Envelope, error) {
	if payload == nil {
		return Envelope{Event: name}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s: %w", name, err)
	}
	return Envelope{Event: name, Data: data}, nil
}

func DecodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", errors.ErrMalformedEvent, err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("%w: missing event name", errors.ErrMalformedEvent)
	}
	return env, nil
}

// Stroke decodes a stroke or a removal key. A key needs at least an id or a
// segments field; an explicit empty segments list is still accepted.
func (e Envelope) Stroke() (drawing.Stroke, error) {
	var stroke drawing.Stroke
	if err := e.decode(&stroke); err != nil {
		return drawing.Stroke{}, err
	}
	if stroke.Segments == nil && !stroke.HasID() {
		return drawing.Stroke{}, fmt.Errorf("%w: %s needs an id or segments", errors.ErrMalformedEvent, e.Event)
	}
	return stroke, nil
}

func (e Envelope) Strokes() ([]drawing.Stroke, error) {
	strokes := []drawing.Stroke{}
	if len(e.Data) == 0 || bytes.Equal(bytes.TrimSpace(e.Data), []byte("null")) {
		return strokes, nil
	}
	if err := e.decode(&strokes); err != nil {
		return nil, err
	}
	return strokes, nil
}

func (e Envelope) Hello() (Hello, error) {
	var hello Hello
	err := e.decode(&hello)
	return hello, err
}

func (e Envelope) Failure() (ErrorPayload, error) {
	var payload ErrorPayload
	err := e.decode(&payload)
	return payload, err
}

func (e Envelope) decode(v any) error {
	if len(e.Data) == 0 || bytes.Equal(bytes.TrimSpace(e.Data), []byte("null")) {
		return fmt.Errorf("%w: %s without data", errors.ErrMalformedEvent, e.Event)
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", errors.ErrMalformedEvent, e.Event, err)
	}
	return nil
}

// FromDomainEvent renders a committed board event as the frame relayed to
// other sessions.
func FromDomainEvent(evt event.DomainEvent) (Envelope, error) {
	switch e := evt.(type) {
	case event.StrokeAdded:
		return NewEnvelope(EventStrokeAdd, e.Stroke)
	case event.StrokeRemoved:
		return NewEnvelope(EventStrokeRemove, e.Stroke)
	case event.BoardCleared:
		return NewEnvelope(EventBoardClear, nil)
	default:
		return Envelope{}, fmt.Errorf("%w: %T", errors.ErrUnknownEvent, evt)
	}
}

func InitEnvelope(doc drawing.Document) (Envelope, error) {
	strokes := []drawing.Stroke(doc.Strokes)
	if strokes == nil {
		strokes = []drawing.Stroke{}
	}
	return NewEnvelope(EventBoardInit, strokes)
}
