package event

import (
	"draw-lab/domain/drawing"
	"time"
)

// DomainEvent is a committed change of the drawing log.
// Origin is the session that triggered it, Version the board version the
// change produced.
type DomainEvent interface {
	Origin() string
	BoardVersion() uint64
}

type StrokeAdded struct {
	Session string
	Version uint64
	Stroke  drawing.Stroke
	At      time.Time
}

func (e StrokeAdded) Origin() string       { return e.Session }
func (e StrokeAdded) BoardVersion() uint64 { return e.Version }

// StrokeRemoved carries the stroke as it was stored, not the match key sent
// by the requesting session.
type StrokeRemoved struct {
	Session string
	Version uint64
	Stroke  drawing.Stroke
	At      time.Time
}

func (e StrokeRemoved) Origin() string       { return e.Session }
func (e StrokeRemoved) BoardVersion() uint64 { return e.Version }

type BoardCleared struct {
	Session string
	Version uint64
	At      time.Time
}

func (e BoardCleared) Origin() string       { return e.Session }
func (e BoardCleared) BoardVersion() uint64 { return e.Version }
