package runtime

import (
	"context"
	"draw-lab/contract"
	"draw-lab/domain/drawing"
	"draw-lab/errors"
	"draw-lab/runtime/workers"
	"fmt"
	"log/slog"
	"time"
)

// Coordinator is the entry point of every session-facing operation.
// Mutations are handed to the board writer and awaited; reads are served
// from the committed board directly.
type Coordinator struct {
	log            *slog.Logger
	board          *drawing.Board
	registry       contract.IRegistry
	commands       chan<- workers.BoardRequest
	requestTimeout time.Duration
}

func NewCoordinator(log *slog.Logger, board *drawing.Board, registry contract.IRegistry,
	commands chan<- workers.BoardRequest, requestTimeout time.Duration) *Coordinator {
	return &Coordinator{
		log:            log,
		board:          board,
		registry:       registry,
		commands:       commands,
		requestTimeout: requestTimeout,
	}
}

func (c *Coordinator) AddStroke(ctx context.Context, sessionID string, stroke drawing.Stroke) error {
	return c.dispatch(ctx, drawing.AddStrokeCommand{Session: sessionID, Stroke: stroke})
}

// RemoveStroke removes the newest stroke of sessionID matching key.
// No match is not an error.
func (c *Coordinator) RemoveStroke(ctx context.Context, sessionID string, key drawing.Stroke) error {
	return c.dispatch(ctx, drawing.RemoveStrokeCommand{Session: sessionID, Stroke: key})
}

func (c *Coordinator) ClearAll(ctx context.Context, sessionID string) error {
	return c.dispatch(ctx, drawing.ClearBoardCommand{Session: sessionID})
}

// Bootstrap registers sink for sessionID and returns the document the
// session starts from.
// The sink is subscribed before the snapshot is taken: every event committed
// after the snapshot reaches the sink, and events already contained in the
// snapshot carry a version lower or equal to the returned one.
func (c *Coordinator) Bootstrap(sessionID string, sink contract.EventSink) drawing.Document {
	c.registry.Subscribe(sessionID, sink)
	doc := c.board.Snapshot()
	c.log.Info("Session joined", "session", sessionID, "version", doc.Version, "strokes", len(doc.Strokes))
	return doc
}

func (c *Coordinator) Leave(sessionID string) {
	c.registry.Unsubscribe(sessionID)
	c.log.Info("Session left", "session", sessionID)
}

func (c *Coordinator) Snapshot() drawing.Document {
	return c.board.Snapshot()
}

// dispatch waits for the board writer to apply cmd, at most requestTimeout.
// A request abandoned after being queued may still be applied: the error then
// also wraps ErrOutcomeUnknown so the caller can resynchronize.
func (c *Coordinator) dispatch(ctx context.Context, cmd drawing.Command) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	request := workers.NewBoardRequest(cmd)
	select {
	case c.commands <- request:
	case <-ctx.Done():
		return fmt.Errorf("%w: %T from %s not queued: %w", errors.ErrCoordinatorUnavailable, cmd, cmd.SessionID(), ctx.Err())
	}
	select {
	case err := <-request.Reply:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: %w: %T from %s not answered: %w",
			errors.ErrCoordinatorUnavailable, errors.ErrOutcomeUnknown, cmd, cmd.SessionID(), ctx.Err())
	}
}
