package workers

import (
	"context"
	"draw-lab/contract"
	"draw-lab/domain/drawing"
	"draw-lab/domain/event"
	"draw-lab/errors"
	"draw-lab/infrastructure/storage"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

var _ contract.Worker = (*BoardWorker)(nil)

// BoardRequest is a mutation waiting for the board writer.
// Reply is buffered so the writer never blocks on an impatient caller.
type BoardRequest struct {
	Command drawing.Command
	Reply   chan error
}

func NewBoardRequest(cmd drawing.Command) BoardRequest {
	return BoardRequest{Command: cmd, Reply: make(chan error, 1)}
}

// BoardWorker is the single writer of the drawing log.
// Requests are applied one at a time in arrival order: persisted first,
// committed to the in-memory board next, and only then announced.
// A request whose persistence fails is answered with the error and never
// announced.
type BoardWorker struct {
	board      *drawing.Board
	repository storage.IBoardRepository
	commands   chan BoardRequest
	events     chan event.DomainEvent
	log        *slog.Logger
}

func NewBoardWorker(board *drawing.Board, repository storage.IBoardRepository,
	commands chan BoardRequest, events chan event.DomainEvent, log *slog.Logger) *BoardWorker {
	return &BoardWorker{
		board:      board,
		repository: repository,
		commands:   commands,
		events:     events,
		log:        log,
	}
}

func (w *BoardWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping board worker")
			return ctx.Err()
		case req, ok := <-w.commands:
			if !ok {
				w.log.Debug("Board command channel is closed")
				return nil
			}
			req.Reply <- w.Apply(ctx, req.Command)
		}
	}
}

// Apply runs one command to completion.
func (w *BoardWorker) Apply(ctx context.Context, cmd drawing.Command) error {
	var (
		evt event.DomainEvent
		err error
	)
	switch c := cmd.(type) {
	case drawing.AddStrokeCommand:
		evt, err = w.addStroke(ctx, c)
	case drawing.RemoveStrokeCommand:
		evt, err = w.removeStroke(ctx, c)
	case drawing.ClearBoardCommand:
		evt, err = w.clear(ctx, c)
	default:
		return fmt.Errorf("%w: %T", errors.ErrUnknownEvent, cmd)
	}
	if err != nil {
		if stderrors.Is(err, errors.ErrVersionConflict) {
			w.rehydrate(ctx)
		}
		return err
	}
	if evt == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case w.events <- evt:
		return nil
	}
}

func (w *BoardWorker) addStroke(ctx context.Context, cmd drawing.AddStrokeCommand) (event.DomainEvent, error) {
	stroke := cmd.Stroke.Clone()
	if stroke.IsEmpty() {
		w.log.Debug("Ignoring empty stroke", "session", cmd.Session)
		return nil, nil
	}
	stroke.OwnerID = cmd.Session
	if !stroke.HasID() {
		stroke.ID = uuid.NewString()
	}

	doc := w.board.Snapshot()
	if doc.Strokes.Contains(stroke.ID) {
		w.log.Debug("Stroke already on the board", "session", cmd.Session, "stroke", stroke.ID)
		return nil, nil
	}

	version := doc.Version + 1
	if err := w.repository.Append(ctx, doc.Board, version, stroke); err != nil {
		return nil, fmt.Errorf("%w: append stroke %s: %w", errors.ErrPersistenceFailed, stroke.ID, err)
	}
	w.board.Commit(drawing.Document{Board: doc.Board, Version: version, Strokes: doc.Strokes.Append(stroke)})
	w.log.Debug("Stroke added", "session", cmd.Session, "stroke", stroke.ID, "version", version)

	return event.StrokeAdded{Session: cmd.Session, Version: version, Stroke: stroke, At: time.Now().UTC()}, nil
}

// removeStroke only ever targets the requesting session's own strokes: the
// owner of the match key is forced to the session.
func (w *BoardWorker) removeStroke(ctx context.Context, cmd drawing.RemoveStrokeCommand) (event.DomainEvent, error) {
	key := cmd.Stroke
	key.OwnerID = cmd.Session

	doc := w.board.Snapshot()
	i, ok := doc.Strokes.LastMatch(key)
	if !ok {
		w.log.Debug("No stroke to remove", "session", cmd.Session, "fingerprint", key.Fingerprint())
		return nil, nil
	}
	matched := doc.Strokes[i]
	if matched.OwnerID != cmd.Session {
		w.log.Warn("Refusing to remove a stroke of another session",
			"session", cmd.Session, "owner", matched.OwnerID, "stroke", matched.ID)
		return nil, nil
	}

	version := doc.Version + 1
	if err := w.repository.Remove(ctx, doc.Board, version, matched.ID); err != nil {
		return nil, fmt.Errorf("%w: remove stroke %s: %w", errors.ErrPersistenceFailed, matched.ID, err)
	}
	w.board.Commit(drawing.Document{Board: doc.Board, Version: version, Strokes: doc.Strokes.RemoveAt(i)})
	w.log.Debug("Stroke removed", "session", cmd.Session, "stroke", matched.ID, "version", version)

	return event.StrokeRemoved{Session: cmd.Session, Version: version, Stroke: matched, At: time.Now().UTC()}, nil
}

func (w *BoardWorker) clear(ctx context.Context, cmd drawing.ClearBoardCommand) (event.DomainEvent, error) {
	doc := w.board.Snapshot()
	cleared := drawing.Document{Board: doc.Board, Version: doc.Version + 1, Strokes: drawing.Log{}}
	if err := w.repository.Replace(ctx, cleared); err != nil {
		return nil, fmt.Errorf("%w: clear board %s: %w", errors.ErrPersistenceFailed, doc.Board, err)
	}
	w.board.Commit(cleared)
	w.log.Info("Board cleared", "session", cmd.Session, "version", cleared.Version, "strokes", len(doc.Strokes))

	return event.BoardCleared{Session: cmd.Session, Version: cleared.Version, At: time.Now().UTC()}, nil
}

// rehydrate realigns the in-memory board on the store after another writer
// or an interrupted request moved the stored version.
func (w *BoardWorker) rehydrate(ctx context.Context) {
	doc, err := w.repository.Load(ctx, w.board.ID())
	if err != nil {
		w.log.Error("Failed to reload board after version conflict", "error", err)
		return
	}
	w.board.Commit(doc)
	w.log.Warn("Board reloaded from store", "board", doc.Board, "version", doc.Version, "strokes", len(doc.Strokes))
}
