package server

import (
	"context"
	"draw-lab/domain/drawing"
	"draw-lab/domain/event"
	"draw-lab/errors"
	"draw-lab/infrastructure/grpc/board"
	"draw-lab/services"
	"draw-lab/sink"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc"
)

// BoardServer exposes the board to read-only observers.
type BoardServer struct {
	board.UnimplementedBoardServiceServer
	boardService         services.IBoardService
	connectionBufferSize int
	log                  *slog.Logger
}

func NewBoardServer(log *slog.Logger, boardService services.IBoardService, connectionBufferSize int) *BoardServer {
	return &BoardServer{boardService: boardService, connectionBufferSize: connectionBufferSize, log: log}
}

func (s *BoardServer) Snapshot(_ context.Context, _ *board.SnapshotRequest) (*board.SnapshotResponse, error) {
	doc := s.boardService.Snapshot()
	return &board.SnapshotResponse{
		Board:   string(doc.Board),
		Version: doc.Version,
		Strokes: strokes(doc.Strokes),
	}, nil
}

// Watch streams the whole board first, then every committed change.
// An observer registers like a session but never draws, so no event is ever
// withheld from it.
func (s *BoardServer) Watch(_ *board.WatchRequest, stream grpc.ServerStreamingServer[board.BoardEvent]) error {
	observerID := "observer-" + uuid.NewString()
	sessionSink := sink.NewSessionSink(s.connectionBufferSize)
	doc := s.boardService.Join(observerID, sessionSink)
	defer s.boardService.Leave(observerID)
	defer sessionSink.Close()

	first := board.BoardEvent{Kind: board.KindInit, Version: doc.Version, Strokes: strokes(doc.Strokes)}
	if err := stream.Send(&first); err != nil {
		return err
	}

	for {
		select {
		case <-stream.Context().Done():
			s.log.Info("Observer disconnected", "observer", observerID)
			return nil
		case <-sessionSink.Done():
			s.log.Warn("Observer fell behind", "observer", observerID)
			return errors.MapToGRPCError(errors.ErrSlowConsumer)
		case evt := <-sessionSink.Events():
			if evt.BoardVersion() <= doc.Version {
				continue
			}
			if err := stream.Send(toBoardEvent(evt)); err != nil {
				s.log.Error("Failed to push event to stream", "observer", observerID, "error", err)
				return err
			}
		}
	}
}

func toBoardEvent(evt event.DomainEvent) *board.BoardEvent {
	switch e := evt.(type) {
	case event.StrokeAdded:
		return &board.BoardEvent{Kind: board.KindAdd, Version: e.Version, Strokes: []drawing.Stroke{e.Stroke}}
	case event.StrokeRemoved:
		return &board.BoardEvent{Kind: board.KindRemove, Version: e.Version, Strokes: []drawing.Stroke{e.Stroke}}
	default:
		return &board.BoardEvent{Kind: board.KindClear, Version: evt.BoardVersion()}
	}
}

func strokes(l drawing.Log) []drawing.Stroke {
	if l == nil {
		return []drawing.Stroke{}
	}
	return l
}
