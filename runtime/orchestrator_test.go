package runtime_test

import (
	"context"
	"draw-lab/domain/drawing"
	"draw-lab/domain/event"
	"draw-lab/errors"
	"draw-lab/infrastructure/storage"
	"draw-lab/runtime"
	"draw-lab/runtime/workers"
	"draw-lab/sink"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func config() runtime.Config {
	return runtime.Config{
		Board:          drawing.DefaultBoardID,
		BufferSize:     16,
		SinkTimeout:    time.Second,
		RequestTimeout: time.Second,
	}
}

func newRepository(t *testing.T, log *slog.Logger) storage.IBoardRepository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return storage.NewBoardRepository(db, log)
}

func startOrchestrator(t *testing.T, repository storage.IBoardRepository) *runtime.Orchestrator {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log, 50*time.Millisecond),
		runtime.NewRegistry(), repository, config())
	require.NoError(t, orchestrator.Load(context.Background()))

	done := make(chan struct{})
	go func() {
		orchestrator.Start(context.Background())
		close(done)
	}()
	t.Cleanup(func() {
		orchestrator.Stop()
		<-done
	})
	return orchestrator
}

func receive(t *testing.T, s *sink.SessionSink) event.DomainEvent {
	t.Helper()
	select {
	case evt := <-s.Events():
		return evt
	case <-time.After(time.Second):
		require.Fail(t, "No event received")
		return nil
	}
}

func TestOrchestrator_BroadcastsToOtherSessions(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	orchestrator := startOrchestrator(t, newRepository(t, log))

	// Given two sessions joined an empty board
	aliceSink, bobSink := sink.NewSessionSink(8), sink.NewSessionSink(8)
	req.Equal(uint64(0), orchestrator.Bootstrap("alice", aliceSink).Version)
	req.Equal(uint64(0), orchestrator.Bootstrap("bob", bobSink).Version)

	// When alice draws a stroke
	stroke := drawing.NewStroke("alice", []drawing.Segment{{X1: 0, Y1: 0, X2: 10, Y2: 10, Color: "#ff0000"}})
	req.NoError(orchestrator.AddStroke(ctx, "alice", stroke))

	// Then bob receives it and alice does not
	added := receive(t, bobSink).(event.StrokeAdded)
	req.Equal(stroke.ID, added.Stroke.ID)
	req.Equal(uint64(1), added.BoardVersion())
	req.Empty(aliceSink.Events())

	// When bob clears the board
	req.NoError(orchestrator.ClearAll(ctx, "bob"))

	// Then alice is told and the board is empty
	req.IsType(event.BoardCleared{}, receive(t, aliceSink))
	req.Empty(orchestrator.Snapshot().Strokes)
}

func TestOrchestrator_LateJoinerSeesCommittedStrokes(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	orchestrator := startOrchestrator(t, newRepository(t, log))

	// Given alice drew two strokes
	for i := range 2 {
		stroke := drawing.NewStroke("alice", []drawing.Segment{{X1: float64(i), Y1: 0, X2: 1, Y2: 1, Color: "#000"}})
		req.NoError(orchestrator.AddStroke(ctx, "alice", stroke))
	}

	// When carol joins
	doc := orchestrator.Bootstrap("carol", sink.NewSessionSink(8))

	// Then she starts from both strokes
	req.Equal(uint64(2), doc.Version)
	req.Len(doc.Strokes, 2)

	// When she leaves, nothing is delivered to her anymore
	orchestrator.Leave("carol")
}

func TestOrchestrator_LoadRehydratesFromStore(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	repository := newRepository(t, log)

	// Given a board persisted by a previous run
	stroke := drawing.NewStroke("alice", []drawing.Segment{{X1: 1, Y1: 2, X2: 3, Y2: 4, Color: "#00ff00"}})
	req.NoError(repository.Append(ctx, drawing.DefaultBoardID, 1, stroke))

	// When a new orchestrator starts on the same store
	orchestrator := startOrchestrator(t, repository)

	// Then the board is restored and further writes continue the version chain
	req.Equal(uint64(1), orchestrator.Snapshot().Version)
	req.NoError(orchestrator.RemoveStroke(ctx, "alice", stroke))
	req.Equal(uint64(2), orchestrator.Snapshot().Version)
	req.Empty(orchestrator.Snapshot().Strokes)
}

func TestCoordinator_UnavailableWithoutWriter(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	board := drawing.NewBoard(drawing.NewDocument(drawing.DefaultBoardID))

	// Given nobody consumes the command channel
	coordinator := runtime.NewCoordinator(log, board, runtime.NewRegistry(),
		make(chan workers.BoardRequest), 20*time.Millisecond)

	// When a session draws
	err := coordinator.AddStroke(context.Background(), "alice",
		drawing.NewStroke("alice", []drawing.Segment{{X2: 1, Color: "#000"}}))

	// Then it is told the board is unavailable, and that nothing was queued
	req.ErrorIs(err, errors.ErrCoordinatorUnavailable)
	req.NotErrorIs(err, errors.ErrOutcomeUnknown)
}

func TestCoordinator_QueuedButUnansweredIsUnknown(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	board := drawing.NewBoard(drawing.NewDocument(drawing.DefaultBoardID))

	// Given a command channel accepting the request but no writer answering it
	commands := make(chan workers.BoardRequest, 1)
	coordinator := runtime.NewCoordinator(log, board, runtime.NewRegistry(), commands, 20*time.Millisecond)

	// When a session draws
	err := coordinator.AddStroke(context.Background(), "alice",
		drawing.NewStroke("alice", []drawing.Segment{{X2: 1, Color: "#000"}}))

	// Then the session learns the request may still be applied
	req.ErrorIs(err, errors.ErrCoordinatorUnavailable)
	req.ErrorIs(err, errors.ErrOutcomeUnknown)
	req.Len(commands, 1)
}
