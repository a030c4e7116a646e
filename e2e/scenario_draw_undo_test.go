package e2e

import (
	"context"
	"draw-lab/client"
	"draw-lab/domain/drawing"
	"draw-lab/infrastructure/grpc/board"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type testDrawUndoSuite struct {
	BaseGrpcSuite
}

func TestDrawUndoSuite(t *testing.T) {
	suite.Run(t, &testDrawUndoSuite{})
}

func (s *testDrawUndoSuite) TestDrawThenUndoIsObserved() {
	var before *board.SnapshotResponse

	s.Run("Step 0: Read the current board", func() {
		s.WithBoard("Snapshot before drawing", func(ctx context.Context, c board.BoardServiceClient) {
			var err error
			before, err = c.Snapshot(ctx, &board.SnapshotRequest{})
			s.Require().NoError(err)
		})
	})

	s.Run("Step 1: Draw and undo while an observer watches", func() {
		s.WithBoard("Watch the board", func(ctx context.Context, observer board.BoardServiceClient) {
			stream, err := observer.Watch(ctx, &board.WatchRequest{})
			s.Require().NoError(err)

			first, err := stream.Recv()
			s.Require().NoError(err)
			s.Require().Equal(board.KindInit, first.Kind)

			s.WithReplica("Draw one stroke then undo it", func(ctx context.Context, c *client.Client) {
				r := c.Replica()
				r.Begin()
				r.Extend(drawing.Segment{X1: 10, Y1: 10, X2: 60, Y2: 40, Color: "#1e90ff"})
				r.Extend(drawing.Segment{X1: 60, Y1: 40, X2: 110, Y2: 10, Color: "#1e90ff"})
				stroke, ok := r.Commit()
				s.Require().True(ok)

				added := s.next(stream, board.KindAdd)
				s.Require().Len(added.Strokes, 1)
				s.Require().Equal(stroke.ID, added.Strokes[0].ID)
				s.Require().Equal(r.SessionID(), added.Strokes[0].OwnerID)

				undone, ok := r.Undo()
				s.Require().True(ok)
				removed := s.next(stream, board.KindRemove)
				s.Require().Equal(undone.ID, removed.Strokes[0].ID)
				s.Require().Greater(removed.Version, added.Version)
			})
		})
	})

	s.Run("Step 2: The board version moved forward", func() {
		s.WithBoard("Snapshot after undo", func(ctx context.Context, c board.BoardServiceClient) {
			after, err := c.Snapshot(ctx, &board.SnapshotRequest{})
			s.Require().NoError(err)
			s.Require().GreaterOrEqual(after.Version, before.Version+2)
		})
	})
}

// next skips the events of other sessions until one of the given kind.
func (s *testDrawUndoSuite) next(stream interface {
	Recv() (*board.BoardEvent, error)
}, kind board.Kind) *board.BoardEvent {
	for {
		evt, err := stream.Recv()
		s.Require().NoError(err)
		if evt.Kind == kind {
			return evt
		}
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("E2E_BOARD_URL", "ws://localhost:8080/ws")
	t.Setenv("E2E_DEBUG_JSON", "true")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "ws://localhost:8080/ws", cfg.BoardURL)
	require.True(t, cfg.DebugJSON)
}
