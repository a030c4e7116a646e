package runtime_test

import (
	"context"
	"draw-lab/domain/drawing"
	"draw-lab/mocks"
	"draw-lab/sink"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestOrchestrator_LoadTest(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	// Given a store taking a little time on each write, so the disk does not hide the writer
	repository := mocks.NewMockIBoardRepository(ctrl)
	repository.EXPECT().Load(gomock.Any(), drawing.DefaultBoardID).
		Return(drawing.Document{Board: drawing.DefaultBoardID}, nil)
	repository.EXPECT().Append(gomock.Any(), drawing.DefaultBoardID, gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, drawing.BoardID, uint64, drawing.Stroke) error {
			time.Sleep(200 * time.Microsecond)
			return nil
		}).AnyTimes()
	orchestrator := startOrchestrator(t, repository)

	numClients := 10
	strokesPerClient := 30
	total := numClients * strokesPerClient

	// Given an observer large enough to hold every event
	observer := sink.NewSessionSink(total)
	orchestrator.Bootstrap("observer", observer)

	// When every client draws concurrently
	var successCount, failureCount atomic.Uint64
	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < numClients; i++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			session := fmt.Sprintf("client-%d", clientID)
			for j := 0; j < strokesPerClient; j++ {
				stroke := drawing.NewStroke(session, []drawing.Segment{
					{X1: float64(j), Y1: 0, X2: float64(j), Y2: 1, Color: "black"},
				})
				if err := orchestrator.AddStroke(ctx, session, stroke); err != nil {
					failureCount.Add(1)
				} else {
					successCount.Add(1)
				}
			}
		}(i)
	}
	wg.Wait()
	t.Logf("%d strokes in %v (%.0f strokes/sec)", successCount.Load(), time.Since(start),
		float64(successCount.Load())/time.Since(start).Seconds())

	// Then every stroke was committed exactly once
	req.Zero(failureCount.Load())
	doc := orchestrator.Snapshot()
	req.Equal(uint64(total), doc.Version)
	req.Len(doc.Strokes, total)

	// Then the observer saw every version in commit order
	for version := uint64(1); version <= uint64(total); version++ {
		req.Equal(version, receive(t, observer).BoardVersion())
	}
}
