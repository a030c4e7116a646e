package workers

import (
	"context"
	"draw-lab/mocks"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func runSupervisor(ctx context.Context, sup *Supervisor) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()
	return done
}

func TestSupervisor_RestartsPanickingWorker(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	workerMock := mocks.NewMockWorker(ctrl)

	// Given a worker panicking on every run
	var calls atomic.Int32
	workerMock.EXPECT().Run(gomock.Any()).
		DoAndReturn(func(context.Context) error {
			calls.Add(1)
			panic("boom")
		}).
		AnyTimes()
	sup := NewSupervisor(logs.GetLoggerFromLevel(slog.LevelDebug), 20*time.Millisecond)
	sup.Add(workerMock)

	// When it runs under supervision
	done := runSupervisor(context.Background(), sup)

	// Then it is started again and every restart is counted
	req.Eventually(func() bool { return calls.Load() >= 3 }, time.Second, 10*time.Millisecond)
	req.GreaterOrEqual(sup.Restarts()["MockWorker"], 2)

	sup.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("Supervisor should have stopped")
	}
}

func TestSupervisor_RestartsFailingWorker(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	workerMock := mocks.NewMockWorker(ctrl)

	// Given a worker failing once then finishing
	gomock.InOrder(
		workerMock.EXPECT().Run(gomock.Any()).Return(errors.New("store unreachable")),
		workerMock.EXPECT().Run(gomock.Any()).Return(nil),
	)
	sup := NewSupervisor(slog.Default(), 10*time.Millisecond)
	sup.Add(workerMock)

	// When it runs under supervision
	done := runSupervisor(context.Background(), sup)

	// Then the supervisor returns once the second run succeeded
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("Supervisor should have stopped after worker success")
	}
	req.Equal(map[string]int{"MockWorker": 1}, sup.Restarts())
}

func TestSupervisor_StopOnSuccess(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	workerMock := mocks.NewMockWorker(ctrl)

	// Given a worker running only once
	workerMock.EXPECT().Run(gomock.Any()).Return(nil).Times(1)
	sup := NewSupervisor(slog.Default(), 50*time.Millisecond)
	sup.Add(workerMock)

	// When it runs under supervision
	done := runSupervisor(context.Background(), sup)

	// Then supervisor detected a success and returned without any restart
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		req.Fail("Supervisor should have stopped after worker success")
	}
	req.Empty(sup.Restarts())
}

func TestSupervisor_StopsWithParentContext(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	workerMock := mocks.NewMockWorker(ctrl)

	// Given a running worker blocking until cancelled
	started := make(chan struct{})
	workerMock.EXPECT().Run(gomock.Any()).
		DoAndReturn(func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		})
	sup := NewSupervisor(slog.Default(), 10*time.Millisecond)
	sup.Add(workerMock)
	ctx, cancel := context.WithCancel(context.Background())
	done := runSupervisor(ctx, sup)
	select {
	case <-started:
	case <-time.After(time.Second):
		req.FailNow("Worker was never started")
	}

	// When the parent context is cancelled
	cancel()

	// Then the supervisor stops without counting a restart
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("Supervisor should have stopped with its parent")
	}
	req.Empty(sup.Restarts())
}
