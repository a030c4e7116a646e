package server

import (
	"context"
	"draw-lab/domain/drawing"
	"draw-lab/infrastructure/grpc/board"
	"draw-lab/infrastructure/storage"
	"draw-lab/runtime"
	"draw-lab/runtime/workers"
	"draw-lab/services"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

func newBoardClient(t *testing.T) (board.BoardServiceClient, services.IBoardService) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)

	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log, 50*time.Millisecond),
		runtime.NewRegistry(), storage.NewBoardRepository(db, log), runtime.Config{
			Board:          drawing.DefaultBoardID,
			BufferSize:     16,
			SinkTimeout:    time.Second,
			RequestTimeout: time.Second,
		})
	done := make(chan struct{})
	go func() {
		orchestrator.Start(context.Background())
		close(done)
	}()
	boardService := services.NewBoardService(log, orchestrator, 0)

	listener := bufconn.Listen(1 << 20)
	grpcServer := grpc.NewServer()
	board.RegisterBoardServiceServer(grpcServer, NewBoardServer(log, boardService, 16))
	go func() { _ = grpcServer.Serve(listener) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		grpcServer.Stop()
		orchestrator.Stop()
		<-done
		_ = db.Close()
	})
	return board.NewBoardServiceClient(conn), boardService
}

func TestBoardServer_Snapshot(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	client, boardService := newBoardClient(t)

	// Given alice drew a stroke
	stroke := drawing.NewStroke("alice", []drawing.Segment{{X1: 1, Y1: 1, X2: 2, Y2: 2, Color: "#123456"}})
	req.NoError(boardService.AddStroke(ctx, "alice", stroke))

	// When an observer asks for the board
	resp, err := client.Snapshot(ctx, &board.SnapshotRequest{})

	// Then it gets the committed stroke
	req.NoError(err)
	req.Equal(string(drawing.DefaultBoardID), resp.Board)
	req.Equal(uint64(1), resp.Version)
	req.Equal([]drawing.Stroke{stroke}, resp.Strokes)
}

func TestBoardServer_Watch(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, boardService := newBoardClient(t)

	// Given an observer watching an empty board
	stream, err := client.Watch(ctx, &board.WatchRequest{})
	req.NoError(err)
	first, err := stream.Recv()
	req.NoError(err)
	req.Equal(board.KindInit, first.Kind)
	req.Empty(first.Strokes)

	// When alice draws then clears
	stroke := drawing.NewStroke("alice", []drawing.Segment{{X2: 9, Y2: 9, Color: "red"}})
	req.NoError(boardService.AddStroke(ctx, "alice", stroke))
	req.NoError(boardService.ClearAll(ctx, "alice"))

	// Then the observer sees both changes in order
	added, err := stream.Recv()
	req.NoError(err)
	req.Equal(board.KindAdd, added.Kind)
	req.Equal(uint64(1), added.Version)
	req.Equal(stroke.ID, added.Strokes[0].ID)

	cleared, err := stream.Recv()
	req.NoError(err)
	req.Equal(board.KindClear, cleared.Kind)
	req.Equal(uint64(2), cleared.Version)
}
