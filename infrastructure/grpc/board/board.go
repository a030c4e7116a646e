// Package board declares the read-only BoardService used by observers.
package board

import (
	"context"
	"draw-lab/domain/drawing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ServiceName            = "drawlab.board.v1.BoardService"
	SnapshotFullMethodName = "/" + ServiceName + "/Snapshot"
	WatchFullMethodName    = "/" + ServiceName + "/Watch"
)

type Kind string

const (
	KindInit   Kind = "init"
	KindAdd    Kind = "add"
	KindRemove Kind = "remove"
	KindClear  Kind = "clear"
)

type SnapshotRequest struct{}

type SnapshotResponse struct {
	Board   string           `json:"board"`
	Version uint64           `json:"version"`
	Strokes []drawing.Stroke `json:"strokes"`
}

type WatchRequest struct{}

// BoardEvent is one frame of a Watch stream. Init carries the whole board,
// add and remove a single stroke, clear none.
type BoardEvent struct {
	Kind    Kind             `json:"kind"`
	Version uint64           `json:"version"`
	Strokes []drawing.Stroke `json:"strokes,omitempty"`
}

type BoardServiceServer interface {
	Snapshot(context.Context, *SnapshotRequest) (*SnapshotResponse, error)
	Watch(*WatchRequest, grpc.ServerStreamingServer[BoardEvent]) error
}

type UnimplementedBoardServiceServer struct{}

func (UnimplementedBoardServiceServer) Snapshot(context.Context, *SnapshotRequest) (*SnapshotResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Snapshot not implemented")
}

func (UnimplementedBoardServiceServer) Watch(*WatchRequest, grpc.ServerStreamingServer[BoardEvent]) error {
	return status.Error(codes.Unimplemented, "method Watch not implemented")
}

func RegisterBoardServiceServer(s grpc.ServiceRegistrar, srv BoardServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func snapshotHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SnapshotRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BoardServiceServer).Snapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SnapshotFullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BoardServiceServer).Snapshot(ctx, req.(*SnapshotRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(WatchRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(BoardServiceServer).Watch(in, &grpc.GenericServerStream[WatchRequest, BoardEvent]{ServerStream: stream})
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BoardServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Snapshot", Handler: snapshotHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Watch", Handler: watchHandler, ServerStreams: true},
	},
	Metadata: "drawlab/board/v1",
}

type BoardServiceClient interface {
	Snapshot(ctx context.Context, in *SnapshotRequest, opts ...grpc.CallOption) (*SnapshotResponse, error)
	Watch(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[BoardEvent], error)
}

type boardServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBoardServiceClient(cc grpc.ClientConnInterface) BoardServiceClient {
	return &boardServiceClient{cc: cc}
}

func (c *boardServiceClient) Snapshot(ctx context.Context, in *SnapshotRequest, opts ...grpc.CallOption) (*SnapshotResponse, error) {
	out := new(SnapshotResponse)
	if err := c.cc.Invoke(ctx, SnapshotFullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *boardServiceClient) Watch(ctx context.Context, in *WatchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[BoardEvent], error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], WatchFullMethodName, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[WatchRequest, BoardEvent]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}
