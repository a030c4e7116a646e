package e2e

import (
	"context"
	"draw-lab/client"
	"draw-lab/infrastructure/grpc/board"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

type BaseGrpcSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseGrpcSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.BoardURL == "" || s.Config.BoardGrpcAddr == "" {
		s.T().Skip("E2E_BOARD_URL and E2E_BOARD_GRPC_ADDR must point at a running board")
	}
}

func (s *BaseGrpcSuite) header(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// GrpcConn initializes a gRPC connection with logging, colors, and JSON debugging
func (s *BaseGrpcSuite) GrpcConn(t *testing.T, name string, addr string) *grpc.ClientConn {
	s.header(t, name)

	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
			start := time.Now()
			err := invoker(ctx, method, req, reply, cc, opts...)

			logBuilder := strings.Builder{}
			fmt.Fprintf(&logBuilder, "GRPC %s [%s] in %v", method, status.Code(err), time.Since(start))

			// Log full JSON request/response bodies if E2E_DEBUG_JSON is enabled
			if s.Config.DebugJSON {
				fmt.Fprintln(&logBuilder, "\nREQUEST:")
				fmt.Fprintln(&logBuilder, indent(req))
				if err != nil {
					fmt.Fprintln(&logBuilder, "ERROR:", err)
				} else {
					fmt.Fprintln(&logBuilder, "RESPONSE:")
					fmt.Fprintln(&logBuilder, indent(reply))
				}
			}
			t.Log(logBuilder.String())
			return err
		}),
	)
	s.Require().NoError(err, "Failed to connect to gRPC server at "+addr)
	return conn
}

// WithBoard provides an observer client of the board within a contextual test step
func (s *BaseGrpcSuite) WithBoard(name string, fn func(ctx context.Context, client board.BoardServiceClient)) {
	conn := s.GrpcConn(s.T(), name, s.Config.BoardGrpcAddr)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), s.Config.StepTimeout)
	defer cancel()

	fn(ctx, board.NewBoardServiceClient(conn))
}

// WithReplica joins the board as a drawing session for the duration of fn.
func (s *BaseGrpcSuite) WithReplica(name string, fn func(ctx context.Context, c *client.Client)) {
	s.header(s.T(), name)
	ctx, cancel := context.WithTimeout(context.Background(), s.Config.StepTimeout)
	defer cancel()

	c, err := client.Dial(ctx, s.Config.BoardURL, logs.GetLoggerFromLevel(slog.LevelInfo))
	s.Require().NoError(err, "Failed to join board at "+s.Config.BoardURL)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Run(ctx)
	}()
	defer func() {
		c.Close()
		<-done
	}()

	select {
	case <-c.Ready():
	case <-ctx.Done():
		s.FailNow("Board never sent its initial state")
	}
	fn(ctx, c)
}

func indent(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}
