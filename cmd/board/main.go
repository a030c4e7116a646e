package main

import (
	"context"
	"draw-lab/domain/drawing"
	"draw-lab/infrastructure/discovery"
	"draw-lab/infrastructure/grpc/board"
	"draw-lab/infrastructure/grpc/server"
	"draw-lab/infrastructure/storage"
	"draw-lab/infrastructure/ws"
	"draw-lab/internal"
	"draw-lab/runtime"
	"draw-lab/runtime/workers"
	"draw-lab/services"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const shutdownTimeout = 5 * time.Second

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Board server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Every defer runs before main exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Durable store
	repository, closer, err := storage.OpenRepository(ctx, storage.Options{
		Driver:     config.StoreDriver,
		BadgerPath: config.BadgerFilepath,
		SQLitePath: config.SQLiteFilepath,
	}, log)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		log.Info("Closing store...", "driver", config.StoreDriver)
		_ = closer.Close()
	}()

	// 4. Setup Supervision & Orchestration
	sup := workers.NewSupervisor(log, config.RestartInterval)
	registry := runtime.NewRegistry()
	orchestrator := runtime.NewOrchestrator(log, sup, registry, repository, runtime.Config{
		Board:          drawing.BoardID(config.BoardID),
		BufferSize:     config.BufferSize,
		SinkTimeout:    config.SinkTimeout,
		RequestTimeout: config.RequestTimeout,
		MetricInterval: config.MetricInterval,
	})
	if err := orchestrator.Load(ctx); err != nil {
		return exitRuntime, err
	}
	boardService := services.NewBoardService(log, orchestrator, config.MaxSegments)

	// 5. Listeners, bound before anything runs
	l, err := openListeners(config.Host, config.Port, config.GrpcPort)
	if err != nil {
		return exitRuntime, err
	}
	defer l.Close()

	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		orchestrator.Start(ctx)
	}()

	errChan := make(chan error, 3)

	// 6. Websocket & HTTP
	httpServer := &http.Server{
		Addr:              config.Addr(),
		Handler:           ws.NewRouter(log, ws.NewHandler(log, boardService, config.ConnectionBufferSize)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("Starting board server", "address", config.Addr(), "board", config.BoardID, "store", config.StoreDriver)
		if err := httpServer.Serve(l.http); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Observer gRPC service
	var grpcServer *grpc.Server
	if l.grpc != nil {
		grpcServer = grpc.NewServer()
		board.RegisterBoardServiceServer(grpcServer, server.NewBoardServer(log, boardService, config.ConnectionBufferSize))
		go func() {
			log.Info("Starting gRPC observer service", "address", l.grpc.Addr().String())
			if err := grpcServer.Serve(l.grpc); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errChan <- fmt.Errorf("gRPC server error: %w", err)
			}
		}()
	}

	// 8. Debug inspector
	if config.DebugPort > 0 && log.Enabled(ctx, slog.LevelDebug) {
		stats := func() map[string]any {
			return map[string]any{
				"Sessions": registry.Count(),
				"Restarts": sup.Restarts(),
				"Time":     time.Now().Format(time.RFC822),
			}
		}
		debugServer := internal.NewDebugServer(log, config.DebugPort, "/inspect", boardService.Snapshot, stats)
		log.Info("Board inspector available", "url", fmt.Sprintf("http://localhost:%d/inspect", config.DebugPort))
		go func() {
			if err := debugServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Debug server stopped", "error", err)
			}
		}()
		defer func() { _ = debugServer.Close() }()
	}

	// 9. LAN advertisement
	if config.MDNSEnabled {
		mdnsServer, err := discovery.Advertise(config.Port, "board="+config.BoardID)
		if err != nil {
			log.Warn("mDNS advertisement disabled", "error", err)
		} else {
			log.Info("Board advertised on the local network", "service", discovery.ServiceType)
			defer func() { _ = mdnsServer.Shutdown() }()
		}
	}

	// 10. Wait for Stop or Error
	code := exitOK
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err = <-errChan:
		log.Error("Server failure, shutting down", "error", err)
		code = exitRuntime
	}

	// 11. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	if grpcServer != nil {
		grpcServer.Stop()
	}
	orchestrator.Stop()
	<-engineDone
	log.Info("Program stopped cleanly")

	return code, err
}
