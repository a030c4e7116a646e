// Package runtime wires the board writer, the event fanout and the session
// registry together. It orchestrates the system without containing drawing
// rules.
package runtime

import (
	"context"
	"draw-lab/contract"
	"draw-lab/domain/drawing"
	"draw-lab/domain/event"
	"draw-lab/infrastructure/storage"
	"draw-lab/runtime/workers"
	"fmt"
	"log/slog"
	"time"
)

type Config struct {
	Board          drawing.BoardID
	BufferSize     int
	SinkTimeout    time.Duration
	RequestTimeout time.Duration
	MetricInterval time.Duration
}

type Orchestrator struct {
	log        *slog.Logger
	config     Config
	supervisor contract.ISupervisor
	registry   contract.IRegistry
	repository storage.IBoardRepository
	board      *drawing.Board
	commands   chan workers.BoardRequest
	events     chan event.DomainEvent
	*Coordinator
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, registry contract.IRegistry,
	repository storage.IBoardRepository, config Config) *Orchestrator {
	board := drawing.NewBoard(drawing.NewDocument(config.Board))
	commands := make(chan workers.BoardRequest, config.BufferSize)
	return &Orchestrator{
		log:         log,
		config:      config,
		supervisor:  supervisor,
		registry:    registry,
		repository:  repository,
		board:       board,
		commands:    commands,
		events:      make(chan event.DomainEvent, config.BufferSize),
		Coordinator: NewCoordinator(log, board, registry, commands, config.RequestTimeout),
	}
}

// Load rehydrates the board from the store. It must run before Start.
func (o *Orchestrator) Load(ctx context.Context) error {
	doc, err := o.repository.Load(ctx, o.config.Board)
	if err != nil {
		return fmt.Errorf("load board %s: %w", o.config.Board, err)
	}
	o.board.Commit(doc)
	o.log.Info("Board loaded", "board", doc.Board, "version", doc.Version, "strokes", len(doc.Strokes))
	return nil
}

func (o *Orchestrator) Board() *drawing.Board {
	return o.board
}

// Start registers every worker to the supervisor and blocks until they
// stopped.
func (o *Orchestrator) Start(ctx context.Context) {
	o.supervisor.Add(
		workers.NewBoardWorker(o.board, o.repository, o.commands, o.events, o.log),
		workers.NewEventFanout(o.log, o.registry, o.events, o.config.SinkTimeout),
	)
	if o.config.MetricInterval > 0 {
		o.supervisor.Add(workers.NewTelemetryWorker(o.log, o.board, o.registry, o.config.MetricInterval).
			WithChannels(
				workers.NamedChannel{Name: "commands", Channel: o.commands},
				workers.NamedChannel{Name: "events", Channel: o.events},
			))
	}
	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
}

// Stop initiates a graceful shutdown: the supervision context is cancelled
// and Start returns once every worker is done.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
