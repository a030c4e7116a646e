package workers

import (
	"context"
	"draw-lab/contract"
	"draw-lab/domain/drawing"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"time"

	"github.com/shirou/gopsutil/process"
)

type NamedChannel struct {
	Name    string
	Channel any
}

// TelemetryWorker periodically logs the state of the board and of the
// current process.
// Reading len and cap of a channel is non-blocking, so sampling the watched
// channels does not interfere with their owners.
type TelemetryWorker struct {
	log            *slog.Logger
	board          *drawing.Board
	registry       contract.IRegistry
	channels       []NamedChannel
	metricInterval time.Duration
}

func NewTelemetryWorker(log *slog.Logger, board *drawing.Board,
	registry contract.IRegistry, metricInterval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{
		log:            log,
		board:          board,
		registry:       registry,
		metricInterval: metricInterval,
	}
}

// WithChannels adds channels whose fill level is reported on every tick.
func (w *TelemetryWorker) WithChannels(channels ...NamedChannel) *TelemetryWorker {
	w.channels = append(w.channels, channels...)
	return w
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		w.log.Debug("Process metrics unavailable", "error", err)
	}

	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping telemetry")
			return nil
		case <-ticker.C:
			w.report(p)
		}
	}
}

func (w *TelemetryWorker) report(p *process.Process) {
	doc := w.board.Snapshot()
	attrs := []any{
		"board", doc.Board,
		"version", doc.Version,
		"strokes", len(doc.Strokes),
		"segments", doc.Strokes.SegmentCount(),
		"sessions", w.registry.Count(),
	}
	if p != nil {
		if mem, err := p.MemoryInfo(); err == nil {
			attrs = append(attrs, "rss_mb", mem.RSS/1024/1024)
		}
		if cpu, err := p.CPUPercent(); err == nil {
			attrs = append(attrs, "cpu_percent", cpu)
		}
	}
	for _, nc := range w.channels {
		v := reflect.ValueOf(nc.Channel)
		if v.Kind() != reflect.Chan {
			w.log.Error("Provided object is not a channel", "name", nc.Name)
			continue
		}
		attrs = append(attrs, nc.Name, fmt.Sprintf("%d/%d", v.Len(), v.Cap()))
	}
	w.log.Info("Board telemetry", attrs...)
}
