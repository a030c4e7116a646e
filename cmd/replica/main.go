// Command replica is a terminal client of a board server. Strokes are typed
// as point lists and mirrored live with every other session.
package main

import (
	"bufio"
	"context"
	"draw-lab/client"
	"draw-lab/domain/drawing"
	"draw-lab/infrastructure/discovery"
	"draw-lab/infrastructure/ws"
	"draw-lab/replica"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const (
	discoveryTimeout = 3 * time.Second
	readyTimeout     = 5 * time.Second
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Replica terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	_ = godotenv.Load()
	config, err := LoadConfig()
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)
	out := newPrinter(os.Stdout, config.Colours)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	url := config.URL
	if config.Discover {
		found, err := discovery.First(discoveryTimeout)
		if err != nil {
			return exitRuntime, err
		}
		url = "ws://" + found + "/ws"
		out.info("Found board at " + found)
	}

	c, err := client.Dial(ctx, url, log,
		replica.WithCapacity(config.UndoCapacity),
		replica.WithRenderer(out))
	if err != nil {
		return exitRuntime, err
	}
	c.OnError(func(p ws.ErrorPayload) {
		out.failure(fmt.Sprintf("%s rejected: %s", p.Event, p.Message))
	})

	errChan := make(chan error, 1)
	go func() { errChan <- c.Run(ctx) }()

	select {
	case <-c.Ready():
	case err := <-errChan:
		return exitRuntime, err
	case <-time.After(readyTimeout):
		c.Close()
		return exitRuntime, fmt.Errorf("board at %s did not answer within %s", url, readyTimeout)
	}
	out.info(fmt.Sprintf("Joined as %s, type help for commands", c.Replica().SessionID()))

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			c.Close()
			return exitOK, nil
		case err := <-errChan:
			if err != nil {
				return exitRuntime, err
			}
			out.info("Board closed the connection")
			return exitOK, nil
		case line, ok := <-lines:
			if !ok {
				c.Close()
				return exitOK, nil
			}
			cmd, err := parseCommand(line, config.Color)
			if err != nil {
				out.failure(err.Error())
				continue
			}
			if cmd.verb == verbQuit {
				c.Close()
				return exitOK, nil
			}
			execute(c.Replica(), cmd, out)
		}
	}
}

func execute(r *replica.Replica, cmd command, out *printer) {
	switch cmd.verb {
	case verbPath:
		r.Begin()
		for _, segment := range cmd.segments {
			r.Extend(segment)
		}
		if stroke, ok := r.Commit(); ok {
			out.info(fmt.Sprintf("Drew %s (%d segments)", short(stroke.ID), len(stroke.Segments)))
		}
	case verbUndo:
		if stroke, ok := r.Undo(); ok {
			out.info("Undid " + short(stroke.ID))
		} else {
			out.info("Nothing to undo")
		}
	case verbRedo:
		if stroke, ok := r.Redo(); ok {
			out.info("Redid " + short(stroke.ID))
		} else {
			out.info("Nothing to redo")
		}
	case verbClear:
		r.Clear()
	case verbShow:
		out.list(r.SessionID(), r.Strokes())
	case verbHelp:
		out.info(usage)
	}
}

type printer struct {
	w       io.Writer
	colours bool
}

func newPrinter(w io.Writer, colours bool) *printer {
	return &printer{w: w, colours: colours}
}

// Render is called by the replica after every change of the mirror.
func (p *printer) Render(strokes []drawing.Stroke, pending []drawing.Segment) {
	line := fmt.Sprintf("  ~ board: %d strokes", len(strokes))
	if len(pending) > 0 {
		line += fmt.Sprintf(", drawing %d segments", len(pending))
	}
	p.print(line, color.FgDarkGray)
}

func (p *printer) list(sessionID string, strokes []drawing.Stroke) {
	if len(strokes) == 0 {
		p.info("The board is empty")
		return
	}
	for i, stroke := range strokes {
		line := fmt.Sprintf("%3d  %s  %-8s %d segments", i, short(stroke.ID), short(stroke.OwnerID), len(stroke.Segments))
		if stroke.OwnerID == sessionID {
			p.print(line+"  (yours)", color.FgGreen)
			continue
		}
		p.print(line, color.FgDefault)
	}
}

func (p *printer) info(msg string) { p.print(msg, color.FgCyan) }

func (p *printer) failure(msg string) { p.print(msg, color.FgRed) }

func (p *printer) print(msg string, fg color.Color) {
	if p.colours {
		msg = color.New(fg).Render(msg)
	}
	fmt.Fprintln(p.w, msg)
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
