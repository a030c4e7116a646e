package main

import (
	"draw-lab/domain/drawing"
	"fmt"
	"strconv"
	"strings"
)

type verb string

const (
	verbPath  verb = "path"
	verbUndo  verb = "undo"
	verbRedo  verb = "redo"
	verbClear verb = "clear"
	verbShow  verb = "show"
	verbHelp  verb = "help"
	verbQuit  verb = "quit"
)

const usage = `commands:
  path x1 y1 x2 y2 [x3 y3 ...]   draw a stroke through the points
  undo | redo                     take back or put back your last stroke
  clear                           wipe the board for everybody
  show                            list the strokes on the board
  quit`

type command struct {
	verb     verb
	segments []drawing.Segment
}

// parseCommand reads one input line. Points of a path are joined by
// segments of the given color.
func parseCommand(line, color string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, fmt.Errorf("empty command")
	}
	switch v := verb(strings.ToLower(fields[0])); v {
	case verbUndo, verbRedo, verbClear, verbShow, verbHelp, verbQuit:
		return command{verb: v}, nil
	case verbPath, "line":
		segments, err := parsePath(fields[1:], color)
		if err != nil {
			return command{}, err
		}
		return command{verb: verbPath, segments: segments}, nil
	default:
		return command{}, fmt.Errorf("unknown command %q", fields[0])
	}
}

func parsePath(args []string, color string) ([]drawing.Segment, error) {
	if len(args) < 4 || len(args)%2 != 0 {
		return nil, fmt.Errorf("a path needs at least two points, got %d coordinates", len(args))
	}
	points := make([]float64, len(args))
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q", arg)
		}
		points[i] = v
	}
	segments := make([]drawing.Segment, 0, len(points)/2-1)
	for i := 2; i+1 < len(points); i += 2 {
		segments = append(segments, drawing.Segment{
			X1: points[i-2], Y1: points[i-1],
			X2: points[i], Y2: points[i+1],
			Color: color,
		})
	}
	return segments, nil
}
