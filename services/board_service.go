package services

import (
	"context"
	"draw-lab/contract"
	"draw-lab/domain/drawing"
	"draw-lab/errors"
	"draw-lab/runtime"
	"fmt"
	"log/slog"
	"math"
	"reflect"

	"github.com/go-playground/validator/v10"
)

type IBoardService interface {
	Join(sessionID string, sink contract.EventSink) drawing.Document
	Leave(sessionID string)
	AddStroke(ctx context.Context, sessionID string, stroke drawing.Stroke) error
	RemoveStroke(ctx context.Context, sessionID string, key drawing.Stroke) error
	ClearAll(ctx context.Context, sessionID string) error
	Snapshot() drawing.Document
}

type BoardService struct {
	log          *slog.Logger
	orchestrator *runtime.Orchestrator
	validator    *validator.Validate
	maxSegments  int
}

func NewBoardService(log *slog.Logger, o *runtime.Orchestrator, maxSegments int) *BoardService {
	return &BoardService{
		log:          log,
		orchestrator: o,
		validator:    NewStrokeValidator(),
		maxSegments:  maxSegments,
	}
}

// NewStrokeValidator returns a validator knowing the "finite" tag, which
// rejects NaN and infinite coordinates.
func NewStrokeValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.Float64 && fl.Field().Kind() != reflect.Float32 {
			return false
		}
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	return v
}

func (s *BoardService) Join(sessionID string, sink contract.EventSink) drawing.Document {
	return s.orchestrator.Bootstrap(sessionID, sink)
}

func (s *BoardService) Leave(sessionID string) {
	s.orchestrator.Leave(sessionID)
}

// AddStroke validates a non-empty stroke before handing it to the board.
// Empty strokes go through unchecked, the board ignores them.
func (s *BoardService) AddStroke(ctx context.Context, sessionID string, stroke drawing.Stroke) error {
	if !stroke.IsEmpty() {
		if err := s.validate(stroke); err != nil {
			return err
		}
	}
	return s.orchestrator.AddStroke(ctx, sessionID, stroke)
}

// RemoveStroke accepts a key naming only an id, or a full stroke for peers
// that do not track ids.
func (s *BoardService) RemoveStroke(ctx context.Context, sessionID string, key drawing.Stroke) error {
	switch {
	case key.IsEmpty() && !key.HasID():
		return fmt.Errorf("%w: removal key has neither id nor segments", errors.ErrInvalidStroke)
	case key.IsEmpty():
		if err := s.validator.Var(key.ID, "uuid"); err != nil {
			return fmt.Errorf("%w: %w", errors.ErrInvalidStroke, err)
		}
	default:
		if err := s.validate(key); err != nil {
			return err
		}
	}
	return s.orchestrator.RemoveStroke(ctx, sessionID, key)
}

func (s *BoardService) ClearAll(ctx context.Context, sessionID string) error {
	return s.orchestrator.ClearAll(ctx, sessionID)
}

func (s *BoardService) Snapshot() drawing.Document {
	return s.orchestrator.Snapshot()
}

func (s *BoardService) validate(stroke drawing.Stroke) error {
	if s.maxSegments > 0 && len(stroke.Segments) > s.maxSegments {
		return fmt.Errorf("%w: %d segments, at most %d allowed",
			errors.ErrInvalidStroke, len(stroke.Segments), s.maxSegments)
	}
	if err := s.validator.Struct(stroke); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidStroke, err)
	}
	return nil
}
