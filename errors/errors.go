package errors

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrWorkerPanic            = fmt.Errorf("worker panic")
	ErrInvalidStroke          = fmt.Errorf("invalid stroke")
	ErrMalformedEvent         = fmt.Errorf("malformed event")
	ErrUnknownEvent           = fmt.Errorf("unknown event")
	ErrVersionConflict        = fmt.Errorf("board version conflict")
	ErrStrokeNotFound         = fmt.Errorf("stroke not found")
	ErrCorruptedDocument      = fmt.Errorf("corrupted board document")
	ErrPersistenceFailed      = fmt.Errorf("persistence failed")
	ErrCoordinatorUnavailable = fmt.Errorf("coordinator unavailable")
	ErrOutcomeUnknown         = fmt.Errorf("outcome unknown, the change may still be applied")
	ErrSinkClosed             = fmt.Errorf("sink closed")
	ErrSlowConsumer           = fmt.Errorf("slow consumer")
	ErrUnknownStoreDriver     = fmt.Errorf("unknown store driver")
)

// MapToGRPCError translates domain errors into gRPC status errors.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrInvalidStroke), errors.Is(err, ErrMalformedEvent), errors.Is(err, ErrUnknownEvent):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrStrokeNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrVersionConflict):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, ErrCoordinatorUnavailable), errors.Is(err, ErrPersistenceFailed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, ErrSlowConsumer), errors.Is(err, ErrSinkClosed):
		return status.Error(codes.ResourceExhausted, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
