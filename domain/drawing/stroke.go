// Package drawing contains core concepts of the drawing board.
// This file defines Segment and Stroke, the atomic drawing data, and the
// rules used to decide whether two strokes designate the same contribution.
// No runtime, network, or UI logic should be added here.
package drawing

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

type BoardID string

const DefaultBoardID BoardID = "default"

// Segment is a single straight line primitive. Immutable once created.
type Segment struct {
	X1    float64 `json:"x1" validate:"finite"`
	Y1    float64 `json:"y1" validate:"finite"`
	X2    float64 `json:"x2" validate:"finite"`
	Y2    float64 `json:"y2" validate:"finite"`
	Color string  `json:"color" validate:"required,max=64"`
}

// Stroke is one continuous gesture's worth of segments, owned by one session.
type Stroke struct {
	ID       string    `json:"id,omitempty" validate:"omitempty,uuid"`
	OwnerID  string    `json:"ownerId"`
	Segments []Segment `json:"segments" validate:"required,min=1,dive"`
}

// NewStroke assembles a stroke with a fresh identifier.
// The segments are copied so the caller can keep reusing its buffer.
func NewStroke(ownerID string, segments []Segment) Stroke {
	return Stroke{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		Segments: slices.Clone(segments),
	}
}

func (s Stroke) IsEmpty() bool {
	return len(s.Segments) == 0
}

// HasID reports whether the stroke carries an assigned identifier.
// Strokes sent by legacy peers may not.
func (s Stroke) HasID() bool {
	return s.ID != ""
}

// SameShape is the legacy structural identity: same owner and deep-equal
// segment sequence.
func (s Stroke) SameShape(other Stroke) bool {
	return s.OwnerID == other.OwnerID && slices.Equal(s.Segments, other.Segments)
}

// Matches reports whether other designates the same stroke as s.
// Identifiers win when both sides carry one; otherwise the structural
// identity applies.
func (s Stroke) Matches(other Stroke) bool {
	if s.HasID() && other.HasID() {
		return s.ID == other.ID
	}
	return s.SameShape(other)
}

// Clone returns a deep copy.
func (s Stroke) Clone() Stroke {
	s.Segments = slices.Clone(s.Segments)
	return s
}

// Fingerprint hashes the structural identity of the stroke (owner and
// segments, not the id). Two strokes with the same shape share a fingerprint.
func (s Stroke) Fingerprint() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(s.OwnerID)
	var buf [8]byte
	for _, seg := range s.Segments {
		for _, v := range [4]float64{seg.X1, seg.Y1, seg.X2, seg.Y2} {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			_, _ = d.Write(buf[:])
		}
		_, _ = d.WriteString(seg.Color)
	}
	return d.Sum64()
}
