package storage

import (
	"draw-lab/domain/drawing"
	"draw-lab/errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Wire layout of a board document, protobuf compatible:
//
//	message Document { string board = 1; uint64 version = 2; repeated Stroke strokes = 3; }
//	message Stroke   { string id = 1; string owner_id = 2; repeated Segment segments = 3; }
//	message Segment  { double x1 = 1; double y1 = 2; double x2 = 3; double y2 = 4; string color = 5; }
const (
	documentBoard   protowire.Number = 1
	documentVersion protowire.Number = 2
	documentStrokes protowire.Number = 3

	strokeID       protowire.Number = 1
	strokeOwner    protowire.Number = 2
	strokeSegments protowire.Number = 3

	segmentX1    protowire.Number = 1
	segmentY1    protowire.Number = 2
	segmentX2    protowire.Number = 3
	segmentY2    protowire.Number = 4
	segmentColor protowire.Number = 5
)

func MarshalDocument(doc drawing.Document) []byte {
	var b []byte
	b = protowire.AppendTag(b, documentBoard, protowire.BytesType)
	b = protowire.AppendString(b, string(doc.Board))
	b = protowire.AppendTag(b, documentVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, doc.Version)
	for _, s := range doc.Strokes {
		b = protowire.AppendTag(b, documentStrokes, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalStroke(s))
	}
	return b
}

func marshalStroke(s drawing.Stroke) []byte {
	var b []byte
	b = protowire.AppendTag(b, strokeID, protowire.BytesType)
	b = protowire.AppendString(b, s.ID)
	b = protowire.AppendTag(b, strokeOwner, protowire.BytesType)
	b = protowire.AppendString(b, s.OwnerID)
	for _, seg := range s.Segments {
		b = protowire.AppendTag(b, strokeSegments, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalSegment(seg))
	}
	return b
}

func marshalSegment(seg drawing.Segment) []byte {
	var b []byte
	for i, v := range [4]float64{seg.X1, seg.Y1, seg.X2, seg.Y2} {
		b = protowire.AppendTag(b, protowire.Number(i+1), protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(v))
	}
	b = protowire.AppendTag(b, segmentColor, protowire.BytesType)
	return protowire.AppendString(b, seg.Color)
}

func UnmarshalDocument(b []byte) (drawing.Document, error) {
	doc := drawing.Document{Strokes: drawing.Log{}}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch {
		case num == documentBoard && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(v)
			doc.Board = drawing.BoardID(s)
			return n, nil
		case num == documentVersion && typ == protowire.VarintType:
			version, n := protowire.ConsumeVarint(v)
			doc.Version = version
			return n, nil
		case num == documentStrokes && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(v)
			if n < 0 {
				return n, nil
			}
			stroke, err := unmarshalStroke(raw)
			if err != nil {
				return n, err
			}
			doc.Strokes = append(doc.Strokes, stroke)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, v), nil
	})
	return doc, err
}

func unmarshalStroke(b []byte) (drawing.Stroke, error) {
	var s drawing.Stroke
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch {
		case num == strokeID && typ == protowire.BytesType:
			id, n := protowire.ConsumeString(v)
			s.ID = id
			return n, nil
		case num == strokeOwner && typ == protowire.BytesType:
			owner, n := protowire.ConsumeString(v)
			s.OwnerID = owner
			return n, nil
		case num == strokeSegments && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(v)
			if n < 0 {
				return n, nil
			}
			seg, err := unmarshalSegment(raw)
			if err != nil {
				return n, err
			}
			s.Segments = append(s.Segments, seg)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, v), nil
	})
	return s, err
}

func unmarshalSegment(b []byte) (drawing.Segment, error) {
	var seg drawing.Segment
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch {
		case num >= segmentX1 && num <= segmentY2 && typ == protowire.Fixed64Type:
			bits, n := protowire.ConsumeFixed64(v)
			f := math.Float64frombits(bits)
			switch num {
			case segmentX1:
				seg.X1 = f
			case segmentY1:
				seg.Y1 = f
			case segmentX2:
				seg.X2 = f
			case segmentY2:
				seg.Y2 = f
			}
			return n, nil
		case num == segmentColor && typ == protowire.BytesType:
			color, n := protowire.ConsumeString(v)
			seg.Color = color
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, v), nil
	})
	return seg, err
}

// consumeFields walks every field of b. fn consumes the value of one field
// and returns how many bytes it used, negative on a malformed value.
func consumeFields(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", errors.ErrCorruptedDocument, protowire.ParseError(n))
		}
		b = b[n:]
		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if m < 0 {
			return fmt.Errorf("%w: %v", errors.ErrCorruptedDocument, protowire.ParseError(m))
		}
		b = b[m:]
	}
	return nil
}
