package drawing

import (
	"slices"

	"github.com/samber/lo"
)

// Log is the ordered sequence of strokes currently on the board.
// Every mutating method returns a new Log and leaves the receiver untouched,
// so a committed Log can be shared with readers without copying.
type Log []Stroke

func (l Log) Append(s Stroke) Log {
	next := make(Log, 0, len(l)+1)
	next = append(next, l...)
	return append(next, s.Clone())
}

// LastMatch scans from the most recent stroke backward and returns the index
// of the first stroke matching target.
func (l Log) LastMatch(target Stroke) (int, bool) {
	_, index, ok := lo.FindLastIndexOf(l, func(item Stroke) bool {
		return item.Matches(target)
	})
	return index, ok
}

// IndexOf returns the position of the stroke carrying id, -1 if absent.
func (l Log) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(l, func(s Stroke) bool { return s.ID == id })
}

func (l Log) Contains(id string) bool {
	return l.IndexOf(id) >= 0
}

func (l Log) RemoveAt(i int) Log {
	next := make(Log, 0, len(l))
	next = append(next, l[:i]...)
	return append(next, l[i+1:]...)
}

// RemoveLastMatch removes the most recent stroke matching target.
// The returned stroke is the one found in the log, not the match key.
func (l Log) RemoveLastMatch(target Stroke) (Log, Stroke, bool) {
	i, ok := l.LastMatch(target)
	if !ok {
		return l, Stroke{}, false
	}
	return l.RemoveAt(i), l[i], true
}

// OwnedBy returns the strokes authored by ownerID, oldest first.
func (l Log) OwnedBy(ownerID string) []Stroke {
	return lo.Filter(l, func(s Stroke, _ int) bool {
		return s.OwnerID == ownerID
	})
}

func (l Log) SegmentCount() int {
	return lo.SumBy(l, func(s Stroke) int { return len(s.Segments) })
}

func (l Log) Clone() Log {
	if l == nil {
		return Log{}
	}
	return lo.Map(l, func(s Stroke, _ int) Stroke { return s.Clone() })
}

// Document is the persisted form of a board: one ordered log and the
// version of the last committed mutation.
type Document struct {
	Board   BoardID
	Version uint64
	Strokes Log
}

func NewDocument(board BoardID) Document {
	return Document{Board: board, Strokes: Log{}}
}
