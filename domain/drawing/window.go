package drawing

import "slices"

const DefaultWindowCapacity = 100

// Window is a bounded history of strokes, most recent last.
// Pushing beyond capacity evicts the oldest entry. Eviction only affects
// what can still be undone or redone, never the board itself.
type Window struct {
	capacity int
	items    []Stroke
}

func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultWindowCapacity
	}
	return &Window{capacity: capacity}
}

func (w *Window) Capacity() int { return w.capacity }

func (w *Window) Len() int { return len(w.items) }

// Push appends s and returns the evicted stroke, if any.
func (w *Window) Push(s Stroke) (Stroke, bool) {
	w.items = append(w.items, s)
	if len(w.items) <= w.capacity {
		return Stroke{}, false
	}
	evicted := w.items[0]
	w.items = slices.Delete(w.items, 0, 1)
	return evicted, true
}

func (w *Window) Pop() (Stroke, bool) {
	if len(w.items) == 0 {
		return Stroke{}, false
	}
	last := w.items[len(w.items)-1]
	w.items = w.items[:len(w.items)-1]
	return last, true
}

// Remove drops the most recent entry matching target.
func (w *Window) Remove(target Stroke) bool {
	i, ok := Log(w.items).LastMatch(target)
	if !ok {
		return false
	}
	w.items = slices.Delete(w.items, i, i+1)
	return true
}

// Reset replaces the content with the most recent strokes of items, keeping
// at most capacity of them.
func (w *Window) Reset(items []Stroke) {
	if len(items) > w.capacity {
		items = items[len(items)-w.capacity:]
	}
	w.items = slices.Clone(items)
}

func (w *Window) Clear() {
	w.items = nil
}

func (w *Window) Items() []Stroke {
	return slices.Clone(w.items)
}
