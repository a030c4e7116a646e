// Package replica keeps a session's local mirror of the board and the
// undo/redo history of the strokes the session authored.
//
// Local actions are applied to the mirror first and sent afterwards, so the
// user never waits for the server to see its own drawing. Remote
// notifications are applied as they come; a stroke id already present in
// the mirror is ignored, which makes receiving one's own stroke back
// harmless.
package replica

import (
	"draw-lab/domain/drawing"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Outbox sends local changes to the board server.
type Outbox interface {
	AddStroke(stroke drawing.Stroke)
	RemoveStroke(stroke drawing.Stroke)
	ClearAll()
}

// Renderer draws the mirror and the gesture in progress.
type Renderer interface {
	Render(strokes []drawing.Stroke, pending []drawing.Segment)
}

type Option func(*Replica)

// WithCapacity bounds both the undo and the redo window.
func WithCapacity(capacity int) Option {
	return func(r *Replica) {
		r.undo = drawing.NewWindow(capacity)
		r.redo = drawing.NewWindow(capacity)
	}
}

func WithRenderer(renderer Renderer) Option {
	return func(r *Replica) { r.renderer = renderer }
}

func WithIDGenerator(newID func() string) Option {
	return func(r *Replica) { r.newID = newID }
}

type Replica struct {
	mu        sync.Mutex
	sessionID string
	outbox    Outbox
	renderer  Renderer
	newID     func() string
	mirror    drawing.Log
	undo      *drawing.Window
	redo      *drawing.Window
	pending   []drawing.Segment
	active    bool
}

func New(outbox Outbox, opts ...Option) *Replica {
	r := &Replica{
		outbox: outbox,
		newID:  uuid.NewString,
		mirror: drawing.Log{},
		undo:   drawing.NewWindow(drawing.DefaultWindowCapacity),
		redo:   drawing.NewWindow(drawing.DefaultWindowCapacity),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetSessionID records the owner id assigned by the server.
func (r *Replica) SetSessionID(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessionID = id
}

func (r *Replica) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID
}

// Begin opens a new gesture, dropping any unfinished one.
func (r *Replica) Begin() {
	r.mu.Lock()
	r.active = true
	r.pending = nil
	r.mu.Unlock()
}

// Extend adds a segment to the gesture in progress and renders it.
// Nothing is sent until Commit.
func (r *Replica) Extend(segment drawing.Segment) bool {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return false
	}
	r.pending = append(r.pending, segment)
	r.mu.Unlock()
	r.render()
	return true
}

// Commit closes the gesture. A gesture without segments commits nothing.
func (r *Replica) Commit() (drawing.Stroke, bool) {
	r.mu.Lock()
	segments := r.pending
	r.active = false
	r.pending = nil
	if len(segments) == 0 {
		r.mu.Unlock()
		return drawing.Stroke{}, false
	}
	stroke := drawing.Stroke{ID: r.newID(), OwnerID: r.sessionID, Segments: segments}
	r.mirror = r.mirror.Append(stroke)
	r.undo.Push(stroke)
	r.redo.Clear()
	r.mu.Unlock()

	r.render()
	r.outbox.AddStroke(stroke)
	return stroke, true
}

// Abort discards the gesture in progress, if any.
func (r *Replica) Abort() {
	r.mu.Lock()
	wasDrawing := len(r.pending) > 0
	r.active = false
	r.pending = nil
	r.mu.Unlock()
	if wasDrawing {
		r.render()
	}
}

// Undo takes back the most recent own stroke still on the board.
// Strokes of other sessions are never candidates.
func (r *Replica) Undo() (drawing.Stroke, bool) {
	r.mu.Lock()
	var (
		target drawing.Stroke
		found  bool
	)
	for !found {
		candidate, ok := r.undo.Pop()
		if !ok {
			break
		}
		next, removed, ok := r.mirror.RemoveLastMatch(candidate)
		if !ok {
			continue
		}
		r.mirror = next
		r.redo.Push(removed)
		target, found = removed, true
	}
	r.mu.Unlock()
	if !found {
		return drawing.Stroke{}, false
	}

	r.render()
	r.outbox.RemoveStroke(target)
	return target, true
}

// Redo puts back the most recently undone stroke. It is appended at the end
// of the board with its original id.
func (r *Replica) Redo() (drawing.Stroke, bool) {
	r.mu.Lock()
	stroke, ok := r.redo.Pop()
	if !ok {
		r.mu.Unlock()
		return drawing.Stroke{}, false
	}
	if !r.mirror.Contains(stroke.ID) {
		r.mirror = r.mirror.Append(stroke)
	}
	r.undo.Push(stroke)
	r.mu.Unlock()

	r.render()
	r.outbox.AddStroke(stroke)
	return stroke, true
}

// Clear wipes the board for everybody.
func (r *Replica) Clear() {
	r.reset()
	r.render()
	r.outbox.ClearAll()
}

func (r *Replica) OnRemoteAdd(stroke drawing.Stroke) {
	r.mu.Lock()
	if stroke.HasID() && r.mirror.Contains(stroke.ID) {
		r.mu.Unlock()
		return
	}
	r.mirror = r.mirror.Append(stroke)
	if r.sessionID != "" && stroke.OwnerID == r.sessionID {
		r.undo.Push(stroke)
	}
	r.mu.Unlock()
	r.render()
}

func (r *Replica) OnRemoteRemove(stroke drawing.Stroke) {
	r.mu.Lock()
	next, _, ok := r.mirror.RemoveLastMatch(stroke)
	r.mirror = next
	r.undo.Remove(stroke)
	r.mu.Unlock()
	if ok {
		r.render()
	}
}

// OnBootstrap replaces the mirror with the board received on connection.
// The undo window is rebuilt from the most recent own strokes; redo history
// does not survive a reconnection.
func (r *Replica) OnBootstrap(strokes []drawing.Stroke) {
	r.mu.Lock()
	r.mirror = drawing.Log(strokes).Clone()
	r.undo.Reset(r.mirror.OwnedBy(r.sessionID))
	r.redo.Clear()
	r.mu.Unlock()
	r.render()
}

func (r *Replica) OnClear() {
	r.reset()
	r.render()
}

func (r *Replica) Strokes() []drawing.Stroke {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mirror.Clone()
}

func (r *Replica) Undoable() []drawing.Stroke {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.undo.Items()
}

func (r *Replica) Redoable() []drawing.Stroke {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.redo.Items()
}

func (r *Replica) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mirror = drawing.Log{}
	r.undo.Clear()
	r.redo.Clear()
}

func (r *Replica) render() {
	if r.renderer == nil {
		return
	}
	r.mu.Lock()
	strokes := r.mirror.Clone()
	pending := slices.Clone(r.pending)
	r.mu.Unlock()
	r.renderer.Render(strokes, pending)
}
