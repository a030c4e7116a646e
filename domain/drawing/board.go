package drawing

import "sync"

// Board holds the committed state of the active drawing log.
// Only the single board writer calls Commit; readers always observe a whole
// document, never a mutation in progress.
type Board struct {
	mu  sync.RWMutex
	doc Document
}

func NewBoard(doc Document) *Board {
	if doc.Strokes == nil {
		doc.Strokes = Log{}
	}
	return &Board{doc: doc}
}

func (b *Board) ID() BoardID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.doc.Board
}

// Snapshot returns the committed document. Logs are never mutated in place,
// so the returned slice is safe to read without further copying.
func (b *Board) Snapshot() Document {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.doc
}

func (b *Board) Version() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.doc.Version
}

func (b *Board) Commit(doc Document) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.doc = doc
}
