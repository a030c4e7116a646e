//go:generate go run go.uber.org/mock/mockgen -source=board_repository.go -destination=../../mocks/mock_board_repository.go -package=mocks
package storage

import (
	"context"
	"draw-lab/domain/drawing"
	"draw-lab/errors"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// IBoardRepository is the durable log store: one document per board.
// Every mutation names the version it produces, the store refuses it unless
// the stored document is exactly one version behind.
type IBoardRepository interface {
	Load(ctx context.Context, board drawing.BoardID) (drawing.Document, error)
	Append(ctx context.Context, board drawing.BoardID, version uint64, stroke drawing.Stroke) error
	Remove(ctx context.Context, board drawing.BoardID, version uint64, strokeID string) error
	Replace(ctx context.Context, doc drawing.Document) error
}

type BoardRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewBoardRepository(db *badger.DB, log *slog.Logger) *BoardRepository {
	return &BoardRepository{db: db, log: log}
}

func boardKey(board drawing.BoardID) []byte {
	return []byte(fmt.Sprintf("board:%s", board))
}

// Load returns the stored document, or an empty one at version 0 when the
// board has never been written.
func (r *BoardRepository) Load(ctx context.Context, board drawing.BoardID) (drawing.Document, error) {
	if err := ctx.Err(); err != nil {
		return drawing.Document{}, err
	}
	var doc drawing.Document
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		doc, err = readDocument(txn, board)
		return err
	})
	return doc, err
}

func (r *BoardRepository) Append(ctx context.Context, board drawing.BoardID, version uint64, stroke drawing.Stroke) error {
	return r.update(ctx, board, func(doc drawing.Document) (drawing.Document, error) {
		return appendStroke(doc, version, stroke)
	})
}

func (r *BoardRepository) Remove(ctx context.Context, board drawing.BoardID, version uint64, strokeID string) error {
	return r.update(ctx, board, func(doc drawing.Document) (drawing.Document, error) {
		return removeStroke(doc, version, strokeID)
	})
}

// Replace overwrites the whole document regardless of the stored version.
func (r *BoardRepository) Replace(ctx context.Context, doc drawing.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(boardKey(doc.Board), MarshalDocument(doc))
	})
}

// update runs a read-modify-write of the board document inside one badger
// transaction.
func (r *BoardRepository) update(ctx context.Context, board drawing.BoardID,
	mutate func(doc drawing.Document) (drawing.Document, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		doc, err := readDocument(txn, board)
		if err != nil {
			return err
		}
		next, err := mutate(doc)
		if err != nil {
			return err
		}
		return txn.Set(boardKey(board), MarshalDocument(next))
	})
}

func readDocument(txn *badger.Txn, board drawing.BoardID) (drawing.Document, error) {
	item, err := txn.Get(boardKey(board))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return drawing.NewDocument(board), nil
	}
	if err != nil {
		return drawing.Document{}, err
	}
	var doc drawing.Document
	err = item.Value(func(val []byte) error {
		doc, err = UnmarshalDocument(val)
		return err
	})
	return doc, err
}

func appendStroke(doc drawing.Document, version uint64, stroke drawing.Stroke) (drawing.Document, error) {
	if err := checkVersion(doc, version); err != nil {
		return doc, err
	}
	doc.Strokes = doc.Strokes.Append(stroke)
	doc.Version = version
	return doc, nil
}

func removeStroke(doc drawing.Document, version uint64, strokeID string) (drawing.Document, error) {
	if err := checkVersion(doc, version); err != nil {
		return doc, err
	}
	i := doc.Strokes.IndexOf(strokeID)
	if i < 0 {
		return doc, fmt.Errorf("%w: %s", errors.ErrStrokeNotFound, strokeID)
	}
	doc.Strokes = doc.Strokes.RemoveAt(i)
	doc.Version = version
	return doc, nil
}

func checkVersion(doc drawing.Document, version uint64) error {
	if doc.Version+1 != version {
		return fmt.Errorf("%w: stored %d, writing %d", errors.ErrVersionConflict, doc.Version, version)
	}
	return nil
}
