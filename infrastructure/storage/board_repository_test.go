package storage

import (
	"context"
	"draw-lab/domain/drawing"
	"draw-lab/errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func openBadger(t *testing.T) *badger.DB {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func openSQLite(t *testing.T) *SQLiteBoardRepository {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "board.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repository, err := NewSQLiteBoardRepository(context.Background(), db, slog.Default())
	require.NoError(t, err)
	return repository
}

// Both stores honour the same contract, every scenario runs against each.
func repositories(t *testing.T) map[string]IBoardRepository {
	return map[string]IBoardRepository{
		"badger": NewBoardRepository(openBadger(t), slog.Default()),
		"sqlite": openSQLite(t),
	}
}

func stroke(id, owner string, color string) drawing.Stroke {
	return drawing.Stroke{
		ID:      id,
		OwnerID: owner,
		Segments: []drawing.Segment{
			{X1: 1, Y1: 2, X2: 3, Y2: 4, Color: color},
			{X1: 3, Y1: 4, X2: 5.5, Y2: -6.25, Color: color},
		},
	}
}

func TestBoardRepository_Load_Unknown_Board_Is_Empty(t *testing.T) {
	for name, repository := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			doc, err := repository.Load(context.Background(), "missing")
			req.NoError(err)
			req.Equal(drawing.NewDocument("missing"), doc)
		})
	}
}

func TestBoardRepository_Append_Then_Remove(t *testing.T) {
	for name, repository := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()
			board := drawing.DefaultBoardID
			first := stroke("a", "alice", "white")
			second := stroke("b", "bob", "#ff0000")

			// Given two strokes appended in order
			req.NoError(repository.Append(ctx, board, 1, first))
			req.NoError(repository.Append(ctx, board, 2, second))

			doc, err := repository.Load(ctx, board)
			req.NoError(err)
			req.Equal(uint64(2), doc.Version)
			req.Equal(drawing.Log{first, second}, doc.Strokes)

			// When the first one is removed
			req.NoError(repository.Remove(ctx, board, 3, "a"))

			// Then only the second one is left
			doc, err = repository.Load(ctx, board)
			req.NoError(err)
			req.Equal(uint64(3), doc.Version)
			req.Equal(drawing.Log{second}, doc.Strokes)
		})
	}
}

func TestBoardRepository_Rejects_Stale_Version(t *testing.T) {
	for name, repository := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()
			req.NoError(repository.Append(ctx, drawing.DefaultBoardID, 1, stroke("a", "alice", "white")))

			// When another writer produces the same version again
			err := repository.Append(ctx, drawing.DefaultBoardID, 1, stroke("b", "bob", "white"))

			// Then the write is refused and nothing changed
			req.ErrorIs(err, errors.ErrVersionConflict)
			doc, err := repository.Load(ctx, drawing.DefaultBoardID)
			req.NoError(err)
			req.Len(doc.Strokes, 1)
		})
	}
}

func TestBoardRepository_Remove_Unknown_Stroke(t *testing.T) {
	for name, repository := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			err := repository.Remove(context.Background(), drawing.DefaultBoardID, 1, "nope")
			req.ErrorIs(err, errors.ErrStrokeNotFound)
		})
	}
}

func TestBoardRepository_Replace_Clears_Board(t *testing.T) {
	for name, repository := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()
			req.NoError(repository.Append(ctx, drawing.DefaultBoardID, 1, stroke("a", "alice", "white")))

			// When the board is replaced by an empty document
			cleared := drawing.Document{Board: drawing.DefaultBoardID, Version: 2, Strokes: drawing.Log{}}
			req.NoError(repository.Replace(ctx, cleared))

			// Then the persisted log is empty
			doc, err := repository.Load(ctx, drawing.DefaultBoardID)
			req.NoError(err)
			req.Equal(cleared, doc)
		})
	}
}

func TestBoardRepository_Survives_Reopen(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	ctx := context.Background()
	s := stroke("a", "alice", "white")

	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	req.NoError(NewBoardRepository(db, slog.Default()).Append(ctx, drawing.DefaultBoardID, 1, s))
	req.NoError(db.Close())

	// When the database is opened again, as after a restart
	db, err = badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	// Then the drawing is still there
	doc, err := NewBoardRepository(db, slog.Default()).Load(ctx, drawing.DefaultBoardID)
	req.NoError(err)
	req.Equal(drawing.Log{s}, doc.Strokes)
}

func TestBoardRepository_Cancelled_Context(t *testing.T) {
	req := require.New(t)
	repository := NewBoardRepository(openBadger(t), slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repository.Append(ctx, drawing.DefaultBoardID, 1, stroke("a", "alice", "white"))
	req.ErrorIs(err, context.Canceled)
}
