package storage

import (
	"context"
	"database/sql"
	"draw-lab/domain/drawing"
	stderrors "errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteBoardRepository stores each board document as one row, encoded with
// the same wire layout as the badger store.
type SQLiteBoardRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// A single connection serializes writers and keeps ":memory:" databases
	// alive for the lifetime of the pool.
	db.SetMaxOpenConns(1)
	return db, nil
}

func NewSQLiteBoardRepository(ctx context.Context, db *sql.DB, log *slog.Logger) (*SQLiteBoardRepository, error) {
	if _, err := db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS boards (
			id       TEXT    NOT NULL PRIMARY KEY,
			version  INTEGER NOT NULL,
			document BLOB    NOT NULL
		)`,
	); err != nil {
		return nil, fmt.Errorf("failed to create boards table: %w", err)
	}
	return &SQLiteBoardRepository{db: db, log: log}, nil
}

func (r *SQLiteBoardRepository) Load(ctx context.Context, board drawing.BoardID) (drawing.Document, error) {
	return r.read(ctx, r.db, board)
}

func (r *SQLiteBoardRepository) Append(ctx context.Context, board drawing.BoardID, version uint64, stroke drawing.Stroke) error {
	return r.update(ctx, board, func(doc drawing.Document) (drawing.Document, error) {
		return appendStroke(doc, version, stroke)
	})
}

func (r *SQLiteBoardRepository) Remove(ctx context.Context, board drawing.BoardID, version uint64, strokeID string) error {
	return r.update(ctx, board, func(doc drawing.Document) (drawing.Document, error) {
		return removeStroke(doc, version, strokeID)
	})
}

func (r *SQLiteBoardRepository) Replace(ctx context.Context, doc drawing.Document) error {
	return r.write(ctx, r.db, doc)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *SQLiteBoardRepository) update(ctx context.Context, board drawing.BoardID,
	mutate func(doc drawing.Document) (drawing.Document, error)) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !stderrors.Is(err, sql.ErrTxDone) {
			r.log.Error("failed to rollback board transaction", "board", board, "error", err)
		}
	}()

	doc, err := r.read(ctx, tx, board)
	if err != nil {
		return err
	}
	next, err := mutate(doc)
	if err != nil {
		return err
	}
	if err := r.write(ctx, tx, next); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteBoardRepository) read(ctx context.Context, q queryer, board drawing.BoardID) (drawing.Document, error) {
	var raw []byte
	err := q.QueryRowContext(ctx, `SELECT document FROM boards WHERE id = ?`, string(board)).Scan(&raw)
	if stderrors.Is(err, sql.ErrNoRows) {
		return drawing.NewDocument(board), nil
	}
	if err != nil {
		return drawing.Document{}, fmt.Errorf("failed to read board %s: %w", board, err)
	}
	return UnmarshalDocument(raw)
}

func (r *SQLiteBoardRepository) write(ctx context.Context, q queryer, doc drawing.Document) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO boards (id, version, document) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET version = excluded.version, document = excluded.document`,
		string(doc.Board), int64(doc.Version), MarshalDocument(doc),
	)
	if err != nil {
		return fmt.Errorf("failed to write board %s: %w", doc.Board, err)
	}
	return nil
}
