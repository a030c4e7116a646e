package storage

import (
	"context"
	"draw-lab/errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

const (
	DriverBadger = "badger"
	DriverSQLite = "sqlite"
)

type Options struct {
	Driver     string
	BadgerPath string
	SQLitePath string
	// ReadOnly opens badger without taking the directory lock, so a running
	// server can be inspected.
	ReadOnly bool
}

// OpenRepository opens the store selected by opts.Driver. The returned
// closer releases the underlying database.
func OpenRepository(ctx context.Context, opts Options, log *slog.Logger) (IBoardRepository, io.Closer, error) {
	switch opts.Driver {
	case DriverBadger, "":
		options := badger.DefaultOptions(opts.BadgerPath).WithLoggingLevel(badger.WARNING)
		if opts.ReadOnly {
			options = options.WithReadOnly(true).WithBypassLockGuard(true)
		}
		db, err := badger.Open(options)
		if err != nil {
			return nil, nil, fmt.Errorf("database opening failed: %w", err)
		}
		return NewBoardRepository(db, log), db, nil
	case DriverSQLite:
		db, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		repository, err := NewSQLiteBoardRepository(ctx, db, log)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repository, db, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", errors.ErrUnknownStoreDriver, opts.Driver)
	}
}
