package storage

import (
	"context"
	"draw-lab/domain/drawing"
	"draw-lab/errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestOpenRepository(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	dir := t.TempDir()

	for _, opts := range []Options{
		{Driver: DriverBadger, BadgerPath: filepath.Join(dir, "badger")},
		{Driver: DriverSQLite, SQLitePath: filepath.Join(dir, "board.db")},
	} {
		t.Run(opts.Driver, func(t *testing.T) {
			req := require.New(t)
			repository, closer, err := OpenRepository(context.Background(), opts, log)
			req.NoError(err)
			defer closer.Close()

			doc, err := repository.Load(context.Background(), drawing.DefaultBoardID)
			req.NoError(err)
			req.Equal(uint64(0), doc.Version)
		})
	}
}

func TestOpenRepository_UnknownDriver(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	_, _, err := OpenRepository(context.Background(), Options{Driver: "postgres"}, log)
	require.ErrorIs(t, err, errors.ErrUnknownStoreDriver)
}
