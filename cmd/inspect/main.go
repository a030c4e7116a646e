// Command inspect prints the strokes of a board, either straight from the
// store or from a running server.
package main

import (
	"context"
	"draw-lab/domain/drawing"
	"draw-lab/infrastructure/export"
	"draw-lab/infrastructure/grpc/board"
	"draw-lab/infrastructure/storage"
	"draw-lab/internal"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func main() {
	driver := flag.String("driver", storage.DriverBadger, "Store driver (badger or sqlite)")
	dbPath := flag.String("db", database.DefaultPath, "Path to the store")
	boardID := flag.String("board", "default", "Board to inspect")
	remote := flag.String("grpc", "", "Address of a running server, read instead of the store")
	watch := flag.Bool("watch", false, "Follow the board changes (requires -grpc)")
	pdfPath := flag.String("pdf", "", "Also render the board to this PDF file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := logs.GetLoggerFromString("WARN")

	if *watch {
		if *remote == "" {
			log.Fatal("-watch needs the -grpc address of a running server")
		}
		if err := follow(ctx, *remote); err != nil {
			log.Fatal(err)
		}
		return
	}

	var (
		doc drawing.Document
		err error
	)
	if *remote != "" {
		doc, err = fetch(ctx, *remote)
	} else {
		doc, err = load(ctx, logger, *driver, *dbPath, drawing.BoardID(*boardID))
	}
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Board %s at version %d, %d strokes\n", doc.Board, doc.Version, len(doc.Strokes))
	render(os.Stdout, doc.Strokes)

	if *pdfPath != "" {
		if err := writePDF(*pdfPath, doc); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Board rendered to %s\n", *pdfPath)
	}
}

func load(ctx context.Context, log *slog.Logger, driver, path string, id drawing.BoardID) (drawing.Document, error) {
	repository, closer, err := storage.OpenRepository(ctx, storage.Options{
		Driver:     driver,
		BadgerPath: path,
		SQLitePath: path,
		ReadOnly:   true,
	}, log)
	if err != nil {
		return drawing.Document{}, err
	}
	defer closer.Close()
	return repository.Load(ctx, id)
}

func dial(addr string) (*grpc.ClientConn, board.BoardServiceClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return conn, board.NewBoardServiceClient(conn), nil
}

func fetch(ctx context.Context, addr string) (drawing.Document, error) {
	conn, client, err := dial(addr)
	if err != nil {
		return drawing.Document{}, err
	}
	defer conn.Close()
	resp, err := client.Snapshot(ctx, &board.SnapshotRequest{})
	if err != nil {
		return drawing.Document{}, err
	}
	return drawing.Document{Board: drawing.BoardID(resp.Board), Version: resp.Version, Strokes: resp.Strokes}, nil
}

// follow prints one line per board change until ctx is done.
func follow(ctx context.Context, addr string) error {
	conn, client, err := dial(addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	stream, err := client.Watch(ctx, &board.WatchRequest{})
	if err != nil {
		return err
	}
	for {
		evt, err := stream.Recv()
		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		switch evt.Kind {
		case board.KindInit:
			fmt.Printf("v%d init with %d strokes\n", evt.Version, len(evt.Strokes))
			render(os.Stdout, evt.Strokes)
		case board.KindClear:
			fmt.Printf("v%d board cleared\n", evt.Version)
		default:
			for _, stroke := range evt.Strokes {
				row := internal.ToInspectRow(0, stroke)
				fmt.Printf("v%d %s %s by %s (%d segments)\n", evt.Version, evt.Kind, row.StrokeID, row.Owner, row.Segments)
			}
		}
	}
}

func render(w io.Writer, strokes []drawing.Stroke) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Position", "Stroke", "Owner", "Segments", "Colors", "Fingerprint"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for i, stroke := range strokes {
		row := internal.ToInspectRow(i, stroke)
		table.Append([]string{
			strconv.Itoa(row.Position),
			row.StrokeID,
			row.Owner,
			strconv.Itoa(row.Segments),
			row.Colors,
			row.Fingerprint,
		})
	}
	table.Render()
}

func writePDF(path string, doc drawing.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WritePDF(f, doc); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
