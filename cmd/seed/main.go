// Command seed fills a board store with generated strokes, so the inspect
// tool and the clients have something to show.
package main

import (
	"context"
	"draw-lab/domain/drawing"
	"draw-lab/infrastructure/storage"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
)

var palette = []string{"black", "red", "green", "blue", "#ff8800", "#8a2be2"}

func main() {
	driver := flag.String("driver", storage.DriverBadger, "Store driver (badger or sqlite)")
	dbPath := flag.String("db", database.DefaultPath, "Path to the store")
	boardID := flag.String("board", "default", "Board to seed")
	owners := flag.Int("owners", 3, "Number of distinct sessions drawing")
	strokes := flag.Int("strokes", 20, "Number of strokes to add")
	flag.Parse()

	ctx := context.Background()
	repository, closer, err := storage.OpenRepository(ctx, storage.Options{
		Driver:     *driver,
		BadgerPath: *dbPath,
		SQLitePath: *dbPath,
	}, logs.GetLoggerFromString("WARN"))
	if err != nil {
		log.Fatal(err)
	}
	defer closer.Close()

	id := drawing.BoardID(*boardID)
	doc, err := repository.Load(ctx, id)
	if err != nil {
		log.Fatal(err)
	}

	sessions := make([]string, *owners)
	for i := range sessions {
		sessions[i] = uuid.NewString()
	}

	version := doc.Version
	for i := 0; i < *strokes; i++ {
		stroke := drawing.NewStroke(sessions[i%len(sessions)], spiral(rand.Float64()*800, rand.Float64()*500))
		version++
		if err := repository.Append(ctx, id, version, stroke); err != nil {
			log.Fatalf("append stroke %d: %v", i, err)
		}
	}
	fmt.Printf("Board %s seeded: version %d -> %d, %d strokes by %d sessions\n",
		id, doc.Version, version, *strokes, len(sessions))
}

// spiral draws a short open spiral around (cx, cy) in one color.
func spiral(cx, cy float64) []drawing.Segment {
	color := palette[rand.IntN(len(palette))]
	turns := 8 + rand.IntN(16)
	segments := make([]drawing.Segment, 0, turns)
	x, y := cx, cy
	for i := 1; i <= turns; i++ {
		angle := float64(i) * math.Pi / 4
		radius := float64(i) * 3
		nx, ny := cx+radius*math.Cos(angle), cy+radius*math.Sin(angle)
		segments = append(segments, drawing.Segment{X1: x, Y1: y, X2: nx, Y2: ny, Color: color})
		x, y = nx, ny
	}
	return segments
}
