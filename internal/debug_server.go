package internal

import (
	"draw-lab/domain/drawing"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/samber/lo"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Position    int
	StrokeID    string
	Owner       string
	Segments    int
	Colors      string
	Fingerprint string
}

type BoardProvider func() drawing.Document
type StatsProvider func() map[string]any

type PageData struct {
	Board   drawing.BoardID
	Version uint64
	Owner   string
	Items   []InspectRow
	Stats   map[string]any
}

// NewDebugServer serves an HTML page listing the strokes of the board at
// endpoint, optionally filtered by ?owner=.
func NewDebugServer(log *slog.Logger, port int, endpoint string, board BoardProvider, statsProvider StatsProvider) *http.Server {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		doc := board()
		owner := r.URL.Query().Get("owner")
		data := PageData{
			Board:   doc.Board,
			Version: doc.Version,
			Owner:   owner,
			Stats:   make(map[string]any),
		}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}
		for i, stroke := range doc.Strokes {
			if owner != "" && stroke.OwnerID != owner {
				continue
			}
			data.Items = append(data.Items, ToInspectRow(i, stroke))
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			log.Error("Failed to render inspect page", "error", err)
		}
	})

	return &http.Server{Addr: fmt.Sprintf("0.0.0.0:%d", port), Handler: mux}
}

func ToInspectRow(position int, stroke drawing.Stroke) InspectRow {
	colors := lo.Uniq(lo.Map(stroke.Segments, func(s drawing.Segment, _ int) string { return s.Color }))
	return InspectRow{
		Position:    position,
		StrokeID:    short(stroke.ID),
		Owner:       short(stroke.OwnerID),
		Segments:    len(stroke.Segments),
		Colors:      strings.Join(colors, " "),
		Fingerprint: fmt.Sprintf("%016x", stroke.Fingerprint()),
	}
}

func short(id string) string {
	if id == "" {
		return "--------"
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
