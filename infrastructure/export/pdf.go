// Package export renders a board document to PDF.
package export

import (
	"draw-lab/domain/drawing"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const margin = 10.0

type RGB struct{ R, G, B int }

var namedColors = map[string]RGB{
	"black": {0, 0, 0},
	"white": {255, 255, 255},
	"red":   {255, 0, 0},
	"green": {0, 128, 0},
	"blue":  {0, 0, 255},
}

// WritePDF draws every stroke of doc on one A4 landscape page, scaled to
// fit inside the margins.
func WritePDF(w io.Writer, doc drawing.Document) error {
	p := gofpdf.New("L", "mm", "A4", "")
	p.AddPage()
	p.SetLineWidth(0.4)
	p.SetLineCapStyle("round")
	p.SetFont("Helvetica", "", 8)
	p.Text(margin, margin/2+2, fmt.Sprintf("board %s, version %d, %d strokes",
		doc.Board, doc.Version, len(doc.Strokes)))

	pageW, pageH := p.GetPageSize()
	project := fit(doc.Strokes, pageW-2*margin, pageH-2*margin)
	for _, stroke := range doc.Strokes {
		for _, seg := range stroke.Segments {
			c := ParseColor(seg.Color)
			p.SetDrawColor(c.R, c.G, c.B)
			x1, y1 := project(seg.X1, seg.Y1)
			x2, y2 := project(seg.X2, seg.Y2)
			p.Line(x1, y1, x2, y2)
		}
	}
	return p.Output(w)
}

// fit returns the projection of board coordinates into the drawable area,
// keeping the aspect ratio.
func fit(strokes drawing.Log, width, height float64) func(x, y float64) (float64, float64) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, stroke := range strokes {
		for _, s := range stroke.Segments {
			minX, maxX = math.Min(minX, math.Min(s.X1, s.X2)), math.Max(maxX, math.Max(s.X1, s.X2))
			minY, maxY = math.Min(minY, math.Min(s.Y1, s.Y2)), math.Max(maxY, math.Max(s.Y1, s.Y2))
		}
	}
	if math.IsInf(minX, 1) {
		return func(x, y float64) (float64, float64) { return margin + x, margin + y }
	}
	scale := 1.0
	if spanX, spanY := maxX-minX, maxY-minY; spanX > 0 || spanY > 0 {
		scale = math.Min(width/math.Max(spanX, 1e-9), height/math.Max(spanY, 1e-9))
	}
	return func(x, y float64) (float64, float64) {
		return margin + (x-minX)*scale, margin + (y-minY)*scale
	}
}

// ParseColor understands #rgb, #rrggbb and a few names. Anything else is
// drawn black.
func ParseColor(color string) RGB {
	color = strings.ToLower(strings.TrimSpace(color))
	if c, ok := namedColors[color]; ok {
		return c
	}
	hex := strings.TrimPrefix(color, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return RGB{}
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}
	}
	return RGB{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}
}
