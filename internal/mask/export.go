package mask

import (
	"encoding/json"
	"fmt"
	"image"
	"image/draw"
	"strings"

	"golang.org/x/image/vector"
)

// RenderAlpha rasterizes the contour set into an alpha mask: opaque inside
// the zone, transparent outside.
//
// The raster is derived from the same contour model as the SVG and JSON
// exports, not computed separately. Holes carry opposite winding, so their
// coverage cancels during rasterization and they come out transparent.
func RenderAlpha(m *Mask) *image.Alpha {
	dst := image.NewAlpha(image.Rect(0, 0, m.Width, m.Height))
	if len(m.Contours) == 0 {
		return dst
	}

	r := vector.NewRasterizer(m.Width, m.Height)
	r.DrawOp = draw.Src
	for _, c := range m.Contours {
		if len(c.Points) < 3 {
			continue
		}
		// Contour points are pixel centers; raster space puts pixel (x,y)
		// at (x+0.5, y+0.5).
		r.MoveTo(float32(c.Points[0].X+0.5), float32(c.Points[0].Y+0.5))
		for _, p := range c.Points[1:] {
			r.LineTo(float32(p.X+0.5), float32(p.Y+0.5))
		}
		r.ClosePath()
	}
	r.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return dst
}

// SVGPath renders the contour set as SVG path data, one M..Z subpath per
// contour. Because holes are wound opposite to outer boundaries, the path
// fills correctly under both the nonzero and evenodd fill rules.
func SVGPath(m *Mask) string {
	var sb strings.Builder
	for i, c := range m.Contours {
		if len(c.Points) < 3 {
			continue
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "M %g %g", c.Points[0].X, c.Points[0].Y)
		for _, p := range c.Points[1:] {
			fmt.Fprintf(&sb, " L %g %g", p.X, p.Y)
		}
		sb.WriteString(" Z")
	}
	return sb.String()
}

// Document is the structured JSON view of a mask: the contour point arrays
// plus the shape metrics. Encoding and decoding a document reproduces the
// contours exactly.
type Document struct {
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	Contours []Contour `json:"contours"`
	Metrics  Metrics   `json:"metrics"`
}

// ExportDocument builds the JSON-facing document for a mask.
func ExportDocument(m *Mask) *Document {
	return &Document{
		Width:    m.Width,
		Height:   m.Height,
		Contours: m.Contours,
		Metrics:  m.Validation.Metrics,
	}
}

// EncodeJSON serializes the mask's document form.
func EncodeJSON(m *Mask) ([]byte, error) {
	data, err := json.Marshal(ExportDocument(m))
	if err != nil {
		return nil, fmt.Errorf("failed to encode mask document: %w", err)
	}
	return data, nil
}

// DecodeDocument parses a document previously produced by EncodeJSON.
func DecodeDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode mask document: %w", err)
	}
	return &doc, nil
}
