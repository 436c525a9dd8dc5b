// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"image/color"
	"math"

	"github.com/caporaso-lab/gut-to-soil-manuscript-figures/pcoa"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// edgeWidth is the outline width of markers.
var edgeWidth = vg.Points(1)

// starInner is the inner radius of a five-pointed star relative to
// its outer radius.
const starInner = 0.381966

// marker is a draw.GlyphDrawer with separate face and edge colors.
// The color of the glyph style is ignored.
type marker struct {
	shape      pcoa.Marker
	face, edge color.Color
}

func (m marker) DrawGlyph(c *draw.Canvas, sty draw.GlyphStyle, pt vg.Point) {
	p := markerPath(m.shape, sty.Radius, pt)
	if m.face != nil {
		c.SetColor(m.face)
		c.Fill(p)
	}
	if m.edge != nil {
		c.SetLineStyle(draw.LineStyle{Color: m.edge, Width: edgeWidth})
		c.Stroke(p)
	}
}

func markerPath(shape pcoa.Marker, r vg.Length, pt vg.Point) vg.Path {
	var p vg.Path
	switch shape {
	case pcoa.Triangle:
		polygon(&p, pt, []vg.Length{r}, 3)
	case pcoa.Star:
		polygon(&p, pt, []vg.Length{r, r * starInner}, 10)
	default:
		p.Move(vg.Point{X: pt.X + r, Y: pt.Y})
		p.Arc(pt, r, 0, 2*math.Pi)
		p.Close()
	}
	return p
}

// polygon appends a closed polygon of n vertices centered on pt, with
// the first vertex straight up. Vertex i lies at radius
// radii[i%len(radii)].
func polygon(p *vg.Path, pt vg.Point, radii []vg.Length, n int) {
	for i := 0; i < n; i++ {
		theta := math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
		r := radii[i%len(radii)]
		v := vg.Point{
			X: pt.X + r*vg.Length(math.Cos(theta)),
			Y: pt.Y + r*vg.Length(math.Sin(theta)),
		}
		if i == 0 {
			p.Move(v)
		} else {
			p.Line(v)
		}
	}
	p.Close()
}

// glyphStyle converts a series style. Sizes are marker areas in
// square points.
func glyphStyle(s pcoa.Style) draw.GlyphStyle {
	c := s.Edge
	if s.Face != nil {
		c = s.Face
	}
	return draw.GlyphStyle{
		Color:  c,
		Radius: vg.Points(math.Sqrt(s.Size) / 2),
		Shape:  marker{shape: s.Marker, face: s.Face, edge: s.Edge},
	}
}
