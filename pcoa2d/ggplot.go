// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"image/color"
	"io"

	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-gg/table"
	"github.com/caporaso-lab/gut-to-soil-manuscript-figures/pcoa"
)

const (
	svgWidth  = 1000
	svgHeight = 600
)

// writeSVG renders fig as an SVG in which hovering over a point shows
// its sample ID and series. The SVG has no legend and does not
// preserve the aspect ratio.
func writeSVG(w io.Writer, fig *pcoa.Figure) error {
	p := gg.NewPlot(nil)
	for _, m := range fig.DrawOrder() {
		if s := m.Series; s != nil {
			if len(s.Points) == 0 {
				continue
			}
			tips := make([]string, len(s.Points))
			for i, pt := range s.Points {
				tips[i] = s.Label
				if pt.ID != "" {
					tips[i] = fmt.Sprintf("%s: %s", pt.ID, s.Label)
				}
			}
			p.SetData(pointTable(s.Points).Add("tooltip", tips).Done())
			face := s.Style.Face
			if face == nil {
				face = s.Style.Edge
			}
			p.Add(gg.LayerPoints{X: "x", Y: "y", Color: p.Const(rgba(face))})
			p.Add(gg.LayerTooltips{X: "x", Y: "y", Label: "tooltip"})
			continue
		}
		if l := m.Line; len(l.Points) >= 2 {
			p.SetData(pointTable(l.Points).Done())
			p.Add(gg.LayerPaths{X: "x", Y: "y", Color: p.Const(rgba(l.Color))})
		}
	}

	for _, a := range fig.Annotations {
		p.SetData(table.NewBuilder(nil).
			Add("x", []float64{a.X + a.DX}).
			Add("y", []float64{a.Y + a.DY}).
			Add("text", []string{a.Text}).
			Done())
		p.Add(gg.LayerTags{X: "x", Y: "y", Label: "text"})
	}

	p.Add(gg.Title(fig.Title), gg.AxisLabel("x", fig.XLabel), gg.AxisLabel("y", fig.YLabel))
	return p.WriteSVG(w, svgWidth, svgHeight)
}

func pointTable(pts []pcoa.Point) *table.Builder {
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, pt := range pts {
		xs[i], ys[i] = pt.X, pt.Y
	}
	return table.NewBuilder(nil).Add("x", xs).Add("y", ys)
}

// rgba converts c so gg treats it as a physical color rather than a
// value to be scaled.
func rgba(c color.Color) color.RGBA {
	if c == nil {
		return color.RGBA{A: 0xff}
	}
	return color.RGBAModel.Convert(c).(color.RGBA)
}
