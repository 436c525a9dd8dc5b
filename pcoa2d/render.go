// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"math"

	"github.com/caporaso-lab/gut-to-soil-manuscript-figures/pcoa"
	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	figWidth  = 15 * vg.Inch
	figHeight = 8 * vg.Inch
	figDPI    = 100

	// legendGap separates the plot from the legend column.
	legendGap = vg.Inch / 4
	// legendPad surrounds an exported legend.
	legendPad = vg.Inch / 10

	// margin is the fraction of the data range added on each side.
	margin = 0.05
)

// newPlot converts fig to a gonum plot and a legend of its legend
// series.
func newPlot(fig *pcoa.Figure) (*plot.Plot, plot.Legend, error) {
	p := plot.New()
	p.Title.Text = fig.Title
	p.X.Label.Text = fig.XLabel
	p.Y.Label.Text = fig.YLabel

	scatters := make(map[*pcoa.Series]*plotter.Scatter, len(fig.Series))
	for _, s := range fig.Series {
		sc, err := plotter.NewScatter(xys(s.Points))
		if err != nil {
			return nil, plot.Legend{}, fmt.Errorf("series %q: %w", s.Label, err)
		}
		sc.GlyphStyle = glyphStyle(s.Style)
		scatters[s] = sc
	}

	for _, m := range fig.DrawOrder() {
		switch {
		case m.Series != nil:
			// Empty series still get a legend entry.
			if len(m.Series.Points) > 0 {
				p.Add(scatters[m.Series])
			}
		case len(m.Line.Points) >= 2:
			l := m.Line
			ln, err := plotter.NewLine(xys(l.Points))
			if err != nil {
				return nil, plot.Legend{}, err
			}
			ln.LineStyle = draw.LineStyle{Color: l.Color, Width: vg.Points(l.Width)}
			if l.Dashed {
				ln.LineStyle.Dashes = []vg.Length{vg.Points(3.7 * l.Width), vg.Points(1.6 * l.Width)}
			}
			p.Add(ln)
		}
	}

	if len(fig.Annotations) > 0 {
		labels, err := annotations(fig.Annotations)
		if err != nil {
			return nil, plot.Legend{}, err
		}
		p.Add(labels)
	}

	leg := plot.NewLegend()
	for _, s := range fig.Legend {
		leg.Add(s.Label, scatters[s])
	}
	return p, leg, nil
}

func annotations(anns []pcoa.Annotation) (*plotter.Labels, error) {
	var xyl plotter.XYLabels
	for _, a := range anns {
		xyl.XYs = append(xyl.XYs, plotter.XY{X: a.X + a.DX, Y: a.Y + a.DY})
		xyl.Labels = append(xyl.Labels, a.Text)
	}
	labels, err := plotter.NewLabels(xyl)
	if err != nil {
		return nil, err
	}
	for i, a := range anns {
		labels.TextStyle[i].Color = a.Color
		if a.Bold {
			labels.TextStyle[i].Font.Weight = xfont.WeightBold
		}
	}
	return labels, nil
}

func xys(pts []pcoa.Point) plotter.XYs {
	out := make(plotter.XYs, len(pts))
	for i, p := range pts {
		out[i].X, out[i].Y = p.X, p.Y
	}
	return out
}

// renderFigure draws fig with its legend to the right.
func renderFigure(fig *pcoa.Figure) (*vgimg.Canvas, error) {
	p, leg, err := newPlot(fig)
	if err != nil {
		return nil, err
	}
	c := vgimg.NewWith(vgimg.UseWH(figWidth, figHeight), vgimg.UseDPI(figDPI))
	dc := draw.New(c)

	leg.Top, leg.Left = true, true
	r := leg.Rectangle(dc)
	lw := r.Max.X - r.Min.X
	pc := draw.Crop(dc, 0, -(lw + legendGap), 0, 0)
	setAspect(p, pc, fig.Aspect)
	p.Draw(pc)
	leg.Draw(draw.Crop(dc, dc.Max.X-dc.Min.X-lw, 0, 0, 0))
	return c, nil
}

// renderLegend draws only fig's legend on a canvas fitted to it.
func renderLegend(fig *pcoa.Figure) (*vgimg.Canvas, error) {
	_, leg, err := newPlot(fig)
	if err != nil {
		return nil, err
	}
	leg.TextStyle.Font.Size = vg.Points(12)
	leg.Top, leg.Left = true, true

	// Measure on a scratch canvas.
	r := leg.Rectangle(draw.New(vgimg.New(figWidth, figHeight)))
	w := r.Max.X - r.Min.X + 2*legendPad
	h := r.Max.Y - r.Min.Y + 2*legendPad

	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(figDPI))
	dc := draw.New(c)
	leg.Draw(draw.Crop(dc, legendPad, -legendPad, legendPad, -legendPad))
	return c, nil
}

func writePNG(w io.Writer, c *vgimg.Canvas) error {
	_, err := vgimg.PngCanvas{Canvas: c}.WriteTo(w)
	return err
}

// setAspect pads p's axis ranges and then widens one of them so that
// one Y unit spans aspect times the length of one X unit in c.
func setAspect(p *plot.Plot, c draw.Canvas, aspect float64) {
	xmin, xmax := padRange(p.X.Min, p.X.Max)
	ymin, ymax := padRange(p.Y.Min, p.Y.Max)
	p.X.Min, p.X.Max, p.Y.Min, p.Y.Max = xmin, xmax, ymin, ymax
	if !(aspect > 0) || math.IsInf(aspect, 0) {
		return
	}
	// The data area depends on the tick labels, which depend on
	// the ranges. Two passes are enough to settle.
	for i := 0; i < 2; i++ {
		da := p.DataCanvas(c)
		w := float64(da.Max.X - da.Min.X)
		h := float64(da.Max.Y - da.Min.Y)
		p.X.Min, p.X.Max, p.Y.Min, p.Y.Max = fitAspect(xmin, xmax, ymin, ymax, w, h, aspect)
	}
}

// padRange widens [min, max] by margin on each side. An empty range
// becomes [0, 1] and a degenerate one is widened by 0.5 each way.
func padRange(min, max float64) (float64, float64) {
	switch {
	case !(min <= max):
		return 0, 1
	case min == max:
		return min - 0.5, max + 0.5
	}
	d := (max - min) * margin
	return min - d, max + d
}

// fitAspect widens either the X or the Y range about its center so
// that, drawn in a w×h area, one Y unit is aspect times as long as
// one X unit. Ranges are never narrowed.
func fitAspect(xmin, xmax, ymin, ymax, w, h, aspect float64) (float64, float64, float64, float64) {
	xr, yr := xmax-xmin, ymax-ymin
	if w <= 0 || h <= 0 || xr <= 0 || yr <= 0 {
		return xmin, xmax, ymin, ymax
	}
	if want := h * xr / (w * aspect); want > yr {
		c := (ymin + ymax) / 2
		return xmin, xmax, c - want/2, c + want/2
	}
	want := yr * w * aspect / h
	c := (xmin + xmax) / 2
	return c - want/2, c + want/2, ymin, ymax
}
