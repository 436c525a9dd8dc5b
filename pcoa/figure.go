// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pcoa assembles the gut-to-soil 2D PCoA figure: it selects
// samples by bucket, week and sample type, computes weekly means,
// and lays out the series, connecting lines, annotations and legend
// of the figure. Rendering is left to the caller.
package pcoa

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/aclements/go-moremath/stats"
	"github.com/caporaso-lab/gut-to-soil-manuscript-figures/internal/colormap"
	"github.com/caporaso-lab/gut-to-soil-manuscript-figures/metadata"
	"github.com/caporaso-lab/gut-to-soil-manuscript-figures/ordination"
)

// DefaultMeasure is the distance measure named in the title when
// none is given.
const DefaultMeasure = "Unweighted Unifrac"

// Marker is the shape of a scatter point.
type Marker int

const (
	Circle Marker = iota
	Triangle
	Star
)

// Style describes how a series' points are drawn.
type Style struct {
	Marker Marker

	// Face is the fill color. nil draws a hollow marker.
	Face color.Color

	// Edge is the outline color. nil draws no outline.
	Edge color.Color

	// Size is the marker area in square points.
	Size float64
}

// Point is a sample at its plot position.
type Point struct {
	// ID is the sample ID. It is empty for computed points such
	// as means.
	ID   string
	X, Y float64
}

// Series is a set of points drawn with one style and one legend
// entry.
type Series struct {
	Label  string
	Style  Style
	Points []Point
	Z      int
}

// Line connects points in order.
type Line struct {
	Points []Point
	Color  color.Color
	Width  float64 // points
	Dashed bool
	Z      int
}

// Draw layers. Marks in a higher layer are drawn over those in a
// lower one; within a layer, later marks are drawn over earlier ones.
const (
	layerBase = 1
	layerTop  = 2
)

// Mark is a series or a line of a Figure. Exactly one field is set.
type Mark struct {
	Series *Series
	Line   *Line
}

func (m Mark) z() int {
	if m.Series != nil {
		return m.Series.Z
	}
	return m.Line.Z
}

// Annotation is text placed near a point. The text is anchored at
// (X+DX, Y+DY) in data coordinates.
type Annotation struct {
	Text   string
	X, Y   float64
	DX, DY float64
	Color  color.Color
	Bold   bool
}

// Figure is a fully assembled PCoA plot.
type Figure struct {
	Title, XLabel, YLabel string

	// Aspect is the ratio of the display length of one Y unit to
	// that of one X unit.
	Aspect float64

	// Series and Lines list the scatter series and lines in the
	// order they were added.
	Series []*Series
	Lines  []*Line

	// Marks interleaves Series and Lines in the order they were
	// added. See DrawOrder.
	Marks []Mark

	Annotations []Annotation

	// Legend lists the series shown in the legend, in order.
	Legend []*Series

	// Buckets lists the highlighted buckets.
	Buckets []float64
}

// DrawOrder returns fig.Marks sorted by layer, keeping the order
// they were added within a layer. Annotations are drawn after all
// marks.
func (fig *Figure) DrawOrder() []Mark {
	marks := append([]Mark(nil), fig.Marks...)
	sort.SliceStable(marks, func(i, j int) bool { return marks[i].z() < marks[j].z() })
	return marks
}

// Options controls figure assembly.
type Options struct {
	// Measure names the distance measure in the title.
	Measure string

	// Average plots the weekly mean of all buckets' post-roll
	// samples as a trajectory.
	Average bool

	// WeekAnnotations labels every point of a highlighted
	// trajectory with its week instead of marking only its start
	// and end.
	WeekAnnotations bool

	// InvertX and InvertY negate the first and second ordination
	// axes, respectively. They apply before SwapAxes.
	InvertX, InvertY bool

	// SwapAxes plots the second ordination axis on X.
	SwapAxes bool

	// Himalaya and PitToilet add those sample sources.
	Himalaya, PitToilet bool

	// Highlighted lists buckets whose trajectories are drawn.
	Highlighted []float64

	// Config describes the study. If nil, DefaultConfig is used.
	Config *Config
}

var (
	colorBlack  = color.RGBA{0x00, 0x00, 0x00, 0xff}
	colorBrown  = color.RGBA{0x8c, 0x56, 0x4b, 0xff}
	colorGreen  = color.RGBA{0x00, 0x80, 0x00, 0xff}
	colorGray   = color.RGBA{0xc5, 0xc9, 0xc7, 0xff}
	colorMean   = color.RGBA{0x1f, 0x77, 0xb4, 0xff}
	colorRed    = color.RGBA{0xff, 0x00, 0x00, 0xff}
	colorBlue   = color.RGBA{0x00, 0x00, 0xff, 0xff}
	colorYellow = color.RGBA{0xbf, 0xbf, 0x00, 0xff}
	colorPurple = color.RGBA{0x80, 0x00, 0x80, 0xff}
)

const (
	pointSize      = 36
	meanSize       = 100
	startMeanSize  = 150
	lineWidth      = 1.5
	connectorWidth = 0.75

	// Annotation offsets in data units.
	startDX = 0.002
	endDX   = 0.005
	labelDY = 0.002
)

// builder accumulates a Figure. The first error sticks.
type builder struct {
	fig    *Figure
	coords Coords
	swap   bool
	err    error
}

func (b *builder) points(ids []string) []Point {
	xs, ys, err := SwapAxis(b.coords, ids, b.swap)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return nil
	}
	pts := make([]Point, len(ids))
	for i, id := range ids {
		pts[i] = Point{ID: id, X: xs[i], Y: ys[i]}
	}
	return pts
}

// mean returns the mean position of ids, or false if ids is empty.
func (b *builder) mean(ids []string) (Point, bool) {
	if len(ids) == 0 {
		return Point{}, false
	}
	xs, ys, err := SwapAxis(b.coords, ids, b.swap)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return Point{}, false
	}
	return Point{X: stats.Mean(xs), Y: stats.Mean(ys)}, true
}

func (b *builder) series(label string, style Style, pts []Point) *Series {
	s := &Series{Label: label, Style: style, Points: pts, Z: layerBase}
	b.fig.Series = append(b.fig.Series, s)
	b.fig.Marks = append(b.fig.Marks, Mark{Series: s})
	return s
}

func (b *builder) line(pts []Point, c color.Color, width float64, dashed bool, z int) {
	l := &Line{Points: pts, Color: c, Width: width, Dashed: dashed, Z: z}
	b.fig.Lines = append(b.fig.Lines, l)
	b.fig.Marks = append(b.fig.Marks, Mark{Line: l})
}

func (b *builder) annotate(text string, p Point, dx float64, c color.Color) {
	b.fig.Annotations = append(b.fig.Annotations, Annotation{
		Text: text, X: p.X, Y: p.Y, DX: dx, DY: labelDY, Color: c, Bold: true,
	})
}

// Build assembles the PCoA figure for the samples of ord described
// by md.
func Build(ord *ordination.Results, md *metadata.Table, opts Options) (*Figure, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if opts.Measure == "" {
		opts.Measure = DefaultMeasure
	}

	raw, err := ord.Coords2D()
	if err != nil {
		return nil, err
	}
	coords := make(Coords, len(raw))
	for id, c := range raw {
		if opts.InvertX {
			c[0] = -c[0]
		}
		if opts.InvertY {
			c[1] = -c[1]
		}
		coords[id] = c
	}

	pe := ord.ProportionExplained
	if len(pe) < 2 {
		return nil, fmt.Errorf("ordination explains %d axes; need 2", len(pe))
	}
	fig := &Figure{XLabel: "PCOA 1", YLabel: "PCOA 2", Aspect: pe[1] / pe[0]}
	if opts.SwapAxes {
		fig.XLabel, fig.YLabel, fig.Aspect = "PCOA 2", "PCOA 1", pe[0]/pe[1]
	}

	samples, err := loadSamples(md, ord.Samples.IDs, cfg, opts.Himalaya)
	if err != nil {
		return nil, err
	}
	weekOf := make(map[string]float64, len(samples))
	for _, s := range samples {
		weekOf[s.ID] = s.Week
	}

	st, bk, wk := cfg.SampleTypes, cfg.Buckets, cfg.Weeks
	b := &builder{fig: fig, coords: coords, swap: opts.SwapAxes}
	byBucket := func(code float64) []string {
		return present(filter(samples, func(s *Sample) bool { return s.Bucket == code }), coords)
	}

	// Subject buckets, their baseline (fecal) samples, and bulking
	// material.
	subjects := filter(samples, func(s *Sample) bool { return cfg.isSubject(s.Bucket) })
	fecal := present(filter(subjects, func(s *Sample) bool { return s.Week == wk.Baseline }), coords)
	bulking := present(filter(samples, func(s *Sample) bool { return s.Type == st.Bulking }), coords)

	var hl *Highlights
	if len(opts.Highlighted) > 0 {
		hl = HighlightBuckets(opts.Highlighted, samples, coords, cfg)
	}

	// Subject samples other than baseline and highlighted ones.
	exclude := make(map[string]bool)
	for _, id := range fecal {
		exclude[id] = true
	}
	if hl != nil {
		for id := range hl.Set {
			exclude[id] = true
		}
	}
	var others []string
	for _, id := range present(subjects, coords) {
		if !exclude[id] {
			others = append(others, id)
		}
	}

	fecalS := b.series("HE (other subjects)", Style{Circle, nil, colorBrown, pointSize}, b.points(fecal))
	bulkingS := b.series("Bulking Material (other subjects)", Style{Circle, nil, colorGreen, pointSize}, b.points(bulking))
	othersS := b.series("HEC (other subjects)", Style{Triangle, nil, colorGray, pointSize}, b.points(others))

	// Weekly means of all buckets' post-roll samples.
	var (
		meanS, heMeanS, bulkMeanS *Series
		means                     []Point
		firstMean, lastMean       = -1, -1
		heMean, bulkMean          Point
		haveHEMean, haveBulkMean  bool
	)
	if opts.Average {
		for _, w := range distinctWeeks(samples, wk.First, wk.Last) {
			ids := present(filter(samples, func(s *Sample) bool {
				return s.Week == w && s.Type == st.PostRoll
			}), coords)
			m, ok := b.mean(ids)
			if !ok {
				continue
			}
			if w == wk.First {
				firstMean = len(means)
			}
			if w == wk.Last {
				lastMean = len(means)
			}
			means = append(means, m)
		}
		meanS = b.series("HEC (Weekly Mean)", Style{Star, colorMean, nil, meanSize}, means)

		if hl == nil {
			heMean, haveHEMean = b.mean(present(filter(samples, func(s *Sample) bool {
				return s.Type == st.Self && s.Week == wk.Baseline
			}), coords))
			bulkMean, haveBulkMean = b.mean(present(filter(samples, func(s *Sample) bool {
				return s.Type == st.Bulking && s.Week == wk.Baseline
			}), coords))
			heMeanS = b.series("HE (Weekly Mean)", Style{Star, colorBrown, colorBlack, startMeanSize}, optPoint(heMean, haveHEMean))
			bulkMeanS = b.series("Bulking Material (Weekly Mean)", Style{Star, colorGreen, colorBlack, startMeanSize}, optPoint(bulkMean, haveBulkMean))
		}
	}

	soilS := b.series("Soil", Style{Circle, colorBlack, nil, pointSize}, b.points(byBucket(bk.Soil)))
	compostS := b.series("Food and Yard Waste Compost", Style{Circle, colorRed, nil, pointSize}, b.points(byBucket(bk.FoodCompost)))
	var himalayaS, pitToiletS *Series
	if opts.Himalaya {
		himalayaS = b.series("Himalaya", Style{Circle, colorBlue, nil, pointSize}, b.points(byBucket(bk.Himalaya)))
	}
	if opts.PitToilet {
		pitToiletS = b.series("Pit Toilet", Style{Circle, colorYellow, nil, pointSize}, b.points(byBucket(bk.PitToilet)))
	}

	// Highlighted buckets.
	if hl != nil {
		for _, bucket := range hl.Buckets {
			start := hl.Starts[bucket]
			he, bm, hec := b.points(start.HE), b.points(start.Bulking), b.points(start.HEC)
			if len(hec) > 0 {
				for _, p := range he {
					b.line([]Point{p, hec[0]}, colorGray, connectorWidth, true, layerBase)
				}
				for _, p := range bm {
					b.line([]Point{p, hec[0]}, colorGray, connectorWidth, true, layerBase)
				}
			}
			fig.Legend = append(fig.Legend,
				b.series(fmt.Sprintf("HE (Subject #%s)", pyFloat(bucket)), Style{Circle, colorBrown, nil, pointSize}, he),
				b.series(fmt.Sprintf("Bulking Material (Subject #%s)", pyFloat(bucket)), Style{Circle, colorGreen, nil, pointSize}, bm))
		}

		colors := colormap.Sample(colormap.Viridis, len(hl.Buckets))
		for i, bucket := range hl.Buckets {
			traj := b.points(hl.Trajectories[bucket])
			// The trajectory passes under its own points.
			b.line(traj, colorBlack, lineWidth, false, layerBase)
			fig.Legend = append(fig.Legend,
				b.series(fmt.Sprintf("HEC (Subject #%s)", pyFloat(bucket)), Style{Triangle, colors[i], colorBlack, pointSize}, traj))
			fig.Buckets = append(fig.Buckets, bucket)

			switch {
			case opts.WeekAnnotations:
				for _, p := range traj {
					b.annotate(strconv.Itoa(int(weekOf[p.ID])), p, startDX, colorPurple)
				}
			case len(traj) > 0:
				b.annotate("Start", traj[0], startDX, colorPurple)
				b.annotate("End", traj[len(traj)-1], endDX, colorPurple)
			}
		}
	}

	fig.Legend = append(fig.Legend, fecalS, bulkingS, othersS)
	if opts.Average {
		if hl == nil {
			fig.Legend = append(fig.Legend, heMeanS, bulkMeanS)
		}
		fig.Legend = append(fig.Legend, meanS)
	}
	fig.Legend = append(fig.Legend, compostS, soilS)
	if himalayaS != nil {
		fig.Legend = append(fig.Legend, himalayaS)
	}
	if pitToiletS != nil {
		fig.Legend = append(fig.Legend, pitToiletS)
	}

	if opts.Average {
		b.line(means, colorMean, lineWidth, false, layerTop)
		if firstMean >= 0 {
			b.annotate("Start", means[firstMean], startDX, colorBlack)
		}
		if lastMean >= 0 {
			b.annotate("End", means[lastMean], endDX, colorBlack)
		}
		if hl == nil && firstMean >= 0 {
			if haveHEMean {
				b.line([]Point{heMean, means[firstMean]}, colorGray, connectorWidth, true, layerTop)
			}
			if haveBulkMean {
				b.line([]Point{bulkMean, means[firstMean]}, colorGray, connectorWidth, true, layerTop)
			}
		}
	}

	if b.err != nil {
		return nil, b.err
	}
	fig.Title = fmt.Sprintf("2D %s for Subject(s) %s", opts.Measure, pyList(fig.Buckets))
	return fig, nil
}

// distinctWeeks returns the distinct weeks in [first, last], in
// increasing order.
func distinctWeeks(samples []Sample, first, last float64) []float64 {
	seen := make(map[float64]bool)
	var weeks []float64
	for _, s := range samples {
		if s.Week >= first && s.Week <= last && !seen[s.Week] {
			seen[s.Week] = true
			weeks = append(weeks, s.Week)
		}
	}
	sort.Float64s(weeks)
	return weeks
}

func optPoint(p Point, ok bool) []Point {
	if !ok {
		return nil
	}
	return []Point{p}
}

// pyFloat formats v the way the manuscript labels subjects, always
// with a fractional part ("3.0").
func pyFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func pyList(vs []float64) string {
	strs := make([]string, len(vs))
	for i, v := range vs {
		strs[i] = pyFloat(v)
	}
	return "[" + strings.Join(strs, ", ") + "]"
}
