// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pcoa

import (
	"errors"
	"strings"
	"testing"

	"github.com/caporaso-lab/gut-to-soil-manuscript-figures/metadata"
	"github.com/caporaso-lab/gut-to-soil-manuscript-figures/ordination"
	"github.com/google/go-cmp/cmp"
)

// Coordinates are exact binary fractions so means compare exactly.
const testOrdination = `Eigvals	3
4	2	2

Proportion explained	3
0.5	0.25	0.25

Species	0	0

Site	14	3
s3_he	0.5	0.25	0
s3_bm	0.75	0.5	0
s3_w1	0.25	0.125	0
s3_w2	0.125	0.25	0
s3_w52	-0.25	0.5	0
s5_he	-0.5	-0.25	0
s5_bm	-0.25	-0.5	0
s5_w1	-0.25	0.375	0
s5_w52	-0.5	0.25	0
soil1	1	1	0
fc1	-1	1	0
hi1	1	-1	0
pt1	-1	-1	0
other1	0	0	0

Biplot	0	0

Site constraints	0	0
`

const testMetadata = `sample-id	Bucket	Week	SampleType2
s3_he	3	0	Self Sample
s3_bm	3	0	Bulking Material
s3_w1	3	1	Compost Post-Roll
s3_w2	3	2	Compost Post-Roll
s3_w52	3	52	Compost Post-Roll
s5_he	5	0	Self Sample
s5_bm	5	0	Bulking Material
s5_w1	5	1	Compost Post-Roll
s5_w52	5	52	Compost Post-Roll
soil1	0		EMP-Soils
fc1	17		Food-Compost
hi1	18		Himalaya
pt1	19		Pit Toilet
other1	3	1	Extraction Blank
extra	4	1	Compost Post-Roll
`

func testInputs(t *testing.T) (*ordination.Results, *metadata.Table) {
	t.Helper()
	ord, err := ordination.Read(strings.NewReader(testOrdination))
	if err != nil {
		t.Fatal(err)
	}
	md, err := metadata.Read(strings.NewReader(testMetadata))
	if err != nil {
		t.Fatal(err)
	}
	return ord, md
}

func build(t *testing.T, opts Options) *Figure {
	t.Helper()
	ord, md := testInputs(t)
	fig, err := Build(ord, md, opts)
	if err != nil {
		t.Fatal(err)
	}
	return fig
}

// buildWithout builds the figure with the drop samples removed from
// the ordination.
func buildWithout(t *testing.T, opts Options, drop ...string) *Figure {
	t.Helper()
	ord, md := testInputs(t)
	skip := make(map[string]bool)
	for _, id := range drop {
		skip[id] = true
	}
	var m ordination.Matrix
	for i, id := range ord.Samples.IDs {
		if !skip[id] {
			m.IDs = append(m.IDs, id)
			m.Data = append(m.Data, ord.Samples.Data[i])
		}
	}
	ord.Samples = m
	fig, err := Build(ord, md, opts)
	if err != nil {
		t.Fatal(err)
	}
	return fig
}

func annotationTexts(fig *Figure) []string {
	var out []string
	for _, a := range fig.Annotations {
		out = append(out, a.Text)
	}
	return out
}

func labels(series []*Series) []string {
	var out []string
	for _, s := range series {
		out = append(out, s.Label)
	}
	return out
}

func seriesIDs(fig *Figure, label string) []string {
	for _, s := range fig.Series {
		if s.Label == label {
			ids := []string{}
			for _, p := range s.Points {
				ids = append(ids, p.ID)
			}
			return ids
		}
	}
	return nil
}

func findSeries(t *testing.T, fig *Figure, label string) *Series {
	t.Helper()
	for _, s := range fig.Series {
		if s.Label == label {
			return s
		}
	}
	t.Fatalf("no series %q; have %q", label, labels(fig.Series))
	return nil
}

func TestBuildDefault(t *testing.T) {
	fig := build(t, Options{})

	if want := "2D Unweighted Unifrac for Subject(s) []"; fig.Title != want {
		t.Errorf("title = %q, want %q", fig.Title, want)
	}
	if fig.XLabel != "PCOA 1" || fig.YLabel != "PCOA 2" || fig.Aspect != 0.5 {
		t.Errorf("axes = %q, %q, aspect %v; want PCOA 1, PCOA 2, aspect 0.5", fig.XLabel, fig.YLabel, fig.Aspect)
	}

	wantSeries := []string{
		"HE (other subjects)",
		"Bulking Material (other subjects)",
		"HEC (other subjects)",
		"Soil",
		"Food and Yard Waste Compost",
	}
	if diff := cmp.Diff(wantSeries, labels(fig.Series)); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}
	wantLegend := []string{
		"HE (other subjects)",
		"Bulking Material (other subjects)",
		"HEC (other subjects)",
		"Food and Yard Waste Compost",
		"Soil",
	}
	if diff := cmp.Diff(wantLegend, labels(fig.Legend)); diff != "" {
		t.Errorf("legend mismatch (-want +got):\n%s", diff)
	}

	for label, want := range map[string][]string{
		// Every subject sample at baseline, in week order.
		"HE (other subjects)":               {"s3_he", "s3_bm", "s5_he", "s5_bm"},
		"Bulking Material (other subjects)": {"s3_bm", "s5_bm"},
		"HEC (other subjects)":              {"s3_w1", "s5_w1", "s3_w2", "s3_w52", "s5_w52"},
		"Soil":                              {"soil1"},
		"Food and Yard Waste Compost":       {"fc1"},
	} {
		if diff := cmp.Diff(want, seriesIDs(fig, label)); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", label, diff)
		}
	}

	if len(fig.Lines) != 0 || len(fig.Annotations) != 0 {
		t.Errorf("got %d lines and %d annotations, want none", len(fig.Lines), len(fig.Annotations))
	}
}

func TestBuildHighlighted(t *testing.T) {
	fig := build(t, Options{Measure: "Jaccard", Highlighted: []float64{3}})

	if want := "2D Jaccard for Subject(s) [3.0]"; fig.Title != want {
		t.Errorf("title = %q, want %q", fig.Title, want)
	}
	wantLegend := []string{
		"HE (Subject #3.0)",
		"Bulking Material (Subject #3.0)",
		"HEC (Subject #3.0)",
		"HE (other subjects)",
		"Bulking Material (other subjects)",
		"HEC (other subjects)",
		"Food and Yard Waste Compost",
		"Soil",
	}
	if diff := cmp.Diff(wantLegend, labels(fig.Legend)); diff != "" {
		t.Errorf("legend mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"s3_w1", "s3_w2", "s3_w52"}, seriesIDs(fig, "HEC (Subject #3.0)")); diff != "" {
		t.Errorf("trajectory mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"s5_w1", "s5_w52"}, seriesIDs(fig, "HEC (other subjects)")); diff != "" {
		t.Errorf("other subjects mismatch (-want +got):\n%s", diff)
	}

	// Two dashed connectors into week 1, then the trajectory.
	if len(fig.Lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(fig.Lines))
	}
	for i, l := range fig.Lines[:2] {
		if !l.Dashed || l.Points[1] != (Point{"s3_w1", 0.25, 0.125}) {
			t.Errorf("line %d = %+v, want dashed connector to s3_w1", i, l)
		}
	}
	if traj := fig.Lines[2]; traj.Dashed || len(traj.Points) != 3 {
		t.Errorf("trajectory line = %+v", traj)
	}

	wantAnn := []Annotation{
		{Text: "Start", X: 0.25, Y: 0.125, DX: startDX, DY: labelDY, Color: colorPurple, Bold: true},
		{Text: "End", X: -0.25, Y: 0.5, DX: endDX, DY: labelDY, Color: colorPurple, Bold: true},
	}
	if diff := cmp.Diff(wantAnn, fig.Annotations); diff != "" {
		t.Errorf("annotations mismatch (-want +got):\n%s", diff)
	}

	hec := findSeries(t, fig, "HEC (Subject #3.0)")
	if hec.Style.Marker != Triangle || hec.Style.Edge != colorBlack || hec.Style.Face == nil {
		t.Errorf("highlighted style = %+v", hec.Style)
	}
}

func TestBuildWeekAnnotations(t *testing.T) {
	fig := build(t, Options{Highlighted: []float64{3, 5}, WeekAnnotations: true})

	if want := "2D Unweighted Unifrac for Subject(s) [3.0, 5.0]"; fig.Title != want {
		t.Errorf("title = %q, want %q", fig.Title, want)
	}
	var got []string
	for _, a := range fig.Annotations {
		got = append(got, a.Text)
	}
	if diff := cmp.Diff([]string{"1", "2", "52", "1", "52"}, got); diff != "" {
		t.Errorf("annotations mismatch (-want +got):\n%s", diff)
	}

	c3 := findSeries(t, fig, "HEC (Subject #3.0)").Style.Face
	c5 := findSeries(t, fig, "HEC (Subject #5.0)").Style.Face
	if c3 == c5 {
		t.Errorf("highlighted buckets share color %v", c3)
	}
	if ids := seriesIDs(fig, "HEC (other subjects)"); len(ids) != 0 {
		t.Errorf("other subjects = %v, want none", ids)
	}
}

func TestBuildAverage(t *testing.T) {
	fig := build(t, Options{Average: true})

	wantLegend := []string{
		"HE (other subjects)",
		"Bulking Material (other subjects)",
		"HEC (other subjects)",
		"HE (Weekly Mean)",
		"Bulking Material (Weekly Mean)",
		"HEC (Weekly Mean)",
		"Food and Yard Waste Compost",
		"Soil",
	}
	if diff := cmp.Diff(wantLegend, labels(fig.Legend)); diff != "" {
		t.Errorf("legend mismatch (-want +got):\n%s", diff)
	}

	means := []Point{{X: 0, Y: 0.25}, {X: 0.125, Y: 0.25}, {X: -0.375, Y: 0.375}}
	if diff := cmp.Diff(means, findSeries(t, fig, "HEC (Weekly Mean)").Points); diff != "" {
		t.Errorf("weekly means mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Point{{X: 0, Y: 0}}, findSeries(t, fig, "HE (Weekly Mean)").Points); diff != "" {
		t.Errorf("HE mean mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Point{{X: 0.25, Y: 0}}, findSeries(t, fig, "Bulking Material (Weekly Mean)").Points); diff != "" {
		t.Errorf("bulking mean mismatch (-want +got):\n%s", diff)
	}

	wantLines := []*Line{
		{Points: means, Color: colorMean, Width: lineWidth, Z: layerTop},
		{Points: []Point{{X: 0, Y: 0}, means[0]}, Color: colorGray, Width: connectorWidth, Dashed: true, Z: layerTop},
		{Points: []Point{{X: 0.25, Y: 0}, means[0]}, Color: colorGray, Width: connectorWidth, Dashed: true, Z: layerTop},
	}
	if diff := cmp.Diff(wantLines, fig.Lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
	wantAnn := []Annotation{
		{Text: "Start", X: 0, Y: 0.25, DX: startDX, DY: labelDY, Color: colorBlack, Bold: true},
		{Text: "End", X: -0.375, Y: 0.375, DX: endDX, DY: labelDY, Color: colorBlack, Bold: true},
	}
	if diff := cmp.Diff(wantAnn, fig.Annotations); diff != "" {
		t.Errorf("annotations mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildAverageHighlighted(t *testing.T) {
	fig := build(t, Options{Average: true, Highlighted: []float64{5}})
	for _, l := range labels(fig.Series) {
		if l == "HE (Weekly Mean)" || l == "Bulking Material (Weekly Mean)" {
			t.Errorf("baseline mean %q drawn with highlighted buckets", l)
		}
	}
	got := labels(fig.Legend)
	if got[len(got)-3] != "HEC (Weekly Mean)" {
		t.Errorf("legend = %q; want weekly mean before compost and soil", got)
	}
}

func TestBuildHighlightedEmptyBucket(t *testing.T) {
	fig := build(t, Options{Highlighted: []float64{9}})

	if want := "2D Unweighted Unifrac for Subject(s) [9.0]"; fig.Title != want {
		t.Errorf("title = %q, want %q", fig.Title, want)
	}
	wantLegend := []string{
		"HE (Subject #9.0)",
		"Bulking Material (Subject #9.0)",
		"HEC (Subject #9.0)",
		"HE (other subjects)",
		"Bulking Material (other subjects)",
		"HEC (other subjects)",
		"Food and Yard Waste Compost",
		"Soil",
	}
	if diff := cmp.Diff(wantLegend, labels(fig.Legend)); diff != "" {
		t.Errorf("legend mismatch (-want +got):\n%s", diff)
	}
	for _, label := range wantLegend[:3] {
		if n := len(findSeries(t, fig, label).Points); n != 0 {
			t.Errorf("%s has %d points, want 0", label, n)
		}
	}
	for i, l := range fig.Lines {
		if len(l.Points) >= 2 {
			t.Errorf("line %d = %+v, want nothing drawn", i, l)
		}
	}
	if len(fig.Annotations) != 0 {
		t.Errorf("annotations = %q, want none", annotationTexts(fig))
	}
}

func TestBuildHighlightedNoFirstWeek(t *testing.T) {
	fig := buildWithout(t, Options{Highlighted: []float64{3}}, "s3_w1")

	if diff := cmp.Diff([]string{"s3_w2", "s3_w52"}, seriesIDs(fig, "HEC (Subject #3.0)")); diff != "" {
		t.Errorf("trajectory mismatch (-want +got):\n%s", diff)
	}
	// No connectors, only the trajectory.
	if len(fig.Lines) != 1 || fig.Lines[0].Dashed {
		t.Errorf("lines = %+v, want only the trajectory", fig.Lines)
	}
	if diff := cmp.Diff([]string{"Start", "End"}, annotationTexts(fig)); diff != "" {
		t.Errorf("annotations mismatch (-want +got):\n%s", diff)
	}
	// The baseline samples are still drawn.
	if diff := cmp.Diff([]string{"s3_he"}, seriesIDs(fig, "HE (Subject #3.0)")); diff != "" {
		t.Errorf("HE mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildAverageMissingWeeks(t *testing.T) {
	for _, test := range []struct {
		name      string
		drop      []string
		wantMeans []Point
		wantAnn   []string
		wantLines int
	}{
		{
			name:      "no last week",
			drop:      []string{"s3_w52", "s5_w52"},
			wantMeans: []Point{{X: 0, Y: 0.25}, {X: 0.125, Y: 0.25}},
			wantAnn:   []string{"Start"},
			// The mean trajectory and both connectors.
			wantLines: 3,
		},
		{
			name:      "no first week",
			drop:      []string{"s3_w1", "s5_w1"},
			wantMeans: []Point{{X: 0.125, Y: 0.25}, {X: -0.375, Y: 0.375}},
			wantAnn:   []string{"End"},
			// Connectors end at the first week's mean.
			wantLines: 1,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			fig := buildWithout(t, Options{Average: true}, test.drop...)
			if diff := cmp.Diff(test.wantMeans, findSeries(t, fig, "HEC (Weekly Mean)").Points); diff != "" {
				t.Errorf("weekly means mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(test.wantAnn, annotationTexts(fig)); diff != "" {
				t.Errorf("annotations mismatch (-want +got):\n%s", diff)
			}
			if len(fig.Lines) != test.wantLines {
				t.Errorf("got %d lines, want %d", len(fig.Lines), test.wantLines)
			}
		})
	}
}

func TestDrawOrder(t *testing.T) {
	fig := build(t, Options{Average: true, Highlighted: []float64{3}})

	var order []string
	for _, m := range fig.DrawOrder() {
		switch {
		case m.Series != nil:
			order = append(order, m.Series.Label)
		case m.Line.Color == colorBlack:
			order = append(order, "trajectory")
		case m.Line.Color == colorMean:
			order = append(order, "mean line")
		case m.Line.Dashed:
			order = append(order, "connector")
		}
	}
	want := []string{
		"HE (other subjects)",
		"Bulking Material (other subjects)",
		"HEC (other subjects)",
		"HEC (Weekly Mean)",
		"Soil",
		"Food and Yard Waste Compost",
		"connector",
		"connector",
		"HE (Subject #3.0)",
		"Bulking Material (Subject #3.0)",
		"trajectory",
		"HEC (Subject #3.0)",
		"mean line",
	}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("draw order mismatch (-want +got):\n%s", diff)
	}
	if len(fig.Marks) != len(fig.Series)+len(fig.Lines) {
		t.Errorf("%d marks for %d series and %d lines", len(fig.Marks), len(fig.Series), len(fig.Lines))
	}
}

func TestBuildSwapInvert(t *testing.T) {
	fig := build(t, Options{SwapAxes: true, InvertX: true})
	if fig.XLabel != "PCOA 2" || fig.YLabel != "PCOA 1" || fig.Aspect != 2 {
		t.Errorf("axes = %q, %q, aspect %v; want PCOA 2, PCOA 1, aspect 2", fig.XLabel, fig.YLabel, fig.Aspect)
	}
	// InvertX negates ordination axis 1, which is then plotted on Y.
	soil := findSeries(t, fig, "Soil").Points
	if diff := cmp.Diff([]Point{{"soil1", 1, -1}}, soil); diff != "" {
		t.Errorf("soil mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildOptionalSources(t *testing.T) {
	fig := build(t, Options{Himalaya: true, PitToilet: true})
	got := labels(fig.Legend)
	if diff := cmp.Diff([]string{"Himalaya", "Pit Toilet"}, got[len(got)-2:]); diff != "" {
		t.Errorf("legend tail mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"hi1"}, seriesIDs(fig, "Himalaya")); diff != "" {
		t.Errorf("himalaya mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"pt1"}, seriesIDs(fig, "Pit Toilet")); diff != "" {
		t.Errorf("pit toilet mismatch (-want +got):\n%s", diff)
	}

	// Without the flag, Himalaya samples are dropped entirely.
	fig = build(t, Options{})
	if ids := seriesIDs(fig, "Himalaya"); ids != nil {
		t.Errorf("Himalaya series present without flag: %v", ids)
	}
}

func TestBuildErrors(t *testing.T) {
	ord, md := testInputs(t)

	ord.Samples.IDs = append(ord.Samples.IDs, "ghost")
	ord.Samples.Data = append(ord.Samples.Data, []float64{0, 0, 0})
	if _, err := Build(ord, md, Options{}); !errors.Is(err, ErrMissingSample) {
		t.Errorf("ordination sample without metadata: got %v, want ErrMissingSample", err)
	}

	ord, md = testInputs(t)
	ord.ProportionExplained = ord.ProportionExplained[:1]
	if _, err := Build(ord, md, Options{}); err == nil {
		t.Errorf("one proportion explained: want error")
	}

	ord, md = testInputs(t)
	cfg := DefaultConfig()
	cfg.Columns.Week = "Day"
	if _, err := Build(ord, md, Options{Config: cfg}); err == nil || !strings.Contains(err.Error(), `"Day"`) {
		t.Errorf("missing week column: got %v", err)
	}
}

func TestPyList(t *testing.T) {
	for _, test := range []struct {
		in   []float64
		want string
	}{
		{nil, "[]"},
		{[]float64{3}, "[3.0]"},
		{[]float64{3, 10.5}, "[3.0, 10.5]"},
	} {
		if got := pyList(test.in); got != test.want {
			t.Errorf("pyList(%v) = %q, want %q", test.in, got, test.want)
		}
	}
}
