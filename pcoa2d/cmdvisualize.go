// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/caporaso-lab/gut-to-soil-manuscript-figures/metadata"
	"github.com/caporaso-lab/gut-to-soil-manuscript-figures/ordination"
	"github.com/caporaso-lab/gut-to-soil-manuscript-figures/pcoa"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Files written to the output directory.
const (
	stagedMetadata   = "metadata.tsv"
	stagedOrdination = "ordination.txt"
	plotPNG          = "pcoa_plot.png"
	plotSVG          = "pcoa_plot.svg"
	plotThumb        = "pcoa_plot_thumb.png"
	legendPNG        = "legend.png"
	indexHTML        = "index.html"
)

type visualizeFlags struct {
	metadata, ordination, outputDir string
	measure                         string
	highlighted                     string

	average, weekAnnotations bool
	invertX, invertY         bool
	swapAxes                 bool
	himalaya, pitToilet      bool
	exportLegend             bool
}

func newVisualizeCmd(a *app) *cobra.Command {
	var f visualizeFlags
	cmd := &cobra.Command{
		Use:   "visualize",
		Short: "Write the figure and an index.html report to a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.visualize(&f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.metadata, "metadata", "", "read sample metadata from TSV `file`")
	fl.StringVar(&f.ordination, "ordination", "", "read PCoA results from `file`")
	fl.StringVar(&f.outputDir, "output-dir", "", "write the report to `dir`")
	fl.StringVar(&f.measure, "measure", pcoa.DefaultMeasure, "name of the distance `measure` for the title")
	fl.BoolVar(&f.average, "average", false, "plot weekly means of all buckets")
	fl.BoolVar(&f.weekAnnotations, "week-annotations", false, "label highlighted trajectories with their weeks")
	fl.BoolVar(&f.invertX, "invert-x", false, "negate the first ordination axis")
	fl.BoolVar(&f.invertY, "invert-y", false, "negate the second ordination axis")
	fl.BoolVar(&f.swapAxes, "swap-axes", false, "plot the second ordination axis horizontally")
	fl.BoolVar(&f.himalaya, "himalaya", false, "include Himalaya samples")
	fl.BoolVar(&f.pitToilet, "pit-toilet", false, "include pit toilet samples")
	fl.BoolVar(&f.exportLegend, "export-legend", false, "also write the legend as a separate image")
	fl.StringVar(&f.highlighted, "highlighted-buckets", "", "highlight the comma-separated subject `buckets`")
	for _, name := range []string{"metadata", "ordination", "output-dir"} {
		cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) visualize(f *visualizeFlags) error {
	buckets, err := pcoa.ParseBuckets(f.highlighted)
	if err != nil {
		return err
	}
	r := &renderArgs{
		metadata:   filepath.Join(f.outputDir, stagedMetadata),
		ordination: filepath.Join(f.outputDir, stagedOrdination),
		saveAs:     filepath.Join(f.outputDir, plotPNG),
		opts: pcoa.Options{
			Measure:         f.measure,
			Average:         f.average,
			WeekAnnotations: f.weekAnnotations,
			InvertX:         f.invertX,
			InvertY:         f.invertY,
			SwapAxes:        f.swapAxes,
			Himalaya:        f.himalaya,
			PitToilet:       f.pitToilet,
			Highlighted:     buckets,
		},
	}

	ord, md, err := loadInputs(f.metadata, f.ordination)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.outputDir, 0777); err != nil {
		return err
	}
	if err := stage(r, ord, md); err != nil {
		return err
	}
	a.logger.Debug("equivalent render command",
		zap.String("command", shellquote.Join(append([]string{"pcoa2d", "render"}, r.args()...)...)))

	fig, err := a.build(ord, md, r.opts)
	if err != nil {
		return err
	}

	out := func(name string) string { return filepath.Join(f.outputDir, name) }
	var g errgroup.Group
	g.Go(func() error {
		c, err := renderFigure(fig)
		if err != nil {
			return err
		}
		if err := writeFile(out(plotPNG), func(w io.Writer) error { return writePNG(w, c) }); err != nil {
			return err
		}
		return writeFile(out(plotThumb), func(w io.Writer) error {
			return writeThumbnail(w, c.Image(), thumbFactor)
		})
	})
	g.Go(func() error {
		return writeFile(out(plotSVG), func(w io.Writer) error { return writeSVG(w, fig) })
	})
	if f.exportLegend {
		g.Go(func() error {
			c, err := renderLegend(fig)
			if err != nil {
				return err
			}
			return writeFile(out(legendPNG), func(w io.Writer) error { return writePNG(w, c) })
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}

	idx := &index{
		Title:  fig.Title,
		Plot:   plotPNG,
		Thumb:  plotThumb,
		SVG:    plotSVG,
		Series: fig.Legend,
	}
	if f.exportLegend {
		idx.Legend = legendPNG
	}
	if err := writeFile(out(indexHTML), func(w io.Writer) error { return writeIndex(w, idx) }); err != nil {
		return err
	}
	a.logger.Info("wrote report", zap.String("dir", f.outputDir))
	return nil
}

// stage writes copies of the inputs where r expects them.
func stage(r *renderArgs, ord *ordination.Results, md *metadata.Table) error {
	if err := writeFile(r.metadata, func(w io.Writer) error { return metadata.Write(w, md) }); err != nil {
		return err
	}
	return writeFile(r.ordination, func(w io.Writer) error { return ordination.Write(w, ord) })
}
