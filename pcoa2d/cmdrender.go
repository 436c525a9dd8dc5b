// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/caporaso-lab/gut-to-soil-manuscript-figures/metadata"
	"github.com/caporaso-lab/gut-to-soil-manuscript-figures/ordination"
	"github.com/caporaso-lab/gut-to-soil-manuscript-figures/pcoa"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newRenderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "render METADATA ORDINATION MEASURE AVERAGE WEEK_ANNOTATIONS SAVE_AS INVERT_X INVERT_Y SWAP_AXES HIMALAYA PIT_TOILET [HIGHLIGHTED_BUCKETS]",
		Short: "Render the figure to a PNG file",
		Long: `Render the figure to a PNG file.

AVERAGE, WEEK_ANNOTATIONS, INVERT_X, INVERT_Y, SWAP_AXES, HIMALAYA and
PIT_TOILET must each be True or False. HIGHLIGHTED_BUCKETS is a
comma-separated list of subject buckets, such as 3,10.`,
		Args: cobra.RangeArgs(11, 12),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseRenderArgs(args)
			if err != nil {
				return err
			}
			return a.render(r)
		},
	}
}

// renderArgs are the positional arguments of the render subcommand.
type renderArgs struct {
	metadata, ordination, saveAs string
	opts                         pcoa.Options
}

func parseRenderArgs(args []string) (*renderArgs, error) {
	if len(args) < 11 || len(args) > 12 {
		return nil, fmt.Errorf("want 11 or 12 arguments, got %d", len(args))
	}
	r := &renderArgs{metadata: args[0], ordination: args[1], saveAs: args[5]}
	r.opts.Measure = args[2]
	for _, f := range []struct {
		name string
		dst  *bool
		val  string
	}{
		{"average", &r.opts.Average, args[3]},
		{"week_annotations", &r.opts.WeekAnnotations, args[4]},
		{"invert_x", &r.opts.InvertX, args[6]},
		{"invert_y", &r.opts.InvertY, args[7]},
		{"swap_axes", &r.opts.SwapAxes, args[8]},
		{"himalaya", &r.opts.Himalaya, args[9]},
		{"pit_toilet", &r.opts.PitToilet, args[10]},
	} {
		v, err := pcoa.ParseFlag(f.name, f.val)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	if len(args) == 12 {
		var err error
		if r.opts.Highlighted, err = pcoa.ParseBuckets(args[11]); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// args is the inverse of parseRenderArgs.
func (r *renderArgs) args() []string {
	o := &r.opts
	args := []string{
		r.metadata, r.ordination, o.Measure,
		pcoa.FormatFlag(o.Average), pcoa.FormatFlag(o.WeekAnnotations),
		r.saveAs,
		pcoa.FormatFlag(o.InvertX), pcoa.FormatFlag(o.InvertY), pcoa.FormatFlag(o.SwapAxes),
		pcoa.FormatFlag(o.Himalaya), pcoa.FormatFlag(o.PitToilet),
	}
	if len(o.Highlighted) > 0 {
		args = append(args, pcoa.FormatBuckets(o.Highlighted))
	}
	return args
}

func (a *app) render(r *renderArgs) error {
	ord, md, err := loadInputs(r.metadata, r.ordination)
	if err != nil {
		return err
	}
	fig, err := a.build(ord, md, r.opts)
	if err != nil {
		return err
	}
	c, err := renderFigure(fig)
	if err != nil {
		return err
	}
	if err := writeFile(r.saveAs, func(w io.Writer) error { return writePNG(w, c) }); err != nil {
		return err
	}
	a.logger.Info("wrote figure", zap.String("path", r.saveAs))
	return nil
}

// build assembles the figure with the app's study configuration.
func (a *app) build(ord *ordination.Results, md *metadata.Table, opts pcoa.Options) (*pcoa.Figure, error) {
	opts.Config = a.config
	fig, err := pcoa.Build(ord, md, opts)
	if err != nil {
		return nil, err
	}
	plotted := 0
	for _, s := range fig.Series {
		a.logger.Debug("series", zap.String("label", s.Label), zap.Int("points", len(s.Points)))
		for _, p := range s.Points {
			if p.ID != "" {
				plotted++
			}
		}
	}
	a.logger.Debug("assembled figure",
		zap.String("title", fig.Title),
		zap.Int("ordination samples", ord.Samples.Rows()),
		zap.Int("plotted points", plotted),
		zap.Int("lines", len(fig.Lines)),
		zap.Int("annotations", len(fig.Annotations)))
	return fig, nil
}

// loadInputs reads the metadata and ordination files concurrently.
func loadInputs(metadataPath, ordinationPath string) (*ordination.Results, *metadata.Table, error) {
	var (
		g   errgroup.Group
		ord *ordination.Results
		md  *metadata.Table
	)
	g.Go(func() error {
		f, err := os.Open(ordinationPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if ord, err = ordination.Read(f); err != nil {
			return fmt.Errorf("%s: %w", ordinationPath, err)
		}
		return nil
	})
	g.Go(func() error {
		f, err := os.Open(metadataPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if md, err = metadata.Read(f); err != nil {
			return fmt.Errorf("%s: %w", metadataPath, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return ord, md, nil
}

// writeFile creates path and passes it to write.
func writeFile(path string, write func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
