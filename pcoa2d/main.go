// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command pcoa2d draws the 2D PCoA figure of the gut-to-soil
// composting manuscript.
//
// The render subcommand takes the figure's inputs and options as
// positional arguments, with boolean options spelled "True" or
// "False":
//
//	pcoa2d render metadata.tsv ordination.txt "Unweighted Unifrac" \
//	    True False plot.png False False False False False 3,10
//
// The visualize subcommand takes the same options as flags and writes
// a browsable report to an output directory: copies of the inputs,
// the figure as PNG and SVG, an optional separate legend, and an
// index.html.
//
// Study constants (metadata column names, sample type labels, bucket
// codes and weeks) can be overridden with a YAML file passed to
// --config.
package main

import (
	"fmt"
	"os"

	"github.com/caporaso-lab/gut-to-soil-manuscript-figures/pcoa"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/crypto/ssh/terminal"
)

// app holds state shared by the subcommands.
type app struct {
	configPath string
	verbose    bool

	logger  *zap.Logger
	logOpts []zap.Option
	config  *pcoa.Config
}

func newApp(opts ...zap.Option) *app {
	return &app{logger: zap.NewNop(), logOpts: opts}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "pcoa2d",
		Short:         "Draw the gut-to-soil 2D PCoA figure",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "read study constants from YAML `file`")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newRenderCmd(a), newVisualizeCmd(a))
	return root
}

// setup builds the logger and loads the study configuration.
func (a *app) setup() error {
	config := zap.NewProductionConfig()
	if os.Getenv("TERM") != "dumb" && terminal.IsTerminal(int(os.Stderr.Fd())) {
		config.Encoding = "console"
		config.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	if a.verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build(a.logOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	a.config = pcoa.DefaultConfig()
	if a.configPath != "" {
		f, err := os.Open(a.configPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if a.config, err = pcoa.LoadConfig(f); err != nil {
			return fmt.Errorf("%s: %w", a.configPath, err)
		}
		a.logger.Debug("loaded config", zap.String("path", a.configPath))
	}
	return nil
}

// execute runs root and flushes the logger, whether or not the
// command succeeded. Cobra skips post-run hooks on error.
func (a *app) execute(root *cobra.Command) error {
	err := root.Execute()
	_ = a.logger.Sync()
	return err
}

func main() {
	a := newApp()
	if err := a.execute(newRootCmd(a)); err != nil {
		fmt.Fprintf(os.Stderr, "pcoa2d: %v\n", err)
		os.Exit(1)
	}
}
