package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/YuminosukeSato/trafobench/dataset"
	"github.com/YuminosukeSato/trafobench/evaluation"
	"github.com/YuminosukeSato/trafobench/experiment"
	"github.com/YuminosukeSato/trafobench/pkg/config"
	"github.com/YuminosukeSato/trafobench/pkg/errors"
	"github.com/YuminosukeSato/trafobench/pkg/log"
	"github.com/YuminosukeSato/trafobench/plotting"
)

// runAnalysis loads and filters the table, runs the experiment, writes the
// report and prints the per-variant means to stdout. Logs go to stderr.
func runAnalysis(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	logger, err := log.SetupLogger(cfg.LogLevel, cfg.LogFormat, stderr)
	if err != nil {
		return err
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	raw, err := dataset.Load(cfg.InputPath)
	if err != nil {
		return err
	}
	base, err := dataset.DropSentinels(raw, dataset.SentinelColumns...)
	if err != nil {
		return err
	}

	panel, err := evaluation.DefaultPanel(cfg.Seed).Restrict(cfg.Classifiers)
	if err != nil {
		return err
	}
	agg := &evaluation.Aggregator{
		Panel:    panel,
		TestSize: cfg.TestSize,
		Seed:     cfg.Seed,
		Logger:   logger,
	}
	renderer, err := plotting.NewRenderer(cfg, logger)
	if err != nil {
		return err
	}

	driver := &experiment.Driver{Aggregator: agg, Renderer: renderer, Logger: logger}
	res, err := driver.Run(base)
	if err != nil {
		return err
	}

	reportPath := cfg.ReportPath
	if !filepath.IsAbs(reportPath) {
		reportPath = filepath.Join(cfg.OutputDir, reportPath)
	}
	if err := experiment.SaveReport(reportPath, res); err != nil {
		return err
	}
	logger.Info("report written", log.PathKey, reportPath, log.RunIDKey, res.RunID)

	if err := printSummary(stdout, res); err != nil {
		return errors.Wrap(err, "print summary")
	}
	return nil
}

func printSummary(w io.Writer, res *experiment.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "variant\taccuracy\tsensitivity\tspecificity")
	s := res.Series
	for i, label := range s.Labels {
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.3f\n", label, s.Accuracy[i], s.Sensitivity[i], s.Specificity[i])
	}
	if len(res.RenderErrors) > 0 {
		fmt.Fprintf(tw, "\n%d chart(s) failed, see log\n", len(res.RenderErrors))
	}
	return tw.Flush()
}
