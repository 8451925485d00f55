package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/trafobench/pkg/config"
)

// flags holds the command line overrides applied on top of the loaded
// configuration.
type flags struct {
	cfgFile     string
	input       string
	out         string
	seed        int64
	logLevel    string
	classifiers []string
}

func newRootCmd() *cobra.Command {
	var f flags
	root := &cobra.Command{
		Use:   "trafobench",
		Short: "Measure how preprocessing changes classifier metrics on the diabetes table",
		Long: `trafobench loads the Pima diabetes CSV, drops rows with missing-value
sentinels, evaluates six preprocessing variants with a panel of classifiers
and writes the metric charts, overview charts and a YAML report.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, &f)
			if err != nil {
				return err
			}
			return runAnalysis(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.cfgFile, "config", "", "config file (default ./trafobench.yaml if present)")
	pf.StringVar(&f.input, "input", "", "input CSV path (overrides config)")
	pf.StringVar(&f.out, "out", "", "output directory for charts and report (overrides config)")
	pf.Int64Var(&f.seed, "seed", 0, "random seed for splits and models (overrides config)")
	pf.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	pf.StringSliceVar(&f.classifiers, "classifiers", nil, "restrict the classifier panel by name")

	root.AddCommand(newConfigCmd(&f))
	return root
}

// loadConfig reads file and environment settings, applies the flags that
// were set explicitly and validates the result.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.Load(f.cfgFile)
	if err != nil {
		return nil, err
	}

	pf := cmd.Flags()
	if pf.Changed("input") {
		cfg.InputPath = f.input
	}
	if pf.Changed("out") {
		cfg.OutputDir = f.out
	}
	if pf.Changed("seed") {
		cfg.Seed = f.seed
	}
	if pf.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if pf.Changed("classifiers") {
		cfg.Classifiers = f.classifiers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Execute is the entry point called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}
