// Package config loads trafobench run settings.
//
// Precedence: flags > environment (TRAFOBENCH_*, optionally from .env) >
// config file (YAML) > defaults. Flags are applied by the command package on
// top of the value returned by Load.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/trafobench/pkg/errors"
	"github.com/YuminosukeSato/trafobench/pkg/log"
)

// EnvPrefix is the environment variable prefix, e.g. TRAFOBENCH_SEED.
const EnvPrefix = "TRAFOBENCH"

// Plot holds chart output settings.
type Plot struct {
	Format   string  `mapstructure:"format" yaml:"format"`
	Theme    string  `mapstructure:"theme" yaml:"theme"`
	WidthIn  float64 `mapstructure:"width_in" yaml:"width_in"`
	HeightIn float64 `mapstructure:"height_in" yaml:"height_in"`
}

// Config is the full run configuration.
type Config struct {
	InputPath  string `mapstructure:"input_path" yaml:"input_path"`
	OutputDir  string `mapstructure:"output_dir" yaml:"output_dir"`
	ReportPath string `mapstructure:"report_path" yaml:"report_path"`
	LogLevel   string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat  string `mapstructure:"log_format" yaml:"log_format"`

	Seed     int64   `mapstructure:"seed" yaml:"seed"`
	TestSize float64 `mapstructure:"test_size" yaml:"test_size"`
	// Classifiers restricts the evaluation panel by name; empty means all.
	Classifiers []string `mapstructure:"classifiers" yaml:"classifiers"`

	Plot Plot `mapstructure:"plot" yaml:"plot"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		InputPath:   "diabetes.csv",
		OutputDir:   ".",
		ReportPath:  "trafos_report.yaml",
		LogLevel:    "info",
		LogFormat:   "console",
		Seed:        42,
		TestSize:    0.3,
		Classifiers: []string{},
		Plot: Plot{
			Format:   "png",
			Theme:    "dark",
			WidthIn:  12,
			HeightIn: 8,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("input_path", d.InputPath)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("report_path", d.ReportPath)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("test_size", d.TestSize)
	v.SetDefault("classifiers", d.Classifiers)
	v.SetDefault("plot.format", d.Plot.Format)
	v.SetDefault("plot.theme", d.Plot.Theme)
	v.SetDefault("plot.width_in", d.Plot.WidthIn)
	v.SetDefault("plot.height_in", d.Plot.HeightIn)
}

// Load reads configuration from cfgFile (optional), the environment and
// defaults. A missing default config file is not an error; a missing explicit
// one is.
func Load(cfgFile string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env")
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", cfgFile)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("trafobench")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &c, nil
}

// Validate checks every field and returns the first ValidationError found.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return errors.NewValidationError("input_path", "must not be empty", c.InputPath)
	}
	if c.TestSize <= 0 || c.TestSize >= 1 {
		return errors.NewValidationError("test_size", "must be in (0, 1)", c.TestSize)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return errors.NewValidationError("log_format", "must be json or console", c.LogFormat)
	}
	format, err := PlotFormat(c.Plot.Format)
	if err != nil {
		return err
	}
	c.Plot.Format = format
	switch c.Plot.Theme {
	case "light", "dark":
	default:
		return errors.NewValidationError("plot.theme", "must be light or dark", c.Plot.Theme)
	}
	if c.Plot.WidthIn <= 0 || c.Plot.HeightIn <= 0 {
		return errors.NewValidationError("plot.size", "width and height must be positive", [2]float64{c.Plot.WidthIn, c.Plot.HeightIn})
	}
	return nil
}

// PlotFormat normalises a chart format to lower case and checks that it is
// one of png, svg or pdf.
func PlotFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	switch f {
	case "png", "svg", "pdf":
		return f, nil
	default:
		return "", errors.NewValidationError("plot.format", "must be png, svg or pdf", format)
	}
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "marshal yaml")
	}
	return b, nil
}
