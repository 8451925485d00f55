package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/trafobench/pkg/errors"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().InputPath, c.InputPath)
	assert.Equal(t, int64(42), c.Seed)
	assert.InDelta(t, 0.3, c.TestSize, 1e-12)
	assert.Equal(t, "png", c.Plot.Format)
	assert.Equal(t, "dark", c.Plot.Theme)
	assert.NoError(t, c.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "run.yaml")
	content := "seed: 7\ntest_size: 0.25\nclassifiers: [GaussianNB, KNeighborsClassifier]\nplot:\n  theme: light\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("TRAFOBENCH_INPUT_PATH", "/data/pima.csv")
	t.Setenv("TRAFOBENCH_PLOT_FORMAT", "svg")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.Seed)
	assert.InDelta(t, 0.25, c.TestSize, 1e-12)
	assert.Equal(t, []string{"GaussianNB", "KNeighborsClassifier"}, c.Classifiers)
	assert.Equal(t, "light", c.Plot.Theme)
	assert.Equal(t, "/data/pima.csv", c.InputPath)
	assert.Equal(t, "svg", c.Plot.Format)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TRAFOBENCH_OUTPUT_DIR=plots\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("TRAFOBENCH_OUTPUT_DIR") })

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "plots", c.OutputDir)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	chdirTemp(t)
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		param  string
	}{
		{"empty input", func(c *Config) { c.InputPath = "" }, "input_path"},
		{"test size zero", func(c *Config) { c.TestSize = 0 }, "test_size"},
		{"test size one", func(c *Config) { c.TestSize = 1 }, "test_size"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"bad plot format", func(c *Config) { c.Plot.Format = "gif" }, "plot.format"},
		{"bad theme", func(c *Config) { c.Plot.Theme = "solarized" }, "plot.theme"},
		{"zero width", func(c *Config) { c.Plot.WidthIn = 0 }, "plot.size"},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			var verr *errors.ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %T", err)
			assert.Equal(t, tt.param, verr.ParamName)
		})
	}
}

func TestValidate_NormalizesPlotFormat(t *testing.T) {
	c := Default()
	c.Plot.Format = " SVG "
	require.NoError(t, c.Validate())
	assert.Equal(t, "svg", c.Plot.Format)

	f, err := PlotFormat("Pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf", f)

	_, err = PlotFormat("jpeg")
	var verr *errors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "plot.format", verr.ParamName)
}

func TestConfig_YAML(t *testing.T) {
	b, err := Default().YAML()
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal(b, &back))
	d := Default()
	assert.Equal(t, d.InputPath, back.InputPath)
	assert.Equal(t, d.Seed, back.Seed)
	assert.Equal(t, d.Plot, back.Plot)
	assert.Empty(t, back.Classifiers)
}
