package plotting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/trafobench/dataset"
	"github.com/YuminosukeSato/trafobench/dataset/datasettest"
	"github.com/YuminosukeSato/trafobench/evaluation"
	"github.com/YuminosukeSato/trafobench/pkg/config"
	"github.com/YuminosukeSato/trafobench/pkg/errors"
	"github.com/YuminosukeSato/trafobench/pkg/log"
)

func testRenderer(t *testing.T, format, theme string) (*Renderer, *log.TestLogger) {
	t.Helper()
	cfg := config.Default()
	cfg.OutputDir = filepath.Join(t.TempDir(), "charts")
	cfg.Plot.Format = format
	cfg.Plot.Theme = theme
	cfg.Plot.WidthIn = 4
	cfg.Plot.HeightIn = 3
	logger, _ := log.NewTestLogger(log.LevelDebug)
	r, err := NewRenderer(cfg, logger)
	require.NoError(t, err)
	return r, logger
}

func assertWritten(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err, path)
	assert.Greater(t, info.Size(), int64(0), path)
}

func TestThemeByName(t *testing.T) {
	th, err := ThemeByName("dark")
	require.NoError(t, err)
	assert.Equal(t, DarkTheme.Name, th.Name)

	th, err = ThemeByName("")
	require.NoError(t, err)
	assert.Equal(t, "light", th.Name)

	_, err = ThemeByName("solarized")
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))

	assert.Equal(t, th.SeriesColor(0), th.SeriesColor(len(th.Series)))
}

func TestNewRendererRejectsFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Plot.Format = "gif"
	_, err := NewRenderer(cfg, nil)
	assert.Error(t, err)
}

func TestNewRendererNormalizesFormat(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.Plot.Format = "SVG"
	r, err := NewRenderer(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "svg", r.Format)
}

func TestRendererPath(t *testing.T) {
	r, _ := testRenderer(t, "svg", "light")
	assert.Equal(t, filepath.Join(r.OutputDir, "dataTrafos.svg"), r.Path(MetricsLineArtifact))
}

func TestBoxPlots(t *testing.T) {
	r, logger := testRenderer(t, "png", "dark")
	tbl := datasettest.Diabetes(30, 1)
	empty := tbl.Subset(nil)

	err := r.BoxPlots([]State{
		{Title: "Raw correct data", Table: tbl},
		{Title: "Data without outliers", Table: tbl},
		{Title: "Equilized Data", Table: empty},
	})
	require.NoError(t, err)
	assertWritten(t, r.Path(BoxPlotsArtifact))
	assert.True(t, logger.ContainsField("output.artifact", BoxPlotsArtifact))

	assert.Error(t, r.BoxPlots(nil))
}

func TestMetricsLine(t *testing.T) {
	r, _ := testRenderer(t, "png", "light")

	var s evaluation.Series
	s.Append("raw correct data", evaluation.Means{Accuracy: 0.75, Sensitivity: 0.55, Specificity: 0.85})
	s.Append("scaled data", evaluation.Means{Accuracy: 0.4, Sensitivity: 0.6, Specificity: 0.95})

	require.NoError(t, r.MetricsLine(s, []string{"Raw correct data", "scaled data"}))
	assertWritten(t, r.Path(MetricsLineArtifact))

	assert.Error(t, r.MetricsLine(evaluation.Series{}, nil))
}

func TestCorrelationWithConstantColumn(t *testing.T) {
	r, _ := testRenderer(t, "svg", "dark")
	tbl := datasettest.Diabetes(25, 2)
	constant := make([]float64, tbl.Nrow())
	for i := range constant {
		constant[i] = 7
	}
	tbl, err := tbl.WithColumn(dataset.Pregnancies, constant)
	require.NoError(t, err)

	require.NoError(t, r.Correlation(tbl))
	assertWritten(t, r.Path(CorrelationArtifact))

	assert.Error(t, r.Correlation(tbl.Subset([]int{0})))
}

func TestPairPlotBarsOverview(t *testing.T) {
	r, _ := testRenderer(t, "png", "dark")
	tbl := datasettest.Diabetes(24, 3)

	require.NoError(t, r.PairPlot(tbl))
	require.NoError(t, r.Bars(tbl))
	require.NoError(t, r.Overview(tbl))

	for _, a := range []string{PairPlotArtifact, BarsArtifact, OverviewArtifact} {
		assertWritten(t, r.Path(a))
	}
}

func TestChartsRejectEmptyTable(t *testing.T) {
	r, _ := testRenderer(t, "png", "light")
	empty := datasettest.Diabetes(3, 1).Subset(nil)

	assert.Error(t, r.PairPlot(empty))
	assert.Error(t, r.Bars(empty))
	assert.Error(t, r.Overview(empty))
}

func TestBarsSingleClass(t *testing.T) {
	r, _ := testRenderer(t, "pdf", "light")
	pos, err := dataset.DropValue(datasettest.Diabetes(30, 4), dataset.Outcome, 0)
	require.NoError(t, err)

	require.NoError(t, r.Bars(pos))
	require.NoError(t, r.Overview(pos))
	assertWritten(t, r.Path(BarsArtifact))
}
