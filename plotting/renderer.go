// Package plotting renders the diagnostic charts of an analysis run with
// gonum.org/v1/plot.
//
// Every chart method writes one file into the output directory and returns
// an error instead of aborting; callers decide whether a failed chart is
// fatal. File names are fixed, the extension follows the configured format.
package plotting

import (
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/trafobench/pkg/config"
	"github.com/YuminosukeSato/trafobench/pkg/errors"
	"github.com/YuminosukeSato/trafobench/pkg/log"
)

// Artifact base names.
const (
	BoxPlotsArtifact    = "data_manipulations"
	MetricsLineArtifact = "dataTrafos"
	CorrelationArtifact = "correlation"
	PairPlotArtifact    = "pairplot"
	BarsArtifact        = "bars"
	OverviewArtifact    = "overview"
)

// Renderer writes charts to OutputDir.
type Renderer struct {
	OutputDir string
	Format    string
	Theme     Theme
	Width     vg.Length
	Height    vg.Length
	Logger    log.Logger
}

// NewRenderer builds a Renderer from the plot and output settings of cfg.
func NewRenderer(cfg *config.Config, logger log.Logger) (*Renderer, error) {
	th, err := ThemeByName(cfg.Plot.Theme)
	if err != nil {
		return nil, err
	}
	format, err := config.PlotFormat(cfg.Plot.Format)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Renderer{
		OutputDir: cfg.OutputDir,
		Format:    format,
		Theme:     th,
		Width:     vg.Length(cfg.Plot.WidthIn) * vg.Inch,
		Height:    vg.Length(cfg.Plot.HeightIn) * vg.Inch,
		Logger:    logger.With(log.ComponentKey, "plotting"),
	}, nil
}

// Path returns the file written for an artifact base name.
func (r *Renderer) Path(artifact string) string {
	return filepath.Join(r.OutputDir, artifact+"."+r.Format)
}

// save writes a single plot.
func (r *Renderer) save(p *plot.Plot, artifact string, w, h vg.Length) error {
	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return errors.Wrap(err, "create output dir")
	}
	path := r.Path(artifact)
	if err := p.Save(w, h, path); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	r.Logger.Info("chart written", log.ArtifactKey, artifact, log.PathKey, path)
	return nil
}

// saveGrid aligns plots on a rows×cols grid and writes them as one file.
// Nil entries leave their tile blank.
func (r *Renderer) saveGrid(plots [][]*plot.Plot, artifact string, w, h vg.Length) error {
	if len(plots) == 0 || len(plots[0]) == 0 {
		return errors.NewValueError(artifact, "empty plot grid")
	}
	for i := range plots {
		for j, p := range plots[i] {
			if p == nil {
				blank := plot.New()
				blank.BackgroundColor = r.Theme.Background
				blank.HideAxes()
				plots[i][j] = blank
			}
		}
	}
	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return errors.Wrap(err, "create output dir")
	}
	c, err := draw.NewFormattedCanvas(w, h, r.Format)
	if err != nil {
		return errors.Wrapf(err, "canvas for %s", artifact)
	}
	dc := draw.New(c)
	dc.SetColor(r.Theme.Background)
	dc.Fill(dc.Rectangle.Path())

	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      len(plots[0]),
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j, p := range plots[i] {
			p.Draw(canvases[i][j])
		}
	}

	path := r.Path(artifact)
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", path)
	}
	r.Logger.Info("chart written", log.ArtifactKey, artifact, log.PathKey, path)
	return nil
}

func grid(rows, cols int) [][]*plot.Plot {
	g := make([][]*plot.Plot, rows)
	for i := range g {
		g[i] = make([]*plot.Plot, cols)
	}
	return g
}
