package plotting

import (
	"fmt"
	"image/color"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/trafobench/dataset"
	"github.com/YuminosukeSato/trafobench/evaluation"
	"github.com/YuminosukeSato/trafobench/pkg/errors"
)

// State is one table snapshot shown in the box plot grid.
type State struct {
	Title string
	Table *dataset.Table
}

// BoxPlots draws one horizontal box plot per column for every state on a
// two-column grid.
func (r *Renderer) BoxPlots(states []State) error {
	if len(states) == 0 {
		return errors.NewValueError("BoxPlots", "no states to plot")
	}
	rows := (len(states) + 1) / 2
	plots := grid(rows, 2)
	for k, s := range states {
		p, err := r.boxPlot(s)
		if err != nil {
			return errors.Wrapf(err, "box plot %q", s.Title)
		}
		plots[k/2][k%2] = p
	}
	return r.saveGrid(plots, BoxPlotsArtifact, r.Width*5/3, r.Height*3/2)
}

func (r *Renderer) boxPlot(s State) (*plot.Plot, error) {
	p := r.Theme.newPlot(s.Title)
	names := s.Table.Names()
	if s.Table.Nrow() == 0 {
		p.Title.Text = s.Title + " (empty)"
		p.NominalY(names...)
		return p, nil
	}
	for i, name := range names {
		b, err := plotter.NewBoxPlot(vg.Points(12), float64(i), plotter.Values(s.Table.Column(name)))
		if err != nil {
			return nil, err
		}
		b.Horizontal = true
		b.FillColor = r.Theme.BoxFill
		b.BoxStyle.Color = r.Theme.Foreground
		b.WhiskerStyle.Color = r.Theme.Foreground
		b.MedianStyle.Color = r.Theme.Foreground
		b.GlyphStyle.Color = r.Theme.Foreground
		p.Add(b)
	}
	p.NominalY(names...)
	return p, nil
}

// MetricsLine plots mean accuracy, sensitivity and specificity per variant.
// The y axis is fixed to [0.5, 1] with ticks every 0.05. xLabels replaces the
// series labels on the x axis when it has the same length.
func (r *Renderer) MetricsLine(s evaluation.Series, xLabels []string) error {
	if s.Len() == 0 {
		return errors.NewValueError("MetricsLine", "empty series")
	}
	p := r.Theme.newPlot("")

	lines := []struct {
		name   string
		values []float64
	}{
		{"Accuracies", s.Accuracy},
		{"Sensitivity", s.Sensitivity},
		{"Specificities", s.Specificity},
	}
	for k, l := range lines {
		xys := make(plotter.XYs, len(l.values))
		for i, v := range l.values {
			if math.IsNaN(v) {
				v = 0
			}
			xys[i] = plotter.XY{X: float64(i), Y: v}
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return errors.Wrapf(err, "line %s", l.name)
		}
		c := r.Theme.SeriesColor(k)
		line.Color = c
		line.Width = vg.Points(1.5)
		line.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		points.Color = c
		points.Shape = draw.CircleGlyph{}
		points.Radius = vg.Points(3)
		p.Add(line, points)
		p.Legend.Add(l.name, line, points)
	}
	p.Legend.Top = true

	labels := s.Labels
	if len(xLabels) == s.Len() {
		labels = xLabels
	}
	p.NominalX(labels...)
	p.X.Min, p.X.Max = -0.5, float64(s.Len())-0.5

	ticks := make([]plot.Tick, 0, 11)
	for v := 50; v <= 100; v += 5 {
		ticks = append(ticks, plot.Tick{Value: float64(v) / 100, Label: fmt.Sprintf("%.2f", float64(v)/100)})
	}
	p.Y.Min, p.Y.Max = 0.5, 1
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)

	return r.save(p, MetricsLineArtifact, r.Width*5/4, r.Height)
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ with the first
// column at the top.
type corrGrid struct {
	m *mat.SymDense
	n int
}

func (g corrGrid) Dims() (c, r int)   { return g.n, g.n }
func (g corrGrid) Z(c, r int) float64 { return g.m.At(g.n-1-r, c) }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }

// Correlation draws the Pearson correlation of every column pair as an
// annotated heat map. Constant columns have undefined correlation and are
// drawn in gray.
func (r *Renderer) Correlation(t *dataset.Table) error {
	if t.Nrow() < 2 {
		return errors.NewModelError("Correlation", "need at least two rows", errors.ErrEmptyData)
	}
	names := t.Names()
	n := len(names)
	corr := mat.NewSymDense(n, nil)
	stat.CorrelationMatrix(corr, t.Matrix(), nil)

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	g := corrGrid{m: corr, n: n}
	h := plotter.NewHeatMap(g, cm.Palette(255))
	h.Min, h.Max = -1, 1
	h.NaN = color.Gray{Y: 128}

	p := r.Theme.newPlot("Correlation")
	p.Add(h)

	var xys plotter.XYs
	var text []string
	for c := 0; c < n; c++ {
		for row := 0; row < n; row++ {
			xys = append(xys, plotter.XY{X: g.X(c), Y: g.Y(row)})
			z := g.Z(c, row)
			if math.IsNaN(z) {
				text = append(text, "nan")
			} else {
				text = append(text, fmt.Sprintf("%.2f", z))
			}
		}
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: text})
	if err != nil {
		return errors.Wrap(err, "correlation labels")
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = color.Black
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(labels)

	reversed := make([]string, n)
	for i, name := range names {
		reversed[n-1-i] = name
	}
	p.NominalX(names...)
	p.NominalY(reversed...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight

	size := r.Height * 3 / 2
	return r.save(p, CorrelationArtifact, size, size)
}

// byOutcome splits a column by Outcome.
func byOutcome(t *dataset.Table, name string) (neg, pos []float64) {
	outcome := t.Column(dataset.Outcome)
	for i, v := range t.Column(name) {
		if outcome[i] == 1 {
			pos = append(pos, v)
		} else {
			neg = append(neg, v)
		}
	}
	return neg, pos
}

func featureNames(t *dataset.Table) []string {
	var out []string
	for _, n := range t.Names() {
		if n != dataset.Outcome {
			out = append(out, n)
		}
	}
	return out
}

func requireOutcome(op string, t *dataset.Table) error {
	if t.Nrow() == 0 {
		return errors.NewModelError(op, "empty table", errors.ErrEmptyData)
	}
	if !t.Has(dataset.Outcome) {
		return errors.NewValidationError("column", "table has no Outcome column", t.Names())
	}
	return nil
}

// addDensity adds one normalized histogram per class.
func (r *Renderer) addDensity(p *plot.Plot, neg, pos []float64, legend bool) error {
	for _, part := range []struct {
		name   string
		values []float64
		color  color.Color
	}{
		{"Outcome 0", neg, r.Theme.Negative},
		{"Outcome 1", pos, r.Theme.Positive},
	} {
		if len(part.values) == 0 {
			continue
		}
		h, err := plotter.NewHist(plotter.Values(part.values), 16)
		if err != nil {
			return err
		}
		h.Normalize(1)
		h.FillColor = part.color
		h.LineStyle.Width = 0
		p.Add(h)
		if legend {
			p.Legend.Add(part.name, h)
		}
	}
	return nil
}

// PairPlot draws every feature against every other feature, colored by
// Outcome, with per-class histograms on the diagonal.
func (r *Renderer) PairPlot(t *dataset.Table) error {
	if err := requireOutcome("PairPlot", t); err != nil {
		return err
	}
	features := featureNames(t)
	n := len(features)
	plots := grid(n, n)
	outcome := t.Column(dataset.Outcome)

	for i, yName := range features {
		for j, xName := range features {
			p := r.Theme.newPlot("")
			if i == n-1 {
				p.X.Label.Text = xName
			}
			if j == 0 {
				p.Y.Label.Text = yName
			}
			if i == j {
				neg, pos := byOutcome(t, xName)
				if err := r.addDensity(p, neg, pos, i == 0); err != nil {
					return errors.Wrapf(err, "histogram %s", xName)
				}
				plots[i][j] = p
				continue
			}

			xs, ys := t.Column(xName), t.Column(yName)
			var neg, pos plotter.XYs
			for k := range xs {
				pt := plotter.XY{X: xs[k], Y: ys[k]}
				if outcome[k] == 1 {
					pos = append(pos, pt)
				} else {
					neg = append(neg, pt)
				}
			}
			for _, part := range []struct {
				pts   plotter.XYs
				color color.Color
			}{{neg, r.Theme.Negative}, {pos, r.Theme.Positive}} {
				if len(part.pts) == 0 {
					continue
				}
				s, err := plotter.NewScatter(part.pts)
				if err != nil {
					return errors.Wrapf(err, "scatter %s/%s", xName, yName)
				}
				s.Color = part.color
				s.Shape = draw.CircleGlyph{}
				s.Radius = vg.Points(1.5)
				p.Add(s)
			}
			plots[i][j] = p
		}
	}

	size := vg.Length(n) * 2 * vg.Inch
	return r.saveGrid(plots, PairPlotArtifact, size, size)
}

// Bars draws the mean of every feature for each Outcome class side by side.
func (r *Renderer) Bars(t *dataset.Table) error {
	if err := requireOutcome("Bars", t); err != nil {
		return err
	}
	features := featureNames(t)
	negMeans := make(plotter.Values, len(features))
	posMeans := make(plotter.Values, len(features))
	for i, name := range features {
		neg, pos := byOutcome(t, name)
		negMeans[i] = classMean(neg)
		posMeans[i] = classMean(pos)
	}

	p := r.Theme.newPlot("Feature means by Outcome")
	w := vg.Points(14)
	for k, part := range []struct {
		name   string
		values plotter.Values
		color  color.Color
	}{
		{"Outcome 0", negMeans, r.Theme.Negative},
		{"Outcome 1", posMeans, r.Theme.Positive},
	} {
		b, err := plotter.NewBarChart(part.values, w)
		if err != nil {
			return errors.Wrapf(err, "bars %s", part.name)
		}
		b.Color = part.color
		b.LineStyle.Width = 0
		b.Offset = w * vg.Length(2*k-1) / 2
		p.Add(b)
		p.Legend.Add(part.name, b)
	}
	p.Legend.Top = true
	p.NominalX(features...)
	p.X.Tick.Label.Rotation = math.Pi / 8
	p.X.Tick.Label.XAlign = draw.XRight

	return r.save(p, BarsArtifact, r.Width, r.Height)
}

// classMean is the mean of a class, 0 when the class is absent.
func classMean(values []float64) float64 {
	m, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return m
}

// Overview draws per-class density histograms of every feature and the
// class balance on a 3×3 grid.
func (r *Renderer) Overview(t *dataset.Table) error {
	if err := requireOutcome("Overview", t); err != nil {
		return err
	}
	features := featureNames(t)
	cells := len(features) + 1
	cols := 3
	rows := (cells + cols - 1) / cols
	plots := grid(rows, cols)

	for k, name := range features {
		p := r.Theme.newPlot(name)
		neg, pos := byOutcome(t, name)
		if err := r.addDensity(p, neg, pos, k == 0); err != nil {
			return errors.Wrapf(err, "histogram %s", name)
		}
		plots[k/cols][k%cols] = p
	}

	l0, l1 := t.ClassCounts()
	p := r.Theme.newPlot("Outcome")
	b, err := plotter.NewBarChart(plotter.Values{float64(l0), float64(l1)}, vg.Points(30))
	if err != nil {
		return errors.Wrap(err, "class balance")
	}
	b.Color = r.Theme.SeriesColor(0)
	b.LineStyle.Width = 0
	p.Add(b)
	p.NominalX("0", "1")
	k := len(features)
	plots[k/cols][k%cols] = p

	return r.saveGrid(plots, OverviewArtifact, r.Width*3/2, r.Height*3/2)
}
