package experiment

import (
	"time"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/trafobench/dataset"
	"github.com/YuminosukeSato/trafobench/evaluation"
	"github.com/YuminosukeSato/trafobench/pkg/errors"
	"github.com/YuminosukeSato/trafobench/pkg/log"
	"github.com/YuminosukeSato/trafobench/plotting"
	"github.com/YuminosukeSato/trafobench/preprocessing"
)

// Renderer draws the charts of a run. *plotting.Renderer implements it.
type Renderer interface {
	BoxPlots(states []plotting.State) error
	MetricsLine(s evaluation.Series, xLabels []string) error
	Correlation(t *dataset.Table) error
	PairPlot(t *dataset.Table) error
	Bars(t *dataset.Table) error
	Overview(t *dataset.Table) error
}

var _ Renderer = (*plotting.Renderer)(nil)

// Result is everything a run produced.
type Result struct {
	RunID     string
	StartedAt time.Time
	Base      []dataset.ColumnSummary
	Series    Series
	Sets      []evaluation.MetricSet
	// Final is the outlier-free, scaled and equalized table the overview
	// charts are drawn from; FinalSet is its untracked evaluation.
	Final        *dataset.Table
	FinalSet     evaluation.MetricSet
	RenderErrors []error
}

// Driver evaluates every variant with Aggregator and renders charts with
// Renderer. A nil Renderer skips all charts.
type Driver struct {
	Aggregator *evaluation.Aggregator
	Renderer   Renderer
	Logger     log.Logger
	// RunID tags logs and the report; generated when empty.
	RunID string
}

// Run evaluates the six variants of base in order, then the final pipeline.
// Transform and aggregation errors abort the run; chart failures are
// collected in Result.RenderErrors.
func (d *Driver) Run(base *dataset.Table) (*Result, error) {
	res := &Result{RunID: d.RunID, StartedAt: time.Now()}
	if res.RunID == "" {
		res.RunID = uuid.NewString()
	}
	logger := d.logger().With(log.ComponentKey, "experiment", log.RunIDKey, res.RunID)

	res.Base = dataset.Describe(base)
	for _, s := range res.Base {
		logger.Debug("column summary",
			log.ColumnKey, s.Name,
			"stats.mean", s.Mean,
			"stats.std", s.Std,
			"stats.min", s.Min,
			"stats.max", s.Max,
		)
	}

	variants := Variants()
	display := make([]string, 0, len(variants))
	for _, v := range variants {
		t, err := v.Transform(base)
		if err != nil {
			return nil, errors.Wrapf(err, "variant %q", v.Label)
		}
		l0, l1 := t.ClassCounts()
		logger.Info("variant prepared",
			log.VariantKey, v.Label,
			log.SamplesKey, t.Nrow(),
			log.NegativesKey, l0,
			log.PositivesKey, l1,
		)

		set, err := d.Aggregator.Run(t, v.Label)
		if err != nil {
			return nil, errors.Wrapf(err, "evaluate %q", v.Label)
		}
		res.Sets = append(res.Sets, set)
		res.Series.Append(v.Label, set.Reduce())
		display = append(display, v.Display)
	}

	d.render(res, logger, plotting.MetricsLineArtifact, func() error {
		return d.Renderer.MetricsLine(res.Series, display)
	})

	states, err := boxStates(base)
	if err != nil {
		return nil, err
	}
	d.render(res, logger, plotting.BoxPlotsArtifact, func() error {
		return d.Renderer.BoxPlots(states)
	})

	res.Final, err = FinalPipeline()(base)
	if err != nil {
		return nil, errors.Wrap(err, "final pipeline")
	}
	if d.Renderer != nil {
		charts := []struct {
			artifact string
			draw     func(*dataset.Table) error
		}{
			{plotting.OverviewArtifact, d.Renderer.Overview},
			{plotting.CorrelationArtifact, d.Renderer.Correlation},
			{plotting.PairPlotArtifact, d.Renderer.PairPlot},
			{plotting.BarsArtifact, d.Renderer.Bars},
		}
		for _, c := range charts {
			d.render(res, logger, c.artifact, func() error { return c.draw(res.Final) })
		}
	}

	res.FinalSet, err = d.Aggregator.Run(res.Final, "final")
	if err != nil {
		return nil, errors.Wrap(err, "evaluate final table")
	}

	logger.Info("experiment finished",
		log.DurationMsKey, time.Since(res.StartedAt).Milliseconds(),
		"output.render_errors", len(res.RenderErrors),
	)
	return res, nil
}

// boxStates chains the transforms the way the box plot grid shows them:
// raw, without outliers, scaled, equalized.
func boxStates(base *dataset.Table) ([]plotting.State, error) {
	noOutliers, err := preprocessing.RemoveOutliers(base)
	if err != nil {
		return nil, errors.Wrap(err, "box plots: remove outliers")
	}
	scaled, err := preprocessing.ScaleFeatures(noOutliers)
	if err != nil {
		return nil, errors.Wrap(err, "box plots: scale")
	}
	equalized, err := preprocessing.EqualizeClasses(scaled)
	if err != nil {
		return nil, errors.Wrap(err, "box plots: equalize")
	}
	return []plotting.State{
		{Title: "Raw correct data", Table: base},
		{Title: "Data without outliers", Table: noOutliers},
		{Title: "Scaled Data", Table: scaled},
		{Title: "Equilized Data", Table: equalized},
	}, nil
}

// render runs one chart and records its failure without stopping the run.
func (d *Driver) render(res *Result, logger log.Logger, artifact string, fn func() error) {
	if d.Renderer == nil {
		return
	}
	if err := errors.SafeExecute("render "+artifact, fn); err != nil {
		rerr := errors.NewRenderError(artifact, err)
		logger.Error("chart failed", rerr, log.ArtifactKey, artifact)
		res.RenderErrors = append(res.RenderErrors, rerr)
	}
}

func (d *Driver) logger() log.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return log.GetLogger()
}
