package experiment

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/trafobench/dataset"
	"github.com/YuminosukeSato/trafobench/evaluation"
	"github.com/YuminosukeSato/trafobench/pkg/errors"
)

// Report is the YAML document written at the end of a run.
type Report struct {
	RunID     string    `yaml:"run_id"`
	StartedAt time.Time `yaml:"started_at"`
	// Input summarises the filtered table every variant starts from.
	Input    []dataset.ColumnSummary `yaml:"input"`
	Series   Series                  `yaml:"series"`
	Variants []VariantReport         `yaml:"variants"`
	Final    VariantReport           `yaml:"final"`
	// RenderErrors lists charts that could not be written.
	RenderErrors []string `yaml:"render_errors,omitempty"`
}

// VariantReport holds the panel means and per-classifier scores of one table.
type VariantReport struct {
	Label  string                       `yaml:"label"`
	Means  evaluation.Means             `yaml:"means"`
	Scores []evaluation.ClassifierScore `yaml:"scores"`
}

func variantReport(set evaluation.MetricSet) VariantReport {
	return VariantReport{Label: set.Label, Means: set.Reduce(), Scores: set.Scores}
}

// NewReport builds the report of res.
func NewReport(res *Result) Report {
	r := Report{
		RunID:     res.RunID,
		StartedAt: res.StartedAt,
		Input:     res.Base,
		Series:    res.Series,
		Final:     variantReport(res.FinalSet),
	}
	for _, set := range res.Sets {
		r.Variants = append(r.Variants, variantReport(set))
	}
	for _, err := range res.RenderErrors {
		r.RenderErrors = append(r.RenderErrors, err.Error())
	}
	return r
}

// WriteReport encodes the report of res as YAML. Undefined metrics are
// written as .nan.
func WriteReport(w io.Writer, res *Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewReport(res)); err != nil {
		return errors.Wrap(err, "encode report")
	}
	return errors.Wrap(enc.Close(), "flush report")
}

// SaveReport writes the report of res to path, creating its directory.
func SaveReport(path string, res *Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create report dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := WriteReport(f, res); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}

// ReadReport decodes a report written by WriteReport.
func ReadReport(r io.Reader) (Report, error) {
	var rep Report
	if err := yaml.NewDecoder(r).Decode(&rep); err != nil {
		return Report{}, errors.Wrap(err, "decode report")
	}
	return rep, nil
}
