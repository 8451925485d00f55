package evaluation

import (
	"math"

	"github.com/montanaflynn/stats"
)

// ClassifierScore holds the holdout metrics of one classifier. NaN marks a
// metric that was undefined or a classifier that failed.
type ClassifierScore struct {
	Name        string  `yaml:"name"`
	Accuracy    float64 `yaml:"accuracy"`
	Sensitivity float64 `yaml:"sensitivity"`
	Specificity float64 `yaml:"specificity"`
}

func failedScore(name string) ClassifierScore {
	return ClassifierScore{Name: name, Accuracy: math.NaN(), Sensitivity: math.NaN(), Specificity: math.NaN()}
}

// MetricSet is the per-classifier result of one aggregation run.
type MetricSet struct {
	Label  string            `yaml:"label"`
	Scores []ClassifierScore `yaml:"scores"`
}

// Means are the panel averages of a MetricSet.
type Means struct {
	Accuracy    float64 `yaml:"accuracy"`
	Sensitivity float64 `yaml:"sensitivity"`
	Specificity float64 `yaml:"specificity"`
}

// Reduce averages every metric over the panel, counting NaN as 0.
// An empty set reduces to zeros.
func (m MetricSet) Reduce() Means {
	acc := make(stats.Float64Data, len(m.Scores))
	sens := make(stats.Float64Data, len(m.Scores))
	spec := make(stats.Float64Data, len(m.Scores))
	for i, s := range m.Scores {
		acc[i] = zeroNaN(s.Accuracy)
		sens[i] = zeroNaN(s.Sensitivity)
		spec[i] = zeroNaN(s.Specificity)
	}
	return Means{Accuracy: mean(acc), Sensitivity: mean(sens), Specificity: mean(spec)}
}

// Score returns the entry for the named classifier.
func (m MetricSet) Score(name string) (ClassifierScore, bool) {
	for _, s := range m.Scores {
		if s.Name == name {
			return s, true
		}
	}
	return ClassifierScore{}, false
}

func zeroNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func mean(d stats.Float64Data) float64 {
	m, err := d.Mean()
	if err != nil {
		// stats.EmptyInputErr
		return 0
	}
	return m
}
