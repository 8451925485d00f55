package dataset

import (
	"math"

	"github.com/montanaflynn/stats"
)

// ColumnSummary describes the distribution of one column.
type ColumnSummary struct {
	Name   string  `yaml:"name"`
	Count  int     `yaml:"count"`
	Mean   float64 `yaml:"mean"`
	Std    float64 `yaml:"std"`
	Min    float64 `yaml:"min"`
	Median float64 `yaml:"median"`
	Max    float64 `yaml:"max"`
}

// Describe summarises every column. The standard deviation is the population
// one. All statistics of an empty table are NaN.
func Describe(t *Table) []ColumnSummary {
	out := make([]ColumnSummary, 0, t.Ncol())
	for _, name := range t.names {
		data := stats.Float64Data(t.Column(name))
		s := ColumnSummary{Name: name, Count: data.Len()}
		s.Mean = orNaN(data.Mean())
		s.Std = orNaN(data.StandardDeviationPopulation())
		s.Min = orNaN(data.Min())
		s.Median = orNaN(data.Median())
		s.Max = orNaN(data.Max())
		out = append(out, s)
	}
	return out
}

func orNaN(v float64, err error) float64 {
	if err != nil {
		return math.NaN()
	}
	return v
}
