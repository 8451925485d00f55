// Package datasettest builds seeded synthetic diabetes tables for tests.
package datasettest

import (
	"math"
	"math/rand"

	"github.com/YuminosukeSato/trafobench/dataset"
)

// Diabetes returns n rows with the fixed schema. Every third row is
// positive and positives are shifted upwards in most features, so the
// classes are separable but overlap. No sentinel zeros are produced.
func Diabetes(n int, seed int64) *dataset.Table {
	rng := rand.New(rand.NewSource(seed))
	positive := func(i int) float64 {
		if i%3 == 0 {
			return 1
		}
		return 0
	}
	normal := func(mean, sd, lo float64) float64 {
		return math.Max(lo, mean+sd*rng.NormFloat64())
	}

	rows := make([][]float64, n)
	for i := range rows {
		p := positive(i)
		rows[i] = []float64{
			math.Round(normal(3+2*p, 2, 0)),
			math.Round(normal(110+40*p, 18, 50)),
			math.Round(normal(70+4*p, 9, 30)),
			math.Round(normal(26+6*p, 7, 7)),
			math.Round(normal(110+90*p, 45, 15)),
			normal(30+4*p, 5, 18),
			normal(0.4+0.2*p, 0.2, 0.08),
			math.Round(normal(30+10*p, 8, 21)),
			p,
		}
	}

	t, err := dataset.FromRows(dataset.ColumnNames, rows)
	if err != nil {
		panic(err)
	}
	return t
}

// WithValue returns a copy of t where column holds value in the given rows.
func WithValue(t *dataset.Table, column string, value float64, rows ...int) *dataset.Table {
	col := t.Column(column)
	for _, r := range rows {
		col[r] = value
	}
	out, err := t.WithColumn(column, col)
	if err != nil {
		panic(err)
	}
	return out
}
