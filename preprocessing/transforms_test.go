package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/trafobench/dataset"
)

func row(glucose, insulin, outcome float64) []float64 {
	return []float64{1, glucose, 70, 30, insulin, 30, 0.5, 40, outcome}
}

func table(t *testing.T, rows ...[]float64) *dataset.Table {
	t.Helper()
	tbl, err := dataset.FromRows(dataset.ColumnNames, rows)
	require.NoError(t, err)
	return tbl
}

func mixedTable(t *testing.T) *dataset.Table {
	var rows [][]float64
	for i := 0; i < 30; i++ {
		rows = append(rows, []float64{
			float64(i % 7), float64(80 + 3*i), float64(60 + i%11), float64(20 + i%9),
			float64(50 + 10*(i%13)), 25 + float64(i%5), 0.1 * float64(1+i%6), float64(21 + i), float64(i % 3 % 2),
		})
	}
	return table(t, rows...)
}

// isSubsequence reports whether every row of sub appears in base in the same relative order.
func isSubsequence(base, sub *dataset.Table, column string) bool {
	b, s := base.Column(column), sub.Column(column)
	j := 0
	for i := 0; i < len(b) && j < len(s); i++ {
		if b[i] == s[j] {
			j++
		}
	}
	return j == len(s)
}

func TestRemoveOutliers_Insulin(t *testing.T) {
	captureWarnings(t)
	var rows [][]float64
	for i := 0; i < 19; i++ {
		ins := 10.0
		if i%2 == 1 {
			ins = 20
		}
		rows = append(rows, row(100, ins, float64(i%2)))
	}
	rows = append(rows, row(100, 1000, 0))
	tbl := table(t, rows...)

	out, err := RemoveOutliers(tbl)
	require.NoError(t, err)
	assert.Equal(t, 19, out.Nrow())

	insulin := out.Column(dataset.Insulin)
	assert.NotContains(t, insulin, 1.0)
	// rescaled Insulin is kept
	assert.InDelta(t, 0.01, insulin[0], 1e-12)
	assert.InDelta(t, 0.02, insulin[1], 1e-12)

	// input untouched
	assert.Equal(t, 1000.0, tbl.Column(dataset.Insulin)[19])
}

func TestRemoveOutliers_Subsequence(t *testing.T) {
	captureWarnings(t)
	tbl := mixedTable(t)
	out, err := RemoveOutliers(tbl)
	require.NoError(t, err)
	assert.LessOrEqual(t, out.Nrow(), tbl.Nrow())
	assert.True(t, isSubsequence(tbl, out, dataset.Age))

	empty := tbl.Subset(nil)
	same, err := RemoveOutliers(empty)
	require.NoError(t, err)
	assert.Equal(t, 0, same.Nrow())
}

func TestEqualizeClasses(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []float64
		want     []float64
	}{
		{"more negatives", []float64{0, 1, 0, 0, 1, 0}, []float64{1, 1, 0, 0}},
		{"more positives", []float64{1, 1, 0, 1}, []float64{1, 0}},
		{"balanced", []float64{0, 1, 1, 0}, []float64{1, 1, 0, 0}},
		{"single class", []float64{1, 1, 1}, nil},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rows [][]float64
			for i, o := range tt.outcomes {
				rows = append(rows, row(float64(100+i), 10, o))
			}
			tbl := table(t, rows...)

			out, err := EqualizeClasses(tbl)
			require.NoError(t, err)
			l0, l1 := out.ClassCounts()
			t0, t1 := tbl.ClassCounts()
			assert.Equal(t, min(t0, t1), l0)
			assert.Equal(t, min(t0, t1), l1)
			if tt.want == nil {
				assert.Equal(t, 0, out.Nrow())
			} else {
				assert.Equal(t, tt.want, out.Column(dataset.Outcome))
			}
		})
	}
}

func TestEqualizeClasses_PreservesOrderWithinClass(t *testing.T) {
	tbl := table(t,
		row(1, 10, 0), row(2, 10, 1), row(3, 10, 0), row(4, 10, 1), row(5, 10, 0),
	)
	out, err := EqualizeClasses(tbl)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4, 1, 3}, out.Column(dataset.Glucose))
}

func TestGlucoseScenario(t *testing.T) {
	tbl := table(t, row(0, 50, 1), row(90, 50, 1), row(85, 50, 0))
	filtered, err := dataset.DropSentinels(tbl)
	require.NoError(t, err)
	require.Equal(t, 2, filtered.Nrow())

	out, err := EqualizeClasses(filtered)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, out.Column(dataset.Outcome))
	assert.Equal(t, []float64{90, 85}, out.Column(dataset.Glucose))
}

func TestScaleFeatures(t *testing.T) {
	warnings := captureWarnings(t)
	tbl := mixedTable(t)

	out, err := ScaleFeatures(tbl)
	require.NoError(t, err)
	require.Equal(t, tbl.Nrow(), out.Nrow())
	for _, name := range out.Names() {
		col := out.Column(name)
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, v := range col {
			assert.False(t, math.IsNaN(v))
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		assert.Equal(t, 0.0, lo, name)
		assert.Equal(t, 1.0, hi, name)
	}
	assert.Empty(t, *warnings)

	// Outcome stays binary
	for _, v := range out.Column(dataset.Outcome) {
		assert.Contains(t, []float64{0, 1}, v)
	}

	again, err := ScaleFeatures(out)
	require.NoError(t, err)
	assert.True(t, again.Equal(out, 1e-12), "scaling must be idempotent")
}

func TestScaleFeatures_ConstantColumn(t *testing.T) {
	warnings := captureWarnings(t)
	tbl := table(t, row(90, 10, 1), row(100, 20, 0), row(110, 30, 1))

	out, err := ScaleFeatures(tbl)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, out.Column(dataset.Pregnancies))
	assert.Equal(t, []float64{0, 0.5, 1}, out.Column(dataset.Glucose))
	assert.NotEmpty(t, *warnings)

	again, err := ScaleFeatures(out)
	require.NoError(t, err)
	assert.True(t, again.Equal(out, 1e-12))
}

func TestChain(t *testing.T) {
	captureWarnings(t)
	tbl := mixedTable(t)

	chained, err := Chain(RemoveOutliers, ScaleFeatures, EqualizeClasses)(tbl)
	require.NoError(t, err)

	step1, err := RemoveOutliers(tbl)
	require.NoError(t, err)
	step2, err := ScaleFeatures(step1)
	require.NoError(t, err)
	step3, err := EqualizeClasses(step2)
	require.NoError(t, err)
	assert.True(t, chained.Equal(step3, 0))

	l0, l1 := chained.ClassCounts()
	assert.Equal(t, l0, l1)

	identity, err := Chain()(tbl)
	require.NoError(t, err)
	assert.Same(t, tbl, identity)

	empty, err := Chain(RemoveOutliers, ScaleFeatures, EqualizeClasses)(tbl.Subset(nil))
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Nrow())
}
