package preprocessing

import (
	"math"

	"github.com/YuminosukeSato/trafobench/dataset"
	"github.com/YuminosukeSato/trafobench/pkg/errors"
	"github.com/YuminosukeSato/trafobench/pkg/log"
)

const (
	// InsulinRescale brings Insulin to the magnitude of the other columns
	// before outliers are scored.
	InsulinRescale = 0.001

	// OutlierThreshold is the exclusive |z| bound a row must satisfy in every column.
	OutlierThreshold = 3.0
)

// Transform maps a table to a new table without modifying its input.
type Transform func(*dataset.Table) (*dataset.Table, error)

// Chain composes transforms left to right.
func Chain(transforms ...Transform) Transform {
	return func(t *dataset.Table) (*dataset.Table, error) {
		cur := t
		for i, tr := range transforms {
			next, err := tr(cur)
			if err != nil {
				return nil, errors.Wrapf(err, "transform %d", i)
			}
			cur = next
		}
		return cur, nil
	}
}

func transformLogger(name string) log.Logger {
	return log.GetLogger().With(
		log.ComponentKey, "preprocessing",
		log.OperationKey, log.OperationTransform,
		log.ModelNameKey, name,
	)
}

// RemoveOutliers multiplies Insulin by InsulinRescale, z-scores every column
// (Outcome included) over the current table and keeps the rows whose |z| is
// below OutlierThreshold in all columns. The rescaled Insulin is kept in the
// output. Zero-variance columns score 0 and never mark a row as an outlier.
func RemoveOutliers(t *dataset.Table) (*dataset.Table, error) {
	if t.Nrow() == 0 {
		return t, nil
	}

	rescaled := t.Column(dataset.Insulin)
	if rescaled != nil {
		for i := range rescaled {
			rescaled[i] *= InsulinRescale
		}
		var err error
		if t, err = t.WithColumn(dataset.Insulin, rescaled); err != nil {
			return nil, err
		}
	}

	scaler := NewStandardScalerDefault()
	scaler.ColumnNames = t.Names()
	scaler.Caller = "RemoveOutliers"
	z, err := scaler.FitTransform(t.Matrix())
	if err != nil {
		return nil, errors.Wrap(err, "RemoveOutliers")
	}

	r, c := z.Dims()
	keep := make([]int, 0, r)
	for i := 0; i < r; i++ {
		inlier := true
		for j := 0; j < c; j++ {
			if math.Abs(z.At(i, j)) >= OutlierThreshold {
				inlier = false
				break
			}
		}
		if inlier {
			keep = append(keep, i)
		}
	}

	transformLogger("RemoveOutliers").Debug("outliers removed",
		log.SamplesKey, len(keep), log.DroppedKey, r-len(keep))
	return t.Subset(keep), nil
}

// EqualizeClasses keeps the first min(l0, l1) rows of each Outcome class,
// positive rows first, each class in table order.
func EqualizeClasses(t *dataset.Table) (*dataset.Table, error) {
	if !t.Has(dataset.Outcome) {
		return nil, errors.NewValidationError("column", "table has no Outcome column", t.Names())
	}

	ones := t.ClassRows(1)
	zeros := t.ClassRows(0)
	n := min(len(ones), len(zeros))

	rows := make([]int, 0, 2*n)
	rows = append(rows, ones[:n]...)
	rows = append(rows, zeros[:n]...)

	transformLogger("EqualizeClasses").Debug("classes equalized",
		log.PositivesKey, len(ones), log.NegativesKey, len(zeros), log.SamplesKey, len(rows))
	return t.Subset(rows), nil
}

// ScaleFeatures min-max scales every column, Outcome included, to [0,1]
// using the current table's range. Constant columns become 0.5.
func ScaleFeatures(t *dataset.Table) (*dataset.Table, error) {
	if t.Nrow() == 0 {
		return t, nil
	}

	scaler := NewMinMaxScalerDefault()
	scaler.ColumnNames = t.Names()
	scaler.Caller = "ScaleFeatures"
	scaled, err := scaler.FitTransform(t.Matrix())
	if err != nil {
		return nil, errors.Wrap(err, "ScaleFeatures")
	}

	r, c := scaled.Dims()
	if err := errors.CheckMatrix("ScaleFeatures", scaled, r, c, 0); err != nil {
		return nil, err
	}
	return dataset.FromMatrix(t.Names(), scaled)
}
