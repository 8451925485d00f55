package model

import (
	"sort"

	"github.com/YuminosukeSato/trafobench/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Dimser is anything reporting matrix dimensions.
type Dimser interface {
	Dims() (r, c int)
}

// ValidateXY checks that X and y describe the same samples and that y is a
// non-empty column vector.
func ValidateXY(op string, X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if nSamples != yRows {
		return errors.NewDimensionError(op, nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError(op, "y must be a column vector (n×1 matrix)")
	}
	return nil
}

// UniqueClasses returns the sorted distinct integer labels of y.
func UniqueClasses(y mat.Matrix) []int {
	rows, _ := y.Dims()
	seen := make(map[int]struct{})
	for i := 0; i < rows; i++ {
		seen[int(y.At(i, 0))] = struct{}{}
	}

	classes := make([]int, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	return classes
}

// ClassIndex returns the position of label in classes, or -1.
func ClassIndex(classes []int, label int) int {
	i := sort.SearchInts(classes, label)
	if i < len(classes) && classes[i] == label {
		return i
	}
	return -1
}

// MeanAccuracy compares the first column of predictions with y.
func MeanAccuracy(predictions, y mat.Matrix) float64 {
	n, _ := y.Dims()
	if n == 0 {
		return 0
	}
	correct := 0
	for i := 0; i < n; i++ {
		if predictions.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(n)
}

// BinaryClasses returns the two sorted classes of y. A single class yields a
// ModelError wrapping errors.ErrSingleClass; more than two a ValueError.
func BinaryClasses(op string, y mat.Matrix) ([]int, error) {
	classes := UniqueClasses(y)
	switch {
	case len(classes) < 2:
		return nil, errors.NewModelError(op, "single class", errors.ErrSingleClass)
	case len(classes) > 2:
		return nil, errors.NewValueError(op, "only binary classification is supported")
	}
	return classes, nil
}
