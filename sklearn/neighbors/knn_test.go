package neighbors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func lineData() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(8, 1, []float64{0, 1, 2, 3, 10, 11, 12, 13})
	y := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 1, 1, 1, 1})
	return X, y
}

func TestKNeighborsClassifier_Predict(t *testing.T) {
	X, y := lineData()

	knn := NewKNeighborsClassifier(WithNNeighbors(3))
	require.NoError(t, knn.Fit(X, y))

	pred, err := knn.Predict(mat.NewDense(3, 1, []float64{1.5, 11.5, 6}))
	require.NoError(t, err)
	assert.Equal(t, 0.0, pred.At(0, 0))
	assert.Equal(t, 1.0, pred.At(1, 0))
	// 6 is nearest to 3, 2 and 10: two votes for class 0
	assert.Equal(t, 0.0, pred.At(2, 0))

	assert.Equal(t, 1.0, knn.Score(X, y))
	assert.Equal(t, []int{0, 1}, knn.Classes())
}

func TestKNeighborsClassifier_PredictProba(t *testing.T) {
	X, y := lineData()

	knn := NewKNeighborsClassifier()
	require.NoError(t, knn.Fit(X, y))

	proba, err := knn.PredictProba(mat.NewDense(1, 1, []float64{2}))
	require.NoError(t, err)
	// five nearest of 2: 2, 1, 3, 0, 10
	assert.InDelta(t, 0.8, proba.At(0, 0), 1e-12)
	assert.InDelta(t, 0.2, proba.At(0, 1), 1e-12)
}

func TestKNeighborsClassifier_KNeighborsOrder(t *testing.T) {
	X, y := lineData()

	knn := NewKNeighborsClassifier(WithNNeighbors(2))
	require.NoError(t, knn.Fit(X, y))

	// 1.5 and 2.5 ties are kept in training order
	nbs := knn.KNeighbors([]float64{1.5})
	require.Len(t, nbs, 2)
	assert.Equal(t, 1, nbs[0].Index)
	assert.Equal(t, 2, nbs[1].Index)
	assert.InDelta(t, 0.5, nbs[0].Distance, 1e-12)
}

func TestKNeighborsClassifier_DistanceWeights(t *testing.T) {
	X, y := lineData()

	knn := NewKNeighborsClassifier(WithWeights("distance"), WithNNeighbors(8))
	require.NoError(t, knn.Fit(X, y))

	proba, err := knn.PredictProba(mat.NewDense(1, 1, []float64{11}))
	require.NoError(t, err)
	assert.Equal(t, 1.0, proba.At(0, 1))

	pred, err := knn.Predict(mat.NewDense(1, 1, []float64{9}))
	require.NoError(t, err)
	assert.Equal(t, 1.0, pred.At(0, 0))
}

func TestKNeighborsClassifier_Errors(t *testing.T) {
	X, y := lineData()

	_, err := NewKNeighborsClassifier().Predict(X)
	assert.Error(t, err)

	assert.Error(t, NewKNeighborsClassifier(WithNNeighbors(9)).Fit(X, y))
	assert.Error(t, NewKNeighborsClassifier(WithNNeighbors(0)).Fit(X, y))
	assert.Error(t, NewKNeighborsClassifier(WithWeights("rank")).Fit(X, y))

	knn := NewKNeighborsClassifier()
	require.NoError(t, knn.Fit(X, y))
	_, err = knn.Predict(mat.NewDense(1, 2, nil))
	assert.Error(t, err)
}
