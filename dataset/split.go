package dataset

import (
	"math"
	"math/rand"
	"sort"

	"github.com/YuminosukeSato/trafobench/pkg/errors"
)

// TrainTestSplit partitions t into train and test tables, stratified by
// Outcome and seeded for reproducibility. testSize is the fraction of each
// class assigned to the test side. A class with at least two rows always
// contributes at least one row to each side. Both outputs keep table order.
func TrainTestSplit(t *Table, testSize float64, seed int64) (train, test *Table, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, errors.NewValidationError("test_size", "must be in (0, 1)", testSize)
	}
	if !t.Has(Outcome) {
		return nil, nil, errors.NewValidationError("column", "table has no Outcome column", t.Names())
	}

	rng := rand.New(rand.NewSource(seed))
	var trainIdx, testIdx []int
	for _, label := range classLabels(t) {
		idx := t.ClassRows(label)
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		nTest := int(math.Round(testSize * float64(len(idx))))
		if len(idx) >= 2 {
			nTest = max(1, min(nTest, len(idx)-1))
		}
		testIdx = append(testIdx, idx[:nTest]...)
		trainIdx = append(trainIdx, idx[nTest:]...)
	}
	sort.Ints(trainIdx)
	sort.Ints(testIdx)
	return t.Subset(trainIdx), t.Subset(testIdx), nil
}

// classLabels returns the distinct Outcome values in ascending order.
func classLabels(t *Table) []float64 {
	seen := map[float64]bool{}
	var labels []float64
	for _, v := range t.Column(Outcome) {
		if !seen[v] {
			seen[v] = true
			labels = append(labels, v)
		}
	}
	sort.Float64s(labels)
	return labels
}
