package tree

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trafobench/dataset"
	"github.com/YuminosukeSato/trafobench/dataset/datasettest"
	"github.com/YuminosukeSato/trafobench/pkg/errors"
)

func diabetesSplit(t *testing.T, n int, seed int64) (train, test *dataset.Table) {
	t.Helper()
	train, test, err := dataset.TrainTestSplit(datasettest.Diabetes(n, seed), 0.3, seed)
	if err != nil {
		t.Fatalf("TrainTestSplit: %v", err)
	}
	return train, test
}

func featureIndex(name string) int {
	for i, f := range dataset.FeatureNames {
		if f == name {
			return i
		}
	}
	return -1
}

// TestDecisionTreeClassifier_Diabetes fits the panel configuration on a
// synthetic diabetes table.
func TestDecisionTreeClassifier_Diabetes(t *testing.T) {
	train, test := diabetesSplit(t, 200, 3)

	dt := NewDecisionTreeClassifier(WithMaxDepth(5), WithRandomState(42))
	if err := dt.Fit(train.Features(), train.Labels()); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	if dt.GetDepth() > 5 {
		t.Errorf("depth %d exceeds max_depth=5", dt.GetDepth())
	}
	if got := dt.Classes(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("Classes() = %v, want [0 1]", got)
	}
	if score := dt.Score(test.Features(), test.Labels()); score < 0.7 {
		t.Errorf("holdout Score() = %v, want >= 0.7", score)
	}

	imp := dt.GetFeatureImportances()
	if len(imp) != len(dataset.FeatureNames) {
		t.Fatalf("got %d importances, want %d", len(imp), len(dataset.FeatureNames))
	}
	if math.Abs(floats.Sum(imp)-1) > 1e-9 {
		t.Errorf("importances sum to %v, want 1", floats.Sum(imp))
	}
	// Glucose と Insulin がクラス間で最も大きくずれている
	top := floats.MaxIdx(imp)
	if top != featureIndex(dataset.Glucose) && top != featureIndex(dataset.Insulin) {
		t.Errorf("most important feature is %s, want Glucose or Insulin", dataset.FeatureNames[top])
	}
}

func TestDecisionTreeClassifier_UnlimitedDepthMemorises(t *testing.T) {
	tbl := datasettest.Diabetes(150, 8)
	for _, criterion := range []string{"gini", "entropy"} {
		t.Run(criterion, func(t *testing.T) {
			dt := NewDecisionTreeClassifier(WithCriterion(criterion))
			if err := dt.Fit(tbl.Features(), tbl.Labels()); err != nil {
				t.Fatalf("Fit: %v", err)
			}
			if score := dt.Score(tbl.Features(), tbl.Labels()); score != 1 {
				t.Errorf("training Score() = %v, want 1", score)
			}
		})
	}
}

func TestDecisionTreeClassifier_PredictProba(t *testing.T) {
	train, test := diabetesSplit(t, 120, 11)

	for _, criterion := range []string{"gini", "entropy"} {
		t.Run(criterion, func(t *testing.T) {
			dt := NewDecisionTreeClassifier(WithCriterion(criterion), WithMaxDepth(3))
			if err := dt.Fit(train.Features(), train.Labels()); err != nil {
				t.Fatalf("Fit: %v", err)
			}
			probas, err := dt.PredictProba(test.Features())
			if err != nil {
				t.Fatalf("PredictProba: %v", err)
			}
			pred, err := dt.Predict(test.Features())
			if err != nil {
				t.Fatalf("Predict: %v", err)
			}

			rows, cols := probas.Dims()
			if cols != 2 || rows != test.Nrow() {
				t.Fatalf("probas shape (%d, %d)", rows, cols)
			}
			for i := 0; i < rows; i++ {
				row := mat.Row(nil, i, probas)
				if math.Abs(floats.Sum(row)-1) > 1e-9 {
					t.Errorf("row %d sums to %v", i, floats.Sum(row))
				}
				if want := float64(dt.Classes()[floats.MaxIdx(row)]); pred.At(i, 0) != want {
					t.Errorf("row %d: Predict %v, argmax class %v", i, pred.At(i, 0), want)
				}
			}
		})
	}
}

// TestDecisionTreeClassifier_Multiclass buckets Glucose into three classes,
// which two thresholds separate exactly.
func TestDecisionTreeClassifier_Multiclass(t *testing.T) {
	tbl := datasettest.Diabetes(90, 4)
	glucose := tbl.Column(dataset.Glucose)

	y := mat.NewDense(len(glucose), 1, nil)
	for i, g := range glucose {
		switch {
		case g < 100:
			y.Set(i, 0, 0)
		case g < 140:
			y.Set(i, 0, 1)
		default:
			y.Set(i, 0, 2)
		}
	}

	dt := NewDecisionTreeClassifier(WithMaxDepth(3))
	if err := dt.Fit(tbl.Features(), y); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if dt.nClasses_ != 3 {
		t.Errorf("got %d classes, want 3", dt.nClasses_)
	}
	if score := dt.Score(tbl.Features(), y); score != 1 {
		t.Errorf("Score() = %v, want 1", score)
	}
	probas, _ := dt.PredictProba(tbl.Features())
	if _, cols := probas.Dims(); cols != 3 {
		t.Errorf("got %d probability columns, want 3", cols)
	}
	imp := dt.GetFeatureImportances()
	if g := imp[featureIndex(dataset.Glucose)]; math.Abs(g-1) > 1e-9 {
		t.Errorf("Glucose importance = %v, want 1", g)
	}
}

func TestDecisionTreeClassifier_GrowthLimits(t *testing.T) {
	tbl := datasettest.Diabetes(100, 6)
	X, y := tbl.Features(), tbl.Labels()

	tests := []struct {
		name      string
		opts      []Option
		maxDepth  int
		maxLeaves int
	}{
		{"stump", []Option{WithMaxDepth(1)}, 1, 2},
		{"depth 2", []Option{WithMaxDepth(2)}, 2, 4},
		{"depth 3", []Option{WithMaxDepth(3)}, 3, 8},
		{"min samples leaf", []Option{WithMinSamplesLeaf(20)}, 100, 5},
		{"min samples split", []Option{WithMinSamplesSplit(101)}, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt := NewDecisionTreeClassifier(tt.opts...)
			if err := dt.Fit(X, y); err != nil {
				t.Fatalf("Fit: %v", err)
			}
			if dt.GetDepth() > tt.maxDepth {
				t.Errorf("depth %d > %d", dt.GetDepth(), tt.maxDepth)
			}
			if dt.GetNLeaves() > tt.maxLeaves {
				t.Errorf("%d leaves > %d", dt.GetNLeaves(), tt.maxLeaves)
			}
		})
	}
}

func TestDecisionTreeClassifier_MaxFeaturesReproducible(t *testing.T) {
	train, test := diabetesSplit(t, 120, 2)

	build := func(seed int64) *DecisionTreeClassifier {
		dt := NewDecisionTreeClassifier(WithMaxFeatures(3), WithMaxDepth(4), WithRandomState(seed))
		if err := dt.Fit(train.Features(), train.Labels()); err != nil {
			t.Fatalf("Fit: %v", err)
		}
		return dt
	}
	a, b := build(3), build(3)

	pa, _ := a.PredictProba(test.Features())
	pb, _ := b.PredictProba(test.Features())
	if !mat.Equal(pa, pb) {
		t.Error("same seed built different trees")
	}
	if a.GetNLeaves() != b.GetNLeaves() || a.GetDepth() != b.GetDepth() {
		t.Error("same seed gave a different tree shape")
	}
}

func TestDecisionTreeClassifier_SingleClass(t *testing.T) {
	tbl := datasettest.Diabetes(30, 1)
	pos := tbl.Subset(tbl.ClassRows(1))

	dt := NewDecisionTreeClassifier()
	if err := dt.Fit(pos.Features(), pos.Labels()); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if dt.GetNLeaves() != 1 || dt.GetDepth() != 0 {
		t.Errorf("got %d leaves at depth %d, want a single leaf", dt.GetNLeaves(), dt.GetDepth())
	}
	pred, _ := dt.Predict(tbl.Features())
	for i := 0; i < tbl.Nrow(); i++ {
		if pred.At(i, 0) != 1 {
			t.Fatalf("row %d: got %v, want 1", i, pred.At(i, 0))
		}
	}
}

func TestDecisionTreeClassifier_Errors(t *testing.T) {
	tbl := datasettest.Diabetes(20, 1)
	X, y := tbl.Features(), tbl.Labels()

	invalid := []struct {
		name string
		opt  Option
	}{
		{"criterion", WithCriterion("mse")},
		{"max depth", WithMaxDepth(-1)},
		{"min samples split", WithMinSamplesSplit(1)},
		{"min samples leaf", WithMinSamplesLeaf(0)},
		{"max features", WithMaxFeatures(-2)},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDecisionTreeClassifier(tt.opt).Fit(X, y)
			var verr *errors.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}

	dt := NewDecisionTreeClassifier()
	var nf *errors.NotFittedError
	if _, err := dt.Predict(X); !errors.As(err, &nf) {
		t.Errorf("expected NotFittedError, got %v", err)
	}
	if _, err := dt.PredictProba(X); !errors.As(err, &nf) {
		t.Errorf("expected NotFittedError, got %v", err)
	}

	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if _, err := dt.Predict(mat.NewDense(1, 3, []float64{1, 2, 3})); err == nil {
		t.Error("expected error for wrong feature count")
	}
}

func TestDecisionTreeClassifier_GetSetParams(t *testing.T) {
	dt := NewDecisionTreeClassifier()

	params := dt.GetParams()
	if params["criterion"].(string) != "gini" || params["min_samples_split"].(int) != 2 {
		t.Errorf("unexpected defaults %v", params)
	}

	err := dt.SetParams(map[string]interface{}{
		"criterion":         "entropy",
		"max_depth":         5,
		"min_samples_split": 4,
		"min_samples_leaf":  2,
		"random_state":      int64(9),
	})
	if err != nil {
		t.Fatalf("SetParams: %v", err)
	}
	if dt.criterion != "entropy" || dt.maxDepth != 5 || dt.minSamplesSplit != 4 || dt.minSamplesLeaf != 2 || dt.randomState != 9 {
		t.Errorf("params not applied: %v", dt.GetParams())
	}

	for _, p := range []map[string]interface{}{
		{"splitter": "best"},
		{"max_depth": 2.5},
		{"criterion": 1},
		{"min_samples_leaf": 0},
	} {
		if err := NewDecisionTreeClassifier().SetParams(p); err == nil {
			t.Errorf("SetParams(%v) should fail", p)
		}
	}
}
