package linear_model

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trafobench/pkg/errors"
)

func separableData() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(8, 2, []float64{
		0.0, 0.5,
		0.5, 0.0,
		1.0, 0.5,
		0.5, 1.0,
		3.0, 3.5,
		3.5, 3.0,
		4.0, 3.5,
		3.5, 4.0,
	})
	y := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 1, 1, 1, 1})
	return X, y
}

func TestPassiveAggressiveClassifier_FitPredict(t *testing.T) {
	X, y := separableData()

	pa := NewPassiveAggressiveClassifier(WithPARandomState(42))
	if err := pa.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if score := pa.Score(X, y); score != 1.0 {
		t.Errorf("expected perfect training accuracy, got %v", score)
	}
	if !pa.Converged() {
		t.Errorf("expected convergence on separable data after %d epochs", pa.NIterations())
	}

	classes := pa.Classes()
	if len(classes) != 2 || classes[0] != 0 || classes[1] != 1 {
		t.Errorf("unexpected classes %v", classes)
	}

	scores, err := pa.DecisionFunction(mat.NewDense(2, 2, []float64{0, 0, 4, 4}))
	if err != nil {
		t.Fatalf("DecisionFunction failed: %v", err)
	}
	if scores.At(0, 0) >= 0 || scores.At(1, 0) <= 0 {
		t.Errorf("decision scores have wrong sign: %v, %v", scores.At(0, 0), scores.At(1, 0))
	}
}

func TestPassiveAggressiveClassifier_Reproducible(t *testing.T) {
	X, y := separableData()

	a := NewPassiveAggressiveClassifier(WithPARandomState(7), WithPAMaxIter(3))
	b := NewPassiveAggressiveClassifier(WithPARandomState(7), WithPAMaxIter(3))

	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	t.Cleanup(func() { errors.SetWarningHandler(func(error) {}) })

	if err := a.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if err := b.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	for i := range a.coef_ {
		if a.coef_[i] != b.coef_[i] {
			t.Errorf("coef[%d] differs: %v vs %v", i, a.coef_[i], b.coef_[i])
		}
	}
	if a.intercept_ != b.intercept_ {
		t.Errorf("intercept differs: %v vs %v", a.intercept_, b.intercept_)
	}

	// three epochs are too few for the early-stopping window
	var cw *errors.ConvergenceWarning
	if len(warnings) != 2 || !errors.As(warnings[0], &cw) {
		t.Errorf("expected a ConvergenceWarning per fit, got %v", warnings)
	}
}

func TestPassiveAggressiveClassifier_SquaredHingeAndAverage(t *testing.T) {
	X, y := separableData()

	pa := NewPassiveAggressiveClassifier(
		WithPALoss("squared_hinge"),
		WithPAAverage(true),
		WithPAC(0.5),
		WithPARandomState(1),
	)
	if err := pa.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if score := pa.Score(X, y); score < 0.75 {
		t.Errorf("averaged model accuracy too low: %v", score)
	}

	params := pa.GetParams()
	if params["loss"] != "squared_hinge" || params["average"] != true {
		t.Errorf("unexpected params %v", params)
	}
}

func TestPassiveAggressiveClassifier_Errors(t *testing.T) {
	X, y := separableData()

	if _, err := NewPassiveAggressiveClassifier().Predict(X); err == nil {
		t.Error("expected NotFittedError before Fit")
	}

	bad := NewPassiveAggressiveClassifier(WithPALoss("log"))
	if err := bad.Fit(X, y); err == nil {
		t.Error("expected validation error for unknown loss")
	}

	single := mat.NewDense(8, 1, []float64{1, 1, 1, 1, 1, 1, 1, 1})
	err := NewPassiveAggressiveClassifier().Fit(X, single)
	if !errors.Is(err, errors.ErrSingleClass) {
		t.Errorf("expected ErrSingleClass, got %v", err)
	}

	pa := NewPassiveAggressiveClassifier(WithPARandomState(0))
	if err := pa.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if _, err := pa.Predict(mat.NewDense(1, 3, nil)); err == nil {
		t.Error("expected dimension error for wrong feature count")
	}
}
