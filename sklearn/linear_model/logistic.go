package linear_model

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trafobench/core/model"
	"github.com/YuminosukeSato/trafobench/pkg/errors"
)

// LogisticRegression implements binary logistic regression trained by
// full-batch gradient descent with optional L2 regularization.
// Compatible with scikit-learn's LogisticRegression for two classes.
type LogisticRegression struct {
	state *model.StateManager // State management (composition)

	// Hyperparameters
	penalty      string  // Regularization: "l2", "none"
	C            float64 // Inverse regularization strength (1/alpha)
	fitIntercept bool    // Whether to fit intercept
	randomState  int64   // Random seed
	maxIter      int     // Maximum iterations
	tol          float64 // Tolerance for stopping

	// Model parameters
	coef_      []float64 // Coefficients (n_features)
	intercept_ float64   // Intercept term
	classes_   []int     // Unique class labels, classes_[1] is the positive class
	nFeatures_ int       // Number of features
	nIter_     int       // Actual iterations

	// Internal state
	rand *rand.Rand
}

// LogisticRegressionOption is a functional option for LogisticRegression
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a new LogisticRegression classifier
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		state:        model.NewStateManager(),
		penalty:      "l2",
		C:            1.0,
		fitIntercept: true,
		randomState:  -1,
		maxIter:      100,
		tol:          1e-4,
	}

	for _, opt := range opts {
		opt(lr)
	}

	if lr.randomState >= 0 {
		lr.rand = rand.New(rand.NewSource(lr.randomState))
	} else {
		lr.rand = rand.New(rand.NewSource(rand.Int63()))
	}

	return lr
}

// WithLRPenalty sets the regularization type
func WithLRPenalty(penalty string) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.penalty = penalty
	}
}

// WithLRC sets the inverse regularization strength
func WithLRC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.C = c
	}
}

// WithLogisticFitIntercept sets whether to fit intercept
func WithLogisticFitIntercept(fit bool) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithLRMaxIter sets the maximum number of iterations
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLRTol sets the tolerance for stopping criteria
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// WithLRRandomState sets the random seed
func WithLRRandomState(seed int64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.randomState = seed
	}
}

// Fit trains the logistic regression model
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	if err := model.ValidateXY("LogisticRegression.Fit", X, y); err != nil {
		return err
	}
	classes, err := model.BinaryClasses("LogisticRegression.Fit", y)
	if err != nil {
		return err
	}

	nSamples, nFeatures := X.Dims()
	lr.classes_ = classes
	lr.nFeatures_ = nFeatures
	lr.initializeWeights(nFeatures)

	yBinary := make([]float64, nSamples)
	for i := range yBinary {
		if int(y.At(i, 0)) == lr.classes_[1] {
			yBinary[i] = 1.0
		}
	}

	if err := lr.gradientDescent(X, yBinary); err != nil {
		return err
	}

	lr.state.SetDimensions(nFeatures, nSamples)
	lr.state.SetFitted()
	return nil
}

// initializeWeights initializes model weights with small random values
func (lr *LogisticRegression) initializeWeights(nFeatures int) {
	lr.coef_ = make([]float64, nFeatures)
	lr.intercept_ = 0
	for j := range lr.coef_ {
		lr.coef_[j] = lr.rand.NormFloat64() * 0.01
	}
}

// gradientDescent minimizes the regularized log loss
func (lr *LogisticRegression) gradientDescent(X mat.Matrix, yBinary []float64) error {
	nSamples, nFeatures := X.Dims()
	weights := lr.coef_

	baseLearningRate := 1.0
	gradWeights := make([]float64, nFeatures)

	for iter := 0; iter < lr.maxIter; iter++ {
		for j := range gradWeights {
			gradWeights[j] = 0
		}
		gradIntercept := 0.0

		for i := 0; i < nSamples; i++ {
			residual := sigmoid(lr.decision(X, i)) - yBinary[i]
			gradIntercept += residual
			for j := 0; j < nFeatures; j++ {
				gradWeights[j] += residual * X.At(i, j)
			}
		}

		for j := range gradWeights {
			gradWeights[j] /= float64(nSamples)
		}
		gradIntercept /= float64(nSamples)

		if lr.penalty == "l2" {
			lambda := 1.0 / lr.C
			for j := range weights {
				gradWeights[j] += lambda * weights[j]
			}
		}

		learningRate := baseLearningRate / (1.0 + 0.1*float64(iter))
		for j := range weights {
			weights[j] -= learningRate * gradWeights[j]
		}
		if lr.fitIntercept {
			lr.intercept_ -= learningRate * gradIntercept
		}

		lr.nIter_ = iter + 1

		if err := errors.CheckNumericalStability("LogisticRegression.Fit", weights, iter); err != nil {
			return err
		}

		maxGrad := math.Abs(gradIntercept)
		for _, g := range gradWeights {
			maxGrad = math.Max(maxGrad, math.Abs(g))
		}
		if maxGrad < lr.tol {
			return nil
		}
	}

	errors.Warn(errors.NewConvergenceWarning("LogisticRegression", lr.maxIter, ""))
	return nil
}

func (lr *LogisticRegression) decision(X mat.Matrix, i int) float64 {
	z := lr.intercept_
	for j, w := range lr.coef_ {
		z += X.At(i, j) * w
	}
	return z
}

func (lr *LogisticRegression) checkPredict(method string, X mat.Matrix) error {
	if err := lr.state.RequireFitted("LogisticRegression", method); err != nil {
		return err
	}
	return lr.state.RequireFeatures("LogisticRegression."+method, X)
}

// Predict makes predictions for input data
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.checkPredict("Predict", X); err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		if sigmoid(lr.decision(X, i)) >= 0.5 {
			predictions.Set(i, 0, float64(lr.classes_[1]))
		} else {
			predictions.Set(i, 0, float64(lr.classes_[0]))
		}
	}
	return predictions, nil
}

// PredictProba returns probability estimates for each class
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.checkPredict("PredictProba", X); err != nil {
		return nil, err
	}

	nSamples, _ := X.Dims()
	probas := mat.NewDense(nSamples, 2, nil)
	for i := 0; i < nSamples; i++ {
		prob1 := sigmoid(lr.decision(X, i))
		probas.Set(i, 0, 1.0-prob1)
		probas.Set(i, 1, prob1)
	}
	return probas, nil
}

// Classes returns the class labels seen during Fit
func (lr *LogisticRegression) Classes() []int {
	return append([]int(nil), lr.classes_...)
}

// Score returns the mean accuracy on the given test data and labels
func (lr *LogisticRegression) Score(X, y mat.Matrix) float64 {
	predictions, err := lr.Predict(X)
	if err != nil {
		return 0.0
	}
	return model.MeanAccuracy(predictions, y)
}

// NIter returns the number of gradient steps taken by the last Fit
func (lr *LogisticRegression) NIter() int { return lr.nIter_ }

// GetParams returns the model hyperparameters
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"penalty":       lr.penalty,
		"C":             lr.C,
		"fit_intercept": lr.fitIntercept,
		"random_state":  lr.randomState,
		"max_iter":      lr.maxIter,
		"tol":           lr.tol,
	}
}

// SetParams sets the model hyperparameters. A value of the wrong type or an
// unknown key leaves the model unchanged.
func (lr *LogisticRegression) SetParams(params map[string]interface{}) error {
	next := *lr
	for key, value := range params {
		var ok bool
		switch key {
		case "penalty":
			var p string
			if p, ok = value.(string); ok {
				if p != "l2" && p != "none" {
					return errors.NewValidationError("penalty", "must be l2 or none", p)
				}
				next.penalty = p
			}
		case "C":
			next.C, ok = value.(float64)
			if ok && next.C <= 0 {
				return errors.NewValidationError("C", "must be positive", next.C)
			}
		case "fit_intercept":
			next.fitIntercept, ok = value.(bool)
		case "random_state":
			next.randomState, ok = value.(int64)
			if ok && next.randomState >= 0 {
				next.rand = rand.New(rand.NewSource(next.randomState))
			}
		case "max_iter":
			next.maxIter, ok = value.(int)
		case "tol":
			next.tol, ok = value.(float64)
		default:
			return fmt.Errorf("unknown parameter: %s", key)
		}
		if !ok {
			return fmt.Errorf("parameter %s: unexpected type %T", key, value)
		}
	}
	*lr = next
	return nil
}

// sigmoid computes the sigmoid function without overflowing exp
func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + errors.StabilizeExp(-z))
}

var _ model.Classifier = (*LogisticRegression)(nil)
