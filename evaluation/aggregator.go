package evaluation

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trafobench/core/model"
	"github.com/YuminosukeSato/trafobench/dataset"
	"github.com/YuminosukeSato/trafobench/metrics"
	"github.com/YuminosukeSato/trafobench/pkg/errors"
	"github.com/YuminosukeSato/trafobench/pkg/log"
)

var nan = math.NaN()

// Default holdout parameters.
const (
	DefaultTestSize = 0.3
	DefaultSeed     = 42
)

// Aggregator scores every panel member on a seeded stratified holdout split
// of a table.
type Aggregator struct {
	Panel    Panel
	TestSize float64
	Seed     int64
	Logger   log.Logger
}

// NewAggregator returns an Aggregator over the default panel.
func NewAggregator(seed int64) *Aggregator {
	return &Aggregator{
		Panel:    DefaultPanel(seed),
		TestSize: DefaultTestSize,
		Seed:     seed,
		Logger:   log.GetLogger(),
	}
}

type decisionScorer interface {
	DecisionFunction(X mat.Matrix) (mat.Matrix, error)
}

// Run splits t once and scores every panel member on the same partition.
// A member that cannot be fitted or scored gets NaN on every metric and
// does not stop the run. Tables with fewer than two rows give an all-NaN set.
func (a *Aggregator) Run(t *dataset.Table, label string) (MetricSet, error) {
	logger := a.logger().With(log.ComponentKey, "evaluation", log.VariantKey, label)
	set := MetricSet{Label: label, Scores: make([]ClassifierScore, 0, len(a.Panel))}

	if t.Nrow() < 2 {
		logger.Warn("table too small to evaluate", log.SamplesKey, t.Nrow())
		for _, m := range a.Panel {
			set.Scores = append(set.Scores, failedScore(m.Name))
		}
		return set, nil
	}

	train, test, err := dataset.TrainTestSplit(t, a.TestSize, a.Seed)
	if err != nil {
		return MetricSet{}, errors.Wrapf(err, "split %q", label)
	}
	logger.Debug("holdout split",
		log.SamplesKey, t.Nrow(),
		"data.train_samples", train.Nrow(),
		"data.test_samples", test.Nrow(),
		log.RandomSeedKey, a.Seed,
	)

	for _, m := range a.Panel {
		mlog := logger.With(log.ClassifierKey, m.Name)
		start := time.Now()
		score, err := a.score(m, train, test, mlog)
		if err != nil {
			mlog.Warn("classifier failed", err, log.ErrorTypeKey, errorType(err))
			set.Scores = append(set.Scores, failedScore(m.Name))
			continue
		}
		mlog.Info("classifier scored",
			log.AccuracyKey, score.Accuracy,
			log.SensitivityKey, score.Sensitivity,
			log.SpecificityKey, score.Specificity,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
		set.Scores = append(set.Scores, score)
	}

	means := set.Reduce()
	logger.Info("variant evaluated",
		log.AccuracyKey, means.Accuracy,
		log.SensitivityKey, means.Sensitivity,
		log.SpecificityKey, means.Specificity,
	)
	return set, nil
}

func (a *Aggregator) score(m Member, train, test *dataset.Table, logger log.Logger) (ClassifierScore, error) {
	if test.Nrow() == 0 {
		return ClassifierScore{}, errors.NewModelError(m.Name, "empty test partition", errors.ErrEmptyData)
	}

	est := m.New()
	if pg, ok := est.(model.ParameterGetter); ok {
		logger.Debug("classifier params", "model.params", pg.GetParams())
	}
	var pred mat.Matrix
	err := errors.SafeExecute(m.Name, func() error {
		if err := est.Fit(train.Features(), train.Labels()); err != nil {
			return err
		}
		var err error
		pred, err = est.Predict(test.Features())
		return err
	})
	if err != nil {
		return ClassifierScore{}, err
	}

	yTrue := test.Labels()
	cm, err := metrics.ConfusionMatrix(yTrue, pred)
	if err != nil {
		return ClassifierScore{}, err
	}

	logger.Debug("classifier diagnostics",
		log.PrecisionKey, cm.Precision(),
		log.F1Key, cm.F1(),
		"metrics.auc", a.auc(est, test.Features(), yTrue),
		"metrics.tp", cm.TP,
		"metrics.fp", cm.FP,
		"metrics.tn", cm.TN,
		"metrics.fn", cm.FN,
	)

	return ClassifierScore{
		Name:        m.Name,
		Accuracy:    cm.Accuracy(),
		Sensitivity: cm.Sensitivity(),
		Specificity: cm.Specificity(),
	}, nil
}

// auc ranks the test rows by the positive-class probability or, for margin
// classifiers, by the decision function. NaN when neither is available.
func (a *Aggregator) auc(est model.Estimator, X, yTrue mat.Matrix) float64 {
	var scores mat.Matrix
	switch c := est.(type) {
	case model.ProbabilisticClassifier:
		proba, err := c.PredictProba(X)
		if err != nil {
			return nan
		}
		col := model.ClassIndex(c.Classes(), 1)
		if col < 0 {
			return nan
		}
		rows, _ := proba.Dims()
		scores = mat.NewDense(rows, 1, mat.Col(nil, col, proba))
	case decisionScorer:
		d, err := c.DecisionFunction(X)
		if err != nil {
			return nan
		}
		scores = d
	default:
		return nan
	}
	v, err := metrics.AUCMatrix(yTrue, scores)
	if err != nil {
		return nan
	}
	return v
}

func (a *Aggregator) logger() log.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return log.GetLogger()
}

func errorType(err error) string {
	var me *errors.ModelError
	var ve *errors.ValueError
	var pe *errors.PanicError
	switch {
	case errors.As(err, &pe):
		return "panic"
	case errors.As(err, &me):
		return "model"
	case errors.As(err, &ve):
		return "value"
	default:
		return "other"
	}
}
