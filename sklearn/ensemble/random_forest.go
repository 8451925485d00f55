// Package ensemble はバギングによる決定木アンサンブルを提供する。
package ensemble

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trafobench/core/model"
	"github.com/YuminosukeSato/trafobench/pkg/errors"
	"github.com/YuminosukeSato/trafobench/sklearn/tree"
)

// RandomForestClassifier はブートストラップ標本で学習した決定木の平均確率で分類する
type RandomForestClassifier struct {
	state *model.StateManager

	// ハイパーパラメータ
	nEstimators     int
	maxDepth        int
	minSamplesSplit int
	maxFeatures     int // 0 は sqrt(n_features)
	bootstrap       bool
	randomState     int64

	// 学習パラメータ
	estimators_ []*tree.DecisionTreeClassifier
	classes_    []int
}

// Option は設定オプション
type Option func(*RandomForestClassifier)

// WithNEstimators は木の本数を設定
func WithNEstimators(n int) Option {
	return func(rf *RandomForestClassifier) { rf.nEstimators = n }
}

// WithMaxDepth は各木の最大深さを設定
func WithMaxDepth(depth int) Option {
	return func(rf *RandomForestClassifier) { rf.maxDepth = depth }
}

// WithMaxFeatures は各分割で評価する特徴量数を設定
func WithMaxFeatures(n int) Option {
	return func(rf *RandomForestClassifier) { rf.maxFeatures = n }
}

// WithBootstrap はブートストラップ標本の有無を設定
func WithBootstrap(b bool) Option {
	return func(rf *RandomForestClassifier) { rf.bootstrap = b }
}

// WithRandomState は乱数シードを設定。i 本目の木は seed+i を使う
func WithRandomState(seed int64) Option {
	return func(rf *RandomForestClassifier) { rf.randomState = seed }
}

// NewRandomForestClassifier は新しいランダムフォレストを作成
func NewRandomForestClassifier(options ...Option) *RandomForestClassifier {
	rf := &RandomForestClassifier{
		state:           model.NewStateManager(),
		nEstimators:     100,
		minSamplesSplit: 2,
		bootstrap:       true,
		randomState:     -1,
	}
	for _, opt := range options {
		opt(rf)
	}
	return rf
}

// Fit は各木を順に学習する。i 本目の木はブートストラップと特徴量選択に seed+i を使う
func (rf *RandomForestClassifier) Fit(X, y mat.Matrix) error {
	if err := model.ValidateXY("RandomForestClassifier.Fit", X, y); err != nil {
		return err
	}
	if rf.nEstimators < 1 {
		return errors.NewValidationError("n_estimators", "must be at least 1", rf.nEstimators)
	}

	rows, cols := X.Dims()
	rf.state.Reset()
	rf.classes_ = model.UniqueClasses(y)

	maxFeatures := rf.maxFeatures
	if maxFeatures == 0 {
		maxFeatures = int(math.Max(1, math.Floor(math.Sqrt(float64(cols)))))
	}
	seed := rf.randomState
	if seed < 0 {
		seed = rand.Int63()
	}

	rf.estimators_ = make([]*tree.DecisionTreeClassifier, rf.nEstimators)
	for i := 0; i < rf.nEstimators; i++ {
		treeSeed := seed + int64(i)
		Xs, ys := X, y
		if rf.bootstrap {
			Xs, ys = bootstrapSample(X, y, rows, rand.New(rand.NewSource(treeSeed)))
		}
		t := tree.NewDecisionTreeClassifier(
			tree.WithMaxDepth(rf.maxDepth),
			tree.WithMinSamplesSplit(rf.minSamplesSplit),
			tree.WithMaxFeatures(maxFeatures),
			tree.WithRandomState(treeSeed),
		)
		if err := t.Fit(Xs, ys); err != nil {
			return errors.Wrapf(err, "RandomForestClassifier.Fit tree %d", i)
		}
		rf.estimators_[i] = t
	}

	rf.state.SetDimensions(cols, rows)
	rf.state.SetFitted()
	return nil
}

func bootstrapSample(X, y mat.Matrix, n int, rng *rand.Rand) (*mat.Dense, *mat.Dense) {
	_, cols := X.Dims()
	Xs := mat.NewDense(n, cols, nil)
	ys := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		j := rng.Intn(n)
		Xs.SetRow(i, mat.Row(nil, j, X))
		ys.Set(i, 0, y.At(j, 0))
	}
	return Xs, ys
}

// PredictProba は各木の確率の平均を classes_ の順に返す
func (rf *RandomForestClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := rf.state.RequireFitted("RandomForestClassifier", "PredictProba"); err != nil {
		return nil, err
	}
	if err := rf.state.RequireFeatures("RandomForestClassifier.PredictProba", X); err != nil {
		return nil, err
	}

	rows, _ := X.Dims()
	out := mat.NewDense(rows, len(rf.classes_), nil)
	for _, t := range rf.estimators_ {
		proba, err := t.PredictProba(X)
		if err != nil {
			return nil, err
		}
		// ブートストラップ標本に現れなかったクラスは確率 0
		for k, c := range t.Classes() {
			col := model.ClassIndex(rf.classes_, c)
			for i := 0; i < rows; i++ {
				out.Set(i, col, out.At(i, col)+proba.At(i, k))
			}
		}
	}
	out.Scale(1/float64(len(rf.estimators_)), out)
	return out, nil
}

// Predict は平均確率が最大のクラスを返す
func (rf *RandomForestClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := rf.PredictProba(X)
	if err != nil {
		return nil, err
	}
	rows, cols := proba.Dims()
	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		best := 0
		for k := 1; k < cols; k++ {
			if proba.At(i, k) > proba.At(i, best) {
				best = k
			}
		}
		out.Set(i, 0, float64(rf.classes_[best]))
	}
	return out, nil
}

// Score は平均正解率を返す
func (rf *RandomForestClassifier) Score(X, y mat.Matrix) float64 {
	predictions, err := rf.Predict(X)
	if err != nil {
		return 0.0
	}
	return model.MeanAccuracy(predictions, y)
}

// Classes は学習したクラスラベルを返す
func (rf *RandomForestClassifier) Classes() []int {
	return append([]int(nil), rf.classes_...)
}

// Estimators は学習済みの木を返す
func (rf *RandomForestClassifier) Estimators() []*tree.DecisionTreeClassifier {
	return rf.estimators_
}

// GetFeatureImportances は各木の重要度の平均を返す
func (rf *RandomForestClassifier) GetFeatureImportances() []float64 {
	nFeatures, _ := rf.state.GetDimensions()
	out := make([]float64, nFeatures)
	if len(rf.estimators_) == 0 {
		return out
	}
	for _, t := range rf.estimators_ {
		for j, v := range t.GetFeatureImportances() {
			out[j] += v / float64(len(rf.estimators_))
		}
	}
	return out
}

// GetParams はハイパーパラメータを返す
func (rf *RandomForestClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":      rf.nEstimators,
		"max_depth":         rf.maxDepth,
		"min_samples_split": rf.minSamplesSplit,
		"max_features":      rf.maxFeatures,
		"bootstrap":         rf.bootstrap,
		"random_state":      rf.randomState,
	}
}

var _ model.Classifier = (*RandomForestClassifier)(nil)
