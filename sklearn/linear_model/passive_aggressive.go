package linear_model

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trafobench/core/model"
	"github.com/YuminosukeSato/trafobench/pkg/errors"
)

// PassiveAggressiveClassifier は受動的攻撃的分類モデル（二値分類）
// scikit-learnのPassiveAggressiveClassifierと互換性を持つ
type PassiveAggressiveClassifier struct {
	state *model.StateManager

	// ハイパーパラメータ
	C             float64 // 正則化パラメータ
	fitIntercept  bool    // 切片を学習するか
	maxIter       int     // 最大エポック数
	tol           float64 // 収束判定の許容誤差
	nIterNoChange int     // 改善なしで打ち切るエポック数
	shuffle       bool    // 各エポックでデータをシャッフルするか
	randomState   int64   // 乱数シード
	averagePA     bool    // 平均化PAを使用するか
	loss          string  // 損失関数: "hinge", "squared_hinge"

	// 学習パラメータ
	coef_         []float64 // 重み係数
	intercept_    float64   // 切片
	avgCoef_      []float64 // 平均化された重み
	avgIntercept_ float64   // 平均化された切片
	classes_      []int     // クラスラベル、classes_[1] が正例

	// 学習状態
	nIter_     int   // 実行されたエポック数
	t_         int64 // 総ステップ数
	converged_ bool  // 収束フラグ
}

// PassiveAggressiveOption は設定オプション
type PassiveAggressiveOption func(*PassiveAggressiveClassifier)

// NewPassiveAggressiveClassifier は新しいPassiveAggressiveClassifierを作成
func NewPassiveAggressiveClassifier(options ...PassiveAggressiveOption) *PassiveAggressiveClassifier {
	pa := &PassiveAggressiveClassifier{
		state:         model.NewStateManager(),
		C:             1.0,
		fitIntercept:  true,
		maxIter:       1000,
		tol:           1e-3,
		nIterNoChange: 5,
		shuffle:       true,
		randomState:   -1,
		loss:          "hinge",
	}

	for _, opt := range options {
		opt(pa)
	}

	return pa
}

// WithPAC は正則化パラメータを設定
func WithPAC(c float64) PassiveAggressiveOption {
	return func(pa *PassiveAggressiveClassifier) { pa.C = c }
}

// WithPAMaxIter は最大エポック数を設定
func WithPAMaxIter(maxIter int) PassiveAggressiveOption {
	return func(pa *PassiveAggressiveClassifier) { pa.maxIter = maxIter }
}

// WithPAFitIntercept は切片学習の有無を設定
func WithPAFitIntercept(fit bool) PassiveAggressiveOption {
	return func(pa *PassiveAggressiveClassifier) { pa.fitIntercept = fit }
}

// WithPALoss は損失関数を設定
func WithPALoss(loss string) PassiveAggressiveOption {
	return func(pa *PassiveAggressiveClassifier) { pa.loss = loss }
}

// WithPARandomState は乱数シードを設定（シャッフル順序を固定する）
func WithPARandomState(seed int64) PassiveAggressiveOption {
	return func(pa *PassiveAggressiveClassifier) { pa.randomState = seed }
}

// WithPAAverage は平均化PAの有無を設定
func WithPAAverage(average bool) PassiveAggressiveOption {
	return func(pa *PassiveAggressiveClassifier) { pa.averagePA = average }
}

// WithPATol は収束判定の許容誤差を設定
func WithPATol(tol float64) PassiveAggressiveOption {
	return func(pa *PassiveAggressiveClassifier) { pa.tol = tol }
}

// Fit はバッチ学習でモデルを訓練
// エポック損失が nIterNoChange 回連続で tol 以上改善しなければ打ち切る
func (pa *PassiveAggressiveClassifier) Fit(X, y mat.Matrix) error {
	if err := model.ValidateXY("PassiveAggressiveClassifier.Fit", X, y); err != nil {
		return err
	}
	classes, err := model.BinaryClasses("PassiveAggressiveClassifier.Fit", y)
	if err != nil {
		return err
	}
	if pa.loss != "hinge" && pa.loss != "squared_hinge" {
		return errors.NewValidationError("loss", "must be hinge or squared_hinge", pa.loss)
	}

	rows, cols := X.Dims()
	pa.reset(cols)
	pa.classes_ = classes

	seed := pa.randomState
	if seed < 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed))

	order := make([]int, rows)
	for i := range order {
		order[i] = i
	}

	bestLoss := math.Inf(1)
	noChange := 0
	for iter := 0; iter < pa.maxIter; iter++ {
		if pa.shuffle {
			rng.Shuffle(rows, func(i, j int) { order[i], order[j] = order[j], order[i] })
		}
		epochLoss := 0.0
		for _, i := range order {
			xi := mat.Row(nil, i, X)
			target := -1.0
			if int(y.At(i, 0)) == pa.classes_[1] {
				target = 1.0
			}
			epochLoss += pa.updateWeights(xi, target)
		}
		pa.nIter_++

		if err := errors.CheckNumericalStability("PassiveAggressiveClassifier.Fit", pa.coef_, iter); err != nil {
			return err
		}

		if epochLoss > bestLoss-pa.tol*float64(rows) {
			noChange++
		} else {
			noChange = 0
		}
		bestLoss = math.Min(bestLoss, epochLoss)
		if noChange >= pa.nIterNoChange || epochLoss == 0 {
			pa.converged_ = true
			break
		}
	}

	if !pa.converged_ {
		errors.Warn(errors.NewConvergenceWarning("PassiveAggressiveClassifier", pa.nIter_, "Maximum number of iterations reached"))
	}

	pa.state.SetDimensions(cols, rows)
	pa.state.SetFitted()
	return nil
}

// updateWeights は単一サンプルで重みを更新し、更新前の損失を返す
func (pa *PassiveAggressiveClassifier) updateWeights(x []float64, target float64) float64 {
	score := pa.intercept_
	for i, xi := range x {
		score += pa.coef_[i] * xi
	}

	var loss, tau float64
	margin := target * score
	if margin < 1 {
		diff := 1 - margin
		norm := dotProduct(x, x)
		if pa.fitIntercept {
			norm += 1
		}
		switch pa.loss {
		case "squared_hinge":
			loss = 0.5 * diff * diff
		default:
			loss = diff
		}
		tau = target * diff / (norm + 1.0/(2.0*pa.C))
	}

	if tau != 0 {
		for i, xi := range x {
			pa.coef_[i] += tau * xi
		}
		if pa.fitIntercept {
			pa.intercept_ += tau
		}
	}

	if pa.averagePA {
		n := float64(pa.t_)
		for i := range pa.coef_ {
			pa.avgCoef_[i] = (pa.avgCoef_[i]*n + pa.coef_[i]) / (n + 1)
		}
		pa.avgIntercept_ = (pa.avgIntercept_*n + pa.intercept_) / (n + 1)
	}

	pa.t_++
	return loss
}

// DecisionFunction は各サンプルの符号付き距離を返す
func (pa *PassiveAggressiveClassifier) DecisionFunction(X mat.Matrix) (mat.Matrix, error) {
	if err := pa.state.RequireFitted("PassiveAggressiveClassifier", "DecisionFunction"); err != nil {
		return nil, err
	}
	if err := pa.state.RequireFeatures("PassiveAggressiveClassifier.DecisionFunction", X); err != nil {
		return nil, err
	}

	coef, intercept := pa.coef_, pa.intercept_
	if pa.averagePA {
		coef, intercept = pa.avgCoef_, pa.avgIntercept_
	}

	rows, _ := X.Dims()
	scores := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		s := intercept
		for j, w := range coef {
			s += X.At(i, j) * w
		}
		scores.Set(i, 0, s)
	}
	return scores, nil
}

// Predict は入力データに対する予測を行う
func (pa *PassiveAggressiveClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	scores, err := pa.DecisionFunction(X)
	if err != nil {
		return nil, err
	}

	rows, _ := scores.Dims()
	predictions := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		if scores.At(i, 0) > 0 {
			predictions.Set(i, 0, float64(pa.classes_[1]))
		} else {
			predictions.Set(i, 0, float64(pa.classes_[0]))
		}
	}
	return predictions, nil
}

// Score は平均正解率を返す
func (pa *PassiveAggressiveClassifier) Score(X, y mat.Matrix) float64 {
	predictions, err := pa.Predict(X)
	if err != nil {
		return 0.0
	}
	return model.MeanAccuracy(predictions, y)
}

// Classes は学習したクラスラベルを返す
func (pa *PassiveAggressiveClassifier) Classes() []int {
	return append([]int(nil), pa.classes_...)
}

// NIterations は実行されたエポック数を返す
func (pa *PassiveAggressiveClassifier) NIterations() int { return pa.nIter_ }

// Converged は最後の Fit が収束したかを返す
func (pa *PassiveAggressiveClassifier) Converged() bool { return pa.converged_ }

// GetParams はハイパーパラメータを返す
func (pa *PassiveAggressiveClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"C":             pa.C,
		"fit_intercept": pa.fitIntercept,
		"max_iter":      pa.maxIter,
		"tol":           pa.tol,
		"shuffle":       pa.shuffle,
		"random_state":  pa.randomState,
		"average":       pa.averagePA,
		"loss":          pa.loss,
	}
}

// reset は内部状態をリセット
func (pa *PassiveAggressiveClassifier) reset(nFeatures int) {
	pa.coef_ = make([]float64, nFeatures)
	pa.avgCoef_ = make([]float64, nFeatures)
	pa.intercept_ = 0
	pa.avgIntercept_ = 0
	pa.classes_ = nil
	pa.nIter_ = 0
	pa.t_ = 0
	pa.converged_ = false
	pa.state.Reset()
}

// 補助関数
func dotProduct(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

var _ model.Estimator = (*PassiveAggressiveClassifier)(nil)
