// Package naive_bayes は特徴量の条件付き独立を仮定するナイーブベイズ分類器を提供する。
package naive_bayes

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/trafobench/core/model"
	"github.com/YuminosukeSato/trafobench/pkg/errors"
)

// GaussianNB は各クラスの特徴量を独立な正規分布で表すナイーブベイズ分類器
// scikit-learnのGaussianNBと互換性を持つ
type GaussianNB struct {
	state *model.StateManager

	// ハイパーパラメータ
	varSmoothing float64   // 最大分散に対する分散の加算比率
	priors       []float64 // 事前確率（nil ならデータから推定）

	// 学習パラメータ
	classes_    []int
	classPrior_ []float64
	classCount_ []float64
	theta_      *mat.Dense // クラスごとの平均 (n_classes × n_features)
	var_        *mat.Dense // クラスごとの母分散 (n_classes × n_features)
	epsilon_    float64
}

// Option は設定オプション
type Option func(*GaussianNB)

// WithVarSmoothing は分散の平滑化比率を設定
func WithVarSmoothing(v float64) Option {
	return func(nb *GaussianNB) { nb.varSmoothing = v }
}

// WithPriors はクラスの事前確率を固定する
func WithPriors(priors []float64) Option {
	return func(nb *GaussianNB) { nb.priors = priors }
}

// NewGaussianNB は新しいGaussianNBを作成
func NewGaussianNB(options ...Option) *GaussianNB {
	nb := &GaussianNB{
		state:        model.NewStateManager(),
		varSmoothing: 1e-9,
	}
	for _, opt := range options {
		opt(nb)
	}
	return nb
}

// Fit はクラスごとの平均と分散を推定する
func (nb *GaussianNB) Fit(X, y mat.Matrix) error {
	if err := model.ValidateXY("GaussianNB.Fit", X, y); err != nil {
		return err
	}
	if nb.varSmoothing < 0 {
		return errors.NewValidationError("var_smoothing", "must be non-negative", nb.varSmoothing)
	}

	rows, cols := X.Dims()
	nb.state.Reset()
	nb.classes_ = model.UniqueClasses(y)
	nClasses := len(nb.classes_)

	if nb.priors != nil {
		if len(nb.priors) != nClasses {
			return errors.NewValidationError("priors", fmt.Sprintf("expected %d values", nClasses), len(nb.priors))
		}
		if math.Abs(floats.Sum(nb.priors)-1) > 1e-8 {
			return errors.NewValidationError("priors", "must sum to 1", nb.priors)
		}
	}

	// クラスごとに列を集める
	byClass := make([][][]float64, nClasses)
	for k := range byClass {
		byClass[k] = make([][]float64, cols)
	}
	for i := 0; i < rows; i++ {
		k := model.ClassIndex(nb.classes_, int(y.At(i, 0)))
		for j := 0; j < cols; j++ {
			byClass[k][j] = append(byClass[k][j], X.At(i, j))
		}
	}

	// 全体の最大分散に比例する平滑化量
	maxVar := 0.0
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, X)
		_, v := stat.PopMeanVariance(col, nil)
		maxVar = math.Max(maxVar, v)
	}
	nb.epsilon_ = nb.varSmoothing * maxVar

	nb.theta_ = mat.NewDense(nClasses, cols, nil)
	nb.var_ = mat.NewDense(nClasses, cols, nil)
	nb.classCount_ = make([]float64, nClasses)
	for k := 0; k < nClasses; k++ {
		nb.classCount_[k] = float64(len(byClass[k][0]))
		for j := 0; j < cols; j++ {
			m, v := stat.PopMeanVariance(byClass[k][j], nil)
			nb.theta_.Set(k, j, m)
			nb.var_.Set(k, j, v+nb.epsilon_)
		}
	}

	nb.classPrior_ = make([]float64, nClasses)
	if nb.priors != nil {
		copy(nb.classPrior_, nb.priors)
	} else {
		for k, c := range nb.classCount_ {
			nb.classPrior_[k] = c / float64(rows)
		}
	}

	nb.state.SetDimensions(cols, rows)
	nb.state.SetFitted()
	return nil
}

// jointLogLikelihood は log P(c) + log P(x|c) を計算する
func (nb *GaussianNB) jointLogLikelihood(X mat.Matrix) *mat.Dense {
	rows, cols := X.Dims()
	nClasses := len(nb.classes_)
	jll := mat.NewDense(rows, nClasses, nil)
	for k := 0; k < nClasses; k++ {
		logPrior := errors.StabilizeLog(nb.classPrior_[k])
		for i := 0; i < rows; i++ {
			ll := logPrior
			for j := 0; j < cols; j++ {
				v := nb.var_.At(k, j)
				d := X.At(i, j) - nb.theta_.At(k, j)
				if v == 0 {
					// 全特徴量が定数かつ平滑化なしの場合
					if d != 0 {
						ll = math.Inf(-1)
					}
					continue
				}
				ll -= 0.5*math.Log(2*math.Pi*v) + d*d/(2*v)
			}
			jll.Set(i, k, ll)
		}
	}
	return jll
}

func (nb *GaussianNB) check(method string, X mat.Matrix) error {
	if err := nb.state.RequireFitted("GaussianNB", method); err != nil {
		return err
	}
	return nb.state.RequireFeatures("GaussianNB."+method, X)
}

// PredictLogProba は正規化された対数確率を返す
func (nb *GaussianNB) PredictLogProba(X mat.Matrix) (mat.Matrix, error) {
	if err := nb.check("PredictLogProba", X); err != nil {
		return nil, err
	}
	jll := nb.jointLogLikelihood(X)
	rows, _ := jll.Dims()
	for i := 0; i < rows; i++ {
		row := jll.RawRowView(i)
		norm := errors.LogSumExp(row)
		for k := range row {
			row[k] -= norm
		}
	}
	return jll, nil
}

// PredictProba は classes_ の順にクラス確率を返す
func (nb *GaussianNB) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	logProba, err := nb.PredictLogProba(X)
	if err != nil {
		return nil, err
	}
	proba := mat.DenseCopyOf(logProba)
	proba.Apply(func(_, _ int, v float64) float64 { return math.Exp(v) }, proba)
	return proba, nil
}

// Predict は事後確率が最大のクラスを返す
func (nb *GaussianNB) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := nb.check("Predict", X); err != nil {
		return nil, err
	}
	jll := nb.jointLogLikelihood(X)
	rows, _ := jll.Dims()
	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		out.Set(i, 0, float64(nb.classes_[floats.MaxIdx(jll.RawRowView(i))]))
	}
	return out, nil
}

// Score は平均正解率を返す
func (nb *GaussianNB) Score(X, y mat.Matrix) float64 {
	predictions, err := nb.Predict(X)
	if err != nil {
		return 0.0
	}
	return model.MeanAccuracy(predictions, y)
}

// Classes は学習したクラスラベルを返す
func (nb *GaussianNB) Classes() []int {
	return append([]int(nil), nb.classes_...)
}

// Theta はクラスごとの平均を返す
func (nb *GaussianNB) Theta() mat.Matrix { return nb.theta_ }

// Var はクラスごとの平滑化済み分散を返す
func (nb *GaussianNB) Var() mat.Matrix { return nb.var_ }

// ClassPrior はクラスの事前確率を返す
func (nb *GaussianNB) ClassPrior() []float64 {
	return append([]float64(nil), nb.classPrior_...)
}

// GetParams はハイパーパラメータを返す
func (nb *GaussianNB) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"var_smoothing": nb.varSmoothing,
		"priors":        nb.priors,
	}
}

var _ model.Classifier = (*GaussianNB)(nil)
