// Package neighbors は距離に基づく近傍分類器を提供する。
package neighbors

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trafobench/core/model"
	"github.com/YuminosukeSato/trafobench/pkg/errors"
)

// KNeighborsClassifier は k 近傍の多数決で分類する
// scikit-learnのKNeighborsClassifierと互換性を持つ
type KNeighborsClassifier struct {
	state *model.StateManager

	// ハイパーパラメータ
	nNeighbors int
	weights    string  // "uniform" または "distance"
	p          float64 // ミンコフスキー距離の次数

	// 学習データ（遅延学習）
	fitX     [][]float64
	fitY     []int // classes_ のインデックス
	classes_ []int
}

// Option は設定オプション
type Option func(*KNeighborsClassifier)

// WithNNeighbors は近傍数を設定
func WithNNeighbors(k int) Option {
	return func(knn *KNeighborsClassifier) { knn.nNeighbors = k }
}

// WithWeights は投票の重み付け方法を設定
func WithWeights(w string) Option {
	return func(knn *KNeighborsClassifier) { knn.weights = w }
}

// WithP はミンコフスキー距離の次数を設定（2 でユークリッド距離）
func WithP(p float64) Option {
	return func(knn *KNeighborsClassifier) { knn.p = p }
}

// NewKNeighborsClassifier は新しいk近傍分類器を作成
func NewKNeighborsClassifier(options ...Option) *KNeighborsClassifier {
	knn := &KNeighborsClassifier{
		state:      model.NewStateManager(),
		nNeighbors: 5,
		weights:    "uniform",
		p:          2,
	}
	for _, opt := range options {
		opt(knn)
	}
	return knn
}

// Fit は訓練データを保持する
func (knn *KNeighborsClassifier) Fit(X, y mat.Matrix) error {
	if err := model.ValidateXY("KNeighborsClassifier.Fit", X, y); err != nil {
		return err
	}
	if knn.nNeighbors < 1 {
		return errors.NewValidationError("n_neighbors", "must be at least 1", knn.nNeighbors)
	}
	if knn.weights != "uniform" && knn.weights != "distance" {
		return errors.NewValidationError("weights", "must be uniform or distance", knn.weights)
	}
	if knn.p < 1 {
		return errors.NewValidationError("p", "must be at least 1", knn.p)
	}

	rows, cols := X.Dims()
	if rows < knn.nNeighbors {
		return errors.NewValueError("KNeighborsClassifier.Fit",
			fmt.Sprintf("n_neighbors=%d exceeds n_samples=%d", knn.nNeighbors, rows))
	}

	knn.state.Reset()
	knn.classes_ = model.UniqueClasses(y)
	knn.fitX = make([][]float64, rows)
	knn.fitY = make([]int, rows)
	for i := 0; i < rows; i++ {
		knn.fitX[i] = mat.Row(nil, i, X)
		knn.fitY[i] = model.ClassIndex(knn.classes_, int(y.At(i, 0)))
	}

	knn.state.SetDimensions(cols, rows)
	knn.state.SetFitted()
	return nil
}

// Neighbor は訓練サンプルの位置とその距離
type Neighbor struct {
	Index    int
	Distance float64
}

// KNeighbors は x の近傍を距離の昇順で返す。同距離は訓練データの順
func (knn *KNeighborsClassifier) KNeighbors(x []float64) []Neighbor {
	all := make([]Neighbor, len(knn.fitX))
	for i, row := range knn.fitX {
		all[i] = Neighbor{Index: i, Distance: floats.Distance(x, row, knn.p)}
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].Distance < all[b].Distance })
	return all[:knn.nNeighbors]
}

func (knn *KNeighborsClassifier) votes(x []float64) []float64 {
	votes := make([]float64, len(knn.classes_))
	for _, nb := range knn.KNeighbors(x) {
		w := 1.0
		if knn.weights == "distance" {
			if nb.Distance == 0 {
				// 完全一致した点があればそのクラスのみで決まる
				for k := range votes {
					votes[k] = 0
				}
				votes[knn.fitY[nb.Index]] = 1
				return votes
			}
			w = 1 / nb.Distance
		}
		votes[knn.fitY[nb.Index]] += w
	}
	floats.Scale(1/floats.Sum(votes), votes)
	return votes
}

func (knn *KNeighborsClassifier) check(method string, X mat.Matrix) error {
	if err := knn.state.RequireFitted("KNeighborsClassifier", method); err != nil {
		return err
	}
	return knn.state.RequireFeatures("KNeighborsClassifier."+method, X)
}

// PredictProba は近傍に占める各クラスの割合を返す
func (knn *KNeighborsClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := knn.check("PredictProba", X); err != nil {
		return nil, err
	}
	rows, _ := X.Dims()
	out := mat.NewDense(rows, len(knn.classes_), nil)
	for i := 0; i < rows; i++ {
		out.SetRow(i, knn.votes(mat.Row(nil, i, X)))
	}
	return out, nil
}

// Predict は多数決のクラスを返す。同票なら小さいラベルを選ぶ
func (knn *KNeighborsClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := knn.check("Predict", X); err != nil {
		return nil, err
	}
	rows, _ := X.Dims()
	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		out.Set(i, 0, float64(knn.classes_[floats.MaxIdx(knn.votes(mat.Row(nil, i, X)))]))
	}
	return out, nil
}

// Score は平均正解率を返す
func (knn *KNeighborsClassifier) Score(X, y mat.Matrix) float64 {
	predictions, err := knn.Predict(X)
	if err != nil {
		return 0.0
	}
	return model.MeanAccuracy(predictions, y)
}

// Classes は学習したクラスラベルを返す
func (knn *KNeighborsClassifier) Classes() []int {
	return append([]int(nil), knn.classes_...)
}

// GetParams はハイパーパラメータを返す
func (knn *KNeighborsClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_neighbors": knn.nNeighbors,
		"weights":     knn.weights,
		"p":           knn.p,
	}
}

var _ model.Classifier = (*KNeighborsClassifier)(nil)
