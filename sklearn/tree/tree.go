// Package tree は CART 方式の決定木分類器を提供する。
package tree

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trafobench/core/model"
	"github.com/YuminosukeSato/trafobench/pkg/errors"
)

// DecisionTreeClassifier は二分割の決定木分類器
// scikit-learnのDecisionTreeClassifierと互換性を持つ
type DecisionTreeClassifier struct {
	state *model.StateManager

	// ハイパーパラメータ
	criterion       string // "gini" または "entropy"
	maxDepth        int    // 最大深さ、0 は無制限
	minSamplesSplit int    // 分割に必要な最小サンプル数
	minSamplesLeaf  int    // 葉に必要な最小サンプル数
	maxFeatures     int    // 分割候補とする特徴量数、0 は全特徴量
	randomState     int64  // 特徴量サンプリングの乱数シード

	// 学習パラメータ
	root                *node
	classes_            []int
	nClasses_           int
	nFeatures_          int
	featureImportances_ []float64
	depth_              int
	nLeaves_            int
}

type node struct {
	leaf      bool
	feature   int
	threshold float64 // x <= threshold なら左
	left      *node
	right     *node
	proba     []float64 // classes_ の順に並ぶクラス確率
}

// Option は設定オプション
type Option func(*DecisionTreeClassifier)

// WithCriterion は不純度の基準を設定
func WithCriterion(criterion string) Option {
	return func(dt *DecisionTreeClassifier) { dt.criterion = criterion }
}

// WithMaxDepth は最大深さを設定
func WithMaxDepth(depth int) Option {
	return func(dt *DecisionTreeClassifier) { dt.maxDepth = depth }
}

// WithMinSamplesSplit は分割に必要な最小サンプル数を設定
func WithMinSamplesSplit(n int) Option {
	return func(dt *DecisionTreeClassifier) { dt.minSamplesSplit = n }
}

// WithMinSamplesLeaf は葉の最小サンプル数を設定
func WithMinSamplesLeaf(n int) Option {
	return func(dt *DecisionTreeClassifier) { dt.minSamplesLeaf = n }
}

// WithMaxFeatures は各分割で評価する特徴量数を設定
func WithMaxFeatures(n int) Option {
	return func(dt *DecisionTreeClassifier) { dt.maxFeatures = n }
}

// WithRandomState は乱数シードを設定
func WithRandomState(seed int64) Option {
	return func(dt *DecisionTreeClassifier) { dt.randomState = seed }
}

// NewDecisionTreeClassifier は新しい決定木分類器を作成
func NewDecisionTreeClassifier(options ...Option) *DecisionTreeClassifier {
	dt := &DecisionTreeClassifier{
		state:           model.NewStateManager(),
		criterion:       "gini",
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		randomState:     -1,
	}
	for _, opt := range options {
		opt(dt)
	}
	return dt
}

func (dt *DecisionTreeClassifier) validate() error {
	if dt.criterion != "gini" && dt.criterion != "entropy" {
		return errors.NewValidationError("criterion", "must be gini or entropy", dt.criterion)
	}
	if dt.maxDepth < 0 {
		return errors.NewValidationError("max_depth", "must be non-negative", dt.maxDepth)
	}
	if dt.minSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be at least 2", dt.minSamplesSplit)
	}
	if dt.minSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be at least 1", dt.minSamplesLeaf)
	}
	if dt.maxFeatures < 0 {
		return errors.NewValidationError("max_features", "must be non-negative", dt.maxFeatures)
	}
	return nil
}

// Fit は訓練データから木を構築する
func (dt *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	if err := model.ValidateXY("DecisionTreeClassifier.Fit", X, y); err != nil {
		return err
	}
	if err := dt.validate(); err != nil {
		return err
	}

	rows, cols := X.Dims()
	dt.state.Reset()
	dt.classes_ = model.UniqueClasses(y)
	dt.nClasses_ = len(dt.classes_)
	dt.nFeatures_ = cols
	dt.featureImportances_ = make([]float64, cols)
	dt.depth_ = 0
	dt.nLeaves_ = 0

	b := &builder{
		dt:     dt,
		X:      make([][]float64, rows),
		labels: make([]int, rows),
		total:  float64(rows),
	}
	for i := 0; i < rows; i++ {
		b.X[i] = mat.Row(nil, i, X)
		b.labels[i] = model.ClassIndex(dt.classes_, int(y.At(i, 0)))
	}
	seed := dt.randomState
	if seed < 0 {
		seed = rand.Int63()
	}
	b.rng = rand.New(rand.NewSource(seed))

	idx := make([]int, rows)
	for i := range idx {
		idx[i] = i
	}
	dt.root = b.grow(idx, 0)

	sum := 0.0
	for _, v := range dt.featureImportances_ {
		sum += v
	}
	if sum > 0 {
		for j := range dt.featureImportances_ {
			dt.featureImportances_[j] /= sum
		}
	}

	dt.state.SetDimensions(cols, rows)
	dt.state.SetFitted()
	return nil
}

type builder struct {
	dt     *DecisionTreeClassifier
	X      [][]float64
	labels []int
	total  float64
	rng    *rand.Rand
}

func (b *builder) counts(idx []int) []int {
	c := make([]int, b.dt.nClasses_)
	for _, i := range idx {
		c[b.labels[i]]++
	}
	return c
}

func (b *builder) impurity(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	total := float64(n)
	result := 0.0
	switch b.dt.criterion {
	case "entropy":
		for _, c := range counts {
			if c > 0 {
				p := float64(c) / total
				result -= p * math.Log2(p)
			}
		}
	default:
		result = 1
		for _, c := range counts {
			p := float64(c) / total
			result -= p * p
		}
	}
	return result
}

func (b *builder) leaf(counts []int, n int, depth int) *node {
	proba := make([]float64, len(counts))
	for k, c := range counts {
		proba[k] = float64(c) / float64(n)
	}
	b.dt.nLeaves_++
	if depth > b.dt.depth_ {
		b.dt.depth_ = depth
	}
	return &node{leaf: true, proba: proba}
}

func (b *builder) grow(idx []int, depth int) *node {
	counts := b.counts(idx)
	n := len(idx)
	imp := b.impurity(counts, n)

	if imp == 0 || n < b.dt.minSamplesSplit || n < 2*b.dt.minSamplesLeaf ||
		(b.dt.maxDepth > 0 && depth >= b.dt.maxDepth) {
		return b.leaf(counts, n, depth)
	}

	feature, threshold, childImp, ok := b.bestSplit(idx)
	if !ok {
		return b.leaf(counts, n, depth)
	}

	var left, right []int
	for _, i := range idx {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	// 重み付き不純度減少量を特徴量重要度に加算
	b.dt.featureImportances_[feature] += float64(n) / b.total * (imp - childImp)

	return &node{
		feature:   feature,
		threshold: threshold,
		left:      b.grow(left, depth+1),
		right:     b.grow(right, depth+1),
	}
}

// bestSplit は子ノードの重み付き不純度が最小となる分割を返す
func (b *builder) bestSplit(idx []int) (feature int, threshold, childImp float64, ok bool) {
	n := len(idx)
	nFeatures := b.dt.nFeatures_
	candidates := b.rng.Perm(nFeatures)
	if b.dt.maxFeatures > 0 && b.dt.maxFeatures < nFeatures {
		candidates = candidates[:b.dt.maxFeatures]
	} else {
		sort.Ints(candidates)
	}

	best := math.Inf(1)
	sorted := make([]int, n)
	for _, f := range candidates {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, c int) bool { return b.X[sorted[a]][f] < b.X[sorted[c]][f] })

		leftCounts := make([]int, b.dt.nClasses_)
		rightCounts := b.counts(sorted)
		for pos := 0; pos < n-1; pos++ {
			k := b.labels[sorted[pos]]
			leftCounts[k]++
			rightCounts[k]--

			nLeft := pos + 1
			nRight := n - nLeft
			cur, next := b.X[sorted[pos]][f], b.X[sorted[pos+1]][f]
			if cur == next || nLeft < b.dt.minSamplesLeaf || nRight < b.dt.minSamplesLeaf {
				continue
			}

			weighted := (float64(nLeft)*b.impurity(leftCounts, nLeft) +
				float64(nRight)*b.impurity(rightCounts, nRight)) / float64(n)
			if weighted < best {
				best = weighted
				feature = f
				threshold = (cur + next) / 2
				ok = true
			}
		}
	}
	return feature, threshold, best, ok
}

func (dt *DecisionTreeClassifier) check(method string, X mat.Matrix) error {
	if err := dt.state.RequireFitted("DecisionTreeClassifier", method); err != nil {
		return err
	}
	return dt.state.RequireFeatures("DecisionTreeClassifier."+method, X)
}

func (dt *DecisionTreeClassifier) probaRow(x []float64) []float64 {
	n := dt.root
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.proba
}

// PredictProba は classes_ の順にクラス確率を返す
func (dt *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := dt.check("PredictProba", X); err != nil {
		return nil, err
	}
	rows, _ := X.Dims()
	out := mat.NewDense(rows, dt.nClasses_, nil)
	for i := 0; i < rows; i++ {
		out.SetRow(i, dt.probaRow(mat.Row(nil, i, X)))
	}
	return out, nil
}

// Predict は最大確率のクラスを返す
func (dt *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := dt.check("Predict", X); err != nil {
		return nil, err
	}
	rows, _ := X.Dims()
	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		proba := dt.probaRow(mat.Row(nil, i, X))
		best := 0
		for k := 1; k < len(proba); k++ {
			if proba[k] > proba[best] {
				best = k
			}
		}
		out.Set(i, 0, float64(dt.classes_[best]))
	}
	return out, nil
}

// Score は平均正解率を返す
func (dt *DecisionTreeClassifier) Score(X, y mat.Matrix) float64 {
	predictions, err := dt.Predict(X)
	if err != nil {
		return 0.0
	}
	return model.MeanAccuracy(predictions, y)
}

// Classes は学習したクラスラベルを返す
func (dt *DecisionTreeClassifier) Classes() []int {
	return append([]int(nil), dt.classes_...)
}

// GetFeatureImportances は正規化された不純度減少量を返す
func (dt *DecisionTreeClassifier) GetFeatureImportances() []float64 {
	return append([]float64(nil), dt.featureImportances_...)
}

// GetDepth は木の深さを返す（根のみなら 0）
func (dt *DecisionTreeClassifier) GetDepth() int { return dt.depth_ }

// GetNLeaves は葉の数を返す
func (dt *DecisionTreeClassifier) GetNLeaves() int { return dt.nLeaves_ }

// GetParams はハイパーパラメータを返す
func (dt *DecisionTreeClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"criterion":         dt.criterion,
		"max_depth":         dt.maxDepth,
		"min_samples_split": dt.minSamplesSplit,
		"min_samples_leaf":  dt.minSamplesLeaf,
		"max_features":      dt.maxFeatures,
		"random_state":      dt.randomState,
	}
}

// SetParams はハイパーパラメータを設定する
func (dt *DecisionTreeClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "criterion":
			v, ok := value.(string)
			if !ok {
				return fmt.Errorf("criterion must be a string")
			}
			dt.criterion = v
		case "max_depth", "min_samples_split", "min_samples_leaf", "max_features":
			v, ok := value.(int)
			if !ok {
				return fmt.Errorf("%s must be an int", key)
			}
			switch key {
			case "max_depth":
				dt.maxDepth = v
			case "min_samples_split":
				dt.minSamplesSplit = v
			case "min_samples_leaf":
				dt.minSamplesLeaf = v
			default:
				dt.maxFeatures = v
			}
		case "random_state":
			v, ok := value.(int64)
			if !ok {
				return fmt.Errorf("random_state must be an int64")
			}
			dt.randomState = v
		default:
			return fmt.Errorf("unknown parameter: %s", key)
		}
	}
	return dt.validate()
}

var (
	_ model.Classifier      = (*DecisionTreeClassifier)(nil)
	_ model.ParameterSetter = (*DecisionTreeClassifier)(nil)
)
