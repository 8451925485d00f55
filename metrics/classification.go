// Package metrics は二値分類の評価指標を提供します。
//
// 分母がゼロになる指標（陽性サンプルがない場合の感度など）はエラーにせず NaN を返し、
// errors.Warn で UndefinedMetricWarning を報告します。
package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/trafobench/pkg/errors"
)

// BinaryConfusion は二値分類の混同行列（陽性クラス = 1）
type BinaryConfusion struct {
	TP, FP, TN, FN int
}

func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError(op, "nil vector")
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// NewBinaryConfusion は正解ラベルと予測ラベル（0/1）から混同行列を作る
func NewBinaryConfusion(yTrue, yPred *mat.VecDense) (BinaryConfusion, error) {
	n, err := checkPair("NewBinaryConfusion", yTrue, yPred)
	if err != nil {
		return BinaryConfusion{}, err
	}

	var c BinaryConfusion
	for i := 0; i < n; i++ {
		t, p := yTrue.AtVec(i), yPred.AtVec(i)
		if (t != 0 && t != 1) || (p != 0 && p != 1) {
			return BinaryConfusion{}, errors.NewValueError("NewBinaryConfusion", "labels must be 0 or 1")
		}
		switch {
		case t == 1 && p == 1:
			c.TP++
		case t == 0 && p == 1:
			c.FP++
		case t == 0 && p == 0:
			c.TN++
		default:
			c.FN++
		}
	}
	return c, nil
}

// Total はサンプル数を返す
func (c BinaryConfusion) Total() int { return c.TP + c.FP + c.TN + c.FN }

// ratio は num/den を返す。den がゼロなら NaN を返して警告する。
func ratio(metric, condition string, num, den int) float64 {
	if den == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning(metric, condition, math.NaN()))
		return math.NaN()
	}
	return float64(num) / float64(den)
}

// Accuracy = (TP+TN) / total
func (c BinaryConfusion) Accuracy() float64 {
	return ratio("accuracy", "no samples", c.TP+c.TN, c.Total())
}

// Sensitivity = TP / (TP+FN)（陽性クラスの再現率）
func (c BinaryConfusion) Sensitivity() float64 {
	return ratio("sensitivity", "no true positive samples", c.TP, c.TP+c.FN)
}

// Specificity = TN / (TN+FP)（陰性クラスの再現率）
func (c BinaryConfusion) Specificity() float64 {
	return ratio("specificity", "no true negative samples", c.TN, c.TN+c.FP)
}

// Precision = TP / (TP+FP)
func (c BinaryConfusion) Precision() float64 {
	return ratio("precision", "no predicted positive samples", c.TP, c.TP+c.FP)
}

// F1 は適合率と再現率の調和平均 2TP / (2TP+FP+FN)
func (c BinaryConfusion) F1() float64 {
	return ratio("f1", "no positive samples in labels or predictions", 2*c.TP, 2*c.TP+c.FP+c.FN)
}

// Accuracy は正解率を計算する（多クラスでも使える）
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// Sensitivity は感度（陽性クラスの再現率）を計算する。陽性サンプルがなければ NaN。
func Sensitivity(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := NewBinaryConfusion(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return c.Sensitivity(), nil
}

// Specificity は特異度（陰性クラスの再現率）を計算する。陰性サンプルがなければ NaN。
func Specificity(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := NewBinaryConfusion(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return c.Specificity(), nil
}

// Precision は適合率を計算する。陽性予測がなければ NaN。
func Precision(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := NewBinaryConfusion(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return c.Precision(), nil
}

// F1Score はF1スコアを計算する。
func F1Score(yTrue, yPred *mat.VecDense) (float64, error) {
	c, err := NewBinaryConfusion(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return c.F1(), nil
}

// AUC はROC曲線下面積を順位（Mann-Whitney U）から計算する。
// 同順位は平均順位で扱う。片方のクラスしかない場合は 0.5 を返す。
func AUC(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("AUC", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	idx := make([]int, n)
	nPos := 0
	for i := 0; i < n; i++ {
		idx[i] = i
		switch yTrue.AtVec(i) {
		case 1:
			nPos++
		case 0:
		default:
			return 0, errors.NewValueError("AUC", "labels must be 0 or 1")
		}
	}
	nNeg := n - nPos
	if nPos == 0 || nNeg == 0 {
		return 0.5, nil
	}

	sort.Slice(idx, func(a, b int) bool { return yPred.AtVec(idx[a]) < yPred.AtVec(idx[b]) })

	var rankSumPos float64
	for i := 0; i < n; {
		j := i
		for j+1 < n && yPred.AtVec(idx[j+1]) == yPred.AtVec(idx[i]) {
			j++
		}
		// ranks are 1-based; ties share the average rank
		avgRank := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			if yTrue.AtVec(idx[k]) == 1 {
				rankSumPos += avgRank
			}
		}
		i = j + 1
	}

	u := rankSumPos - float64(nPos*(nPos+1))/2
	return u / float64(nPos*nNeg), nil
}

// AUCMatrix は行列形式の入力（先頭列を使用）に対してAUCを計算する
func AUCMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	vt, err := firstColumn("AUCMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	vp, err := firstColumn("AUCMatrix", yPred)
	if err != nil {
		return 0, err
	}
	return AUC(vt, vp)
}

// ConfusionMatrix は n×1 行列形式のラベルから混同行列を作る
func ConfusionMatrix(yTrue, yPred mat.Matrix) (BinaryConfusion, error) {
	vt, err := firstColumn("ConfusionMatrix", yTrue)
	if err != nil {
		return BinaryConfusion{}, err
	}
	vp, err := firstColumn("ConfusionMatrix", yPred)
	if err != nil {
		return BinaryConfusion{}, err
	}
	return NewBinaryConfusion(vt, vp)
}

func firstColumn(op string, m mat.Matrix) (*mat.VecDense, error) {
	if m == nil {
		return nil, errors.NewValueError(op, "nil matrix")
	}
	switch d := m.(type) {
	case *mat.Dense:
		if d == nil {
			return nil, errors.NewValueError(op, "nil matrix")
		}
		if d.IsEmpty() {
			return nil, errors.NewValueError(op, "empty matrix")
		}
	case *mat.VecDense:
		if d == nil {
			return nil, errors.NewValueError(op, "nil matrix")
		}
		if d.IsEmpty() {
			return nil, errors.NewValueError(op, "empty matrix")
		}
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewValueError(op, "empty matrix")
	}
	return mat.NewVecDense(r, mat.Col(nil, 0, m)), nil
}
