package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	// 戻り値は n_samples × 1 のラベル列
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Estimator は fit/predict を備えた教師あり学習モデルの最小インターフェース
// 評価パネルに登録できるモデルはこれを満たせばよい
type Estimator interface {
	Fitter
	Predictor
}
