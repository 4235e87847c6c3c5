// Package model はtreelabの推定器が満たすインターフェースと状態管理を提供します。
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer は平均正解率などのスコアを計算できるモデルのインターフェース
type Scorer interface {
	// Score は X に対する予測と y の一致率を返す
	Score(X, y mat.Matrix) float64
}

// Classifier は分類器のインターフェース
type Classifier interface {
	Fitter
	Predictor
	Scorer

	// PredictProba は各クラスの確率を予測する
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes は学習時に観測したクラスラベルを返す
	Classes() []int
}

// ParameterGetter はハイパーパラメータを公開するモデルのインターフェース
type ParameterGetter interface {
	GetParams() map[string]interface{}
}

// ParameterSetter はハイパーパラメータの変更を許すモデルのインターフェース
type ParameterSetter interface {
	SetParams(params map[string]interface{}) error
}
