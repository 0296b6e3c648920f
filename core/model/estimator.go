package model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/salary-predictor/core/frame"
)

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う (n×1 の行列を返す)
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Regressor は回帰モデルのインターフェース
type Regressor interface {
	Fitter
	Predictor
	// IsFitted はモデルが学習済みかどうかを返す
	IsFitted() bool
}

// FeatureImportancer は特徴量の重要度を返せるモデルのインターフェース
type FeatureImportancer interface {
	// FeatureImportances は正規化された不純度ベースの重要度を返す
	FeatureImportances() ([]float64, error)
}

// FramePredictor は名前付き列のテーブルから直接予測するモデルのインターフェース
// パイプラインがこれを実装する
type FramePredictor interface {
	Predict(X *frame.Frame) ([]float64, error)
	// FeatureNames は入力として期待する列名を返す
	FeatureNames() []string
}
