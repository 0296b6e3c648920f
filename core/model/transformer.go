package model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/salary-predictor/core/frame"
)

// FrameTransformer は名前付き列のテーブルを数値行列へ変換するインターフェース
type FrameTransformer interface {
	// Fit は変換に必要なパラメータを学習する
	Fit(X *frame.Frame) error

	// Transform はデータを変換する
	Transform(X *frame.Frame) (*mat.Dense, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(X *frame.Frame) (*mat.Dense, error)

	// OutputNames は変換後の各列の名前を返す
	OutputNames() []string
}
