// Package metrics は回帰モデルの評価指標を提供する
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
)

// Report はホールドアウト評価の結果
type Report struct {
	N    int
	R2   float64
	MAE  float64
	RMSE float64
}

// Evaluate はR²、MAE、RMSEをまとめて計算する
// yTrueの分散が0の場合、R²はNaNになる（エラーにはしない）
func Evaluate(yTrue, yPred []float64) (Report, error) {
	if err := checkPair("Evaluate", yTrue, yPred); err != nil {
		return Report{}, err
	}
	mae, _ := MAE(yTrue, yPred)
	rmse, _ := RMSE(yTrue, yPred)
	r2, err := R2Score(yTrue, yPred)
	if err != nil {
		r2 = math.NaN()
	}
	return Report{N: len(yTrue), R2: r2, MAE: mae, RMSE: rmse}, nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("MSE", yTrue, yPred); err != nil {
		return 0, err
	}
	// MSE = (1/n) * Σ(yTrue - yPred)²
	d := floats.Distance(yTrue, yPred, 2)
	return d * d / float64(len(yTrue)), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred []float64) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("MAE", yTrue, yPred); err != nil {
		return 0, err
	}
	return floats.Distance(yTrue, yPred, 1) / float64(len(yTrue)), nil
}

// R2Score は決定係数（R²）を計算する
func R2Score(yTrue, yPred []float64) (float64, error) {
	if err := checkPair("R2Score", yTrue, yPred); err != nil {
		return 0, err
	}

	// 全変動（TSS）と残差変動（RSS）
	mean := stat.Mean(yTrue, nil)
	var tss float64
	for _, v := range yTrue {
		tss += (v - mean) * (v - mean)
	}
	if tss == 0 {
		return 0, errors.NewValueError("R2Score", "total sum of squares is zero (no variance in yTrue)")
	}
	d := floats.Distance(yTrue, yPred, 2)
	return 1 - d*d/tss, nil
}

// ColumnToSlice はn×1行列（予測結果）をスライスに変換する
func ColumnToSlice(m mat.Matrix) ([]float64, error) {
	_, c := m.Dims()
	if c != 1 {
		return nil, errors.NewDimensionError("ColumnToSlice", 1, c, 1)
	}
	return mat.Col(nil, 0, m), nil
}

func checkPair(op string, yTrue, yPred []float64) error {
	if len(yTrue) == 0 {
		return errors.NewValueError(op, "empty vector")
	}
	if len(yPred) != len(yTrue) {
		return errors.NewDimensionError(op, len(yTrue), len(yPred), 0)
	}
	return nil
}
