package ensemble

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
)

func linearData(n int) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64(i%2))
		y.Set(i, 0, 50000+1000*float64(i))
	}
	return X, y
}

func TestRandomForestRegressor_FitPredict(t *testing.T) {
	X, y := linearData(10)

	rf := NewRandomForestRegressor(WithNEstimators(20), WithRandomState(42))
	require.NoError(t, rf.Fit(X, y))
	require.Len(t, rf.Estimators, 20)

	pred, err := rf.Predict(X)
	require.NoError(t, err)
	r, c := pred.Dims()
	require.Equal(t, 10, r)
	require.Equal(t, 1, c)
	// 平均なので必ず目的変数の範囲内に収まる
	for i := 0; i < r; i++ {
		v := pred.At(i, 0)
		assert.GreaterOrEqual(t, v, 50000.0, "prediction %d", i)
		assert.LessOrEqual(t, v, 59000.0, "prediction %d", i)
	}
}

func TestRandomForestRegressor_Deterministic(t *testing.T) {
	X, y := linearData(30)
	queries := mat.NewDense(3, 2, []float64{
		4.5, 0,
		12, 1,
		29, 0,
	})

	predict := func(nJobs int) mat.Matrix {
		rf := NewRandomForestRegressor(
			WithNEstimators(15),
			WithRandomState(42),
			WithNJobs(nJobs),
		)
		require.NoError(t, rf.Fit(X, y))
		pred, err := rf.Predict(queries)
		require.NoError(t, err)
		return pred
	}

	sequential := predict(1)
	concurrent := predict(-1)
	assert.True(t, mat.Equal(sequential, concurrent), "predictions depend on scheduling:\n%v\n%v",
		mat.Formatted(sequential), mat.Formatted(concurrent))
	assert.True(t, mat.Equal(sequential, predict(4)),
		"repeated fit with the same seed gave different predictions")
}

func TestRandomForestRegressor_NoBootstrap(t *testing.T) {
	X, y := linearData(8)

	rf := NewRandomForestRegressor(WithNEstimators(3), WithBootstrap(false), WithRandomState(1))
	require.NoError(t, rf.Fit(X, y))

	// 全データで学習した完全な木の平均は学習データを再現する
	pred, err := rf.Predict(X)
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		assert.InDelta(t, y.At(i, 0), pred.At(i, 0), 1e-6, "sample %d", i)
	}
}

func TestRandomForestRegressor_FeatureImportances(t *testing.T) {
	X, y := linearData(20)

	rf := NewRandomForestRegressor(WithNEstimators(10), WithRandomState(42))
	require.NoError(t, rf.Fit(X, y))
	imp, err := rf.FeatureImportances()
	require.NoError(t, err)
	require.Len(t, imp, 2)
	assert.InDelta(t, 1.0, imp[0]+imp[1], 1e-9, "importances should sum to 1")
	assert.Greater(t, imp[0], imp[1], "feature 0 drives the target")
}

func TestRandomForestRegressor_Errors(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T)
	}{
		{
			name: "predict before fit",
			check: func(t *testing.T) {
				_, err := NewRandomForestRegressor().Predict(mat.NewDense(1, 2, nil))
				var nf *errors.NotFittedError
				assert.True(t, errors.As(err, &nf), "got %v", err)
			},
		},
		{
			name: "wrong feature count",
			check: func(t *testing.T) {
				X, y := linearData(6)
				rf := NewRandomForestRegressor(WithNEstimators(2), WithRandomState(0))
				require.NoError(t, rf.Fit(X, y))
				_, err := rf.Predict(mat.NewDense(1, 3, nil))
				var dimErr *errors.DimensionError
				assert.True(t, errors.As(err, &dimErr), "got %v", err)
			},
		},
		{
			name: "zero estimators",
			check: func(t *testing.T) {
				X, y := linearData(6)
				err := NewRandomForestRegressor(WithNEstimators(0)).Fit(X, y)
				var vErr *errors.ValidationError
				assert.True(t, errors.As(err, &vErr), "got %v", err)
			},
		},
		{
			name: "inf target",
			check: func(t *testing.T) {
				X, _ := linearData(3)
				y := mat.NewDense(3, 1, []float64{1, math.Inf(1), 3})
				assert.Error(t, NewRandomForestRegressor(WithNEstimators(2)).Fit(X, y))
			},
		},
		{
			name: "failed refit clears fitted state",
			check: func(t *testing.T) {
				X, y := linearData(6)
				rf := NewRandomForestRegressor(WithNEstimators(2), WithRandomState(0))
				require.NoError(t, rf.Fit(X, y))
				bad := mat.NewDense(6, 1, []float64{1, 2, math.NaN(), 4, 5, 6})
				require.Error(t, rf.Fit(X, bad))
				assert.False(t, rf.IsFitted())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.check)
	}
}
