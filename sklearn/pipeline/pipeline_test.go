package pipeline

import (
	"bytes"
	"encoding/gob"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/salary-predictor/core/frame"
	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
	"github.com/YuminosukeSato/salary-predictor/preprocessing"
	"github.com/YuminosukeSato/salary-predictor/sklearn/ensemble"
)

var (
	features    = []string{"Experience", "Education", "Role", "Department", "Location", "Gender"}
	categorical = []string{"Education", "Role", "Department", "Location", "Gender"}
)

func trainingFrame(t *testing.T) (*frame.Frame, []float64) {
	t.Helper()
	records := make([][]string, 10)
	y := make([]float64, 10)
	for i := 0; i < 10; i++ {
		edu := "Bachelor"
		if i%2 == 1 {
			edu = "Master"
		}
		records[i] = []string{strconv.Itoa(i + 1), edu, "Engineer", "IT", "Remote", "Male"}
		y[i] = 50000 + 1000*float64(i)
	}
	X, err := frame.New(features, records)
	require.NoError(t, err)
	return X, y
}

func newPipeline() *Pipeline {
	return New(
		preprocessing.NewColumnTransformer(categorical,
			preprocessing.WithRemainder(preprocessing.RemainderPassthrough)),
		ensemble.NewRandomForestRegressor(ensemble.WithNEstimators(10), ensemble.WithRandomState(42)),
	)
}

func fitted(t *testing.T) (*Pipeline, *frame.Frame) {
	t.Helper()
	X, y := trainingFrame(t)
	p := newPipeline()
	require.NoError(t, p.Fit(X, y))
	return p, X
}

func row(t *testing.T, values map[string]string) *frame.Frame {
	t.Helper()
	f, err := frame.FromRow(features, values)
	require.NoError(t, err)
	return f
}

func TestPipeline_FitPredict(t *testing.T) {
	p, _ := fitted(t)

	assert.Equal(t, features, p.FeatureNames())

	pred, err := p.Predict(row(t, map[string]string{
		"Experience": "5", "Education": "Bachelor", "Role": "Engineer",
		"Department": "IT", "Location": "Remote", "Gender": "Male",
	}))
	require.NoError(t, err)
	require.Len(t, pred, 1)
	assert.GreaterOrEqual(t, pred[0], 50000.0)
	assert.LessOrEqual(t, pred[0], 59000.0)
}

func TestPipeline_UnknownCategory(t *testing.T) {
	var warnings []error
	prev := errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(prev)

	p, _ := fitted(t)
	pred, err := p.Predict(row(t, map[string]string{
		"Experience": "3", "Education": "PhD", "Role": "Manager",
		"Department": "Finance", "Location": "Berlin", "Gender": "Other",
	}))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pred[0], 50000.0)
	assert.LessOrEqual(t, pred[0], 59000.0)
	assert.NotEmpty(t, warnings, "expected an UnknownCategoryWarning")
}

func TestPipeline_ColumnOrderIgnored(t *testing.T) {
	p, _ := fitted(t)

	reordered, err := frame.New(
		[]string{"Gender", "Location", "Department", "Role", "Education", "Experience"},
		[][]string{{"Male", "Remote", "IT", "Engineer", "Master", "8"}},
	)
	require.NoError(t, err)
	a, err := p.Predict(reordered)
	require.NoError(t, err)
	b, err := p.Predict(row(t, map[string]string{
		"Experience": "8", "Education": "Master", "Role": "Engineer",
		"Department": "IT", "Location": "Remote", "Gender": "Male",
	}))
	require.NoError(t, err)
	assert.Equal(t, b, a, "column order should not change the prediction")
}

func TestPipeline_Errors(t *testing.T) {
	X, y := trainingFrame(t)

	t.Run("predict before fit", func(t *testing.T) {
		_, err := newPipeline().Predict(X)
		var nf *errors.NotFittedError
		assert.True(t, errors.As(err, &nf), "got %v", err)
	})

	t.Run("target length mismatch", func(t *testing.T) {
		assert.Error(t, newPipeline().Fit(X, y[:5]))
	})

	t.Run("failed refit leaves the pipeline unfitted", func(t *testing.T) {
		p, _ := fitted(t)
		require.Error(t, p.Fit(X, y[:5]))
		assert.False(t, p.IsFitted())
	})

	t.Run("missing column at predict", func(t *testing.T) {
		p, _ := fitted(t)
		_, err := p.Predict(X.Drop("Role"))
		var mc *errors.MissingColumnsError
		assert.True(t, errors.As(err, &mc), "got %v", err)
	})
}

func TestPipeline_FeatureImportances(t *testing.T) {
	p, _ := fitted(t)
	imp, err := p.FeatureImportances()
	require.NoError(t, err)

	// Education_Bachelor, Education_Master, 定数列4つ, Experience
	require.Len(t, imp, 7)
	assert.Equal(t, "Experience", imp[len(imp)-1].Name)
}

func TestPipeline_Gob(t *testing.T) {
	p, X := fitted(t)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(p))
	var loaded Pipeline
	require.NoError(t, gob.NewDecoder(&buf).Decode(&loaded))
	require.True(t, loaded.IsFitted(), "decoded pipeline should be fitted")

	want, err := p.Predict(X)
	require.NoError(t, err)
	got, err := loaded.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
