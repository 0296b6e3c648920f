package artifact

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/salary-predictor/core/frame"
	"github.com/YuminosukeSato/salary-predictor/core/model"
	"github.com/YuminosukeSato/salary-predictor/internal/dataset"
	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
	"github.com/YuminosukeSato/salary-predictor/preprocessing"
	"github.com/YuminosukeSato/salary-predictor/sklearn/ensemble"
	"github.com/YuminosukeSato/salary-predictor/sklearn/pipeline"
)

func fittedPipeline(t *testing.T, features, categorical []string) *pipeline.Pipeline {
	t.Helper()
	records := make([][]string, 6)
	y := make([]float64, 6)
	for i := range records {
		row := make([]string, len(features))
		for j, c := range features {
			if c == dataset.Experience {
				row[j] = strconv.Itoa(i)
			} else {
				row[j] = c + strconv.Itoa(i%2)
			}
		}
		records[i] = row
		y[i] = 40000 + 2000*float64(i)
	}
	X, err := frame.New(features, records)
	require.NoError(t, err)
	p := pipeline.New(
		preprocessing.NewColumnTransformer(categorical,
			preprocessing.WithRemainder(preprocessing.RemainderPassthrough)),
		ensemble.NewRandomForestRegressor(ensemble.WithNEstimators(5), ensemble.WithRandomState(42)),
	)
	require.NoError(t, p.Fit(X, y))
	return p
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")
	p := fittedPipeline(t, dataset.Features, dataset.Categorical)

	require.NoError(t, Save(p, path))
	loaded, err := Load(path)
	require.NoError(t, err)

	row, err := frame.FromRow(dataset.Features, map[string]string{
		"Experience": "3", "Education": "Education1", "Role": "Role1",
		"Department": "Department1", "Location": "Location1", "Gender": "Gender1",
	})
	require.NoError(t, err)
	want, err := p.Predict(row)
	require.NoError(t, err)
	got, err := loaded.Predict(row)
	require.NoError(t, err)
	assert.Equal(t, want, got, "loaded pipeline should predict like the original")
}

func TestSave_FileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, Save(fittedPipeline(t, dataset.Features, dataset.Categorical), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm(),
		"the form server may run as another user and must be able to read the artifact")
}

func TestSave_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))
	require.NoError(t, Save(fittedPipeline(t, dataset.Features, dataset.Categorical), path))

	_, err := Load(path)
	assert.NoError(t, err)
}

func TestSave_Unfitted(t *testing.T) {
	p := pipeline.New(preprocessing.NewColumnTransformer(dataset.Categorical), ensemble.NewRandomForestRegressor())
	err := Save(p, filepath.Join(t.TempDir(), "model.gob"))

	var nfErr *errors.NotFittedError
	assert.True(t, errors.As(err, &nfErr), "got %v", err)
}

func TestLoad_Taxonomy(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, data, 0o644))
		return path
	}
	save := func(name string, p *pipeline.Pipeline) string {
		path := filepath.Join(dir, name)
		require.NoError(t, model.SaveModel(p, path))
		return path
	}

	// 列名が異なるパイプライン
	otherFeatures := []string{"Experience", "Education", "Role", "Department", "City", "Gender"}
	otherCategorical := []string{"Education", "Role", "Department", "City", "Gender"}

	// エンコーダーの列順が入れ替わったパイプライン
	swapped := fittedPipeline(t, dataset.Features, dataset.Categorical)
	cols := swapped.Preprocessor.Encoder.Columns
	cols[0], cols[1] = cols[1], cols[0]

	// 数値列が Experience 以外になっているパイプライン
	renamed := fittedPipeline(t, dataset.Features, dataset.Categorical)
	renamed.Preprocessor.RemainderColumns = []string{"Tenure"}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"not found", filepath.Join(dir, "absent.gob"), errors.ErrArtifactNotFound},
		{"corrupt bytes", write("corrupt.gob", []byte("definitely not gob")), errors.ErrArtifactCorrupt},
		{"empty file", write("empty.gob", nil), errors.ErrArtifactCorrupt},
		{"different schema", save("mismatch.gob", fittedPipeline(t, otherFeatures, otherCategorical)), errors.ErrSchemaMismatch},
		{"unfitted pipeline", save("unfitted.gob", pipeline.New(
			preprocessing.NewColumnTransformer(dataset.Categorical), ensemble.NewRandomForestRegressor())), errors.ErrSchemaMismatch},
		{"encoder columns out of order", save("swapped.gob", swapped), errors.ErrSchemaMismatch},
		{"unexpected passthrough column", save("renamed.gob", renamed), errors.ErrSchemaMismatch},
	}

	kinds := []error{errors.ErrArtifactNotFound, errors.ErrArtifactCorrupt, errors.ErrSchemaMismatch}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Load(tt.path)
			assert.Nil(t, p, "Load() returned a pipeline on failure")
			require.Error(t, err)
			for _, k := range kinds {
				assert.Equal(t, k == tt.want, errors.Is(err, k), "errors.Is(%v) for %v", k, err)
			}
		})
	}
}

func TestCheckSchema_BrokenTree(t *testing.T) {
	p := fittedPipeline(t, dataset.Features, dataset.Categorical)
	require.NoError(t, CheckSchema(p))

	est := p.Regressor.Estimators[0]
	for i := range est.Nodes {
		if est.Nodes[i].Feature >= 0 {
			est.Nodes[i].Left = i
			break
		}
	}
	assert.Error(t, CheckSchema(p), "self-referencing node should be rejected")
}
