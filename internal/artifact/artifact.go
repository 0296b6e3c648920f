// Package artifact persists the fitted pipeline and loads it back with a
// closed set of failure kinds: ErrArtifactNotFound, ErrArtifactCorrupt
// and ErrSchemaMismatch.
package artifact

import (
	"io/fs"
	"slices"
	"time"

	"github.com/YuminosukeSato/salary-predictor/core/model"
	"github.com/YuminosukeSato/salary-predictor/internal/dataset"
	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
	"github.com/YuminosukeSato/salary-predictor/pkg/log"
	"github.com/YuminosukeSato/salary-predictor/sklearn/pipeline"
	"github.com/YuminosukeSato/salary-predictor/sklearn/tree"
)

// Save writes the fitted pipeline to path, replacing any existing file.
func Save(p *pipeline.Pipeline, path string) error {
	if !p.IsFitted() {
		return errors.NewNotFittedError("Pipeline", "Save")
	}
	start := time.Now()
	if err := model.SaveModel(p, path); err != nil {
		return errors.Wrapf(err, "save artifact %s", path)
	}
	log.GetLoggerWithName("artifact").Info("artifact saved",
		log.OperationKey, log.OperationSave,
		log.PathKey, path,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Load decodes the pipeline at path and checks it against the feature
// schema. It never panics; every failure is an *errors.ArtifactError
// matching exactly one of the artifact sentinels.
func Load(path string) (*pipeline.Pipeline, error) {
	var p pipeline.Pipeline
	err := errors.SafeExecute("artifact.Load", func() error {
		return model.LoadModel(&p, path)
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewArtifactError(path, errors.ErrArtifactNotFound, err)
		}
		return nil, errors.NewArtifactError(path, errors.ErrArtifactCorrupt, err)
	}

	if err := CheckSchema(&p); err != nil {
		return nil, errors.NewArtifactError(path, errors.ErrSchemaMismatch, err)
	}

	log.GetLoggerWithName("artifact").Info("artifact loaded",
		log.OperationKey, log.OperationLoad,
		log.PathKey, path,
		log.FeaturesKey, len(p.Features),
		log.EstimatorsKey, len(p.Regressor.Estimators),
	)
	return &p, nil
}

// CheckSchema reports whether a decoded pipeline is fitted and expects
// exactly the canonical feature columns.
func CheckSchema(p *pipeline.Pipeline) error {
	if !p.IsFitted() {
		return errors.New("pipeline is not fitted")
	}
	if !slices.Equal(p.Features, dataset.Features) {
		return errors.Newf("feature schema %v, want %v", p.Features, dataset.Features)
	}
	if !slices.Equal(p.Preprocessor.Categorical, dataset.Categorical) {
		return errors.Newf("categorical columns %v, want %v", p.Preprocessor.Categorical, dataset.Categorical)
	}
	enc := p.Preprocessor.Encoder
	if enc == nil || !enc.State.IsFitted() || len(enc.Categories) != len(enc.Columns) {
		return errors.New("encoder is not fitted")
	}
	if !slices.Equal(enc.Columns, dataset.Categorical) {
		return errors.Newf("encoder columns %v, want %v", enc.Columns, dataset.Categorical)
	}
	// Experience だけが数値列としてそのまま渡される
	if want := []string{dataset.Experience}; !slices.Equal(p.Preprocessor.RemainderColumns, want) {
		return errors.Newf("passthrough columns %v, want %v", p.Preprocessor.RemainderColumns, want)
	}
	if got, want := p.Regressor.NFeatures, len(p.Preprocessor.OutputNames()); got != want {
		return errors.Newf("regressor expects %d encoded features, preprocessor yields %d", got, want)
	}
	if encoded, _ := p.State.GetDimensions(); encoded != p.Regressor.NFeatures {
		return errors.Newf("pipeline was fitted on %d encoded features, regressor has %d", encoded, p.Regressor.NFeatures)
	}
	for i, t := range p.Regressor.Estimators {
		if err := checkTree(t, p.Regressor.NFeatures); err != nil {
			return errors.Wrapf(err, "estimator %d", i)
		}
	}
	return nil
}

// checkTree rejects trees whose node links would make prediction index
// out of range.
func checkTree(t *tree.DecisionTreeRegressor, nFeatures int) error {
	if t == nil || len(t.Nodes) == 0 {
		return errors.New("empty tree")
	}
	if t.NFeatures != nFeatures {
		return errors.Newf("tree expects %d features, forest %d", t.NFeatures, nFeatures)
	}
	n := len(t.Nodes)
	for i, node := range t.Nodes {
		if node.Feature == tree.Leaf {
			continue
		}
		if node.Feature < 0 || node.Feature >= nFeatures {
			return errors.Newf("node %d splits on feature %d", i, node.Feature)
		}
		// 子は常に親より後ろに追加されるので、循環しない
		if node.Left <= i || node.Left >= n || node.Right <= i || node.Right >= n {
			return errors.Newf("node %d has invalid children %d/%d", i, node.Left, node.Right)
		}
	}
	return nil
}
