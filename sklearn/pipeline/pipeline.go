// Package pipeline chains a column transformer and a regressor into a
// single estimator that is fitted, persisted and queried as one object.
package pipeline

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/salary-predictor/core/frame"
	"github.com/YuminosukeSato/salary-predictor/core/model"
	"github.com/YuminosukeSato/salary-predictor/metrics"
	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
	"github.com/YuminosukeSato/salary-predictor/preprocessing"
	"github.com/YuminosukeSato/salary-predictor/sklearn/ensemble"
)

var _ model.FramePredictor = (*Pipeline)(nil)

// Pipeline is a fitted preprocessor followed by a random forest.
//
// The steps are concrete types rather than interfaces so that the whole
// pipeline can be gob-encoded without type registration.
type Pipeline struct {
	State *model.StateManager

	Preprocessor *preprocessing.ColumnTransformer
	Regressor    *ensemble.RandomForestRegressor

	// Features is the ordered feature schema the pipeline was fitted on.
	Features []string
}

// New returns an unfitted pipeline.
func New(preprocessor *preprocessing.ColumnTransformer, regressor *ensemble.RandomForestRegressor) *Pipeline {
	return &Pipeline{
		State:        model.NewStateManager(),
		Preprocessor: preprocessor,
		Regressor:    regressor,
	}
}

// Fit fits the preprocessor on X, then the regressor on the encoded X and y.
// X holds only feature columns; len(y) must equal X.NRows().
func (p *Pipeline) Fit(X *frame.Frame, y []float64) error {
	p.State.Reset()
	if p.Preprocessor == nil || p.Regressor == nil {
		return errors.NewValidationError("steps", "preprocessor and regressor are required", nil)
	}
	if X.NRows() != len(y) {
		return errors.NewDimensionError("Pipeline.Fit", X.NRows(), len(y), 0)
	}

	encoded, err := p.Preprocessor.FitTransform(X)
	if err != nil {
		return errors.NewModelError("Pipeline.Fit", "preprocessor", err)
	}
	target := mat.NewDense(len(y), 1, append([]float64(nil), y...))
	if err := p.Regressor.Fit(encoded, target); err != nil {
		return errors.NewModelError("Pipeline.Fit", "regressor", err)
	}

	p.Features = X.Columns()
	if p.State == nil {
		p.State = model.NewStateManager()
	}
	_, nEncoded := encoded.Dims()
	p.State.SetFitted(nEncoded, X.NRows())
	return nil
}

// Predict encodes X and returns one prediction per row. Columns are
// matched by name; extra columns are ignored.
func (p *Pipeline) Predict(X *frame.Frame) ([]float64, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "Predict")
	}
	encoded, err := p.Preprocessor.Transform(X)
	if err != nil {
		return nil, err
	}
	pred, err := p.Regressor.Predict(encoded)
	if err != nil {
		return nil, err
	}
	return metrics.ColumnToSlice(pred)
}

// IsFitted reports whether both steps are fitted.
func (p *Pipeline) IsFitted() bool {
	return p != nil && p.State.IsFitted() &&
		p.Preprocessor != nil && p.Preprocessor.State.IsFitted() &&
		p.Regressor != nil && p.Regressor.IsFitted()
}

// FeatureNames returns the input column names the pipeline expects.
func (p *Pipeline) FeatureNames() []string {
	out := make([]string, len(p.Features))
	copy(out, p.Features)
	return out
}

// Importance is the importance of one encoded feature.
type Importance struct {
	Name  string
	Value float64
}

// FeatureImportances pairs the regressor's importances with the encoded
// feature names.
func (p *Pipeline) FeatureImportances() ([]Importance, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "FeatureImportances")
	}
	values, err := p.Regressor.FeatureImportances()
	if err != nil {
		return nil, err
	}
	names := p.Preprocessor.OutputNames()
	if len(names) != len(values) {
		return nil, errors.NewDimensionError("Pipeline.FeatureImportances", len(names), len(values), 1)
	}
	out := make([]Importance, len(values))
	for i := range values {
		out[i] = Importance{Name: names[i], Value: values[i]}
	}
	return out, nil
}

func (p *Pipeline) String() string {
	return fmt.Sprintf("Pipeline(steps=[%v, %v])", p.Preprocessor, p.Regressor)
}
