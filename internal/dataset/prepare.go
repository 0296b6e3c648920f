package dataset

import (
	"github.com/YuminosukeSato/salary-predictor/core/frame"
	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
)

// Prepare trims header whitespace, renames source headers to canonical
// names, drops identity columns and checks that every required column is
// present. Extra columns are kept; Split ignores them.
func Prepare(f *frame.Frame) (*frame.Frame, error) {
	f, err := f.TrimHeaders()
	if err != nil {
		return nil, err
	}
	f, err = f.Rename(Renames)
	if err != nil {
		return nil, err
	}
	f = f.Drop(Identity...)

	if missing := f.Missing(Required); len(missing) > 0 {
		return nil, errors.NewMissingColumnsError(missing)
	}
	return f, nil
}

// Split separates the feature columns from the numeric target.
// Experience and Salary must parse as numbers.
func Split(f *frame.Frame) (*frame.Frame, []float64, error) {
	X, err := f.Select(Features...)
	if err != nil {
		return nil, nil, err
	}
	experience, err := X.Float(Experience)
	if err != nil {
		return nil, nil, err
	}
	if err := errors.CheckNumericalStability(Experience, experience); err != nil {
		return nil, nil, err
	}
	y, err := f.Float(Target)
	if err != nil {
		return nil, nil, err
	}
	if err := errors.CheckNumericalStability(Target, y); err != nil {
		return nil, nil, err
	}
	return X, y, nil
}
