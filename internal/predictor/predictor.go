// Package predictor exposes the loaded pipeline to the form server.
//
// A Handle is built once at process start from the result of loading the
// artifact. It either wraps a usable pipeline or carries the load error;
// it is never mutated afterwards, so concurrent requests share it freely.
package predictor

import (
	"strconv"

	"github.com/YuminosukeSato/salary-predictor/core/frame"
	"github.com/YuminosukeSato/salary-predictor/core/model"
	"github.com/YuminosukeSato/salary-predictor/internal/artifact"
	"github.com/YuminosukeSato/salary-predictor/internal/dataset"
	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
)

// Handle is an immutable view of the loaded model.
type Handle struct {
	model model.FramePredictor
	err   error
}

// NewHandle wraps a load result. A nil model with a nil error is treated
// as not found.
func NewHandle(m model.FramePredictor, err error) *Handle {
	if err == nil && m == nil {
		err = errors.NewArtifactError("", errors.ErrArtifactNotFound, errors.New("no model"))
	}
	if err != nil {
		return &Handle{err: err}
	}
	return &Handle{model: m}
}

// Open loads the artifact at path and wraps the result.
func Open(path string) *Handle {
	p, err := artifact.Load(path)
	if err != nil {
		return NewHandle(nil, err)
	}
	return NewHandle(p, nil)
}

// Available reports whether predictions can be served.
func (h *Handle) Available() bool { return h.model != nil }

// Err returns the load error, or nil when the model is available.
func (h *Handle) Err() error { return h.err }

// NotFound reports whether the model is unavailable because no artifact
// exists.
func (h *Handle) NotFound() bool {
	return h.err != nil && errors.Is(h.err, errors.ErrArtifactNotFound)
}

// Request is one prediction row.
type Request struct {
	Experience int    `json:"experience" form:"experience"`
	Education  string `json:"education" form:"education"`
	Role       string `json:"role" form:"role"`
	Department string `json:"department" form:"department"`
	Location   string `json:"location" form:"location"`
	Gender     string `json:"gender" form:"gender"`
}

// DefaultRequest returns the values the form starts with.
func DefaultRequest() Request {
	return Request{
		Experience: DefaultExperience,
		Education:  Educations[0],
		Role:       Roles[0],
		Department: Departments[0],
		Location:   Locations[0],
		Gender:     Genders[0],
	}
}

// Frame builds the single-row frame keyed by the canonical column names.
func (r Request) Frame() (*frame.Frame, error) {
	return frame.FromRow(dataset.Features, map[string]string{
		dataset.Experience: strconv.Itoa(r.Experience),
		dataset.Education:  r.Education,
		dataset.Role:       r.Role,
		dataset.Department: r.Department,
		dataset.Location:   r.Location,
		dataset.Gender:     r.Gender,
	})
}

// Predict returns the predicted salary for r. It fails with the load
// error when the model is unavailable.
func (h *Handle) Predict(r Request) (float64, error) {
	if !h.Available() {
		return 0, h.err
	}
	row, err := r.Frame()
	if err != nil {
		return 0, err
	}
	pred, err := h.model.Predict(row)
	if err != nil {
		return 0, errors.NewModelError("Handle.Predict", "pipeline", err)
	}
	if len(pred) != 1 {
		return 0, errors.NewDimensionError("Handle.Predict", 1, len(pred), 0)
	}
	return pred[0], nil
}
