package preprocessing

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/salary-predictor/core/frame"
	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
)

func mustFrame(t *testing.T, columns []string, records [][]string) *frame.Frame {
	t.Helper()
	f, err := frame.New(columns, records)
	if err != nil {
		t.Fatalf("frame.New() error = %v", err)
	}
	return f
}

func TestOneHotEncoder_FitTransform(t *testing.T) {
	X := mustFrame(t, []string{"Education", "Gender"}, [][]string{
		{"Master", "Male"},
		{"Bachelor", "Female"},
		{"PhD", "Male"},
	})

	enc := NewOneHotEncoder()
	got, err := enc.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	// カテゴリは辞書順: Bachelor, Master, PhD | Female, Male
	want := mat.NewDense(3, 5, []float64{
		0, 1, 0, 0, 1,
		1, 0, 0, 1, 0,
		0, 0, 1, 0, 1,
	})
	if !mat.Equal(got, want) {
		t.Errorf("FitTransform() =\n%v\nwant\n%v", mat.Formatted(got), mat.Formatted(want))
	}

	wantNames := []string{"Education_Bachelor", "Education_Master", "Education_PhD", "Gender_Female", "Gender_Male"}
	names := enc.OutputNames()
	if len(names) != len(wantNames) {
		t.Fatalf("OutputNames() = %v", names)
	}
	for i := range names {
		if names[i] != wantNames[i] {
			t.Errorf("OutputNames()[%d] = %q, want %q", i, names[i], wantNames[i])
		}
	}
}

func TestOneHotEncoder_HandleUnknown(t *testing.T) {
	train := mustFrame(t, []string{"Role"}, [][]string{{"Engineer"}, {"Manager"}})
	test := mustFrame(t, []string{"Role"}, [][]string{{"Astronaut"}, {"Manager"}})

	tests := []struct {
		name    string
		mode    string
		wantErr bool
		want    []float64
	}{
		{name: "ignore", mode: HandleUnknownIgnore, want: []float64{0, 0, 0, 1}},
		{name: "error", mode: HandleUnknownError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var warnings []error
			prev := errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
			defer errors.SetWarningHandler(prev)

			enc := NewOneHotEncoder(WithHandleUnknown(tt.mode))
			if err := enc.Fit(train); err != nil {
				t.Fatalf("Fit() error = %v", err)
			}
			got, err := enc.Transform(test)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Transform() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !mat.Equal(got, mat.NewDense(2, 2, tt.want)) {
				t.Errorf("Transform() = %v", mat.Formatted(got))
			}

			if len(warnings) != 1 {
				t.Fatalf("expected 1 warning, got %d", len(warnings))
			}
			var w *errors.UnknownCategoryWarning
			if !errors.As(warnings[0], &w) || w.Column != "Role" {
				t.Errorf("unexpected warning %v", warnings[0])
			}
		})
	}
}

func TestOneHotEncoder_Errors(t *testing.T) {
	t.Run("transform before fit", func(t *testing.T) {
		X := mustFrame(t, []string{"A"}, [][]string{{"x"}})
		_, err := NewOneHotEncoder().Transform(X)
		var nf *errors.NotFittedError
		if !errors.As(err, &nf) {
			t.Errorf("expected NotFittedError, got %v", err)
		}
	})

	t.Run("empty frame", func(t *testing.T) {
		X := mustFrame(t, []string{"A"}, nil)
		if err := NewOneHotEncoder().Fit(X); !errors.Is(err, errors.ErrEmptyData) {
			t.Errorf("expected ErrEmptyData, got %v", err)
		}
	})

	t.Run("invalid mode", func(t *testing.T) {
		X := mustFrame(t, []string{"A"}, [][]string{{"x"}})
		var vErr *errors.ValidationError
		if err := NewOneHotEncoder(WithHandleUnknown("drop")).Fit(X); !errors.As(err, &vErr) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("missing column at transform", func(t *testing.T) {
		enc := NewOneHotEncoder()
		if err := enc.Fit(mustFrame(t, []string{"A", "B"}, [][]string{{"x", "y"}})); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		_, err := enc.Transform(mustFrame(t, []string{"A"}, [][]string{{"x"}}))
		var mc *errors.MissingColumnsError
		if !errors.As(err, &mc) {
			t.Errorf("expected MissingColumnsError, got %v", err)
		}
	})
}
