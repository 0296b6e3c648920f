package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"dataset", errors.NewDatasetNotFoundError("x.csv"), "DATASET_NOT_FOUND"},
		{"columns", errors.NewMissingColumnsError([]string{"Salary"}), "MISSING_COLUMNS"},
		{"validation", errors.NewValidationError("Salary", "row 1 is not numeric", "x"), "INVALID_DATA"},
		{"artifact", errors.NewArtifactError("m.gob", errors.ErrArtifactCorrupt, fmt.Errorf("eof")), "ARTIFACT"},
		{"other", fmt.Errorf("boom"), "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorCode(tt.err); got != tt.want {
				t.Errorf("errorCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTrainCmd(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	b.WriteString("Employee_ID,Name,Age,Experience_Years,Education_Level,Job_Title,Department,Location,Gender,Salary\n")
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, "%d,P%d,30,%d,Bachelor,Engineer,IT,Remote,Male,%d\n", i, i, i, 50000+1000*i)
	}
	data := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(data, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	out := filepath.Join(dir, "model.gob")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"train",
		"--env", filepath.Join(dir, "missing.env"),
		"--log-level", "error",
		"--dataset", data,
		"--model", out,
		"--trees", "5",
	})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("artifact not written: %v", err)
	}
}

func TestTrainCmd_MissingDataset(t *testing.T) {
	dir := t.TempDir()
	cmd := newRootCmd()
	cmd.SetArgs([]string{"train",
		"--env", filepath.Join(dir, "missing.env"),
		"--log-level", "error",
		"--dataset", filepath.Join(dir, "nope.csv"),
		"--model", filepath.Join(dir, "model.gob"),
	})

	err := cmd.Execute()
	if got := errorCode(err); got != "DATASET_NOT_FOUND" {
		t.Errorf("errorCode() = %q (err = %v)", got, err)
	}
}

func TestRootCmd_InvalidLogLevel(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"train", "--env", filepath.Join(t.TempDir(), "missing.env"), "--log-level", "loud"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected an error for an unknown log level")
	}
}

func TestExportCmd(t *testing.T) {
	dir := t.TempDir()
	csv := "Experience_Years,Education_Level,Job_Title,Department,Location,Gender,Salary\n" +
		"3,Bachelor,Engineer,IT,Remote,Male,52000\n"
	in := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(in, []byte(csv), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	out := filepath.Join(dir, "data.xlsx")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"export",
		"--env", filepath.Join(dir, "missing.env"),
		"--log-level", "error",
		"--dataset", in,
		"--out", out,
	})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Errorf("workbook not written: %v", err)
	}
}
