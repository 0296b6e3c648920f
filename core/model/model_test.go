package model

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
)

type savedThing struct {
	Name   string
	Values []float64
	State  *StateManager
}

func TestSaveLoadModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")

	in := savedThing{Name: "forest", Values: []float64{1.5, 2.5}, State: NewStateManager()}
	in.State.SetFitted(17, 800)

	if err := SaveModel(&in, path); err != nil {
		t.Fatalf("SaveModel: %v", err)
	}

	var out savedThing
	if err := LoadModel(&out, path); err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if out.Name != "forest" || len(out.Values) != 2 {
		t.Errorf("unexpected round trip: %+v", out)
	}
	if !out.State.IsFitted() {
		t.Error("fitted state should survive persistence")
	}
	if f, n := out.State.GetDimensions(); f != 17 || n != 800 {
		t.Errorf("GetDimensions() = (%d, %d)", f, n)
	}
}

func TestSaveModel_Overwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.gob")

	if err := os.WriteFile(path, []byte("old artifact"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := SaveModel(&savedThing{Name: "new"}, path); err != nil {
		t.Fatalf("SaveModel: %v", err)
	}

	var out savedThing
	if err := LoadModel(&out, path); err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if out.Name != "new" {
		t.Errorf("Name = %q, want new", out.Name)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %d entries", len(entries))
	}
}

func TestLoadModel_Errors(t *testing.T) {
	var out savedThing

	err := LoadModel(&out, filepath.Join(t.TempDir(), "missing.gob"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file should wrap os.ErrNotExist, got %v", err)
	}

	err = LoadModelFromReader(&out, bytes.NewReader([]byte("not gob at all")))
	if err == nil {
		t.Error("garbage input should fail to decode")
	}
}

func TestStateManager(t *testing.T) {
	var nilState *StateManager
	if nilState.IsFitted() {
		t.Error("nil state should not be fitted")
	}

	nilState.Reset()

	s := NewStateManager()
	err := s.RequireFitted("OneHotEncoder", "Transform")
	var nfErr *errors.NotFittedError
	if !errors.As(err, &nfErr) {
		t.Errorf("RequireFitted before SetFitted = %v, want NotFittedError", err)
	}
	s.SetFitted(3, 10)
	if err := s.RequireFitted("OneHotEncoder", "Transform"); err != nil {
		t.Errorf("RequireFitted: %v", err)
	}
	s.Reset()
	if s.IsFitted() {
		t.Error("Reset should clear fitted state")
	}
	if f, n := s.GetDimensions(); f != 0 || n != 0 {
		t.Errorf("GetDimensions after Reset = (%d, %d)", f, n)
	}
}

func TestSaveModel_FileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")
	if err := SaveModel(savedThing{Name: "forest"}, path); err != nil {
		t.Fatalf("SaveModel: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	// 別ユーザーで動くサーバーからも読めること
	if got := info.Mode().Perm(); got != ArtifactFileMode {
		t.Errorf("mode = %v, want %v", got, ArtifactFileMode)
	}
}
