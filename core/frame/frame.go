// Package frame provides a small column-named table of string cells.
//
// A Frame is what the dataset loader produces and what the pipeline
// consumes: columns are looked up by name, so the order in which a caller
// builds a prediction row does not matter. Frames are immutable; every
// transforming method returns a new Frame.
package frame

import (
	"strconv"
	"strings"

	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
)

// Frame is an immutable table of named string columns.
type Frame struct {
	columns []string
	index   map[string]int
	records [][]string
}

// New builds a Frame from a header and row-major records.
// Every record must have exactly len(columns) cells and column names must
// be unique.
func New(columns []string, records [][]string) (*Frame, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, errors.NewValidationError("columns", "duplicate column name", c)
		}
		index[c] = i
	}
	for i, r := range records {
		if len(r) != len(columns) {
			return nil, errors.NewValidationError("records",
				"row "+strconv.Itoa(i+1)+" has "+strconv.Itoa(len(r))+" cells, want "+strconv.Itoa(len(columns)), r)
		}
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Frame{columns: cols, index: index, records: records}, nil
}

// FromRow builds a single-row Frame from a name→value map. Column order
// follows the order of names.
func FromRow(names []string, values map[string]string) (*Frame, error) {
	row := make([]string, len(names))
	for i, n := range names {
		v, ok := values[n]
		if !ok {
			return nil, errors.NewMissingColumnsError([]string{n})
		}
		row[i] = v
	}
	return New(names, [][]string{row})
}

// Columns returns a copy of the column names in order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.columns))
	copy(out, f.columns)
	return out
}

// NRows returns the number of records.
func (f *Frame) NRows() int { return len(f.records) }

// Has reports whether the frame has a column called name.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Missing returns the names from required that are not columns of f,
// in the order given.
func (f *Frame) Missing(required []string) []string {
	var missing []string
	for _, r := range required {
		if !f.Has(r) {
			missing = append(missing, r)
		}
	}
	return missing
}

// Column returns a copy of the named column's cells.
func (f *Frame) Column(name string) ([]string, error) {
	j, ok := f.index[name]
	if !ok {
		return nil, errors.NewMissingColumnsError([]string{name})
	}
	out := make([]string, len(f.records))
	for i, r := range f.records {
		out[i] = r[j]
	}
	return out, nil
}

// Float parses the named column as float64. Surrounding whitespace is
// ignored; an unparsable cell is a ValidationError naming the row.
func (f *Frame) Float(name string) ([]float64, error) {
	cells, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(cells))
	for i, c := range cells {
		v, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return nil, errors.NewValidationError(name, "row "+strconv.Itoa(i+1)+" is not numeric", c)
		}
		out[i] = v
	}
	return out, nil
}

// TrimHeaders strips surrounding whitespace from every column name.
func (f *Frame) TrimHeaders() (*Frame, error) {
	cols := make([]string, len(f.columns))
	for i, c := range f.columns {
		cols[i] = strings.TrimSpace(c)
	}
	return New(cols, f.records)
}

// Rename renames columns present in mapping; unknown keys are ignored.
func (f *Frame) Rename(mapping map[string]string) (*Frame, error) {
	cols := make([]string, len(f.columns))
	for i, c := range f.columns {
		if to, ok := mapping[c]; ok {
			cols[i] = to
		} else {
			cols[i] = c
		}
	}
	return New(cols, f.records)
}

// Drop removes the named columns. Names that are not present are ignored.
func (f *Frame) Drop(names ...string) *Frame {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	var keep []string
	for _, c := range f.columns {
		if !drop[c] {
			keep = append(keep, c)
		}
	}
	out, _ := f.Select(keep...)
	return out
}

// Select returns a frame with only the named columns, in the given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	if missing := f.Missing(names); len(missing) > 0 {
		return nil, errors.NewMissingColumnsError(missing)
	}
	records := make([][]string, len(f.records))
	for i, r := range f.records {
		row := make([]string, len(names))
		for k, n := range names {
			row[k] = r[f.index[n]]
		}
		records[i] = row
	}
	return New(names, records)
}

// Take returns the rows at the given indices, in that order.
func (f *Frame) Take(rows []int) *Frame {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = f.records[r]
	}
	return &Frame{columns: f.columns, index: f.index, records: records}
}
