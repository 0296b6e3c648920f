package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/YuminosukeSato/salary-predictor/core/frame"
	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
)

const utf8BOM = "\ufeff"

// Load reads a dataset file into a Frame. Files ending in .xlsx are read
// from the first worksheet; anything else is parsed as CSV. In both
// cases the first row is the header.
func Load(path string) (*frame.Frame, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, errors.NewDatasetNotFoundError(path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return loadXLSX(path)
	default:
		file, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", path)
		}
		defer file.Close()
		return ReadCSV(file)
	}
}

// ReadCSV parses CSV with a header row. A UTF-8 byte order mark on the
// first header is removed and blank lines are skipped.
func ReadCSV(r io.Reader) (*frame.Frame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewModelError("dataset.ReadCSV", "empty file", errors.ErrEmptyData)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read csv header")
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read csv records")
	}
	return frame.New(header, records)
}

func loadXLSX(path string) (*frame.Frame, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open workbook %s", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewModelError("dataset.Load", "workbook has no sheets", errors.ErrEmptyData)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %s", sheets[0])
	}
	if len(rows) == 0 {
		return nil, errors.NewModelError("dataset.Load", "empty sheet", errors.ErrEmptyData)
	}

	header := rows[0]
	records := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		// GetRows は末尾の空セルを返さないので、ヘッダー幅まで埋める
		if len(row) < len(header) {
			row = append(row, make([]string, len(header)-len(row))...)
		}
		records = append(records, row)
	}
	return frame.New(header, records)
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// WriteXLSX writes a frame to the first sheet of a new workbook.
func WriteXLSX(f *frame.Frame, path string) error {
	wb := excelize.NewFile()
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	columns := f.Columns()
	for j, name := range columns {
		cell, _ := excelize.CoordinatesToCellName(j+1, 1)
		if err := wb.SetCellValue(sheet, cell, name); err != nil {
			return errors.Wrap(err, "write header")
		}
		cells, err := f.Column(name)
		if err != nil {
			return err
		}
		for i, v := range cells {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := wb.SetCellValue(sheet, cell, v); err != nil {
				return errors.Wrap(err, "write cell")
			}
		}
	}
	if err := wb.SaveAs(path); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	return nil
}
