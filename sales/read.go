package sales

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrNoSheets = errors.New("workbook has no sheets")

// Read parses an uploaded file, choosing the format from the file extension. Anything that
// is not an .xlsx workbook is read as CSV.
func Read(name string, r io.Reader, schema Schema) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(r, schema)
	}
	return ReadCSV(r, schema)
}

// ReadCSV parses a delimited text table. The header is validated against the schema before
// any row is converted.
func ReadCSV(r io.Reader, schema Schema) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to read csv, %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}
	return parseRows(schema, rows[0], rows[1:])
}

// ReadXLSX parses the first sheet of an Excel workbook. Date cells stored as serial numbers
// are converted using the workbook date system.
func ReadXLSX(r io.Reader, schema Schema) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("unable to open workbook, %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("unable to get rows from sheet %s, %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}

	rawRows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("unable to get raw rows from sheet %s, %w", sheets[0], err)
	}

	idx, err := schema.Validate(rows[0])
	if err != nil {
		return nil, err
	}

	var date1904 bool
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	// swap formatted dates for their serial value when the raw cell is numeric
	for i, col := range schema {
		if col.Kind != KindDate {
			continue
		}
		c := idx[i]
		for row := 1; row < len(rows) && row < len(rawRows); row++ {
			if c >= len(rows[row]) || c >= len(rawRows[row]) {
				continue
			}
			serial, err := strconv.ParseFloat(strings.TrimSpace(rawRows[row][c]), 64)
			if err != nil {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, date1904)
			if err != nil {
				continue
			}
			rows[row][c] = t.Format(DateLayout)
		}
	}
	return parseRows(schema, rows[0], rows[1:])
}

func parseRows(schema Schema, header []string, rows [][]string) (*Table, error) {
	idx, err := schema.Validate(header)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		var rec Record
		for j, col := range schema {
			var raw string
			if idx[j] < len(row) {
				raw = row[idx[j]]
			}
			if err := parseCell(&rec, col, raw); err != nil {
				return nil, &ParseError{
					Row:    i + 2,
					Column: col.Name,
					Value:  raw,
					Err:    err,
				}
			}
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}
	return NewTable(records), nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
