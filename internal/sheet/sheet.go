// Package sheet reads the first worksheet of an uploaded spreadsheet into an
// array of rows, header row first.
//
// Supported formats are chosen by file extension:
//
//   - .xlsx, .xlsm, .xltx, .xltm: Office Open XML via excelize
//   - .xls: legacy BIFF workbooks via extrame/xls
//   - .csv, .txt: delimited text, with BOM detection (UTF-8 and UTF-16)
//
// Parsing is deliberately lossy about types: every cell comes back as the
// string the workbook displays. Typing and key normalization happen later in
// the grid.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat is returned for file extensions we cannot read.
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

	// ErrNoWorksheet is returned when a workbook has no sheets.
	ErrNoWorksheet = errors.New("no worksheet found")

	// ErrEmptySheet is returned when the first worksheet has no rows.
	ErrEmptySheet = errors.New("empty file")
)

// MaxXLSRows caps the rows read from legacy .xls workbooks.
const MaxXLSRows = 100000

// xlsMaxCols is the BIFF8 column limit, used when a row carries no ROW record.
const xlsMaxCols = 256

// Format identifies a spreadsheet file type.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

// DetectFormat maps a file name to a Format by extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// Parse reads the first worksheet of the file named filename from r.
// Trailing rows with no non-blank cell are dropped.
func Parse(filename string, r io.Reader) ([][]string, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptySheet
	}

	var rows [][]string
	switch format {
	case FormatXLSX:
		rows, err = readXLSX(data)
	case FormatXLS:
		rows, err = readXLS(data)
	case FormatCSV:
		rows, err = readCSV(data)
	}
	if err != nil {
		return nil, err
	}

	rows = trimTrailingEmpty(rows)
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}
	return rows, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	name := f.GetSheetName(0)
	if name == "" {
		return nil, ErrNoWorksheet
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	return rows, nil
}

func readXLS(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, ErrNoWorksheet
	}

	// WorkBook.ReadAllCells concatenates every sheet and skips sheets whose
	// only row is the header, so the first sheet is read row by row.
	ws := wb.GetSheet(0)
	last := int(ws.MaxRow)
	if last >= MaxXLSRows {
		last = MaxXLSRows - 1
	}
	rows := make([][]string, 0, last+1)
	for i := 0; i <= last; i++ {
		rows = append(rows, xlsRow(ws, i))
	}
	return rows, nil
}

// xlsRow returns the cells of row i up to the last non-blank one.
// WorkSheet.Row dereferences a nil row when the sheet has no record for i;
// such rows read as empty.
func xlsRow(ws *xls.WorkSheet, i int) (cells []string) {
	defer func() {
		if recover() != nil {
			cells = nil
		}
	}()

	row := ws.Row(i)
	width := row.LastCol()
	if width <= 0 {
		width = xlsMaxCols
	}
	cells = make([]string, width)
	for c := range cells {
		cells[c] = row.Col(c)
	}
	end := len(cells)
	for end > 0 && strings.TrimSpace(cells[end-1]) == "" {
		end--
	}
	return cells[:end]
}

func trimTrailingEmpty(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && isBlankRow(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
