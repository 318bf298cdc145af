// Package reader turns uploaded spreadsheet or CSV bytes into a raw
// rectangular table. The file name is advisory: only its extension is
// used, and anything that is not .csv is treated as a spreadsheet.
package reader

import (
	"errors"
	"strings"

	"github.com/Brunogomez94/siciap-cloud/normalize"
)

// ErrUnreadable is returned when the bytes cannot be interpreted as the
// expected format.
var ErrUnreadable = errors.New("unreadable input file")

// RawTable is the as-parsed content of one sheet: cleaned header strings
// and data rows padded/truncated to the header width.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// Column returns the raw cells of one column by header index.
func (t *RawTable) Column(idx int) []string {
	col := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		col[i] = row[idx]
	}
	return col
}

// DropEmptyRows removes rows whose cells are all blank. Spreadsheet
// exports routinely carry trailing formatting-only rows.
func (t *RawTable) DropEmptyRows() {
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		empty := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if !empty {
			kept = append(kept, row)
		}
	}
	t.Rows = kept
}

// Read parses file bytes into a RawTable, dispatching on the file
// extension. Files without a recognized extension default to xlsx.
func Read(data []byte, fileName string) (*RawTable, error) {
	if extension(fileName) == ".csv" {
		return readCSV(data)
	}
	return readExcel(data)
}

func extension(fileName string) string {
	i := strings.LastIndexByte(fileName, '.')
	if i < 0 {
		return ".xlsx"
	}
	return strings.ToLower(fileName[i:])
}

// shape trims headers, collapses their interior whitespace and pads or
// truncates every row to the header width.
func shape(headers []string, rows [][]string) *RawTable {
	cleaned := make([]string, len(headers))
	for i, h := range headers {
		cleaned[i] = normalize.CollapseWhitespace(h)
	}

	width := len(cleaned)
	shaped := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		} else if len(row) > width {
			row = row[:width]
		}
		shaped = append(shaped, row)
	}

	return &RawTable{Headers: cleaned, Rows: shaped}
}
