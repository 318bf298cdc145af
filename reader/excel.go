package reader

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

func readExcel(data []byte) (*RawTable, error) {
	// Raw cell values: date-typed cells come back as their stored
	// serial number instead of a locale-formatted display string, so
	// the date normalizer's serial conversion can pick them up.
	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %q: %v", ErrUnreadable, sheet, err)
		}
		rows = trimLeadingEmpty(rows)
		if len(rows) == 0 {
			continue
		}
		return shape(rows[0], rows[1:]), nil
	}
	return nil, fmt.Errorf("%w: workbook has no sheet with data", ErrUnreadable)
}

// trimLeadingEmpty drops blank rows above the header. Exports sometimes
// carry a title banner before the real header row.
func trimLeadingEmpty(rows [][]string) [][]string {
	for i, row := range rows {
		if !rowEmpty(row) {
			return rows[i:]
		}
	}
	return nil
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
