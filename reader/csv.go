package reader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

func readCSV(data []byte) (*RawTable, error) {
	decoded, err := decodeToUTF8(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	r := csv.NewReader(bytes.NewReader(decoded))
	r.Comma = sniffDelimiter(decoded)
	// Real-world exports have ragged rows and sloppy quoting; width is
	// fixed up against the header afterwards.
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	headers, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file, no header row", ErrUnreadable)
		}
		return nil, fmt.Errorf("%w: header row: %v", ErrUnreadable, err)
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// One malformed row is not worth rejecting the file.
			continue
		}
		rows = append(rows, row)
	}

	return shape(headers, rows), nil
}

// sniffDelimiter picks ';' when the first line carries more semicolons
// than commas. LATAM locale exports commonly use ';'.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// decodeToUTF8 strips any BOM and converts legacy single-byte encodings
// to UTF-8. Anything that is not valid UTF-8 is assumed to be
// Windows-1252, which covers the Latin-1 exports seen in practice.
func decodeToUTF8(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[3:], nil
	case bytes.HasPrefix(data, bomUTF16LE):
		return decodeUTF16(data[2:], false)
	case bytes.HasPrefix(data, bomUTF16BE):
		return decodeUTF16(data[2:], true)
	}
	if utf8.Valid(data) {
		return data, nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("windows-1252 decode: %w", err)
	}
	return decoded, nil
}

func decodeUTF16(data []byte, bigEndian bool) ([]byte, error) {
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}
	var b strings.Builder
	b.Grow(len(data))
	for i := 0; i+1 < len(data); i += 2 {
		var unit uint16
		if bigEndian {
			unit = uint16(data[i])<<8 | uint16(data[i+1])
		} else {
			unit = uint16(data[i+1])<<8 | uint16(data[i])
		}
		if unit >= 0xD800 && unit <= 0xDBFF && i+3 < len(data) {
			var low uint16
			if bigEndian {
				low = uint16(data[i+2])<<8 | uint16(data[i+3])
			} else {
				low = uint16(data[i+3])<<8 | uint16(data[i+2])
			}
			if low >= 0xDC00 && low <= 0xDFFF {
				b.WriteRune(0x10000 + (rune(unit-0xD800)<<10 | rune(low-0xDC00)))
				i += 2
				continue
			}
		}
		if unit >= 0xD800 && unit <= 0xDFFF {
			b.WriteRune(utf8.RuneError)
			continue
		}
		b.WriteRune(rune(unit))
	}
	return []byte(b.String()), nil
}
