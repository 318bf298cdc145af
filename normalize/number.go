package normalize

import (
	"strconv"
	"strings"
)

// nullLike matches the placeholder strings spreadsheet exports use for
// missing cells. Comparison is case-insensitive after trimming.
var nullLike = map[string]bool{
	"":     true,
	"nan":  true,
	"nat":  true,
	"none": true,
	"null": true,
	"n/a":  true,
	"-":    true,
}

// IsNullLike reports whether a raw cell is a missing-value placeholder.
func IsNullLike(raw string) bool {
	return nullLike[strings.ToLower(strings.TrimSpace(raw))]
}

// Number converts a raw cell to a float value, tolerating currency
// symbols, spaces and both European and US digit grouping. Any parse
// failure degrades to def; it never returns an error.
//
// Separator resolution: when both '.' and ',' appear, the one occurring
// last is taken as the decimal separator and the other is treated as a
// thousands separator. A single ',' alone is a decimal separator; a
// repeated separator is always grouping.
func Number(raw string, def Value) Value {
	s := strings.TrimSpace(raw)
	if IsNullLike(s) {
		return def
	}

	// Keep digits, separators and the sign; drop units and currency marks.
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "-" {
		return def
	}

	cleaned = resolveSeparators(cleaned)

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return def
	}
	return FloatValue(f)
}

func resolveSeparators(s string) string {
	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// European: 1.234,50
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// US: 1,234.50
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}

// Integer converts a raw cell to an integer value, going through the
// same cleaning as Number. Fractional inputs are truncated.
func Integer(raw string) Value {
	v := Number(raw, Null())
	if v.IsNull() {
		return v
	}
	return IntValue(int64(v.Float))
}

// Identifier stringifies a business identifier without ever coercing it
// to a number. Codes like "2-2.2" or "LPN-18/2024" stay intact.
func Identifier(raw string) Value {
	s := strings.TrimSpace(raw)
	if IsNullLike(s) {
		return Null()
	}
	return TextValue(s)
}

// Text trims a free-text cell and maps placeholders to null.
func Text(raw string) Value {
	s := strings.TrimSpace(raw)
	if IsNullLike(s) {
		return Null()
	}
	return TextValue(s)
}
