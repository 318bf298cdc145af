package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnumRe     = regexp.MustCompile(`[^a-z0-9]+`)
	leadingDigitRe = regexp.MustCompile(`^[0-9]+`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// sqlReserved are destination-column names that would need quoting;
// normalized headers colliding with them get a col_ prefix.
var sqlReserved = map[string]bool{
	"select": true,
	"insert": true,
	"update": true,
	"delete": true,
	"table":  true,
	"from":   true,
	"where":  true,
}

// ColumnName converts a raw spreadsheet header into a safe snake_case
// column name: diacritics stripped, lower-cased, non-alphanumeric runs
// collapsed to a single underscore, leading digits removed.
func ColumnName(raw string) string {
	s := strings.TrimSpace(raw)
	if IsNullLike(s) {
		return "unnamed"
	}

	s = strings.ToLower(StripDiacritics(s))
	s = nonAlnumRe.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	s = leadingDigitRe.ReplaceAllString(s, "")
	s = strings.TrimLeft(s, "_")

	if s == "" {
		return "unnamed"
	}
	if sqlReserved[s] {
		return "col_" + s
	}
	return s
}

// CollapseWhitespace trims a raw header and collapses interior runs of
// whitespace to single spaces, without changing case.
func CollapseWhitespace(raw string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(raw), " ")
}

// StripDiacritics removes accent marks by decomposing to NFD and
// dropping combining marks, so "Código" and "Codigo" compare equal.
func StripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
