package normalize

import (
	"strconv"
	"strings"
	"time"
)

// complianceSentinel is an administrative status some exports write into
// date columns. It is passed through as text rather than nulled so the
// status survives into the destination table.
const complianceSentinel = "CUMPLIMIENTO TOTAL DE LAS OBLIGACIONES"

// dateLayouts is the ordered candidate list for date parsing. Day-first
// layouts come first because the exports are European; ISO layouts are
// the generic fallback. The non-padded forms accept both "3/4/2024" and
// "03/04/2024".
var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2006-1-2",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// excel serial dates for the plausible working range (1954..2173).
const (
	serialMin = 20000
	serialMax = 100000
)

var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDate converts a single raw cell to a date value. It tries each
// candidate layout in order and stops at the first success; a numeric
// cell in the spreadsheet serial range is converted from the 1900 epoch.
// The compliance sentinel passes through as text. Everything else
// degrades to null; ParseDate never returns an error.
func ParseDate(raw string) Value {
	s := strings.TrimSpace(raw)
	if IsNullLike(s) {
		return Null()
	}
	if strings.Contains(strings.ToUpper(s), complianceSentinel) {
		return TextValue(s)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateValue(t)
		}
	}
	if v := parseSerialDate(s); !v.IsNull() {
		return v
	}
	return Null()
}

func parseSerialDate(s string) Value {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < serialMin || f > serialMax {
		return Null()
	}
	return DateValue(excelEpoch.AddDate(0, 0, int(f)))
}

// DateColumn normalizes a whole column at once. Each candidate layout is
// applied to every cell; the first layout that parses at least one cell
// wins and is applied column-wide, with failing cells degrading to null.
// This keeps a column that is mostly "31/12/2024" from having a stray
// "2024-12-31" interpreted under a different day/month convention.
// When no layout matches anything the column comes back all null,
// sentinel cells excepted.
func DateColumn(raw []string) []Value {
	for _, layout := range dateLayouts {
		out, hits := applyLayout(raw, layout)
		if hits > 0 {
			return out
		}
	}

	// Serial-number fallback for columns exported as raw cell values.
	out := make([]Value, len(raw))
	hits := 0
	for i, s := range raw {
		out[i] = passthrough(s)
		if !out[i].IsNull() {
			continue
		}
		if v := parseSerialDate(strings.TrimSpace(s)); !v.IsNull() {
			out[i] = v
			hits++
		}
	}
	if hits > 0 {
		return out
	}

	for i, s := range raw {
		out[i] = passthrough(s)
	}
	return out
}

func applyLayout(raw []string, layout string) ([]Value, int) {
	out := make([]Value, len(raw))
	hits := 0
	for i, s := range raw {
		if v := passthrough(s); !v.IsNull() {
			out[i] = v
			continue
		}
		s = strings.TrimSpace(s)
		if IsNullLike(s) {
			out[i] = Null()
			continue
		}
		t, err := time.Parse(layout, s)
		if err != nil {
			out[i] = Null()
			continue
		}
		out[i] = DateValue(t)
		hits++
	}
	return out, hits
}

// passthrough returns the sentinel text value when the cell carries the
// administrative status phrase, and null otherwise.
func passthrough(raw string) Value {
	s := strings.TrimSpace(raw)
	if !IsNullLike(s) && strings.Contains(strings.ToUpper(s), complianceSentinel) {
		return TextValue(s)
	}
	return Null()
}
