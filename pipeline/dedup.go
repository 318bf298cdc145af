package pipeline

import (
	"strings"

	"github.com/Brunogomez94/siciap-cloud/domain"
)

// Deduplicate collapses rows sharing the domain's business key to one
// row each and reports how many rows were removed. Rows with a null
// key component never merge with anything; they pass through
// untouched. Relative row order is preserved.
func Deduplicate(spec *domain.Spec, rows []domain.Row) ([]domain.Row, int) {
	if len(spec.Key) == 0 || len(rows) < 2 {
		return rows, 0
	}

	winner := make(map[string]int)
	for i, row := range rows {
		key, ok := businessKey(spec.Key, row)
		if !ok {
			continue
		}
		prev, seen := winner[key]
		if !seen || better(spec, rows[i], rows[prev]) {
			winner[key] = i
		}
	}

	kept := make([]domain.Row, 0, len(rows))
	removed := 0
	for i, row := range rows {
		key, ok := businessKey(spec.Key, row)
		if ok && winner[key] != i {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	return kept, removed
}

// businessKey joins the key field values. ok is false when any
// component is null.
func businessKey(fields []string, row domain.Row) (string, bool) {
	parts := make([]string, len(fields))
	for i, f := range fields {
		v := row[f]
		if v.IsNull() {
			return "", false
		}
		parts[i] = v.String()
	}
	return strings.Join(parts, "\x1f"), true
}

// better reports whether candidate should replace the current winner
// under the domain's dedup policy. Ties keep the earlier row.
func better(spec *domain.Spec, candidate, current domain.Row) bool {
	if spec.Dedup == domain.Recency && spec.RecencyField != "" {
		ct, cok := candidate[spec.RecencyField].AsTime()
		wt, wok := current[spec.RecencyField].AsTime()
		switch {
		case cok && !wok:
			return true
		case !cok:
			return false
		default:
			return ct.After(wt)
		}
	}
	return nonNullCount(candidate) > nonNullCount(current)
}

func nonNullCount(row domain.Row) int {
	n := 0
	for _, v := range row {
		if !v.IsNull() {
			n++
		}
	}
	return n
}
