package pipeline

import (
	"strings"

	"github.com/Brunogomez94/siciap-cloud/domain"
	"github.com/Brunogomez94/siciap-cloud/normalize"
	"github.com/Brunogomez94/siciap-cloud/reader"
)

// Mapping is the resolved header translation for one file: for every
// canonical field the index of the source column feeding it, or -1 for
// required fields that got no column and are filled with nulls.
type Mapping struct {
	// Fields lists the canonical fields present in the output, in the
	// domain's declaration order.
	Fields []string
	// Source maps each field in Fields to its column index in the raw
	// table, -1 for synthesized all-null required fields.
	Source map[string]int
	// Dropped lists raw headers that matched no alias. Diagnostic
	// only, never an error.
	Dropped []string
}

type normAlias struct {
	key   string
	field string
}

// MapColumns resolves a raw header list against the domain's alias
// table. Precedence per header: exact alias match, then normalized
// match, then fuzzy substring containment in alias declaration order.
// When two headers resolve to the same field the later header wins,
// mirroring plain column assignment. Headers with no match are dropped
// with a diagnostic. Required fields that received no column are added
// as all-null so downstream code can rely on their presence.
func MapColumns(spec *domain.Spec, table *reader.RawTable) Mapping {
	exact := make(map[string]string, len(spec.Aliases))
	normed := make([]normAlias, 0, len(spec.Aliases))
	for _, a := range spec.Aliases {
		if _, ok := exact[a.Raw]; !ok {
			exact[a.Raw] = a.Field
		}
		normed = append(normed, normAlias{normalizeHeader(a.Raw), a.Field})
	}

	source := make(map[string]int)
	var dropped []string
	for idx, header := range table.Headers {
		if field, ok := exact[header]; ok {
			source[field] = idx
			continue
		}
		headerNorm := normalizeHeader(header)
		if field, ok := matchNormalized(normed, headerNorm); ok {
			source[field] = idx
			continue
		}
		if field, ok := matchFuzzy(normed, headerNorm); ok {
			source[field] = idx
			continue
		}
		dropped = append(dropped, header)
	}

	for _, req := range spec.Required {
		if _, ok := source[req]; !ok {
			source[req] = -1
		}
	}

	fields := make([]string, 0, len(source))
	for _, f := range spec.FieldNames() {
		if _, ok := source[f]; ok {
			fields = append(fields, f)
		}
	}

	return Mapping{Fields: fields, Source: source, Dropped: dropped}
}

func matchNormalized(aliases []normAlias, headerNorm string) (string, bool) {
	for _, a := range aliases {
		if a.key == headerNorm {
			return a.field, true
		}
	}
	return "", false
}

// matchFuzzy tests substring containment both ways. Declaration order
// decides ties, which makes the result order-dependent on purpose.
func matchFuzzy(aliases []normAlias, headerNorm string) (string, bool) {
	if headerNorm == "" {
		return "", false
	}
	for _, a := range aliases {
		if strings.Contains(a.key, headerNorm) || strings.Contains(headerNorm, a.key) {
			return a.field, true
		}
	}
	return "", false
}

// normalizeHeader flattens a header for comparison: the snake_case
// column form with the underscores removed, so "Id.Llamado",
// "id_llamado" and "ID LLAMADO" all compare equal and accents do not
// matter.
func normalizeHeader(s string) string {
	return strings.ReplaceAll(normalize.ColumnName(s), "_", "")
}
