// Package domain declares the five spreadsheet domains the service
// ingests. Each Spec is pure data: the header alias table, the field
// type table, the business key and dedup policy, and the destination
// table. The pipeline package interprets these; there are no per-domain
// code paths.
package domain

import (
	"strings"

	"github.com/Brunogomez94/siciap-cloud/normalize"
)

// FieldType selects which value normalizer a canonical field uses.
type FieldType int

const (
	// Text trims and maps null-like placeholders to null.
	Text FieldType = iota
	// Identifier stringifies, never coerces to numeric. Business codes
	// like "2-2.2" must survive untouched.
	Identifier
	// Integer parses and truncates, null on failure.
	Integer
	// Number parses with locale-aware separators, null on failure.
	Number
	// NumberZero parses like Number but defaults to 0 on failure.
	NumberZero
	// Date parses through the format candidate chain, null on failure.
	Date
	// DateText parses like Date but stores the result as DD/MM/YYYY
	// text. The ordenes table keeps its dates as text and the loader
	// has to match that.
	DateText
)

// DedupPolicy selects how rows sharing a business key are collapsed.
type DedupPolicy int

const (
	// Completeness keeps the row with the most non-null fields.
	Completeness DedupPolicy = iota
	// Recency keeps the row with the newest value in RecencyField,
	// falling back to first occurrence when the field is null.
	Recency
)

// Alias maps one raw spreadsheet header to a canonical field. Order
// matters: fuzzy matching walks aliases in declaration order.
type Alias struct {
	Raw   string
	Field string
}

// Field is one canonical column of the destination table.
type Field struct {
	Name string
	Type FieldType
}

// Row is one canonical record, keyed by field name.
type Row map[string]normalize.Value

// DeriveFunc computes a field value from the rest of the row. Used for
// fields the source file usually omits.
type DeriveFunc func(Row) normalize.Value

// MeasureFilter pre-filters long-format exports that carry one row per
// (entity, measure name, measure value). Rows whose measure-name cell
// does not equal Keep (case-insensitive, trimmed) are discarded before
// column mapping.
type MeasureFilter struct {
	// NameHeaders are candidate raw headers for the measure-name
	// column, compared after header normalization.
	NameHeaders []string
	Keep        string
}

// Spec is the full declarative description of one domain.
type Spec struct {
	Name     string
	Table    string
	Aliases  []Alias
	Fields   []Field
	Required []string
	Key      []string
	Dedup    DedupPolicy
	// RecencyField orders rows for the Recency policy.
	RecencyField string
	// Defaults fill a field with a constant when the source file omits
	// it or left it entirely null.
	Defaults map[string]string
	// Derived compute a field per row when the source file omits it or
	// left it entirely null.
	Derived map[string]DeriveFunc
	Measure *MeasureFilter
	// CSVAllowed permits .csv uploads. Only long-format stock exports
	// arrive as CSV in practice.
	CSVAllowed bool
}

// FieldTypeOf returns the declared type of a canonical field, Text if
// the field is not declared.
func (s *Spec) FieldTypeOf(name string) FieldType {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Type
		}
	}
	return Text
}

// FieldNames returns the canonical field names in declaration order.
func (s *Spec) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Specs returns the registered domains in a fixed order, the same
// order the sync job replicates them in.
func Specs() []*Spec {
	return []*Spec{ordenes, ejecucion, stockCritico, pedidos, vencimientosParques}
}

// ByName looks a domain up by its registry name.
func ByName(name string) (*Spec, bool) {
	for _, s := range Specs() {
		if s.Name == strings.ToLower(strings.TrimSpace(name)) {
			return s, true
		}
	}
	return nil, false
}

// Names returns the registered domain names, for CLI and HTTP
// validation messages.
func Names() []string {
	specs := Specs()
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}
