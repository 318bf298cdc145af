// Package pipeline implements the generic spreadsheet-to-table
// transform: map headers to canonical fields, normalize cell values,
// collapse duplicate business keys and hand the result to a loader.
// Every domain runs through the same code, parameterized by its
// domain.Spec.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Brunogomez94/siciap-cloud/domain"
	"github.com/Brunogomez94/siciap-cloud/normalize"
	"github.com/Brunogomez94/siciap-cloud/reader"
)

var (
	// ErrEmptyInput means the file produced zero usable rows. Nothing
	// is written to the destination table.
	ErrEmptyInput = errors.New("no rows to load")
	// ErrUnsupportedFormat means the file extension is not accepted by
	// this domain.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Loader persists one processed row set, replacing the destination
// table's current contents atomically. Implemented by store.Store.
type Loader interface {
	ReplaceAll(ctx context.Context, table string, fields []string, rows []domain.Row) (int, error)
}

// Result summarizes one completed ingestion.
type Result struct {
	Domain            string
	Table             string
	BatchID           string
	RowsRead          int
	DuplicatesRemoved int
	RowsInserted      int
	DroppedHeaders    []string
	Elapsed           time.Duration
}

// Processor runs the end-to-end transform for one domain.
type Processor struct {
	spec   *domain.Spec
	loader Loader
	logger zerolog.Logger
}

// New builds a Processor for one domain.
func New(spec *domain.Spec, loader Loader, logger zerolog.Logger) *Processor {
	return &Processor{
		spec:   spec,
		loader: loader,
		logger: logger.With().Str("domain", spec.Name).Logger(),
	}
}

// Process parses file bytes, normalizes them into canonical rows and
// replaces the destination table's contents. The whole file is
// accepted or rejected atomically; on any error the destination table
// is left untouched.
func (p *Processor) Process(ctx context.Context, data []byte, fileName string) (Result, error) {
	start := time.Now()
	res := Result{
		Domain:  p.spec.Name,
		Table:   p.spec.Table,
		BatchID: uuid.New().String(),
	}
	log := p.logger.With().Str("batch_id", res.BatchID).Str("file", fileName).Logger()

	if strings.HasSuffix(strings.ToLower(fileName), ".csv") && !p.spec.CSVAllowed {
		return res, fmt.Errorf("domain %s: %w: csv", p.spec.Name, ErrUnsupportedFormat)
	}

	table, err := reader.Read(data, fileName)
	if err != nil {
		return res, fmt.Errorf("parsing %s: %w", fileName, err)
	}
	res.RowsRead = len(table.Rows)
	table.DropEmptyRows()
	p.applyMeasureFilter(table)

	mapping := MapColumns(p.spec, table)
	res.DroppedHeaders = mapping.Dropped
	for _, h := range mapping.Dropped {
		log.Warn().Str("header", h).Msg("No alias for column, dropping")
	}

	rows := p.normalizeRows(table, mapping)
	p.applyDefaults(rows, &mapping)
	p.warnRequiredNulls(log, rows)

	rows, removed := Deduplicate(p.spec, rows)
	res.DuplicatesRemoved = removed
	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Collapsed duplicate business keys")
	}

	if len(rows) == 0 {
		return res, fmt.Errorf("domain %s: %w", p.spec.Name, ErrEmptyInput)
	}

	inserted, err := p.loader.ReplaceAll(ctx, p.spec.Table, mapping.Fields, rows)
	if err != nil {
		return res, fmt.Errorf("loading %s: %w", p.spec.Table, err)
	}
	res.RowsInserted = inserted
	res.Elapsed = time.Since(start)

	log.Info().
		Int("rows_read", res.RowsRead).
		Int("duplicates_removed", res.DuplicatesRemoved).
		Int("rows_inserted", res.RowsInserted).
		Dur("elapsed", res.Elapsed).
		Msg("File ingested")
	return res, nil
}

// applyMeasureFilter reduces long-format exports to the rows carrying
// the measure this domain stores. No-op when the domain declares no
// filter or the file has no measure-name column.
func (p *Processor) applyMeasureFilter(table *reader.RawTable) {
	mf := p.spec.Measure
	if mf == nil {
		return
	}
	col := -1
	for idx, header := range table.Headers {
		for _, cand := range mf.NameHeaders {
			if normalizeHeader(header) == normalizeHeader(cand) {
				col = idx
				break
			}
		}
		if col >= 0 {
			break
		}
	}
	if col < 0 {
		return
	}
	kept := table.Rows[:0]
	for _, row := range table.Rows {
		if strings.EqualFold(strings.TrimSpace(row[col]), mf.Keep) {
			kept = append(kept, row)
		}
	}
	table.Rows = kept
}

// normalizeRows converts raw cells column-wise to typed values. Date
// columns go through batch-wise format candidate selection; everything
// else is normalized cell by cell.
func (p *Processor) normalizeRows(table *reader.RawTable, mapping Mapping) []domain.Row {
	cols := make(map[string][]normalize.Value, len(mapping.Fields))
	for _, field := range mapping.Fields {
		idx := mapping.Source[field]
		if idx < 0 {
			cols[field] = nullColumn(len(table.Rows))
			continue
		}
		cols[field] = p.normalizeColumn(p.spec.FieldTypeOf(field), table.Column(idx))
	}

	rows := make([]domain.Row, len(table.Rows))
	for i := range rows {
		row := make(domain.Row, len(mapping.Fields))
		for _, field := range mapping.Fields {
			row[field] = cols[field][i]
		}
		rows[i] = row
	}
	return rows
}

func (p *Processor) normalizeColumn(ft domain.FieldType, raw []string) []normalize.Value {
	switch ft {
	case domain.Date, domain.DateText:
		vals := normalize.DateColumn(raw)
		if ft == domain.DateText {
			for i, v := range vals {
				if v.Kind == normalize.KindDate {
					vals[i] = normalize.DateTextValue(v.Date)
				}
			}
		}
		return vals
	}

	vals := make([]normalize.Value, len(raw))
	for i, cell := range raw {
		switch ft {
		case domain.Identifier:
			vals[i] = normalize.Identifier(cell)
		case domain.Integer:
			vals[i] = normalize.Integer(cell)
		case domain.Number:
			vals[i] = normalize.Number(cell, normalize.Null())
		case domain.NumberZero:
			vals[i] = normalize.Number(cell, normalize.FloatValue(0))
		default:
			vals[i] = normalize.Text(cell)
		}
	}
	return vals
}

// applyDefaults fills constant defaults and derived fields for columns
// the source file omitted or left entirely null. Fields added here are
// appended to the mapping so the loader sends them.
func (p *Processor) applyDefaults(rows []domain.Row, mapping *Mapping) {
	if len(rows) == 0 {
		return
	}
	for field, value := range p.spec.Defaults {
		if !fieldAllNull(rows, field, *mapping) {
			continue
		}
		ensureField(mapping, field)
		for _, row := range rows {
			row[field] = normalize.TextValue(value)
		}
	}
	for field, derive := range p.spec.Derived {
		if !fieldAllNull(rows, field, *mapping) {
			continue
		}
		ensureField(mapping, field)
		for _, row := range rows {
			row[field] = derive(row)
		}
	}
}

func fieldAllNull(rows []domain.Row, field string, mapping Mapping) bool {
	if _, mapped := mapping.Source[field]; mapped {
		for _, row := range rows {
			if !row[field].IsNull() {
				return false
			}
		}
	}
	return true
}

func ensureField(mapping *Mapping, field string) {
	for _, f := range mapping.Fields {
		if f == field {
			return
		}
	}
	mapping.Fields = append(mapping.Fields, field)
	mapping.Source[field] = -1
}

func (p *Processor) warnRequiredNulls(log zerolog.Logger, rows []domain.Row) {
	for _, field := range p.spec.Required {
		nulls := 0
		for _, row := range rows {
			if row[field].IsNull() {
				nulls++
			}
		}
		if nulls > 0 {
			log.Warn().Str("field", field).Int("nulls", nulls).Msg("Required field has null values")
		}
	}
}

func nullColumn(n int) []normalize.Value {
	col := make([]normalize.Value, n)
	for i := range col {
		col[i] = normalize.Null()
	}
	return col
}
