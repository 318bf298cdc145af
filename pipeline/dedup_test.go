package pipeline

import (
	"testing"
	"time"

	"github.com/Brunogomez94/siciap-cloud/domain"
	"github.com/Brunogomez94/siciap-cloud/normalize"
)

func textRow(fields map[string]string) domain.Row {
	row := make(domain.Row, len(fields))
	for k, v := range fields {
		if v == "" {
			row[k] = normalize.Null()
		} else {
			row[k] = normalize.TextValue(v)
		}
	}
	return row
}

func TestDeduplicateCompleteness(t *testing.T) {
	spec := &domain.Spec{Key: []string{"codigo"}, Dedup: domain.Completeness}
	rows := []domain.Row{
		textRow(map[string]string{"codigo": "A1", "descripcion": ""}),
		textRow(map[string]string{"codigo": "A1", "descripcion": "Paracetamol", "estado": "normal"}),
		textRow(map[string]string{"codigo": "B2", "descripcion": "Ibuprofeno"}),
	}

	kept, removed := Deduplicate(spec, rows)
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if len(kept) != 2 {
		t.Fatalf("kept = %d rows", len(kept))
	}
	if kept[0]["descripcion"].Text != "Paracetamol" {
		t.Errorf("kept the sparser A1 row: %+v", kept[0])
	}
}

func TestDeduplicateCompletenessTieKeepsFirst(t *testing.T) {
	spec := &domain.Spec{Key: []string{"codigo"}, Dedup: domain.Completeness}
	rows := []domain.Row{
		textRow(map[string]string{"codigo": "A1", "descripcion": "primera"}),
		textRow(map[string]string{"codigo": "A1", "descripcion": "segunda"}),
	}
	kept, _ := Deduplicate(spec, rows)
	if kept[0]["descripcion"].Text != "primera" {
		t.Errorf("tie should keep the earlier row, got %+v", kept[0])
	}
}

func TestDeduplicateRecency(t *testing.T) {
	spec := &domain.Spec{
		Key:          []string{"id_llamado", "codigo"},
		Dedup:        domain.Recency,
		RecencyField: "fecha_orden",
	}
	old := normalize.DateValue(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	newer := normalize.DateValue(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	rows := []domain.Row{
		{"id_llamado": normalize.TextValue("100"), "codigo": normalize.TextValue("A1"), "fecha_orden": old, "estado": normalize.TextValue("vieja")},
		{"id_llamado": normalize.TextValue("100"), "codigo": normalize.TextValue("A1"), "fecha_orden": newer, "estado": normalize.TextValue("nueva")},
		{"id_llamado": normalize.TextValue("100"), "codigo": normalize.TextValue("A1"), "fecha_orden": normalize.Null(), "estado": normalize.TextValue("sin fecha")},
	}

	kept, removed := Deduplicate(spec, rows)
	if removed != 2 || len(kept) != 1 {
		t.Fatalf("kept=%d removed=%d", len(kept), removed)
	}
	if kept[0]["estado"].Text != "nueva" {
		t.Errorf("kept %q, want the newest row", kept[0]["estado"].Text)
	}
}

func TestDeduplicateRecencyAllNullDatesKeepsFirst(t *testing.T) {
	spec := &domain.Spec{Key: []string{"codigo"}, Dedup: domain.Recency, RecencyField: "fecha"}
	rows := []domain.Row{
		textRow(map[string]string{"codigo": "A1", "estado": "primera", "fecha": ""}),
		textRow(map[string]string{"codigo": "A1", "estado": "segunda", "fecha": ""}),
	}
	kept, _ := Deduplicate(spec, rows)
	if len(kept) != 1 || kept[0]["estado"].Text != "primera" {
		t.Errorf("kept = %+v", kept)
	}
}

func TestDeduplicateNullKeyPassesThrough(t *testing.T) {
	spec := &domain.Spec{Key: []string{"id_llamado", "codigo"}, Dedup: domain.Completeness}
	rows := []domain.Row{
		textRow(map[string]string{"id_llamado": "", "codigo": "A1"}),
		textRow(map[string]string{"id_llamado": "", "codigo": "A1"}),
		textRow(map[string]string{"id_llamado": "7", "codigo": "A1"}),
	}
	kept, removed := Deduplicate(spec, rows)
	if removed != 0 {
		t.Errorf("removed = %d, null-keyed rows must never merge", removed)
	}
	if len(kept) != 3 {
		t.Errorf("kept = %d rows, want all 3", len(kept))
	}
}

func TestDeduplicatePreservesOrder(t *testing.T) {
	spec := &domain.Spec{Key: []string{"codigo"}, Dedup: domain.Completeness}
	rows := []domain.Row{
		textRow(map[string]string{"codigo": "C"}),
		textRow(map[string]string{"codigo": "A"}),
		textRow(map[string]string{"codigo": "B"}),
	}
	kept, _ := Deduplicate(spec, rows)
	want := []string{"C", "A", "B"}
	for i, w := range want {
		if kept[i]["codigo"].Text != w {
			t.Fatalf("order changed: %v", kept)
		}
	}
}
