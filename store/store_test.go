package store

import (
	"reflect"
	"testing"
)

func TestSplitTable(t *testing.T) {
	tests := []struct {
		in     string
		schema string
		name   string
	}{
		{"siciap.ordenes", "siciap", "ordenes"},
		{"public.ordenes", "public", "ordenes"},
		{"ordenes", "siciap", "ordenes"},
	}
	for _, tt := range tests {
		schema, name := splitTable(tt.in)
		if schema != tt.schema || name != tt.name {
			t.Errorf("splitTable(%q) = %q, %q", tt.in, schema, name)
		}
	}
}

func TestIntersect(t *testing.T) {
	fields := []string{"codigo", "descripcion", "extra"}
	tableCols := []string{"id", "codigo", "descripcion", "estado"}

	got := intersect(fields, tableCols)
	if !reflect.DeepEqual(got, []string{"codigo", "descripcion"}) {
		t.Errorf("intersect = %v", got)
	}
	if got := intersect([]string{"x"}, tableCols); got != nil {
		t.Errorf("no overlap should be empty, got %v", got)
	}
}

func TestDifference(t *testing.T) {
	got := difference([]string{"a", "b", "c"}, []string{"b"})
	if !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("difference = %v", got)
	}
}
