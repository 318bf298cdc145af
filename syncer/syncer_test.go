package syncer

import (
	"reflect"
	"testing"

	"github.com/rs/zerolog"
)

func TestTables(t *testing.T) {
	want := []string{
		"siciap.ordenes",
		"siciap.ejecucion",
		"siciap.stock_critico",
		"siciap.pedidos",
		"siciap.vencimientos_parques",
	}
	if got := Tables(); !reflect.DeepEqual(got, want) {
		t.Errorf("Tables() = %v", got)
	}
}

func TestCloudTable(t *testing.T) {
	s := New(nil, nil, "public", zerolog.Nop())
	if got := s.cloudTable("siciap.ordenes"); got != "public.ordenes" {
		t.Errorf("cloudTable = %q", got)
	}
	if got := s.cloudTable("ordenes"); got != "public.ordenes" {
		t.Errorf("cloudTable unqualified = %q", got)
	}
}

func TestCloudSchemaDefault(t *testing.T) {
	s := New(nil, nil, "", zerolog.Nop())
	if got := s.cloudTable("siciap.pedidos"); got != "public.pedidos" {
		t.Errorf("empty schema should default to public, got %q", got)
	}
}
