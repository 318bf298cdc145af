package pipeline

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/Brunogomez94/siciap-cloud/domain"
	"github.com/Brunogomez94/siciap-cloud/normalize"
)

type fakeLoader struct {
	table  string
	fields []string
	rows   []domain.Row
	calls  int
	err    error
}

func (f *fakeLoader) ReplaceAll(ctx context.Context, table string, fields []string, rows []domain.Row) (int, error) {
	f.calls++
	f.table = table
	f.fields = fields
	f.rows = rows
	if f.err != nil {
		return 0, f.err
	}
	return len(rows), nil
}

func xlsxBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newProcessor(t *testing.T, name string, loader Loader) *Processor {
	t.Helper()
	spec, ok := domain.ByName(name)
	if !ok {
		t.Fatalf("domain %q not registered", name)
	}
	return New(spec, loader, zerolog.Nop())
}

func TestProcessStock(t *testing.T) {
	loader := &fakeLoader{}
	proc := newProcessor(t, "stock_critico", loader)

	data := xlsxBytes(t, [][]any{
		{"Codigo", "Descripcion", "Stock Disponible", "Stock Minimo"},
		{"A1", "Paracetamol 500mg", "1.200,5", "100"},
		{"A1", "Paracetamol 500mg", "1.200,5", "100"},
		{"B2", "Ibuprofeno", "0", "50"},
	})

	res, err := proc.Process(context.Background(), data, "stock.xlsx")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.RowsRead != 3 || res.DuplicatesRemoved != 1 || res.RowsInserted != 2 {
		t.Fatalf("result = %+v", res)
	}
	if loader.table != "siciap.stock_critico" {
		t.Errorf("table = %s", loader.table)
	}

	row := loader.rows[0]
	if got := row["stock_disponible"]; got.Kind != normalize.KindFloat || got.Float != 1200.5 {
		t.Errorf("stock_disponible = %+v", got)
	}
	if got := row["codigo"]; got.Kind != normalize.KindText || got.Text != "A1" {
		t.Errorf("codigo = %+v", got)
	}
	// estado is derived when absent: stock above minimum.
	if got := row["estado"]; got.Text != "normal" {
		t.Errorf("estado = %+v, want derived normal", got)
	}
	if got := loader.rows[1]["estado"]; got.Text != "critico" {
		t.Errorf("zero stock estado = %+v, want critico", got)
	}
}

func TestProcessPedidosDefaultEstado(t *testing.T) {
	loader := &fakeLoader{}
	proc := newProcessor(t, "pedidos", loader)

	data := xlsxBytes(t, [][]any{
		{"Codigo", "Cantidad Solicitada"},
		{"A1", "10"},
	})
	if _, err := proc.Process(context.Background(), data, "pedidos.xlsx"); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := loader.rows[0]["estado"]; got.Text != "pendiente" {
		t.Errorf("estado = %+v, want default pendiente", got)
	}
}

func TestProcessPedidosDateTypedCells(t *testing.T) {
	// Real exports carry date-typed cells, not date-looking strings.
	// They must survive as dates and keep recency dedup working.
	loader := &fakeLoader{}
	proc := newProcessor(t, "pedidos", loader)

	older := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	data := xlsxBytes(t, [][]any{
		{"Id.Llamado", "Codigo", "Item", "Fecha Solicitud", "Estado"},
		{"100", "A1", "1", older, "vieja"},
		{"100", "A1", "1", newer, "nueva"},
	})

	res, err := proc.Process(context.Background(), data, "pedidos.xlsx")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.DuplicatesRemoved != 1 || len(loader.rows) != 1 {
		t.Fatalf("result = %+v, rows = %d", res, len(loader.rows))
	}

	got := loader.rows[0]["fecha_solicitud"]
	if got.Kind != normalize.KindDate {
		t.Fatalf("fecha_solicitud kind = %v, want date", got.Kind)
	}
	if !got.Date.Equal(newer) {
		t.Errorf("fecha_solicitud = %v, want the newest row kept", got.Date)
	}
	if loader.rows[0]["estado"].Text != "nueva" {
		t.Errorf("estado = %+v, recency dedup kept the older row", loader.rows[0]["estado"])
	}
}

func TestProcessOrdenesDatesAsText(t *testing.T) {
	loader := &fakeLoader{}
	proc := newProcessor(t, "ordenes", loader)

	data := xlsxBytes(t, [][]any{
		{"Id.Llamado", "Codigo", "Item", "Fecha OC"},
		{"100", "A1", "1", "31/12/2024"},
	})
	if _, err := proc.Process(context.Background(), data, "ordenes.xlsx"); err != nil {
		t.Fatalf("Process: %v", err)
	}

	got := loader.rows[0]["fecha_orden"]
	if got.Kind != normalize.KindDateText {
		t.Fatalf("fecha_orden kind = %v, want date-as-text", got.Kind)
	}
	if got.Arg() != "31/12/2024" {
		t.Errorf("fecha_orden arg = %v", got.Arg())
	}
	if id := loader.rows[0]["id_llamado"]; id.Kind != normalize.KindText || id.Text != "100" {
		t.Errorf("id_llamado = %+v, want text", id)
	}
}

func TestProcessVencimientosCSVMeasureFilter(t *testing.T) {
	loader := &fakeLoader{}
	proc := newProcessor(t, "vencimientos_parques", loader)

	csv := []byte("codigo_producto;nombre_producto;Nombres de medidas;Valores de medidas;nombre_sucursal\n" +
		"A1;Paracetamol;STOCK DISPONIBLE;120;Parque Central\n" +
		"A1;Paracetamol;STOCK RESERVADO;30;Parque Central\n" +
		"B2;Ibuprofeno;Stock Disponible;55;Parque Norte\n")

	res, err := proc.Process(context.Background(), csv, "Stock_en_PNCs.csv")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.RowsInserted != 2 {
		t.Fatalf("inserted = %d, want the two stock-disponible rows", res.RowsInserted)
	}
	if res.RowsRead != 3 {
		t.Errorf("rows read = %d, want the file's row count before filtering", res.RowsRead)
	}
	for _, row := range loader.rows {
		if row["stock_disponible"].IsNull() {
			t.Errorf("stock_disponible missing: %+v", row)
		}
	}
}

func TestProcessCSVRejectedForExcelOnlyDomain(t *testing.T) {
	loader := &fakeLoader{}
	proc := newProcessor(t, "ordenes", loader)

	_, err := proc.Process(context.Background(), []byte("a,b\n1,2\n"), "ordenes.csv")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
	if loader.calls != 0 {
		t.Error("loader must not be called")
	}
}

func TestProcessEmptyFile(t *testing.T) {
	loader := &fakeLoader{}
	proc := newProcessor(t, "stock_critico", loader)

	data := xlsxBytes(t, [][]any{{"Codigo", "Stock"}})
	_, err := proc.Process(context.Background(), data, "stock.xlsx")
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
	if loader.calls != 0 {
		t.Error("empty input must not reach the loader")
	}
}

func TestProcessUnreadableFile(t *testing.T) {
	loader := &fakeLoader{}
	proc := newProcessor(t, "stock_critico", loader)

	if _, err := proc.Process(context.Background(), []byte("garbage"), "stock.xlsx"); err == nil {
		t.Fatal("expected parse error")
	}
	if loader.calls != 0 {
		t.Error("unreadable input must not reach the loader")
	}
}

func TestProcessLoaderErrorPropagates(t *testing.T) {
	dbErr := errors.New("connection reset")
	loader := &fakeLoader{err: dbErr}
	proc := newProcessor(t, "stock_critico", loader)

	data := xlsxBytes(t, [][]any{{"Codigo"}, {"A1"}})
	_, err := proc.Process(context.Background(), data, "stock.xlsx")
	if !errors.Is(err, dbErr) {
		t.Fatalf("err = %v, want wrapped loader error", err)
	}
}
