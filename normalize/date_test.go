package normalize

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Value
	}{
		{"day first slash", "31/12/2024", DateValue(date(2024, time.December, 31))},
		{"single digit day", "3/4/2024", DateValue(date(2024, time.April, 3))},
		{"day first dash", "31-12-2024", DateValue(date(2024, time.December, 31))},
		{"day first dot", "31.12.2024", DateValue(date(2024, time.December, 31))},
		{"with time", "31/12/2024 10:30:00", DateValue(time.Date(2024, time.December, 31, 10, 30, 0, 0, time.UTC))},
		{"iso", "2024-12-31", DateValue(date(2024, time.December, 31))},
		{"impossible date", "31/02/2024", Null()},
		{"garbage", "mañana", Null()},
		{"empty", "", Null()},
		{"nat", "NaT", Null()},
		{"excel serial", "45657", DateValue(date(2024, time.December, 31))},
		{"small number not serial", "123", Null()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.raw)
			if got.Kind != tt.want.Kind || !got.Date.Equal(tt.want.Date) {
				t.Errorf("ParseDate(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseDateSentinel(t *testing.T) {
	raw := "CUMPLIMIENTO TOTAL DE LAS OBLIGACIONES"
	got := ParseDate(raw)
	if got.Kind != KindText || got.Text != raw {
		t.Fatalf("ParseDate(sentinel) = %+v, want text passthrough", got)
	}
}

func TestDateColumnSingleLayout(t *testing.T) {
	// The first layout with any hit applies column-wide. The stray ISO
	// string must not be parsed under a different convention.
	raw := []string{"31/12/2024", "1/2/2024", "2024-12-31", ""}
	got := DateColumn(raw)

	if !got[0].Date.Equal(date(2024, time.December, 31)) {
		t.Errorf("got[0] = %+v", got[0])
	}
	// Day-first: February 1st, not January 2nd.
	if !got[1].Date.Equal(date(2024, time.February, 1)) {
		t.Errorf("got[1] = %+v, want 2024-02-01", got[1])
	}
	if !got[2].IsNull() {
		t.Errorf("got[2] = %+v, want null for off-layout cell", got[2])
	}
	if !got[3].IsNull() {
		t.Errorf("got[3] = %+v, want null", got[3])
	}
}

func TestDateColumnFallsThroughLayouts(t *testing.T) {
	raw := []string{"2024-06-30", "2024-07-01"}
	got := DateColumn(raw)
	if !got[0].Date.Equal(date(2024, time.June, 30)) || !got[1].Date.Equal(date(2024, time.July, 1)) {
		t.Errorf("DateColumn(iso) = %+v", got)
	}
}

func TestDateColumnSerials(t *testing.T) {
	got := DateColumn([]string{"45657", "x"})
	if !got[0].Date.Equal(date(2024, time.December, 31)) {
		t.Errorf("got[0] = %+v, want serial conversion", got[0])
	}
	if !got[1].IsNull() {
		t.Errorf("got[1] = %+v, want null", got[1])
	}
}

func TestDateColumnSentinelSurvives(t *testing.T) {
	raw := []string{"31/12/2024", "Cumplimiento Total de las Obligaciones"}
	got := DateColumn(raw)
	if got[1].Kind != KindText {
		t.Fatalf("sentinel cell = %+v, want text", got[1])
	}
}
