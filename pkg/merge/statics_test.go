package merge

import (
	"testing"
	"time"
)

func TestStaticTableSeedsToday(t *testing.T) {
	table := NewStaticTable()

	value, ok := table.Get("hoy")
	if !ok {
		t.Fatal("expected 'hoy' to be seeded")
	}
	if value != time.Now().Format(dateLayout) {
		t.Errorf("expected today's date, got %q", value)
	}
}

func TestStaticTableSetIsUpsert(t *testing.T) {
	table := NewStaticTable()

	table.Set("empresa", "ACME")
	table.Set("empresa", "ACME de México")

	value, ok := table.Get("empresa")
	if !ok || value != "ACME de México" {
		t.Errorf("expected upserted value, got %q (ok=%v)", value, ok)
	}
}

func TestStaticTableGetAbsent(t *testing.T) {
	table := NewStaticTable()

	if _, ok := table.Get("nada"); ok {
		t.Error("expected absent name to report !ok")
	}
}
