package reconcile

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func testCatalog() *Catalog {
	return NewCatalog([]Entry{
		{Code: "123456", UnitPrice: dec("150.00"), Description: "vervangen kozijn"},
		{Code: "654321", UnitPrice: dec("45.00"), Description: "schilderwerk"},
	})
}

func TestReconcileAggregatedWithinTolerance(t *testing.T) {
	doc := Document{
		FileName: "factuur_001.pdf",
		Lines: []string{
			"Factuurnummer: 2024-00451",
			"123456 vervangen kozijn 2,00 stuk 300,00",
		},
		Method: MethodPDFText,
	}
	rows, audits := Reconcile(doc, testCatalog(), DefaultOptions())
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d: %+v", len(rows), rows)
	}
	r := rows[0]
	if r.Status != StatusWithinTolerance {
		t.Fatalf("status %s", r.Status)
	}
	if r.CodeMatched != "123456" || !r.Quantity.Equal(dec("2")) {
		t.Fatalf("row %+v", r)
	}
	if r.Billed == nil || !r.Billed.Equal(dec("300")) || !r.Expected.Equal(dec("300")) {
		t.Fatalf("billed/expected wrong: %+v", r)
	}
	if !r.Deviation.IsZero() {
		t.Fatalf("deviation %s", r.Deviation)
	}
	if r.InvoiceNumber != "2024-00451" {
		t.Fatalf("invoice number %q", r.InvoiceNumber)
	}
	if len(audits) != 2 || audits[1].Index != 1 || !audits[1].HasCode {
		t.Fatalf("audits wrong: %+v", audits)
	}
}

func TestReconcileInfersQuantityFromAmountOnly(t *testing.T) {
	doc := Document{
		FileName: "factuur_002.pdf",
		Lines:    []string{"654321 schilderwerk 90,00"},
		Method:   MethodPDFText,
	}
	rows, _ := Reconcile(doc, testCatalog(), DefaultOptions())
	if len(rows) != 1 {
		t.Fatalf("rows: %+v", rows)
	}
	r := rows[0]
	if !r.Quantity.Equal(dec("2")) || r.Status != StatusWithinTolerance {
		t.Fatalf("row %+v", r)
	}
	if !r.Expected.Equal(dec("90")) || !r.Deviation.IsZero() {
		t.Fatalf("expected/deviation wrong: %+v", r)
	}
}

func TestReconcileAdministrativeLineSuppressed(t *testing.T) {
	// 2024-00451 normalizes to a code-shaped run absent from the catalog, but
	// the line matches the administrative denylist so no advisory row appears.
	doc := Document{
		FileName: "factuur_003.pdf",
		Lines:    []string{"Factuurnummer: 2024-00451"},
		Method:   MethodPDFText,
	}
	rows, _ := Reconcile(doc, testCatalog(), DefaultOptions())
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %+v", rows)
	}
}

func TestReconcileUnknownCode(t *testing.T) {
	doc := Document{
		FileName: "factuur_004.pdf",
		Lines:    []string{"999888 reparatie 3 stuks 75,00"},
		Method:   MethodOCR,
	}
	rows, _ := Reconcile(doc, testCatalog(), DefaultOptions())
	if len(rows) != 1 {
		t.Fatalf("rows: %+v", rows)
	}
	r := rows[0]
	if r.Status != StatusUnknownCode || r.CodeFound != "999888" || r.CodeMatched != "" {
		t.Fatalf("row %+v", r)
	}
	if !r.Quantity.Equal(dec("3")) || r.Billed == nil || !r.Billed.Equal(dec("75")) {
		t.Fatalf("row %+v", r)
	}
	if r.Expected != nil || r.UnitPrice != nil {
		t.Fatalf("unknown code must carry no expectation: %+v", r)
	}
}

func TestReconcileNoCodeLine(t *testing.T) {
	doc := Document{
		FileName: "factuur_005.pdf",
		Lines: []string{
			"voorrijkosten 25,00",
			"met vriendelijke groet", // nothing useful: suppressed
		},
		Method: MethodPDFText,
	}
	rows, _ := Reconcile(doc, testCatalog(), DefaultOptions())
	if len(rows) != 1 {
		t.Fatalf("rows: %+v", rows)
	}
	if rows[0].Status != StatusNoCode || rows[0].Billed == nil || !rows[0].Billed.Equal(dec("25")) {
		t.Fatalf("row %+v", rows[0])
	}
}

func TestReconcilePerLineMode(t *testing.T) {
	opts := DefaultOptions()
	opts.Aggregate = false
	doc := Document{
		FileName: "factuur_006.pdf",
		Lines: []string{
			"123456 vervangen kozijn 2,00 stuk 300,00",
			"123456 naregeling 1,00 stuk 150,00",
		},
		Method: MethodPDFText,
	}
	rows, _ := Reconcile(doc, testCatalog(), opts)
	if len(rows) != 2 {
		t.Fatalf("rows: %+v", rows)
	}
	for _, r := range rows {
		if r.Status != StatusWithinTolerance {
			t.Fatalf("row %+v", r)
		}
	}
	if !rows[0].Quantity.Equal(dec("2")) || !rows[1].Quantity.Equal(dec("1")) {
		t.Fatalf("quantities: %s %s", rows[0].Quantity, rows[1].Quantity)
	}
}

func TestReconcileAmountNotFound(t *testing.T) {
	doc := Document{
		FileName: "factuur_007.pdf",
		Lines:    []string{"123456 vervangen kozijn"},
		Method:   MethodPDFText,
	}
	rows, _ := Reconcile(doc, testCatalog(), DefaultOptions())
	if len(rows) != 1 || rows[0].Status != StatusAmountNotFound {
		t.Fatalf("rows: %+v", rows)
	}
	if rows[0].Billed != nil || rows[0].Deviation != nil {
		t.Fatalf("row %+v", rows[0])
	}
}

func TestReconcileDeterministic(t *testing.T) {
	doc := Document{
		FileName: "factuur_008.pdf",
		Lines: []string{
			"123456 kozijn 2,00 stuk 300,00",
			"654321 schilderwerk 90,00",
			"999888 onbekend 75,00",
		},
		Method: MethodPDFText,
	}
	r1, a1 := Reconcile(doc, testCatalog(), DefaultOptions())
	r2, a2 := Reconcile(doc, testCatalog(), DefaultOptions())
	if !reflect.DeepEqual(r1, r2) || !reflect.DeepEqual(a1, a2) {
		t.Fatalf("reconciliation is not deterministic")
	}
}

func TestSummarize(t *testing.T) {
	billed := dec("300")
	expected := dec("290")
	rows := []Row{
		{FileName: "a.pdf", Billed: &billed, Expected: &expected},
		{FileName: "a.pdf", Expected: &expected},
		{FileName: "b.pdf"},
	}
	sums := Summarize(rows, decimal.NewFromFloat(0.05))
	if len(sums) != 2 {
		t.Fatalf("sums: %+v", sums)
	}
	if sums[0].FileName != "a.pdf" || !sums[0].Deviation.Equal(dec("280")) || sums[0].Status != StatusDeviation {
		t.Fatalf("summary %+v", sums[0])
	}
	if sums[1].Status != StatusWithinTolerance {
		t.Fatalf("summary %+v", sums[1])
	}
}
