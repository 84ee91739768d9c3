package export

import (
	"testing"

	"github.com/shopspring/decimal"

	"factuurcheck/pkg/reconcile"
)

func TestWorkbookSheetsAndCells(t *testing.T) {
	billed := decimal.RequireFromString("300")
	rows := []reconcile.Row{{
		FileName:      "factuur_001.pdf",
		InvoiceNumber: "2024-00451",
		CodeFound:     "123456",
		CodeMatched:   "123456",
		Quantity:      decimal.RequireFromString("2"),
		Billed:        &billed,
		Status:        reconcile.StatusWithinTolerance,
		Method:        reconcile.MethodPDFText,
		Lines:         []string{"123456 kozijn 2,00 stuk 300,00"},
	}}
	sums := []reconcile.Summary{{FileName: "factuur_001.pdf", Billed: billed, Expected: billed, Status: reconcile.StatusWithinTolerance}}
	audits := []reconcile.LineAudit{{
		FileName: "factuur_001.pdf",
		Index:    0,
		Text:     "123456 kozijn 2,00 stuk 300,00",
		Codes:    []string{"123456"},
		Amounts:  []decimal.Decimal{billed},
		HasCode:  true,
		Method:   reconcile.MethodPDFText,
	}}

	f, err := Workbook(rows, sums, audits)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	for _, sheet := range []string{SheetResults, SheetOverview, SheetLines} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			t.Fatalf("sheet %s missing (idx=%d err=%v)", sheet, idx, err)
		}
	}
	if v, err := f.GetCellValue(SheetResults, "A2"); err != nil || v != "factuur_001.pdf" {
		t.Fatalf("A2 = %q err=%v", v, err)
	}
	if v, _ := f.GetCellValue(SheetResults, "K2"); v != "within_tolerance" {
		t.Fatalf("status cell %q", v)
	}
	if v, _ := f.GetCellValue(SheetOverview, "B2"); v != "300" {
		t.Fatalf("overview billed %q", v)
	}
	if v, _ := f.GetCellValue(SheetLines, "C2"); v != "123456 kozijn 2,00 stuk 300,00" {
		t.Fatalf("line text %q", v)
	}
}

func TestWorkbookEmpty(t *testing.T) {
	f, err := Workbook(nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue(SheetResults, "A1"); v != "Bestand" {
		t.Fatalf("header %q", v)
	}
}
