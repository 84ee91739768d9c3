// Package export renders reconciliation output as an Excel workbook with
// three sheets: per-code results, per-invoice totals and the raw line dump.
package export

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"factuurcheck/pkg/reconcile"
)

const (
	SheetResults  = "Resultaten"
	SheetOverview = "Factuur overzicht"
	SheetLines    = "Alle regels"
)

var resultHeaders = []any{
	"Bestand", "Factuurnummer", "Taakcode gevonden", "Taakcode gematcht",
	"Omschrijving", "Aantal", "Prijs per eenheid", "Verwacht bedrag",
	"Bedrag op factuur", "Afwijking", "Status", "Methode", "Regels",
}

var overviewHeaders = []any{
	"Bestand", "Bedrag op factuur", "Verwacht bedrag", "Afwijking", "Status",
}

var lineHeaders = []any{
	"Bestand", "Regel", "Tekst", "Codes", "Bedragen", "Aantallen", "Code aanwezig", "Methode",
}

// Workbook builds the workbook in memory. The caller owns the returned file
// and must Close it.
func Workbook(rows []reconcile.Row, summaries []reconcile.Summary, audits []reconcile.LineAudit) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetResults); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetOverview); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetLines); err != nil {
		return nil, err
	}

	if err := setRow(f, SheetResults, 1, resultHeaders); err != nil {
		return nil, err
	}
	for i, r := range rows {
		vals := []any{
			r.FileName, r.InvoiceNumber, r.CodeFound, r.CodeMatched,
			r.Description, r.Quantity.String(), decCell(r.UnitPrice), decCell(r.Expected),
			decCell(r.Billed), decCell(r.Deviation), string(r.Status), string(r.Method),
			strings.Join(r.Lines, "\n"),
		}
		if err := setRow(f, SheetResults, i+2, vals); err != nil {
			return nil, err
		}
	}

	if err := setRow(f, SheetOverview, 1, overviewHeaders); err != nil {
		return nil, err
	}
	for i, s := range summaries {
		vals := []any{s.FileName, s.Billed.String(), s.Expected.String(), s.Deviation.String(), string(s.Status)}
		if err := setRow(f, SheetOverview, i+2, vals); err != nil {
			return nil, err
		}
	}

	if err := setRow(f, SheetLines, 1, lineHeaders); err != nil {
		return nil, err
	}
	for i, a := range audits {
		vals := []any{
			a.FileName, a.Index + 1, a.Text, strings.Join(a.Codes, ", "),
			joinDecimals(a.Amounts), joinDecimals(a.QuantityCandidates),
			a.HasCode, string(a.Method),
		}
		if err := setRow(f, SheetLines, i+2, vals); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// WriteFile renders the workbook straight to disk.
func WriteFile(path string, rows []reconcile.Row, summaries []reconcile.Summary, audits []reconcile.LineAudit) error {
	f, err := Workbook(rows, summaries, audits)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, vals []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &vals)
}

func decCell(d *decimal.Decimal) any {
	if d == nil {
		return ""
	}
	return d.String()
}

func joinDecimals(vals []decimal.Decimal) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
