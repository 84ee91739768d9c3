package reconcile

import (
	"strings"

	"github.com/shopspring/decimal"

	"factuurcheck/pkg/extract"
)

// Status classifies a reconciled row or a document summary.
type Status string

const (
	StatusWithinTolerance Status = "within_tolerance"
	StatusDeviation       Status = "deviation"
	StatusAmountNotFound  Status = "amount_not_found"
	StatusUnknownCode     Status = "unknown_code"
	StatusNoCode          Status = "no_code"
)

// Method records how a document's lines were obtained.
type Method string

const (
	MethodPDFText Method = "pdf-text"
	MethodOCR     Method = "ocr"
)

// Document is one invoice's extracted lines, ready for reconciliation.
type Document struct {
	FileName string
	Lines    []string
	Method   Method
}

// Row is one reconciled result: per matched code (aggregated mode), per
// (code, line) (per-line mode), or an advisory unknown-code / no-code row.
// Nil pointer fields mean "not determined".
type Row struct {
	FileName      string           `json:"file_name"`
	InvoiceNumber string           `json:"invoice_number"`
	CodeFound     string           `json:"code_found,omitempty"`
	CodeMatched   string           `json:"code_matched,omitempty"`
	Quantity      decimal.Decimal  `json:"quantity"`
	Description   string           `json:"description,omitempty"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	Expected      *decimal.Decimal `json:"expected,omitempty"`
	Billed        *decimal.Decimal `json:"billed,omitempty"`
	Deviation     *decimal.Decimal `json:"deviation,omitempty"`
	Status        Status           `json:"status"`
	Lines         []string         `json:"lines"`
	Method        Method           `json:"method"`
}

// LineAudit is the per-line feature dump kept alongside the rows for
// debugging: everything the extractors saw on one original line.
type LineAudit struct {
	FileName           string            `json:"file_name"`
	InvoiceNumber      string            `json:"invoice_number"`
	Index              int               `json:"index"`
	Text               string            `json:"text"`
	Codes              []string          `json:"codes,omitempty"`
	Amounts            []decimal.Decimal `json:"amounts,omitempty"`
	QuantityCandidates []decimal.Decimal `json:"quantity_candidates,omitempty"`
	HasCode            bool              `json:"has_code"`
	Method             Method            `json:"method"`
}

// Options steers one reconciliation run.
type Options struct {
	Tolerance  decimal.Decimal // max € deviation between billed and expected
	Aggregate  bool            // one row per code instead of per line
	Matcher    Matcher
	Tolerances Tolerances
}

// DefaultOptions: €0.05 tolerance, aggregated, exact matching.
func DefaultOptions() Options {
	return Options{
		Tolerance:  decimal.NewFromFloat(0.05),
		Aggregate:  true,
		Matcher:    ExactMatcher{},
		Tolerances: DefaultTolerances(),
	}
}

// Administrative lines around unknown codes are noise, not billable work:
// banking and payment terms, totals/VAT labels, invoice and work-order
// metadata.
var skipKeywords = []string{
	"iban", "banknummer", "rabo", "rabobank", "rekening", "overmaken", "restant",
	"datum", "factuurnummer", "factuurnr", "werkadres", "werkorder", "opdrachtnr",
	"opdracht", "uw nummer",
	"bij betaling", "betalingskenmerk", "betaal", "betaaldatum", "uiterste",
	"g-rekening", "loonkosten", "loonkostenbestanddeel", "loon",
	"totaal", "subtotaal", "btw verlegd",
}

func isAdministrativeLine(line string) bool {
	low := strings.ToLower(line)
	for _, kw := range skipKeywords {
		if strings.Contains(low, kw) {
			return true
		}
	}
	return false
}

// Reconcile processes one document against the catalog and returns the
// reconciled rows plus the per-line audit dump. It is a pure function of its
// inputs.
func Reconcile(doc Document, cat *Catalog, opts Options) ([]Row, []LineAudit) {
	if opts.Matcher == nil {
		opts.Matcher = ExactMatcher{}
	}

	allText := strings.Join(doc.Lines, "\n")
	invoiceNo := extract.InvoiceNumber(allText, doc.FileName)
	foundCodes := extract.Codes(allText)

	perLineCodes := make([][]string, len(doc.Lines))
	audits := make([]LineAudit, 0, len(doc.Lines))
	for i, line := range doc.Lines {
		perLineCodes[i] = extract.LineCodes(line)
		var vals []decimal.Decimal
		for _, a := range extract.Amounts(line) {
			vals = append(vals, a.Value)
		}
		audits = append(audits, LineAudit{
			FileName:           doc.FileName,
			InvoiceNumber:      invoiceNo,
			Index:              i,
			Text:               line,
			Codes:              perLineCodes[i],
			Amounts:            vals,
			QuantityCandidates: extract.QuantityCandidates(line),
			HasCode:            len(perLineCodes[i]) > 0,
			Method:             doc.Method,
		})
	}

	var rows []Row
	var unmatched []string
	for _, code := range foundCodes {
		matched, ok := opts.Matcher.Match(code, cat)
		if !ok {
			unmatched = append(unmatched, code)
			continue
		}
		rows = append(rows, reconcileCode(doc, invoiceNo, code, matched, cat, opts)...)
	}

	rows = append(rows, unknownCodeRows(doc, invoiceNo, unmatched)...)
	rows = append(rows, noCodeRows(doc, invoiceNo, perLineCodes)...)
	return rows, audits
}

// reconcileCode resolves quantity and billed amount for every line carrying a
// matched code, aggregated or per line.
func reconcileCode(doc Document, invoiceNo, found, matched string, cat *Catalog, opts Options) []Row {
	unitPrice := cat.UnitPrice(matched)
	desc := cat.Description(matched)

	var relevant []string
	for _, line := range doc.Lines {
		if extract.LineContainsCode(line, found) {
			relevant = append(relevant, line)
		}
	}

	base := Row{
		FileName:      doc.FileName,
		InvoiceNumber: invoiceNo,
		CodeFound:     found,
		CodeMatched:   matched,
		Description:   desc,
		UnitPrice:     ptr(unitPrice),
		Method:        doc.Method,
	}

	if opts.Aggregate {
		totalBilled := decimal.Zero
		sumQty := decimal.Zero
		for _, line := range relevant {
			q, b := resolveLine(line, unitPrice, matched, opts.Tolerances)
			sumQty = sumQty.Add(q)
			if b != nil {
				totalBilled = totalBilled.Add(*b)
			}
		}
		qtyForExpected := sumQty
		if qtyForExpected.IsZero() {
			qtyForExpected = one
		}
		expected := unitPrice.Mul(qtyForExpected).Round(2)
		row := base
		row.Quantity = sumQty
		row.Expected = ptr(expected)
		row.Lines = relevant
		if !totalBilled.IsZero() {
			row.Billed = ptr(totalBilled.Round(2))
			dev := totalBilled.Sub(expected).Abs().Round(2)
			row.Deviation = ptr(dev)
			row.Status = statusFor(dev, opts.Tolerance)
		} else {
			row.Status = StatusAmountNotFound
		}
		return []Row{row}
	}

	var rows []Row
	for _, line := range relevant {
		q, b := resolveLine(line, unitPrice, matched, opts.Tolerances)
		expected := unitPrice.Mul(q).Round(2)
		row := base
		row.Quantity = q
		row.Expected = ptr(expected)
		row.Lines = []string{line}
		if b != nil && !b.IsZero() {
			row.Billed = ptr(b.Round(2))
			dev := b.Sub(expected).Abs().Round(2)
			row.Deviation = ptr(dev)
			row.Status = statusFor(dev, opts.Tolerance)
		} else {
			row.Status = StatusAmountNotFound
		}
		rows = append(rows, row)
	}
	return rows
}

// resolveLine determines one line's quantity and billed amount: the strict
// consistency check first, then the softer picker plus amount selector.
func resolveLine(line string, unitPrice decimal.Decimal, normCode string, tol Tolerances) (decimal.Decimal, *decimal.Decimal) {
	if q, b, _, ok := ChooseLineAmount(line, unitPrice, tol); ok {
		return q, ptr(b)
	}
	amounts := extract.FilteredAmounts(line)
	q := PickQuantity(line, unitPrice, amounts, normCode)
	expected := q.Mul(unitPrice)
	if b, ok := SelectLineAmount(amounts, &expected); ok {
		return q, ptr(b)
	}
	return q, nil
}

// unknownCodeRows emits advisory rows for codes absent from the catalog.
// Administrative lines are suppressed, as are lines carrying neither an
// amount nor a quantity cue.
func unknownCodeRows(doc Document, invoiceNo string, unmatched []string) []Row {
	var rows []Row
	for _, uc := range unmatched {
		for _, line := range doc.Lines {
			if line == "" || !extract.LineContainsCode(line, uc) {
				continue
			}
			if isAdministrativeLine(line) {
				continue
			}
			row, ok := advisoryRow(doc, invoiceNo, line, uc)
			if !ok {
				continue
			}
			row.Status = StatusUnknownCode
			rows = append(rows, row)
		}
	}
	return rows
}

// noCodeRows emits advisory rows for lines without any catalog-code-shaped
// run, under the same "only when something useful is on it" rule.
func noCodeRows(doc Document, invoiceNo string, perLineCodes [][]string) []Row {
	var rows []Row
	for i, line := range doc.Lines {
		if line == "" || len(perLineCodes[i]) > 0 {
			continue
		}
		row, ok := advisoryRow(doc, invoiceNo, line, "")
		if !ok {
			continue
		}
		row.Status = StatusNoCode
		rows = append(rows, row)
	}
	return rows
}

func advisoryRow(doc Document, invoiceNo, line, code string) (Row, bool) {
	amounts := extract.FilteredAmounts(line)
	qtyCands := extract.QuantityCandidates(line)
	billed, hasBilled := SelectLineAmount(amounts, nil)
	if !hasBilled && len(qtyCands) == 0 {
		return Row{}, false
	}
	qty := one
	if len(qtyCands) > 0 {
		qty = qtyCands[0]
	}
	row := Row{
		FileName:      doc.FileName,
		InvoiceNumber: invoiceNo,
		CodeFound:     code,
		Quantity:      qty,
		Lines:         []string{line},
		Method:        doc.Method,
	}
	if hasBilled {
		row.Billed = ptr(billed)
	}
	return row, true
}

func statusFor(dev, tolerance decimal.Decimal) Status {
	if dev.LessThanOrEqual(tolerance) {
		return StatusWithinTolerance
	}
	return StatusDeviation
}

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

// Summary aggregates one document's rows: billed vs expected totals.
type Summary struct {
	FileName  string          `json:"file_name"`
	Billed    decimal.Decimal `json:"billed"`
	Expected  decimal.Decimal `json:"expected"`
	Deviation decimal.Decimal `json:"deviation"`
	Status    Status          `json:"status"`
}

// Summarize groups rows per document in first-seen order and applies the same
// tolerance rule to the totals.
func Summarize(rows []Row, tolerance decimal.Decimal) []Summary {
	idx := map[string]int{}
	var out []Summary
	for _, r := range rows {
		i, ok := idx[r.FileName]
		if !ok {
			i = len(out)
			idx[r.FileName] = i
			out = append(out, Summary{FileName: r.FileName})
		}
		if r.Billed != nil {
			out[i].Billed = out[i].Billed.Add(*r.Billed)
		}
		if r.Expected != nil {
			out[i].Expected = out[i].Expected.Add(*r.Expected)
		}
	}
	for i := range out {
		out[i].Deviation = out[i].Billed.Sub(out[i].Expected).Abs().Round(2)
		out[i].Status = statusFor(out[i].Deviation, tolerance)
	}
	return out
}
