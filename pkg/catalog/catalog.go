// Package catalog loads the task-code price list that invoices are checked
// against, from an Excel workbook or a CSV export.
package catalog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"factuurcheck/pkg/numeric"
	"factuurcheck/pkg/reconcile"
)

// ErrEmptyCatalog is returned when a file parsed fine but yielded no usable
// (code, price) entry.
var ErrEmptyCatalog = errors.New("catalog contains no usable entries")

// Header names accepted per column, lowercase, checked by containment so
// "Koopprijs (ex BTW)" matches "koopprijs".
var (
	codeHeaders  = []string{"taakcode", "code"}
	priceHeaders = []string{"koopprijs", "prijs", "price", "bedrag"}
	descHeaders  = []string{"omschrijving", "description", "taak"}
)

// Load reads the catalog at path, dispatching on the file extension.
func Load(path string) (*reconcile.Catalog, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return loadExcel(path)
	case ".csv":
		return loadCSV(path)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", filepath.Ext(path))
	}
}

func loadExcel(path string) (*reconcile.Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("catalog %s: %w", path, ErrEmptyCatalog)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return fromRows(path, rows)
}

func loadCSV(path string) (*reconcile.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	rows, err := readCSV(data, sniffDelimiter(data))
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return fromRows(path, rows)
}

// sniffDelimiter inspects the first line: European exports commonly use
// semicolons, and a comma count there would be skewed by decimal commas.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

func readCSV(data []byte, comma rune) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(string(data)))
	r.Comma = comma
	r.FieldsPerRecord = -1
	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// fromRows locates the header row, maps the columns and builds the catalog.
// Rows before the header and rows without a parseable price are skipped.
func fromRows(path string, rows [][]string) (*reconcile.Catalog, error) {
	headerIdx, cols := findHeader(rows)
	if headerIdx < 0 {
		return nil, fmt.Errorf("catalog %s: no header row with a code and price column", path)
	}

	var entries []reconcile.Entry
	for _, row := range rows[headerIdx+1:] {
		code := cell(row, cols.code)
		if code == "" || numeric.NormalizeCode(code) == "" {
			continue
		}
		price, ok := numeric.ParseDecimal(cell(row, cols.price))
		if !ok {
			continue
		}
		entries = append(entries, reconcile.Entry{
			Code:        code,
			UnitPrice:   price,
			Description: cell(row, cols.desc),
		})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog %s: %w", path, ErrEmptyCatalog)
	}
	return reconcile.NewCatalog(entries), nil
}

type columns struct {
	code, price, desc int
}

func findHeader(rows [][]string) (int, columns) {
	for i, row := range rows {
		c := columns{code: -1, price: -1, desc: -1}
		for j, raw := range row {
			h := strings.ToLower(strings.TrimSpace(raw))
			switch {
			case c.code < 0 && matchesAny(h, codeHeaders):
				c.code = j
			case c.price < 0 && matchesAny(h, priceHeaders):
				c.price = j
			case c.desc < 0 && matchesAny(h, descHeaders):
				c.desc = j
			}
		}
		if c.code >= 0 && c.price >= 0 {
			return i, c
		}
	}
	return -1, columns{}
}

func matchesAny(header string, names []string) bool {
	if header == "" {
		return false
	}
	for _, n := range names {
		if strings.Contains(header, n) {
			return true
		}
	}
	return false
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
