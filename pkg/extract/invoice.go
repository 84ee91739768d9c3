package extract

import (
	"path"
	"regexp"
	"strings"
)

// Labeled-field patterns for the invoice number, tried in order.
var invoiceNoREs = []*regexp.Regexp{
	regexp.MustCompile(`(?i)factuurnummer\s*[:#]?\s*([a-z0-9\-/]{5,})`),
	regexp.MustCompile(`(?i)factuur\s*nr\.?\s*[:#]?\s*([a-z0-9\-/]{5,})`),
	regexp.MustCompile(`(?i)factuurnr\.?\s*[:#]?\s*([a-z0-9\-/]{5,})`),
	regexp.MustCompile(`(?i)invoice\s*(?:no|nr|number)\s*[:#]?\s*([a-z0-9\-/]{5,})`),
	regexp.MustCompile(`(?i)kenmerk\s*[:#]?\s*([a-z0-9\-/]{5,})`),
}

var filenameDigitRunRE = regexp.MustCompile(`\d{6,}`)

// InvoiceNumber pulls a best-effort invoice identifier out of the document
// text; failing that, a ≥6-digit run in the filename; failing that, the
// filename itself.
func InvoiceNumber(text, filename string) string {
	low := strings.ToLower(text)
	for _, re := range invoiceNoREs {
		if m := re.FindStringSubmatch(low); m != nil {
			return strings.TrimRight(strings.TrimSpace(m[1]), ".")
		}
	}
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if m := filenameDigitRunRE.FindString(base); m != "" {
		return m
	}
	return base
}
