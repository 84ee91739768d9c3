// Package numeric repairs OCR digit noise and parses locale-ambiguous
// decimal strings (European invoices mix "1.234,56" and "1,234.56").
package numeric

import (
	"strings"

	"github.com/shopspring/decimal"
)

// noiseReplacer fixes the artifacts Tesseract produces on Dutch invoices:
// superscript ² often comes back as '?' or '°', and a leading zero as 'O'.
var noiseReplacer = strings.NewReplacer(
	"m?", "m2", "M?", "m2", "m^2", "m2", "m°", "m2",
	"O,", "0,", "O.", "0.",
)

// CleanNoise repairs known OCR artifacts in a raw text line. Empty input is
// returned unchanged.
func CleanNoise(s string) string {
	if s == "" {
		return s
	}
	return noiseReplacer.Replace(s)
}

// NormalizeSeparators rewrites a numeric token to use '.' as the decimal
// point. When both ',' and '.' occur, the right-most separator is the decimal
// point and the other is a thousands separator; a lone ',' is a decimal point.
func NormalizeSeparators(tok string) string {
	tok = strings.ReplaceAll(tok, "\u00a0", "")
	tok = strings.ReplaceAll(tok, " ", "")
	hasComma := strings.Contains(tok, ",")
	hasDot := strings.Contains(tok, ".")
	switch {
	case hasComma && hasDot:
		if strings.LastIndex(tok, ",") > strings.LastIndex(tok, ".") {
			tok = strings.ReplaceAll(tok, ".", "")
			tok = strings.ReplaceAll(tok, ",", ".")
		} else {
			tok = strings.ReplaceAll(tok, ",", "")
		}
	case hasComma:
		tok = strings.ReplaceAll(tok, ",", ".")
	}
	return tok
}

// ParseDecimal normalizes separators and parses the token. Failure is not an
// error condition at this layer; callers skip tokens that do not parse.
func ParseDecimal(tok string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(NormalizeSeparators(tok))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Digits strips everything but decimal digits.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// NormalizeCode reduces a catalog code to its canonical key: digits only,
// leading zeros stripped.
func NormalizeCode(s string) string {
	return strings.TrimLeft(Digits(s), "0")
}
