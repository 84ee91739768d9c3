// Package extract finds catalog codes, monetary amounts and quantity
// candidates in noisy invoice text lines.
package extract

import (
	"regexp"

	"github.com/shopspring/decimal"

	"factuurcheck/pkg/numeric"
)

// Amount is one monetary-amount-shaped match on a line. HasCurrency is true
// when a € or "eur" marker sits directly before the number, HasUnit when a
// unit word follows it.
type Amount struct {
	Value       decimal.Decimal
	HasCurrency bool
	HasUnit     bool
}

// MaxAmount is the cutoff above which a value cannot be an invoice amount.
var MaxAmount = decimal.NewFromInt(250000)

// bareFloor: bare values at or below this are quantities, not money.
var bareFloor = decimal.NewFromInt(5)

const amountUnits = `(?:m2|m³|m3|\bm\b|meter|stu?k?s?|st\b|wk\b|uur\b|hrs?\b|kg\b|l\b|liter\b)`

// Two number shapes: grouped thousands with a 2-decimal fraction
// ("1.234,56", "1 234.56") or a simple decimal ("12,34").
var amountRE = regexp.MustCompile(`(?i)((?:€|eur)\s*)?(-?\d{1,3}(?:[.\s]\d{3})*(?:[.,]\d{2})|-?\d+(?:[.,]\d{2}))(\s*` + amountUnits + `)?`)

// Amounts returns all amount-shaped matches on a line in order of appearance.
// Values are rounded to 2 decimals; |value| > 250000 is discarded as
// implausible. A match directly followed by another digit is not a complete
// number and is re-scanned one rune further (regexp has no lookahead).
func Amounts(line string) []Amount {
	if line == "" {
		return nil
	}
	s := numeric.CleanNoise(line)
	var out []Amount
	pos := 0
	for pos < len(s) {
		loc := amountRE.FindStringSubmatchIndex(s[pos:])
		if loc == nil {
			break
		}
		numEnd := pos + loc[5]
		if numEnd < len(s) && s[numEnd] >= '0' && s[numEnd] <= '9' {
			pos += loc[0] + 1
			continue
		}
		hasCur := loc[2] >= 0
		hasUnit := false
		if loc[6] >= 0 && loc[6] < loc[7] {
			hasUnit = true
		}
		raw := s[pos+loc[4] : pos+loc[5]]
		if v, ok := numeric.ParseDecimal(raw); ok && v.Abs().LessThanOrEqual(MaxAmount) {
			out = append(out, Amount{Value: v.Round(2), HasCurrency: hasCur, HasUnit: hasUnit})
		}
		pos += loc[1]
		if loc[1] == loc[0] { // zero-width safety
			pos++
		}
	}
	return out
}

// FilteredAmounts is the simple-caller view of Amounts: unit-marked values
// without a currency marker are dropped (they are quantities, e.g. "1,00 stu"),
// and so are small bare values ≤ 5.0 without a currency marker.
func FilteredAmounts(line string) []decimal.Decimal {
	var out []decimal.Decimal
	for _, a := range Amounts(line) {
		if a.HasUnit && !a.HasCurrency {
			continue
		}
		if !a.HasCurrency && a.Value.LessThanOrEqual(bareFloor) {
			continue
		}
		out = append(out, a.Value)
	}
	return out
}
