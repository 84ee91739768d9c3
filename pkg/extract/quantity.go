package extract

import (
	"regexp"

	"github.com/shopspring/decimal"

	"factuurcheck/pkg/numeric"
)

// Quantity units deliberately exclude bare single-letter 'u' (matches inside
// "factuur") and allow 'm' only word-bounded. m1 is strekkende meter, pst per
// stuk, post a lump-sum item, ruimte per room.
const quantityUnits = `(?:m1\b|m2|m\^?2|m3|m\^?3|m²|m³|meter\b|m\b|stuk\b|stuks\b|stk\b|st\b|stu\b|pst\b|post\b|pcs\b|pce\b|set\b|uur\b|hrs\b|hr\b|kg\b|l\b|liter\b|wk\b|week\b|ruimte\b)`

const qtyNum = `(\d+(?:[.,]\d{1,2})?)`

// quantityPatterns is the ordered cue table. Order is priority: the
// single-best extractor returns the first pattern's first parseable group.
var quantityPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"multiplicand", regexp.MustCompile(`(?i)` + qtyNum + `\s*(?:x|×)\s*\d+(?:[.,]\d{1,2})?`)},
	{"labeled", regexp.MustCompile(`(?i)(?:aantal|qty|quantiteit)\s*[:=]?\s*` + qtyNum)},
	{"value-unit", regexp.MustCompile(`(?i)` + qtyNum + `\s*` + quantityUnits)},
	{"unit-value", regexp.MustCompile(`(?i)\b` + quantityUnits + `\s*` + qtyNum)},
	{"times", regexp.MustCompile(`(?i)(?:x|×)\s*` + qtyNum)},
}

var maxQuantity = decimal.NewFromInt(100000)

// parseQuantity parses one captured group and applies the (0, 100000] bound.
func parseQuantity(g string) (decimal.Decimal, bool) {
	q, ok := numeric.ParseDecimal(g)
	if !ok || !q.IsPositive() || q.GreaterThan(maxQuantity) {
		return decimal.Zero, false
	}
	return q, true
}

// QuantityCandidates collects every quantity-shaped token on the line, trying
// all cue patterns independently. Duplicates are kept; order is pattern
// priority, then position.
func QuantityCandidates(line string) []decimal.Decimal {
	if line == "" {
		return nil
	}
	var out []decimal.Decimal
	for _, p := range quantityPatterns {
		for _, m := range p.re.FindAllStringSubmatch(line, -1) {
			if q, ok := parseQuantity(m[1]); ok {
				out = append(out, q)
			}
		}
	}
	return out
}

// quantityEqualsCode guards against a bare catalog code being read as a
// quantity: the rounded integer form must not equal the normalized code.
func quantityEqualsCode(q decimal.Decimal, normCode string) bool {
	if normCode == "" {
		return false
	}
	return q.Round(0).String() == normCode
}

// BestQuantity runs the cue patterns in priority order and returns the first
// parseable match that is not the catalog code itself. Without any cue the
// conservative default is 1.
func BestQuantity(line, normCode string) decimal.Decimal {
	for _, p := range quantityPatterns {
		m := p.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		q, ok := parseQuantity(m[1])
		if !ok {
			continue
		}
		if quantityEqualsCode(q, normCode) {
			continue
		}
		return q
	}
	return decimal.NewFromInt(1)
}
