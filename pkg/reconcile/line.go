package reconcile

import (
	"github.com/shopspring/decimal"

	"factuurcheck/pkg/extract"
)

// Tolerances bound how far an amount may sit from quantity × unit price and
// still count as the same line total.
type Tolerances struct {
	MaxRelErr decimal.Decimal
	MaxAbsErr decimal.Decimal
}

// DefaultTolerances allows 8% relative or €2 absolute error.
func DefaultTolerances() Tolerances {
	return Tolerances{
		MaxRelErr: decimal.NewFromFloat(0.08),
		MaxAbsErr: decimal.NewFromInt(2),
	}
}

var (
	one          = decimal.NewFromInt(1)
	minBareFloor = decimal.NewFromInt(3)
	bareRatio    = decimal.NewFromFloat(0.35)
	maxQty       = decimal.NewFromInt(100000)
)

// withinTolerance applies the accept rule: absolute error within MaxAbsErr OR
// relative error (against max(1, |base|)) within MaxRelErr.
func (t Tolerances) withinTolerance(err, base decimal.Decimal) bool {
	if err.LessThanOrEqual(t.MaxAbsErr) {
		return true
	}
	denom := base.Abs()
	if denom.LessThan(one) {
		denom = one
	}
	return err.Div(denom).LessThanOrEqual(t.MaxRelErr)
}

// ChooseLineAmount finds the (quantity, amount) pair on a line that is most
// consistent with the unit price: |amount − quantity×unitPrice| minimal and
// within tolerance. Currency-marked amounts are always eligible; bare amounts
// only when ≥ max(3, 0.35×unitPrice), and unit-marked bare values never
// (those are quantities). When no explicit quantity fits, the quantity is
// inferred from amount ÷ unitPrice instead. Reports ok=false when the line,
// the unit price or every amount is unusable.
func ChooseLineAmount(line string, unitPrice decimal.Decimal, tol Tolerances) (qty, amount, errVal decimal.Decimal, ok bool) {
	if line == "" || unitPrice.IsZero() {
		return
	}
	triples := extract.Amounts(line)
	if len(triples) == 0 {
		return
	}
	qtys := extract.QuantityCandidates(line)

	minAmount := unitPrice.Mul(bareRatio)
	if minAmount.LessThan(minBareFloor) {
		minAmount = minBareFloor
	}
	var amounts []decimal.Decimal
	for _, a := range triples {
		if a.HasUnit && !a.HasCurrency {
			continue
		}
		if !a.HasCurrency && a.Value.LessThan(minAmount) {
			continue
		}
		amounts = append(amounts, a.Value)
	}
	if len(amounts) == 0 {
		return
	}

	// Pass 1: explicit quantity candidates against each amount.
	for _, q := range qtys {
		expected := q.Mul(unitPrice)
		for _, b := range amounts {
			err := b.Sub(expected).Abs()
			if !tol.withinTolerance(err, expected) {
				continue
			}
			if !ok || err.LessThan(errVal) {
				qty, amount, errVal, ok = q.Round(2), b, err, true
			}
		}
	}
	if ok {
		return
	}

	// Pass 2: infer the quantity from the amount itself.
	for _, b := range amounts {
		qInf := b.Div(unitPrice)
		if !qInf.IsPositive() {
			continue
		}
		err := b.Sub(qInf.Mul(unitPrice)).Abs()
		if !tol.withinTolerance(err, b) {
			continue
		}
		if !ok || err.LessThan(errVal) {
			qty, amount, errVal, ok = qInf.Round(2), b, err, true
		}
	}
	return
}

// PickQuantity is the softer fallback when ChooseLineAmount found no
// consistent pair. Cue-based candidates that are not the catalog code itself
// are ranked by closeness of candidate×unitPrice to an amount on the line;
// without cues the quantity is inferred from the last amount; without either
// the conservative default is 1.
func PickQuantity(line string, unitPrice decimal.Decimal, amounts []decimal.Decimal, normCode string) decimal.Decimal {
	var cands []decimal.Decimal
	for _, q := range extract.QuantityCandidates(line) {
		if normCode != "" && q.Round(0).String() == normCode {
			continue
		}
		cands = append(cands, q)
	}

	if len(cands) > 0 && len(amounts) > 0 {
		best := cands[0]
		bestErr := decimal.Decimal{}
		first := true
		for _, q := range cands {
			expected := q.Mul(unitPrice)
			for _, b := range amounts {
				err := b.Sub(expected).Abs()
				if first || err.LessThan(bestErr) {
					best, bestErr, first = q, err, false
				}
			}
		}
		return best
	}

	if len(cands) == 0 && len(amounts) > 0 && unitPrice.IsPositive() {
		q := amounts[len(amounts)-1].Div(unitPrice)
		if q.IsPositive() && q.LessThanOrEqual(maxQty) {
			return q.Round(2)
		}
	}
	return one
}

// SelectLineAmount picks the single representative amount for a line. With an
// expected value the closest amount wins; otherwise the last plausible amount
// on the line, falling back to the largest plausible one.
func SelectLineAmount(amounts []decimal.Decimal, expected *decimal.Decimal) (decimal.Decimal, bool) {
	if len(amounts) == 0 {
		return decimal.Zero, false
	}
	if expected != nil {
		best := amounts[0]
		bestErr := amounts[0].Sub(*expected).Abs()
		for _, b := range amounts[1:] {
			if err := b.Sub(*expected).Abs(); err.LessThan(bestErr) {
				best, bestErr = b, err
			}
		}
		return best, true
	}
	last := amounts[len(amounts)-1]
	if last.Abs().LessThanOrEqual(extract.MaxAmount) {
		return last, true
	}
	found := false
	var max decimal.Decimal
	for _, b := range amounts {
		if b.Abs().GreaterThan(extract.MaxAmount) {
			continue
		}
		if !found || b.GreaterThan(max) {
			max, found = b, true
		}
	}
	return max, found
}
