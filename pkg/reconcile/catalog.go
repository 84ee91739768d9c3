// Package reconcile cross-checks extracted invoice lines against a price
// catalog: it selects the most self-consistent (quantity, amount) pair per
// line, computes expected totals and classifies the deviation.
package reconcile

import (
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"factuurcheck/pkg/numeric"
)

// ErrNoCatalog is returned by callers that need a catalog before they can
// reconcile anything.
var ErrNoCatalog = errors.New("no catalog loaded")

// Entry is one price-book row as loaded.
type Entry struct {
	Code        string
	UnitPrice   decimal.Decimal
	Description string
}

// Catalog indexes price-book entries by normalized code. Multiple entries may
// normalize to the same code (multi-part tasks); their unit prices are summed.
// That is an authoring convention of the price book, not something validated
// here.
type Catalog struct {
	byNorm map[string][]Entry
}

// NewCatalog builds the lookup. Entries whose code holds no digits are
// dropped.
func NewCatalog(entries []Entry) *Catalog {
	c := &Catalog{byNorm: make(map[string][]Entry, len(entries))}
	for _, e := range entries {
		norm := numeric.NormalizeCode(e.Code)
		if norm == "" {
			continue
		}
		c.byNorm[norm] = append(c.byNorm[norm], e)
	}
	return c
}

// Has reports whether a normalized code exists in the catalog.
func (c *Catalog) Has(norm string) bool {
	_, ok := c.byNorm[norm]
	return ok
}

// UnitPrice returns the combined unit price for a normalized code.
func (c *Catalog) UnitPrice(norm string) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range c.byNorm[norm] {
		sum = sum.Add(e.UnitPrice)
	}
	return sum
}

// Description joins the distinct descriptions for a normalized code.
func (c *Catalog) Description(norm string) string {
	var parts []string
	seen := map[string]struct{}{}
	for _, e := range c.byNorm[norm] {
		if _, ok := seen[e.Description]; ok {
			continue
		}
		seen[e.Description] = struct{}{}
		parts = append(parts, e.Description)
	}
	return strings.Join(parts, ", ")
}

// Codes returns all normalized codes, sorted.
func (c *Catalog) Codes() []string {
	out := make([]string, 0, len(c.byNorm))
	for k := range c.byNorm {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len is the number of distinct normalized codes.
func (c *Catalog) Len() int {
	return len(c.byNorm)
}

// Matcher decides which catalog code, if any, an extracted code refers to.
// Exact matching is the only strategy enabled in this version; a
// similarity-based matcher can be swapped in without touching reconciliation.
type Matcher interface {
	Match(code string, cat *Catalog) (string, bool)
}

// ExactMatcher matches on normalized-code equality only.
type ExactMatcher struct{}

func (ExactMatcher) Match(code string, cat *Catalog) (string, bool) {
	if cat.Has(code) {
		return code, true
	}
	return "", false
}
