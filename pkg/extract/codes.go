package extract

import (
	"regexp"
	"sort"
	"strings"

	"factuurcheck/pkg/numeric"
)

// codeRE matches catalog-code-shaped digit runs: a digit, then at least four
// characters of digits/space/hyphen/period, then a digit. Codes printed as
// "12 34-56.78" are caught in one piece.
var codeRE = regexp.MustCompile(`[0-9][0-9\s\-.]{4,}[0-9]`)

// Codes scans text for catalog-code-shaped runs and returns the sorted set of
// normalized codes (digits only, leading zeros stripped) whose length is 5–12.
func Codes(text string) []string {
	seen := map[string]struct{}{}
	for _, raw := range codeRE.FindAllString(text, -1) {
		norm := numeric.NormalizeCode(raw)
		if len(norm) < 5 || len(norm) > 12 {
			continue
		}
		seen[norm] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// LineCodes returns the normalized codes present on a single line. Used to
// flag lines that carry no code at all.
func LineCodes(line string) []string {
	return Codes(line)
}

// LineContainsCode reports whether a line carries the given normalized code.
// The digits-only form of the line is searched so embedded spaces, hyphens and
// periods inside the printed code cannot hide it.
func LineContainsCode(line, normCode string) bool {
	if normCode == "" {
		return false
	}
	return strings.Contains(numeric.Digits(line), normCode)
}
