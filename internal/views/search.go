package views

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// searchFold decomposes compatibly and strips combining marks, so accented
// and ligature forms match their plain-ASCII spellings.
var searchFold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.M)))

// NormalizeForSearch reduces text to its searchable core: Unicode
// decomposition, mark stripping, lower-casing, and collapsing everything
// that is not a letter or digit into single spaces. Matching a query then
// only needs a substring test against the result.
func NormalizeForSearch(text string) string {
	folded, _, err := transform.String(searchFold, text)
	if err != nil {
		folded = text
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			pendingSpace = false
		} else {
			pendingSpace = true
		}
	}
	return b.String()
}

// MatchSearch reports the entries whose normalized text contains the
// normalized query. An empty or unmatchable query matches nothing.
func MatchSearch(entries []SearchEntry, query string) []SearchEntry {
	normalized := NormalizeForSearch(query)
	if normalized == "" {
		return nil
	}
	var out []SearchEntry
	for _, entry := range entries {
		if strings.Contains(entry.NormalizedText, normalized) {
			out = append(out, entry)
		}
	}
	return out
}
