// Package compare centralizes the locale-aware string comparisons used by
// the ordering contracts. Two strategies exist:
//   - Base: case- and diacritic-insensitive, for display sorting (people,
//     organizations, titles).
//   - Label: case-insensitive, for tag labels and menu titles.
//
// Both are English-locale collations so repeated builds order identically
// regardless of host locale.
package compare

import (
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	mu        sync.Mutex
	baseColl  = collate.New(language.English, collate.IgnoreCase, collate.IgnoreDiacritics)
	labelColl = collate.New(language.English, collate.IgnoreCase)
)

// Base compares a and b ignoring case and diacritics.
func Base(a, b string) int {
	mu.Lock()
	defer mu.Unlock()
	return baseColl.CompareString(a, b)
}

// Label compares a and b ignoring case.
func Label(a, b string) int {
	mu.Lock()
	defer mu.Unlock()
	return labelColl.CompareString(a, b)
}
