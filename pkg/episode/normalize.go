package episode

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold normalizes a title for matching: trims whitespace, lowercases,
// and strips diacritics so OCR variants of the same title compare equal.
func Fold(title string) string {
	return removeAccents(strings.ToLower(strings.TrimSpace(title)))
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// MatchTitle matches detected OCR text against the allowed episode entries
// by exact comparison of folded titles. A match is accepted only when the
// intersection contains exactly one allowed title: zero or multiple
// candidates both report no match, since an ambiguous hit must never be
// auto-resolved.
func MatchTitle(allowed []Entry, detected []string) (Entry, bool) {
	byTitle := make(map[string]Entry, len(allowed))
	for _, e := range allowed {
		byTitle[Fold(e.Title)] = e
	}

	seen := make(map[string]bool, len(detected))
	var hits []string
	for _, text := range detected {
		key := Fold(text)
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, ok := byTitle[key]; ok {
			hits = append(hits, key)
		}
	}

	if len(hits) != 1 {
		return Entry{}, false
	}
	return byTitle[hits[0]], true
}
