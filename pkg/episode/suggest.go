package episode

import (
	"sort"

	"github.com/hbollon/go-edlib"
)

// Suggestion pairs an allowed title with its best similarity score against
// the detected OCR text.
type Suggestion struct {
	Title string
	Score float64
}

// Suggest ranks the allowed titles by Jaro-Winkler similarity against the
// detected OCR text and returns the top n. It is used to give a human
// something to work with when exact matching failed: the suggestions ride
// along in the manual-input request context and never auto-resolve a
// match.
func Suggest(allowed []Entry, detected []string, n int) []Suggestion {
	if len(allowed) == 0 || len(detected) == 0 || n <= 0 {
		return nil
	}

	folded := make([]string, 0, len(detected))
	for _, d := range detected {
		if f := Fold(d); f != "" {
			folded = append(folded, f)
		}
	}

	suggestions := make([]Suggestion, 0, len(allowed))
	for _, e := range allowed {
		key := Fold(e.Title)
		best := 0.0
		for _, d := range folded {
			if score := float64(edlib.JaroWinklerSimilarity(key, d)); score > best {
				best = score
			}
		}
		suggestions = append(suggestions, Suggestion{Title: e.Title, Score: best})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	if len(suggestions) > n {
		suggestions = suggestions[:n]
	}
	return suggestions
}
