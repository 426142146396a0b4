package episode

import (
	"regexp"
	"strings"
)

// neverTitleize lists words kept lowercase in title case, mostly articles
// and prepositions. The first word of a title is always capitalized.
var neverTitleize = map[string]bool{
	"a": true, "an": true, "the": true, "for": true, "and": true,
	"nor": true, "but": true, "or": true, "yet": true, "so": true,
	"at": true, "around": true, "by": true, "after": true, "along": true,
	"from": true, "of": true, "on": true, "to": true, "with": true,
	"in": true,
}

var trailingNumberPattern = regexp.MustCompile(`^\d+$`)

// Titleize title-cases an episode name, leaving articles and prepositions
// lowercase except as the first word.
func Titleize(title string) string {
	words := strings.Fields(title)
	if len(words) == 0 {
		return ""
	}
	out := make([]string, len(words))
	out[0] = capitalize(words[0])
	for i, word := range words[1:] {
		if neverTitleize[strings.ToLower(word)] {
			out[i+1] = word
		} else {
			out[i+1] = capitalize(word)
		}
	}
	return strings.Join(out, " ")
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

// ApplyParts rewrites titles like "Foo 1" / "Foo 2" to "Foo Part 1" /
// "Foo Part 2" when several episodes share the same multi-word prefix and
// end in different numbers. Single occurrences are left alone, as are
// titles that already contain "part".
func ApplyParts(episodes []EpInfo) []EpInfo {
	groups := make(map[string][]int)
	for i, e := range episodes {
		words := strings.Split(e.Title, " ")
		if len(words) < 2 {
			continue
		}
		last := words[len(words)-1]
		prefix := strings.Join(words[:len(words)-1], " ")
		if !trailingNumberPattern.MatchString(last) {
			continue
		}
		if containsWord(prefix, "part") {
			continue
		}
		groups[prefix] = append(groups[prefix], i)
	}

	out := make([]EpInfo, len(episodes))
	copy(out, episodes)
	for prefix, idxs := range groups {
		if len(idxs) < 2 {
			continue
		}
		for _, i := range idxs {
			words := strings.Split(out[i].Title, " ")
			partNum := words[len(words)-1]
			out[i] = out[i].WithTitle(prefix + " Part " + partNum)
		}
	}
	return out
}

func containsWord(s, word string) bool {
	for _, w := range strings.Split(strings.ToLower(s), " ") {
		if w == word {
			return true
		}
	}
	return false
}
