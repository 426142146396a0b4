package episode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// selectorPattern validates the overall shape of a selector string:
// "season:episode" terms separated by commas, where a term without a
// season reuses the last stated one and episode may be the wildcard "*".
var selectorPattern = regexp.MustCompile(`^(\d+):(\d+|\*)(,((\d+):)?(\d+|\*))*$`)

type selectorTerm struct {
	season   int
	episode  int
	wildcard bool
}

// Selector is a compiled set of (season, episode) pairs, built once from a
// "1:2,5,2:*" style selector string and read-only afterward.
type Selector struct {
	terms []selectorTerm
}

// ParseSelector compiles a selector string. An empty string yields an
// empty selector that contains nothing.
func ParseSelector(s string) (*Selector, error) {
	sel := &Selector{}
	if s == "" {
		return sel, nil
	}
	if !selectorPattern.MatchString(s) {
		return nil, fmt.Errorf("selector %q not in season:episode[,episode|,season:episode] format", s)
	}
	lastSeason := -1
	for _, part := range strings.Split(s, ",") {
		var epText string
		if strings.Contains(part, ":") {
			seasonText, rest, _ := strings.Cut(part, ":")
			n, err := strconv.Atoi(seasonText)
			if err != nil {
				return nil, fmt.Errorf("selector %q: bad season %q", s, seasonText)
			}
			lastSeason = n
			epText = rest
		} else {
			epText = part
		}
		term := selectorTerm{season: lastSeason}
		if epText == "*" {
			term.wildcard = true
		} else {
			n, err := strconv.Atoi(epText)
			if err != nil {
				return nil, fmt.Errorf("selector %q: bad episode %q", s, epText)
			}
			term.episode = n
		}
		sel.terms = append(sel.terms, term)
	}
	return sel, nil
}

// Contains reports whether the selector covers the given episode, either
// by an explicit (season, episode) term or a season wildcard.
func (s *Selector) Contains(season, episode int) bool {
	for _, t := range s.terms {
		if t.season != season {
			continue
		}
		if t.wildcard || t.episode == episode {
			return true
		}
	}
	return false
}

// ContainsEpisode reports whether the selector covers the given episode info.
func (s *Selector) ContainsEpisode(e EpInfo) bool {
	return s.Contains(e.Season, e.Episode)
}

// Intersect returns a selector containing the terms present in both s and
// other.
func (s *Selector) Intersect(other *Selector) *Selector {
	out := &Selector{}
	for _, t := range s.terms {
		for _, o := range other.terms {
			if t == o {
				out.terms = append(out.terms, t)
				break
			}
		}
	}
	return out
}

// Len returns the number of compiled terms.
func (s *Selector) Len() int {
	return len(s.terms)
}
