// Package scoring ranks articles by weighted keyword matches.
package scoring

import "strings"

const (
	// MaxOccurrences caps how many matches of one keyword count towards the score.
	MaxOccurrences = 3
	// DefaultTitleMultiplier is the flat bonus factor for keywords found in the title.
	DefaultTitleMultiplier = 2

	// ArchiveThreshold is the minimum score for an article to be archived.
	ArchiveThreshold = 10
	// BlogThreshold is the minimum score for an article to become a draft candidate.
	BlogThreshold = 70
)

// Weight binds a keyword to its score contribution.
type Weight struct {
	Keyword string
	Value   int
}

// Table is a named weighted-keyword table. Prefilter lists the keywords of
// which at least one must appear in a feed title before the entry is fetched.
type Table struct {
	Name            string
	Weights         []Weight
	TitleMultiplier int
	Prefilter       []string
}

// Score sums weight*min(count,3) per keyword over title and body, plus a flat
// weight*multiplier bonus when the keyword also appears in the title.
func (t Table) Score(title, body string) int {
	titleLower := strings.ToLower(title)
	full := titleLower + " " + strings.ToLower(body)

	multiplier := t.TitleMultiplier
	if multiplier == 0 {
		multiplier = DefaultTitleMultiplier
	}

	score := 0
	for _, w := range t.Weights {
		if w.Value <= 0 || w.Keyword == "" {
			continue
		}
		kw := strings.ToLower(w.Keyword)
		count := strings.Count(full, kw)
		if count == 0 {
			continue
		}
		score += w.Value * min(count, MaxOccurrences)
		if strings.Contains(titleLower, kw) {
			score += w.Value * multiplier
		}
	}
	return score
}

// MatchesTitle reports whether the title contains any prefilter keyword.
// A table without prefilter keywords accepts every title.
func (t Table) MatchesTitle(title string) bool {
	if len(t.Prefilter) == 0 {
		return true
	}
	lower := strings.ToLower(title)
	for _, key := range t.Prefilter {
		if strings.Contains(lower, strings.ToLower(key)) {
			return true
		}
	}
	return false
}
