package expense

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// suggestionThreshold is the minimum similarity score (0-100) for a category
// to appear in suggestions.
const suggestionThreshold = 40

// CategorySuggestion pairs a taxonomy entry with its similarity score.
type CategorySuggestion struct {
	Category CategoryInfo `json:"category"`
	Score    int          `json:"score"`
}

// Suggester ranks taxonomy categories against free text. It backs the
// clarification round-trip: when a parse is missing a category the bot asks
// which one applies, and the user's answer ("fod", "transprt", ...) is
// matched here instead of the strict keyword classifier.
type Suggester struct {
	taxonomy *Taxonomy
}

// NewSuggester builds a suggester over the given taxonomy.
func NewSuggester(taxonomy *Taxonomy) *Suggester {
	return &Suggester{taxonomy: taxonomy}
}

// Suggest returns up to limit categories ranked by similarity to the query,
// highest score first. Entries scoring below the threshold are dropped. Equal
// scores keep taxonomy declaration order.
func (s *Suggester) Suggest(query string, limit int) []CategorySuggestion {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var results []CategorySuggestion
	for _, entry := range s.taxonomy.entries {
		score := similarity(query, strings.ToLower(entry.Name))
		if idScore := similarity(query, string(entry.ID)); idScore > score {
			score = idScore
		}
		for _, kw := range entry.Keywords {
			if kwScore := similarity(query, kw); kwScore > score {
				score = kwScore
			}
		}

		if score >= suggestionThreshold {
			results = append(results, CategorySuggestion{Category: entry, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results
}

// similarity scores two strings on a 0-100 scale, combining containment,
// Levenshtein distance and subsequence ranking.
func similarity(query, candidate string) int {
	if query == candidate {
		return 100
	}

	if strings.Contains(candidate, query) {
		return 75 + 25*len(query)/len(candidate)
	}
	if strings.Contains(query, candidate) {
		return 75 + 25*len(candidate)/len(query)
	}

	maxLen := len(query)
	if len(candidate) > maxLen {
		maxLen = len(candidate)
	}
	if maxLen == 0 {
		return 0
	}

	distance := fuzzy.LevenshteinDistance(query, candidate)
	score := 100 * (maxLen - distance) / maxLen

	// Fall back to the fuzzy library's subsequence rank (lower is better).
	if rank := fuzzy.RankMatch(query, candidate); rank >= 0 && rank < len(candidate) {
		if sub := 60 - rank*40/len(candidate); sub > score {
			score = sub
		}
	}

	if score < 0 {
		return 0
	}
	return score
}
