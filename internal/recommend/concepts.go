package recommend

import (
	"sort"
	"strings"
	"unicode"
)

// ConceptExtractor names the concepts a student keeps getting wrong, from the
// outcomes of a graded attempt. Implementations must be deterministic for a
// given outcome order.
type ConceptExtractor interface {
	MissedConcepts(outcomes []QuestionOutcome) []string
}

// FrequencyExtractor surfaces recurring keywords from the explanations of
// incorrectly answered questions. A word counts as a keyword when it is
// longer than four characters and purely alphabetic; a concept is reported
// when its keyword appears in more than one missed explanation. The zero
// value is ready to use and safe for concurrent calls.
type FrequencyExtractor struct{}

// NewFrequencyExtractor creates the default extractor.
func NewFrequencyExtractor() FrequencyExtractor {
	return FrequencyExtractor{}
}

// MissedConcepts returns at most three title-cased concepts, most frequent
// first. Ties keep first-encounter order.
func (FrequencyExtractor) MissedConcepts(outcomes []QuestionOutcome) []string {
	counts := make(map[string]int)
	var order []string

	for _, o := range outcomes {
		if o.Correct {
			continue
		}
		for _, word := range strings.Fields(strings.ToLower(o.Explanation)) {
			if len(word) <= 4 || !isAlpha(word) {
				continue
			}
			if _, seen := counts[word]; !seen {
				order = append(order, word)
			}
			counts[word]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	var concepts []string
	for _, word := range order {
		if len(concepts) == 3 {
			break
		}
		if counts[word] > 1 {
			concepts = append(concepts, titleCase(word))
		}
	}
	return concepts
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return len(s) > 0
}
