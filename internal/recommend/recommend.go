package recommend

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cetlabs/cetexam-backend/internal/model"
)

// CategoryScore pairs a category key with its percentage score. Callers pass
// these in first-encounter order so the generated set is deterministic.
type CategoryScore struct {
	Category string
	Score    float64
}

// QuestionOutcome is one graded question as seen by the engine.
type QuestionOutcome struct {
	Correct     bool
	Explanation string
}

// CategoryAdvice groups the advice lines for a single category.
type CategoryAdvice struct {
	Category string
	Lines    []string
}

// Set is the full recommendation output for one graded exam attempt.
// Categories keeps the caller's order so persistence is stable.
type Set struct {
	Overall    []string
	Categories []CategoryAdvice
}

// Flatten converts the set into persistable rows: overall lines first with a
// nil category, then per-category lines in order.
func (s Set) Flatten() []model.Recommendation {
	recs := make([]model.Recommendation, 0, len(s.Overall))
	for _, text := range s.Overall {
		recs = append(recs, model.Recommendation{Text: text})
	}
	for _, ca := range s.Categories {
		cat := ca.Category
		for _, text := range ca.Lines {
			recs = append(recs, model.Recommendation{Category: &cat, Text: text})
		}
	}
	return recs
}

// categoryAdvice holds the canned per-band advice for the built-in subjects.
// Categories outside this table still get the generic band sentence.
var categoryAdvice = map[string][3]string{
	model.CategoryReasoning: {
		"Practice logical reasoning puzzles and pattern recognition exercises.",
		"Work on analytical reasoning and critical thinking problems.",
		"Challenge yourself with complex logical puzzles and advanced reasoning problems.",
	},
	model.CategoryEnglish: {
		"Focus on grammar rules and vocabulary building.",
		"Practice reading comprehension and sentence correction exercises.",
		"Work on advanced writing skills and complex comprehension passages.",
	},
	model.CategoryComputerConcepts: {
		"Study basic computer architecture and operating system concepts.",
		"Learn about networking concepts and database fundamentals.",
		"Explore cloud computing, cybersecurity, and emerging technologies.",
	},
	model.CategoryPython: {
		"Practice basic Python syntax and simple programming exercises.",
		"Study data structures and algorithms in Python.",
		"Learn advanced Python concepts like decorators, generators, and concurrent programming.",
	},
}

const (
	bandWeak = iota
	bandBasic
	bandStrong
)

// Engine turns category percentages and question outcomes into study advice.
// It holds no per-call state, so a single Engine serves concurrent grading.
type Engine struct {
	extractor ConceptExtractor
}

// NewEngine creates an Engine. A nil extractor falls back to the default
// frequency-based one.
func NewEngine(extractor ConceptExtractor) *Engine {
	if extractor == nil {
		extractor = FrequencyExtractor{}
	}
	return &Engine{extractor: extractor}
}

// titleCase builds a fresh caser per call; cases.Caser carries internal
// state and must not be shared between goroutines.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// Build generates the recommendation set for one graded attempt.
func (e *Engine) Build(scores []CategoryScore, outcomes []QuestionOutcome) Set {
	set := Set{Overall: []string{e.overallAssessment(scores)}}

	for _, cs := range scores {
		advice := CategoryAdvice{Category: cs.Category}

		readable := titleCase(strings.ReplaceAll(cs.Category, "_", " "))

		var band int
		switch {
		case cs.Score < 50:
			band = bandWeak
			advice.Lines = append(advice.Lines,
				fmt.Sprintf("Review the fundamentals of %s.", readable))
		case cs.Score < 70:
			band = bandBasic
			advice.Lines = append(advice.Lines,
				fmt.Sprintf("You have a basic understanding of %s. Practice more complex problems.", readable))
		default:
			band = bandStrong
			advice.Lines = append(advice.Lines,
				fmt.Sprintf("You have a good grasp of %s. Focus on advanced topics.", readable))
		}

		if canned, ok := categoryAdvice[cs.Category]; ok {
			advice.Lines = append(advice.Lines, canned[band])
		}

		set.Categories = append(set.Categories, advice)
	}

	if concepts := e.extractor.MissedConcepts(outcomes); len(concepts) > 0 {
		set.Overall = append(set.Overall,
			fmt.Sprintf("Focus on these frequently missed concepts: %s.", strings.Join(concepts, ", ")))
	}

	return set
}

func (e *Engine) overallAssessment(scores []CategoryScore) string {
	var avg float64
	if len(scores) > 0 {
		var sum float64
		for _, cs := range scores {
			sum += cs.Score
		}
		avg = sum / float64(len(scores))
	}

	switch {
	case avg >= 90:
		return "Excellent performance! Consider exploring advanced topics."
	case avg >= 70:
		return "Good performance. Focus on the categories where you scored lower."
	case avg >= 50:
		return "Average performance. Review the explanations for questions you got wrong."
	default:
		return "You need more practice. Focus on understanding the basic concepts first."
	}
}
