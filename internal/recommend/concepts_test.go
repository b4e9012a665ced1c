package recommend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMissedConceptsCountsAcrossIncorrectQuestions(t *testing.T) {
	ex := NewFrequencyExtractor()

	concepts := ex.MissedConcepts([]QuestionOutcome{
		{Correct: false, Explanation: "Recursion needs a base case"},
		{Correct: false, Explanation: "Without recursion the stack unwinds"},
		{Correct: true, Explanation: "Recursion recursion recursion"}, // correct, ignored
	})

	require.Equal(t, []string{"Recursion"}, concepts)
}

func TestMissedConceptsSkipsShortAndNonAlphaWords(t *testing.T) {
	ex := NewFrequencyExtractor()

	// "loop" is 4 chars, "for-each" contains a hyphen, "python3" a digit.
	concepts := ex.MissedConcepts([]QuestionOutcome{
		{Correct: false, Explanation: "loop for-each python3 iterator"},
		{Correct: false, Explanation: "loop for-each python3 iterator"},
	})

	require.Equal(t, []string{"Iterator"}, concepts)
}

func TestMissedConceptsRequiresFrequencyAboveOne(t *testing.T) {
	ex := NewFrequencyExtractor()

	concepts := ex.MissedConcepts([]QuestionOutcome{
		{Correct: false, Explanation: "closure scope binding"},
	})

	require.Empty(t, concepts)
}

func TestMissedConceptsTopThreeMostFrequent(t *testing.T) {
	ex := NewFrequencyExtractor()

	concepts := ex.MissedConcepts([]QuestionOutcome{
		{Correct: false, Explanation: "alpha alpha alpha bravo bravo charlie charlie delta delta"},
		{Correct: false, Explanation: "bravo delta echoes"},
	})

	// alpha=3, bravo=3, delta=3, charlie=2, echoes=1. The three-count
	// words fill the top three in first-encounter order.
	require.Equal(t, []string{"Alpha", "Bravo", "Delta"}, concepts)
}

func TestMissedConceptsTieKeepsEncounterOrder(t *testing.T) {
	ex := NewFrequencyExtractor()

	concepts := ex.MissedConcepts([]QuestionOutcome{
		{Correct: false, Explanation: "zebra apple"},
		{Correct: false, Explanation: "zebra apple"},
	})

	require.Equal(t, []string{"Zebra", "Apple"}, concepts)
}

func TestMissedConceptsLowercasesBeforeCounting(t *testing.T) {
	ex := NewFrequencyExtractor()

	concepts := ex.MissedConcepts([]QuestionOutcome{
		{Correct: false, Explanation: "Pointer arithmetic"},
		{Correct: false, Explanation: "pointer dereference"},
	})

	require.Equal(t, []string{"Pointer"}, concepts)
}

func TestMissedConceptsAllCorrectYieldsNothing(t *testing.T) {
	ex := NewFrequencyExtractor()

	concepts := ex.MissedConcepts([]QuestionOutcome{
		{Correct: true, Explanation: "closure closure closure"},
		{Correct: true, Explanation: "closure closure closure"},
	})

	require.Empty(t, concepts)
}
