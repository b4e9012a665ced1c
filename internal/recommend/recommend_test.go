package recommend

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cetlabs/cetexam-backend/internal/model"
)

type stubExtractor struct {
	concepts []string
}

func (s stubExtractor) MissedConcepts(_ []QuestionOutcome) []string {
	return s.concepts
}

func TestBuildOverallBands(t *testing.T) {
	tests := []struct {
		name   string
		scores []CategoryScore
		want   string
	}{
		{
			name:   "excellent at 90",
			scores: []CategoryScore{{Category: model.CategoryPython, Score: 90}},
			want:   "Excellent performance! Consider exploring advanced topics.",
		},
		{
			name:   "good at 70",
			scores: []CategoryScore{{Category: model.CategoryPython, Score: 70}},
			want:   "Good performance. Focus on the categories where you scored lower.",
		},
		{
			name:   "average at 50",
			scores: []CategoryScore{{Category: model.CategoryPython, Score: 50}},
			want:   "Average performance. Review the explanations for questions you got wrong.",
		},
		{
			name:   "needs practice below 50",
			scores: []CategoryScore{{Category: model.CategoryPython, Score: 49.9}},
			want:   "You need more practice. Focus on understanding the basic concepts first.",
		},
		{
			name: "mean of categories lands on band boundary",
			scores: []CategoryScore{
				{Category: model.CategoryReasoning, Score: 95},
				{Category: model.CategoryEnglish, Score: 85},
			},
			want: "Excellent performance! Consider exploring advanced topics.",
		},
		{
			name:   "no categories means zero",
			scores: nil,
			want:   "You need more practice. Focus on understanding the basic concepts first.",
		},
	}

	engine := NewEngine(stubExtractor{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := engine.Build(tt.scores, nil)
			require.NotEmpty(t, set.Overall)
			require.Equal(t, tt.want, set.Overall[0])
		})
	}
}

func TestBuildCategoryBands(t *testing.T) {
	engine := NewEngine(stubExtractor{})

	set := engine.Build([]CategoryScore{
		{Category: model.CategoryReasoning, Score: 40},
		{Category: model.CategoryEnglish, Score: 60},
		{Category: model.CategoryComputerConcepts, Score: 70},
	}, nil)

	require.Len(t, set.Categories, 3)

	reasoning := set.Categories[0]
	require.Equal(t, model.CategoryReasoning, reasoning.Category)
	require.Equal(t, []string{
		"Review the fundamentals of Reasoning.",
		"Practice logical reasoning puzzles and pattern recognition exercises.",
	}, reasoning.Lines)

	english := set.Categories[1]
	require.Equal(t, []string{
		"You have a basic understanding of English. Practice more complex problems.",
		"Practice reading comprehension and sentence correction exercises.",
	}, english.Lines)

	computer := set.Categories[2]
	require.Equal(t, []string{
		"You have a good grasp of Computer Concepts. Focus on advanced topics.",
		"Explore cloud computing, cybersecurity, and emerging technologies.",
	}, computer.Lines)
}

func TestBuildUnknownCategoryGetsGenericAdviceOnly(t *testing.T) {
	engine := NewEngine(stubExtractor{})

	set := engine.Build([]CategoryScore{{Category: "data_science", Score: 30}}, nil)

	require.Len(t, set.Categories, 1)
	require.Equal(t, []string{"Review the fundamentals of Data Science."}, set.Categories[0].Lines)
}

func TestBuildAppendsMissedConcepts(t *testing.T) {
	engine := NewEngine(stubExtractor{concepts: []string{"Recursion", "Slicing"}})

	set := engine.Build([]CategoryScore{{Category: model.CategoryPython, Score: 95}}, nil)

	require.Len(t, set.Overall, 2)
	require.Equal(t, "Focus on these frequently missed concepts: Recursion, Slicing.", set.Overall[1])
}

func TestBuildNoMissedConceptsNoExtraLine(t *testing.T) {
	engine := NewEngine(stubExtractor{})

	set := engine.Build([]CategoryScore{{Category: model.CategoryPython, Score: 95}}, nil)

	require.Len(t, set.Overall, 1)
}

func TestBuildConcurrentUse(t *testing.T) {
	engine := NewEngine(nil)
	scores := []CategoryScore{
		{Category: model.CategoryComputerConcepts, Score: 40},
		{Category: "data_science", Score: 80},
	}
	outcomes := []QuestionOutcome{
		{Correct: false, Explanation: "indexes speed up lookups"},
		{Correct: false, Explanation: "composite indexes order their columns"},
	}
	want := engine.Build(scores, outcomes)

	got := make([]Set, 16)
	var wg sync.WaitGroup
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = engine.Build(scores, outcomes)
		}(i)
	}
	wg.Wait()

	for _, set := range got {
		require.Equal(t, want, set)
	}
}

func TestFlattenOrdersOverallFirst(t *testing.T) {
	set := Set{
		Overall: []string{"overall line"},
		Categories: []CategoryAdvice{
			{Category: model.CategoryPython, Lines: []string{"a", "b"}},
			{Category: model.CategoryEnglish, Lines: []string{"c"}},
		},
	}

	recs := set.Flatten()
	require.Len(t, recs, 4)
	require.Nil(t, recs[0].Category)
	require.Equal(t, "overall line", recs[0].Text)
	require.Equal(t, model.CategoryPython, *recs[1].Category)
	require.Equal(t, "a", recs[1].Text)
	require.Equal(t, model.CategoryEnglish, *recs[3].Category)
}
