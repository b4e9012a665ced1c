package model

import (
	"time"

	"github.com/google/uuid"
)

// Result is the persisted record of one graded submission. It is created
// once per submission and never updated.
type Result struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	ExamID      uuid.UUID `json:"exam_id"`
	Score       float64   `json:"score"`
	MaxScore    float64   `json:"max_score"`
	CompletedAt time.Time `json:"completed_at"`
}

// ResultAnswer records the outcome of one question in a result.
// SelectedOption is nil for unanswered questions.
type ResultAnswer struct {
	QuestionID     uuid.UUID `json:"question_id"`
	SelectedOption *string   `json:"selected_option"`
	IsCorrect      bool      `json:"is_correct"`
}

// CategoryScore is the percentage scored within one category of a result.
type CategoryScore struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Recommendation is one feedback string attached to a result. Category is
// nil for overall recommendations.
type Recommendation struct {
	Category *string `json:"category,omitempty"`
	Text     string  `json:"text"`
}

// GradedResult is the full result graph the grading pipeline produces.
// The result store persists all of it in a single transaction.
type GradedResult struct {
	Result
	Answers         []ResultAnswer   `json:"answers"`
	CategoryScores  []CategoryScore  `json:"category_scores"`
	Recommendations []Recommendation `json:"recommendations"`
}

// RecommendationSet mirrors the wire shape of recommendations on a result:
// overall strings plus per-category lists.
type RecommendationSet struct {
	Overall    []string            `json:"overall"`
	ByCategory map[string][]string `json:"by_category"`
}

// ResultGradedEvent is published on the result monitor channel after each
// successful grade, and forwarded verbatim to admin monitor sockets.
type ResultGradedEvent struct {
	ResultID    uuid.UUID `json:"result_id"`
	UserID      uuid.UUID `json:"user_id"`
	ExamID      uuid.UUID `json:"exam_id"`
	Score       float64   `json:"score"`
	MaxScore    float64   `json:"max_score"`
	CompletedAt time.Time `json:"completed_at"`
}

// ResultDetail is the API representation of a stored result.
type ResultDetail struct {
	ID             uuid.UUID          `json:"id"`
	UserID         uuid.UUID          `json:"user_id"`
	ExamID         uuid.UUID          `json:"exam_id"`
	Score          float64            `json:"score"`
	MaxScore       float64            `json:"max_score"`
	CompletedAt    time.Time          `json:"completed_at"`
	Answers        map[string]*string `json:"answers"`
	CategoryScores map[string]float64 `json:"category_scores"`
	Recommendation RecommendationSet  `json:"recommendations"`
}
