package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam represents an exam definition: an ordered, named collection of
// question references with a duration and active flag.
type Exam struct {
	ID              uuid.UUID   `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	DurationMinutes int         `json:"duration_minutes"`
	IsActive        bool        `json:"is_active"`
	Categories      []string    `json:"categories"`
	QuestionIDs     []uuid.UUID `json:"questions"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// CreateExamRequest is the payload for creating an exam.
type CreateExamRequest struct {
	Title           string      `json:"title" binding:"required,min=3,max=255"`
	Description     string      `json:"description" binding:"required,max=4000"`
	DurationMinutes int         `json:"duration_minutes" binding:"required,min=1,max=480"`
	Questions       []uuid.UUID `json:"questions" binding:"required,min=1"`
	Categories      []string    `json:"categories" binding:"required,min=1,dive,min=2,max=50"`
}

// UpdateExamRequest is the payload for updating an exam. Non-nil Questions
// or Categories replace the stored lists wholesale.
type UpdateExamRequest struct {
	Title           *string     `json:"title" binding:"omitempty,min=3,max=255"`
	Description     *string     `json:"description" binding:"omitempty,max=4000"`
	DurationMinutes *int        `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	IsActive        *bool       `json:"is_active" binding:"omitempty"`
	Questions       []uuid.UUID `json:"questions" binding:"omitempty,min=1"`
	Categories      []string    `json:"categories" binding:"omitempty,min=1,dive,min=2,max=50"`
}

// PaperQuestion is a question as shown to a taker: no explanation, no
// correctness flags.
type PaperQuestion struct {
	ID              uuid.UUID     `json:"id"`
	Text            string        `json:"text"`
	Category        string        `json:"category"`
	DifficultyLevel int           `json:"difficulty_level"`
	Options         []PaperOption `json:"options"`
}

// ExamPaper is the taker-facing exam payload, cached in Redis.
type ExamPaper struct {
	ExamID          uuid.UUID       `json:"exam_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	DurationMinutes int             `json:"duration_minutes"`
	Questions       []PaperQuestion `json:"questions"`
}

// SubmitExamRequest is the payload for submitting answers for grading.
// Keys are question ids, values are selected option ids. The map may be
// empty or partial; unanswered questions are scored incorrect.
type SubmitExamRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}
