package model

import (
	"time"

	"github.com/google/uuid"
)

// Question represents a question-bank entry with its options.
type Question struct {
	ID              uuid.UUID `json:"id"`
	Text            string    `json:"text"`
	Category        string    `json:"category"`
	Explanation     string    `json:"explanation"`
	DifficultyLevel int       `json:"difficulty_level"`
	Options         []Option  `json:"options,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Option is one selectable answer choice. OptionID is unique within its
// question and assigned positionally ("1", "2", ...) at write time.
type Option struct {
	OptionID  string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// PaperOption is an option as shown to an exam taker: no correctness flag.
type PaperOption struct {
	OptionID string `json:"id"`
	Text     string `json:"text"`
}

// OptionInput is one option in a question create/update payload.
type OptionInput struct {
	Text      string `json:"text" binding:"required,min=1,max=2000"`
	IsCorrect bool   `json:"is_correct"`
}

// CreateQuestionRequest is the payload for adding a question to the bank.
type CreateQuestionRequest struct {
	Text            string        `json:"text" binding:"required,min=1,max=4000"`
	Category        string        `json:"category" binding:"required,min=2,max=50"`
	Options         []OptionInput `json:"options" binding:"required,min=2,dive"`
	Explanation     string        `json:"explanation" binding:"required,min=1,max=4000"`
	DifficultyLevel int           `json:"difficulty_level" binding:"omitempty,min=1,max=3"`
}

// UpdateQuestionRequest is the payload for updating a question.
// A non-nil Options slice replaces the existing options wholesale.
type UpdateQuestionRequest struct {
	Text            *string       `json:"text" binding:"omitempty,min=1,max=4000"`
	Category        *string       `json:"category" binding:"omitempty,min=2,max=50"`
	Options         []OptionInput `json:"options" binding:"omitempty,min=2,dive"`
	Explanation     *string       `json:"explanation" binding:"omitempty,min=1,max=4000"`
	DifficultyLevel *int          `json:"difficulty_level" binding:"omitempty,min=1,max=3"`
}
