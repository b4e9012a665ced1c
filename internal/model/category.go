package model

import "time"

// Built-in subject categories. The registry is open: admins can add more,
// these four merely ship seeded and have dedicated recommendation copy.
const (
	CategoryReasoning        = "reasoning"
	CategoryEnglish          = "english"
	CategoryComputerConcepts = "computer_concepts"
	CategoryPython           = "python"
)

// Category is an entry in the subject category registry.
type Category struct {
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCategoryRequest is the payload for registering a category.
type CreateCategoryRequest struct {
	Key   string `json:"key" binding:"required,min=2,max=50"`
	Label string `json:"label" binding:"required,min=1,max=100"`
}

// UpdateCategoryRequest is the payload for renaming a category label.
type UpdateCategoryRequest struct {
	Label string `json:"label" binding:"required,min=1,max=100"`
}
