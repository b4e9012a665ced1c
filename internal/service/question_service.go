package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/cetlabs/cetexam-backend/internal/model"
	"github.com/cetlabs/cetexam-backend/internal/repository"
)

// Domain errors.
var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrUnknownCategory  = errors.New("category not registered")
	ErrNoCorrectOption  = errors.New("question needs at least one correct option")
)

// QuestionService manages the question bank.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	catRepo      *repository.CategoryRepository
	log          zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository, catRepo *repository.CategoryRepository, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		catRepo:      catRepo,
		log:          log.With().Str("component", "question_service").Logger(),
	}
}

// Create adds a question to the bank. The category must be registered and
// at least one option must be marked correct.
func (s *QuestionService) Create(ctx context.Context, req *model.CreateQuestionRequest) (*model.Question, error) {
	if err := s.checkCategory(ctx, req.Category); err != nil {
		return nil, err
	}
	if !hasCorrectOption(req.Options) {
		return nil, ErrNoCorrectOption
	}

	difficulty := req.DifficultyLevel
	if difficulty == 0 {
		difficulty = 1
	}

	q := &model.Question{
		Text:            req.Text,
		Category:        req.Category,
		Explanation:     req.Explanation,
		DifficultyLevel: difficulty,
	}
	if err := s.questionRepo.Create(ctx, q, req.Options); err != nil {
		return nil, err
	}

	s.log.Info().Str("question_id", q.ID.String()).Str("category", q.Category).Msg("question created")
	return q, nil
}

// GetByID retrieves a question with options.
func (s *QuestionService) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

// List retrieves questions, optionally filtered by category.
func (s *QuestionService) List(ctx context.Context, category string) ([]model.Question, error) {
	questions, err := s.questionRepo.List(ctx, category)
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions, nil
}

// Update applies the non-nil fields of the request. A non-nil Options slice
// replaces the stored options wholesale.
func (s *QuestionService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateQuestionRequest) (*model.Question, error) {
	q, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Category != nil && *req.Category != q.Category {
		if err := s.checkCategory(ctx, *req.Category); err != nil {
			return nil, err
		}
		q.Category = *req.Category
	}
	if req.Text != nil {
		q.Text = *req.Text
	}
	if req.Explanation != nil {
		q.Explanation = *req.Explanation
	}
	if req.DifficultyLevel != nil {
		q.DifficultyLevel = *req.DifficultyLevel
	}
	if req.Options != nil && !hasCorrectOption(req.Options) {
		return nil, ErrNoCorrectOption
	}

	if err := s.questionRepo.Update(ctx, q, req.Options); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

// Delete removes a question from the bank. Exams referencing it keep
// working: the reference simply drops out of their papers.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.questionRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrQuestionNotFound
	}
	s.log.Info().Str("question_id", id.String()).Msg("question deleted")
	return nil
}

func (s *QuestionService) checkCategory(ctx context.Context, key string) error {
	exists, err := s.catRepo.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUnknownCategory
	}
	return nil
}

func hasCorrectOption(options []model.OptionInput) bool {
	for _, o := range options {
		if o.IsCorrect {
			return true
		}
	}
	return false
}
