package service

import (
	"context"
	"errors"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/cetlabs/cetexam-backend/internal/model"
	"github.com/cetlabs/cetexam-backend/internal/repository"
)

// Domain errors.
var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already registered")
	ErrCategoryInUse    = errors.New("category still referenced by questions")
	ErrBadCategoryKey   = errors.New("category key must be lowercase snake_case")
)

// Keys look like "computer_concepts": lowercase words joined by underscores.
var categoryKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)

// CategoryService manages the subject category registry.
type CategoryService struct {
	catRepo *repository.CategoryRepository
	log     zerolog.Logger
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(catRepo *repository.CategoryRepository, log zerolog.Logger) *CategoryService {
	return &CategoryService{
		catRepo: catRepo,
		log:     log.With().Str("component", "category_service").Logger(),
	}
}

// List returns all registered categories.
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	cats, err := s.catRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []model.Category{}
	}
	return cats, nil
}

// Create registers a new category key.
func (s *CategoryService) Create(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error) {
	if !categoryKeyPattern.MatchString(req.Key) {
		return nil, ErrBadCategoryKey
	}

	exists, err := s.catRepo.Exists(ctx, req.Key)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrCategoryExists
	}

	cat := &model.Category{Key: req.Key, Label: req.Label}
	if err := s.catRepo.Create(ctx, cat); err != nil {
		return nil, err
	}

	s.log.Info().Str("category", cat.Key).Msg("category registered")
	return cat, nil
}

// UpdateLabel renames a category's display label. The key is immutable.
func (s *CategoryService) UpdateLabel(ctx context.Context, key, label string) error {
	updated, err := s.catRepo.UpdateLabel(ctx, key, label)
	if err != nil {
		return err
	}
	if !updated {
		return ErrCategoryNotFound
	}
	return nil
}

// Delete removes a category, refusing while questions still reference it.
func (s *CategoryService) Delete(ctx context.Context, key string) error {
	n, err := s.catRepo.QuestionCount(ctx, key)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrCategoryInUse
	}

	deleted, err := s.catRepo.Delete(ctx, key)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrCategoryNotFound
	}
	s.log.Info().Str("category", key).Msg("category deleted")
	return nil
}
