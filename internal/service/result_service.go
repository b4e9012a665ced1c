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

// ErrResultNotFound is returned when a result id does not resolve.
var ErrResultNotFound = errors.New("result not found")

// ResultService reads stored results. Results are write-once; all writes
// happen through the grading pipeline.
type ResultService struct {
	resultRepo *repository.ResultRepository
	log        zerolog.Logger
}

// NewResultService creates a new ResultService.
func NewResultService(resultRepo *repository.ResultRepository, log zerolog.Logger) *ResultService {
	return &ResultService{
		resultRepo: resultRepo,
		log:        log.With().Str("component", "result_service").Logger(),
	}
}

// GetDetail retrieves a result with answers, category scores and
// recommendations.
func (s *ResultService) GetDetail(ctx context.Context, id uuid.UUID) (*model.ResultDetail, error) {
	detail, err := s.resultRepo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	return detail, nil
}

// ListByUser retrieves a user's result summaries, newest first.
func (s *ResultService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Result, error) {
	results, err := s.resultRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []model.Result{}
	}
	return results, nil
}
