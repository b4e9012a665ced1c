package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cetlabs/cetexam-backend/internal/config"
	"github.com/cetlabs/cetexam-backend/internal/model"
)

// Domain errors.
var (
	ErrExamNotFound  = errors.New("exam not found")
	ErrExamNotActive = errors.New("exam is not active")
)

// ExamStore is the persistence surface ExamService needs.
type ExamStore interface {
	Create(ctx context.Context, e *model.Exam) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	List(ctx context.Context, activeOnly bool) ([]model.Exam, error)
	Update(ctx context.Context, e *model.Exam, questions []uuid.UUID, categories []string) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListQuestions(ctx context.Context, examID uuid.UUID) ([]model.Question, error)
}

// OptionLister loads a question's options in storage order.
type OptionLister interface {
	ListOptions(ctx context.Context, questionID uuid.UUID) ([]model.Option, error)
}

// CategoryChecker reports whether a category key is registered.
type CategoryChecker interface {
	Exists(ctx context.Context, key string) (bool, error)
}

// ExamService handles exam business logic and the Redis paper cache.
type ExamService struct {
	exams   ExamStore
	options OptionLister
	cats    CategoryChecker
	rdb     *redis.Client
	cfg     *config.Config
	log     zerolog.Logger
}

// NewExamService creates a new ExamService. rdb may be nil; the paper cache
// is then skipped entirely.
func NewExamService(
	exams ExamStore,
	options OptionLister,
	cats CategoryChecker,
	rdb *redis.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		exams:   exams,
		options: options,
		cats:    cats,
		rdb:     rdb,
		cfg:     cfg,
		log:     log.With().Str("component", "exam_service").Logger(),
	}
}

// Create stores a new exam. Unknown categories are rejected; question ids
// that do not resolve to bank questions are dropped silently.
func (s *ExamService) Create(ctx context.Context, req *model.CreateExamRequest) (*model.Exam, error) {
	if err := s.checkCategories(ctx, req.Categories); err != nil {
		return nil, err
	}

	exam := &model.Exam{
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		IsActive:        true,
		Categories:      req.Categories,
		QuestionIDs:     req.Questions,
	}
	if err := s.exams.Create(ctx, exam); err != nil {
		return nil, err
	}

	s.log.Info().Str("exam_id", exam.ID.String()).Int("questions", len(exam.QuestionIDs)).Msg("exam created")
	return exam, nil
}

// GetByID retrieves an exam definition.
func (s *ExamService) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	return exam, nil
}

// List retrieves exams; students only see active ones.
func (s *ExamService) List(ctx context.Context, activeOnly bool) ([]model.Exam, error) {
	exams, err := s.exams.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if exams == nil {
		exams = []model.Exam{}
	}
	return exams, nil
}

// Questions returns the exam's questions in stored order. Dangling question
// references are absent from the slice.
func (s *ExamService) Questions(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	return s.exams.ListQuestions(ctx, examID)
}

// Update applies the non-nil fields of the request and drops any cached
// paper so takers never see a stale one.
func (s *ExamService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateExamRequest) (*model.Exam, error) {
	exam, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Categories != nil {
		if err := s.checkCategories(ctx, req.Categories); err != nil {
			return nil, err
		}
	}
	if req.Title != nil {
		exam.Title = *req.Title
	}
	if req.Description != nil {
		exam.Description = *req.Description
	}
	if req.DurationMinutes != nil {
		exam.DurationMinutes = *req.DurationMinutes
	}
	if req.IsActive != nil {
		exam.IsActive = *req.IsActive
	}

	if err := s.exams.Update(ctx, exam, req.Questions, req.Categories); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	s.invalidatePaper(ctx, id)
	return exam, nil
}

// Delete removes an exam and its cached paper.
func (s *ExamService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.exams.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrExamNotFound
	}
	s.invalidatePaper(ctx, id)
	s.log.Info().Str("exam_id", id.String()).Msg("exam deleted")
	return nil
}

// GetPaper returns the taker-facing view of an active exam: questions in
// stored order, options without correctness flags, no explanations. Papers
// are cached in Redis for PaperCacheTTL.
func (s *ExamService) GetPaper(ctx context.Context, examID uuid.UUID) (*model.ExamPaper, error) {
	if cached := s.cachedPaper(ctx, examID); cached != nil {
		return cached, nil
	}

	exam, err := s.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if !exam.IsActive {
		return nil, ErrExamNotActive
	}

	questions, err := s.exams.ListQuestions(ctx, examID)
	if err != nil {
		return nil, err
	}

	paper := &model.ExamPaper{
		ExamID:          exam.ID,
		Title:           exam.Title,
		Description:     exam.Description,
		DurationMinutes: exam.DurationMinutes,
		Questions:       make([]model.PaperQuestion, 0, len(questions)),
	}
	for _, q := range questions {
		opts, err := s.options.ListOptions(ctx, q.ID)
		if err != nil {
			return nil, err
		}
		pq := model.PaperQuestion{
			ID:              q.ID,
			Text:            q.Text,
			Category:        q.Category,
			DifficultyLevel: q.DifficultyLevel,
			Options:         make([]model.PaperOption, 0, len(opts)),
		}
		for _, o := range opts {
			pq.Options = append(pq.Options, model.PaperOption{OptionID: o.OptionID, Text: o.Text})
		}
		paper.Questions = append(paper.Questions, pq)
	}

	s.cachePaper(ctx, paper)
	return paper, nil
}

func (s *ExamService) cachedPaper(ctx context.Context, examID uuid.UUID) *model.ExamPaper {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, config.CacheKey.ExamPaperKey(examID.String())).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("paper cache read failed")
		}
		return nil
	}
	var paper model.ExamPaper
	if err := json.Unmarshal([]byte(raw), &paper); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("paper cache decode failed")
		return nil
	}
	return &paper
}

func (s *ExamService) cachePaper(ctx context.Context, paper *model.ExamPaper) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(paper)
	if err != nil {
		return
	}
	key := config.CacheKey.ExamPaperKey(paper.ExamID.String())
	if err := s.rdb.Set(ctx, key, raw, s.cfg.PaperCacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("exam_id", paper.ExamID.String()).Msg("paper cache write failed")
	}
}

func (s *ExamService) invalidatePaper(ctx context.Context, examID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, config.CacheKey.ExamPaperKey(examID.String())).Err(); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("paper cache invalidation failed")
	}
}

func (s *ExamService) checkCategories(ctx context.Context, categories []string) error {
	for _, cat := range categories {
		exists, err := s.cats.Exists(ctx, cat)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s", ErrUnknownCategory, cat)
		}
	}
	return nil
}
