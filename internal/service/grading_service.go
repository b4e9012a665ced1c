package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cetlabs/cetexam-backend/internal/config"
	"github.com/cetlabs/cetexam-backend/internal/model"
	"github.com/cetlabs/cetexam-backend/internal/recommend"
)

// ErrExamHasNoQuestions is returned when grading an exam whose question
// list is empty (or whose references all dangle).
var ErrExamHasNoQuestions = errors.New("exam has no questions")

// UserGetter resolves a user, returning ErrUserNotFound when absent.
type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// ExamSource resolves an exam and its ordered question list. GetByID
// returns ErrExamNotFound when absent.
type ExamSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	Questions(ctx context.Context, examID uuid.UUID) ([]model.Question, error)
}

// ResultStore persists a graded result graph atomically.
type ResultStore interface {
	CreateGraded(ctx context.Context, g *model.GradedResult) error
}

// GradingService runs the scoring pipeline: it grades a submission, builds
// category aggregates and recommendations, and persists the whole graph in
// one transaction. Every submission creates a fresh result; grading the
// same answers twice yields two results.
type GradingService struct {
	users   UserGetter
	exams   ExamSource
	options OptionLister
	results ResultStore
	engine  *recommend.Engine
	rdb     *redis.Client
	log     zerolog.Logger
}

// NewGradingService creates a new GradingService. rdb may be nil; the
// graded-event publication is then skipped.
func NewGradingService(
	users UserGetter,
	exams ExamSource,
	options OptionLister,
	results ResultStore,
	engine *recommend.Engine,
	rdb *redis.Client,
	log zerolog.Logger,
) *GradingService {
	return &GradingService{
		users:   users,
		exams:   exams,
		options: options,
		results: results,
		engine:  engine,
		rdb:     rdb,
		log:     log.With().Str("component", "grading_service").Logger(),
	}
}

// categoryTally accumulates per-category counts during the grading pass.
type categoryTally struct {
	total   int
	correct int
}

// Grade scores a submission against the exam's stored question order.
// Answers map question ids to selected option ids; questions missing from
// the map are scored incorrect with a nil selection. Questions the exam
// references but the bank no longer holds are skipped, shrinking the
// denominator.
func (s *GradingService) Grade(ctx context.Context, userID, examID uuid.UUID, answers map[string]string) (*model.GradedResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}

	questions, err := s.exams.Questions(ctx, examID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrExamHasNoQuestions
	}

	var (
		correctCount  int
		resultAnswers = make([]model.ResultAnswer, 0, len(questions))
		outcomes      = make([]recommend.QuestionOutcome, 0, len(questions))
		tallies       = make(map[string]*categoryTally)
		catOrder      []string
	)

	for _, q := range questions {
		opts, err := s.options.ListOptions(ctx, q.ID)
		if err != nil {
			return nil, err
		}

		// First option flagged correct wins; multi-correct data is a
		// storage anomaly and the tie-break is storage order.
		var correctOption *string
		for i := range opts {
			if opts[i].IsCorrect {
				correctOption = &opts[i].OptionID
				break
			}
		}

		var selected *string
		isCorrect := false
		if sel, answered := answers[q.ID.String()]; answered {
			selected = &sel
			isCorrect = correctOption != nil && sel == *correctOption
		}

		if isCorrect {
			correctCount++
		}

		tally, seen := tallies[q.Category]
		if !seen {
			tally = &categoryTally{}
			tallies[q.Category] = tally
			catOrder = append(catOrder, q.Category)
		}
		tally.total++
		if isCorrect {
			tally.correct++
		}

		resultAnswers = append(resultAnswers, model.ResultAnswer{
			QuestionID:     q.ID,
			SelectedOption: selected,
			IsCorrect:      isCorrect,
		})
		outcomes = append(outcomes, recommend.QuestionOutcome{
			Correct:     isCorrect,
			Explanation: q.Explanation,
		})
	}

	var score float64
	if len(questions) > 0 {
		score = float64(correctCount) / float64(len(questions)) * 100
	}

	catScores := make([]model.CategoryScore, 0, len(catOrder))
	recScores := make([]recommend.CategoryScore, 0, len(catOrder))
	for _, cat := range catOrder {
		t := tallies[cat]
		var pct float64
		if t.total > 0 {
			pct = float64(t.correct) / float64(t.total) * 100
		}
		catScores = append(catScores, model.CategoryScore{Category: cat, Score: pct})
		recScores = append(recScores, recommend.CategoryScore{Category: cat, Score: pct})
	}

	set := s.engine.Build(recScores, outcomes)

	graded := &model.GradedResult{
		Result: model.Result{
			UserID:   user.ID,
			ExamID:   exam.ID,
			Score:    score,
			MaxScore: 100,
		},
		Answers:         resultAnswers,
		CategoryScores:  catScores,
		Recommendations: set.Flatten(),
	}

	if err := s.results.CreateGraded(ctx, graded); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("result_id", graded.ID.String()).
		Str("user_id", user.ID.String()).
		Str("exam_id", exam.ID.String()).
		Float64("score", score).
		Msg("submission graded")

	s.publishGraded(ctx, graded)
	return graded, nil
}

// publishGraded notifies the admin monitor channel. Best effort: a failed
// publish never fails the grade.
func (s *GradingService) publishGraded(ctx context.Context, g *model.GradedResult) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(model.ResultGradedEvent{
		ResultID:    g.ID,
		UserID:      g.UserID,
		ExamID:      g.ExamID,
		Score:       g.Score,
		MaxScore:    g.MaxScore,
		CompletedAt: g.CompletedAt,
	})
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.ResultMonitorChannel(), payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("result_id", g.ID.String()).Msg("graded event publish failed")
	}
}
