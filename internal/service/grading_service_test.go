package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cetlabs/cetexam-backend/internal/model"
	"github.com/cetlabs/cetexam-backend/internal/recommend"
)

type fakeUsers struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

type fakeExams struct {
	exam      *model.Exam
	questions []model.Question
}

func (f *fakeExams) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	if f.exam != nil && f.exam.ID == id {
		return f.exam, nil
	}
	return nil, ErrExamNotFound
}

func (f *fakeExams) Questions(_ context.Context, _ uuid.UUID) ([]model.Question, error) {
	return f.questions, nil
}

type fakeOptions struct {
	byQuestion map[uuid.UUID][]model.Option
}

func (f *fakeOptions) ListOptions(_ context.Context, questionID uuid.UUID) ([]model.Option, error) {
	return f.byQuestion[questionID], nil
}

type fakeResults struct {
	saved []*model.GradedResult
	err   error
}

func (f *fakeResults) CreateGraded(_ context.Context, g *model.GradedResult) error {
	if f.err != nil {
		return f.err
	}
	g.ID = uuid.New()
	g.CompletedAt = time.Now()
	copied := *g
	f.saved = append(f.saved, &copied)
	return nil
}

type gradingFixture struct {
	svc     *GradingService
	users   *fakeUsers
	exams   *fakeExams
	options *fakeOptions
	results *fakeResults
	userID  uuid.UUID
	examID  uuid.UUID
}

func newGradingFixture() *gradingFixture {
	userID := uuid.New()
	examID := uuid.New()

	f := &gradingFixture{
		users: &fakeUsers{users: map[uuid.UUID]*model.User{
			userID: {ID: userID, Email: "student@example.com", Role: model.RoleStudent},
		}},
		exams:   &fakeExams{exam: &model.Exam{ID: examID, Title: "CET Mock", IsActive: true}},
		options: &fakeOptions{byQuestion: map[uuid.UUID][]model.Option{}},
		results: &fakeResults{},
		userID:  userID,
		examID:  examID,
	}
	f.svc = NewGradingService(f.users, f.exams, f.options, f.results,
		recommend.NewEngine(nil), nil, zerolog.Nop())
	return f
}

// addQuestion registers a question with options; correctIdx < 0 means no
// option is flagged correct.
func (f *gradingFixture) addQuestion(category, explanation string, correctIdx int) uuid.UUID {
	id := uuid.New()
	f.exams.questions = append(f.exams.questions, model.Question{
		ID:          id,
		Text:        "q" + id.String()[:8],
		Category:    category,
		Explanation: explanation,
	})
	opts := make([]model.Option, 3)
	for i := range opts {
		opts[i] = model.Option{
			OptionID:  []string{"1", "2", "3"}[i],
			Text:      "option",
			IsCorrect: i == correctIdx,
		}
	}
	f.options.byQuestion[id] = opts
	return id
}

func TestGradeUnknownUser(t *testing.T) {
	f := newGradingFixture()
	f.addQuestion(model.CategoryPython, "basics", 0)

	_, err := f.svc.Grade(context.Background(), uuid.New(), f.examID, nil)

	require.ErrorIs(t, err, ErrUserNotFound)
	require.Empty(t, f.results.saved)
}

func TestGradeUnknownExam(t *testing.T) {
	f := newGradingFixture()
	f.addQuestion(model.CategoryPython, "basics", 0)

	_, err := f.svc.Grade(context.Background(), f.userID, uuid.New(), nil)

	require.ErrorIs(t, err, ErrExamNotFound)
	require.Empty(t, f.results.saved)
}

func TestGradeExamWithoutQuestions(t *testing.T) {
	f := newGradingFixture()

	_, err := f.svc.Grade(context.Background(), f.userID, f.examID, map[string]string{})

	require.ErrorIs(t, err, ErrExamHasNoQuestions)
	require.Empty(t, f.results.saved)
}

func TestGradeScoresAndAggregates(t *testing.T) {
	f := newGradingFixture()
	q1 := f.addQuestion(model.CategoryPython, "remember closures capture variables", 1)
	q2 := f.addQuestion(model.CategoryPython, "closures capture enclosing scope", 1)
	q3 := f.addQuestion(model.CategoryEnglish, "subject and verb must agree", 0)
	q4 := f.addQuestion(model.CategoryEnglish, "idioms resist literal translation", 0)

	graded, err := f.svc.Grade(context.Background(), f.userID, f.examID, map[string]string{
		q1.String(): "2", // correct
		q2.String(): "1", // wrong
		q3.String(): "1", // correct
		// q4 unanswered
	})
	require.NoError(t, err)

	require.Equal(t, 50.0, graded.Score)
	require.Equal(t, 100.0, graded.MaxScore)
	require.Equal(t, f.userID, graded.UserID)
	require.Equal(t, f.examID, graded.ExamID)

	// One answer row per exam question, in exam order.
	require.Len(t, graded.Answers, 4)
	require.Equal(t, q1, graded.Answers[0].QuestionID)
	require.True(t, graded.Answers[0].IsCorrect)
	require.Equal(t, "2", *graded.Answers[0].SelectedOption)
	require.False(t, graded.Answers[1].IsCorrect)
	require.Equal(t, "1", *graded.Answers[1].SelectedOption)
	require.True(t, graded.Answers[2].IsCorrect)
	require.Equal(t, q4, graded.Answers[3].QuestionID)
	require.False(t, graded.Answers[3].IsCorrect)
	require.Nil(t, graded.Answers[3].SelectedOption)

	// Category percentages in first-encounter order.
	require.Equal(t, []model.CategoryScore{
		{Category: model.CategoryPython, Score: 50},
		{Category: model.CategoryEnglish, Score: 50},
	}, graded.CategoryScores)

	// Persisted exactly once with the same graph.
	require.Len(t, f.results.saved, 1)
	require.Equal(t, graded.ID, f.results.saved[0].ID)
}

func TestGradeRecommendations(t *testing.T) {
	f := newGradingFixture()
	q1 := f.addQuestion(model.CategoryPython, "remember closures capture variables", 1)
	q2 := f.addQuestion(model.CategoryPython, "closures capture enclosing scope", 1)
	q3 := f.addQuestion(model.CategoryEnglish, "subject and verb must agree", 0)
	f.addQuestion(model.CategoryEnglish, "wrong closures often capture loop variables", 0) // left unanswered

	graded, err := f.svc.Grade(context.Background(), f.userID, f.examID, map[string]string{
		q1.String(): "2",
		q2.String(): "1",
		q3.String(): "1",
	})
	require.NoError(t, err)

	var overall, python, english []string
	for _, rec := range graded.Recommendations {
		switch {
		case rec.Category == nil:
			overall = append(overall, rec.Text)
		case *rec.Category == model.CategoryPython:
			python = append(python, rec.Text)
		case *rec.Category == model.CategoryEnglish:
			english = append(english, rec.Text)
		}
	}

	// Average of category percentages is 50 -> middle band, plus the
	// missed-concept line mined from the two wrong explanations.
	require.Equal(t, []string{
		"Average performance. Review the explanations for questions you got wrong.",
		"Focus on these frequently missed concepts: Closures, Capture.",
	}, overall)

	require.Equal(t, []string{
		"You have a basic understanding of Python. Practice more complex problems.",
		"Study data structures and algorithms in Python.",
	}, python)
	require.Equal(t, []string{
		"You have a basic understanding of English. Practice more complex problems.",
		"Practice reading comprehension and sentence correction exercises.",
	}, english)
}

func TestGradeNoCorrectOptionAlwaysIncorrect(t *testing.T) {
	f := newGradingFixture()
	q1 := f.addQuestion(model.CategoryReasoning, "pattern sequences repeat", -1)

	graded, err := f.svc.Grade(context.Background(), f.userID, f.examID, map[string]string{
		q1.String(): "1",
	})
	require.NoError(t, err)

	require.Equal(t, 0.0, graded.Score)
	require.False(t, graded.Answers[0].IsCorrect)
	require.Equal(t, "1", *graded.Answers[0].SelectedOption)
}

func TestGradeAnswerForUnknownQuestionIgnored(t *testing.T) {
	f := newGradingFixture()
	q1 := f.addQuestion(model.CategoryPython, "basics", 0)

	graded, err := f.svc.Grade(context.Background(), f.userID, f.examID, map[string]string{
		q1.String():         "1",
		uuid.New().String(): "3", // not part of the exam
	})
	require.NoError(t, err)

	require.Equal(t, 100.0, graded.Score)
	require.Len(t, graded.Answers, 1)
}

func TestGradePersistenceFailurePropagates(t *testing.T) {
	f := newGradingFixture()
	f.addQuestion(model.CategoryPython, "basics", 0)
	f.results.err = errors.New("connection reset")

	_, err := f.svc.Grade(context.Background(), f.userID, f.examID, map[string]string{})

	require.ErrorContains(t, err, "connection reset")
}

func TestGradeTwiceCreatesTwoResults(t *testing.T) {
	f := newGradingFixture()
	q1 := f.addQuestion(model.CategoryPython, "basics", 0)
	answers := map[string]string{q1.String(): "1"}

	first, err := f.svc.Grade(context.Background(), f.userID, f.examID, answers)
	require.NoError(t, err)
	second, err := f.svc.Grade(context.Background(), f.userID, f.examID, answers)
	require.NoError(t, err)

	require.NotEqual(t, first.ID, second.ID)
	require.Len(t, f.results.saved, 2)
	require.Equal(t, first.Score, second.Score)
}

func TestGradeEmptySubmission(t *testing.T) {
	f := newGradingFixture()
	f.addQuestion(model.CategoryPython, "basics", 0)
	f.addQuestion(model.CategoryEnglish, "grammar", 0)

	graded, err := f.svc.Grade(context.Background(), f.userID, f.examID, map[string]string{})
	require.NoError(t, err)

	require.Equal(t, 0.0, graded.Score)
	require.Len(t, graded.Answers, 2)
	for _, a := range graded.Answers {
		require.Nil(t, a.SelectedOption)
		require.False(t, a.IsCorrect)
	}
}

func TestGradeMultiCorrectFirstOptionWins(t *testing.T) {
	f := newGradingFixture()
	id := uuid.New()
	f.exams.questions = append(f.exams.questions, model.Question{
		ID: id, Category: model.CategoryPython, Explanation: "basics",
	})
	// Two options flagged correct: storage order decides the answer key.
	f.options.byQuestion[id] = []model.Option{
		{OptionID: "1", IsCorrect: true},
		{OptionID: "2", IsCorrect: true},
	}

	graded, err := f.svc.Grade(context.Background(), f.userID, f.examID, map[string]string{
		id.String(): "2",
	})
	require.NoError(t, err)
	require.Equal(t, 0.0, graded.Score)

	graded, err = f.svc.Grade(context.Background(), f.userID, f.examID, map[string]string{
		id.String(): "1",
	})
	require.NoError(t, err)
	require.Equal(t, 100.0, graded.Score)
}

func TestGradePerfectScore(t *testing.T) {
	f := newGradingFixture()
	q1 := f.addQuestion(model.CategoryPython, "basics", 0)
	q2 := f.addQuestion(model.CategoryEnglish, "grammar", 2)

	graded, err := f.svc.Grade(context.Background(), f.userID, f.examID, map[string]string{
		q1.String(): "1",
		q2.String(): "3",
	})
	require.NoError(t, err)

	require.Equal(t, 100.0, graded.Score)
	// Both categories at 100 -> top overall band.
	require.Equal(t,
		"Excellent performance! Consider exploring advanced topics.",
		graded.Recommendations[0].Text)
}
