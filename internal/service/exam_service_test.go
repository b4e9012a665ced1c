package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cetlabs/cetexam-backend/internal/config"
	"github.com/cetlabs/cetexam-backend/internal/model"
)

type fakeExamStore struct {
	exams     map[uuid.UUID]*model.Exam
	questions map[uuid.UUID][]model.Question
}

func newFakeExamStore() *fakeExamStore {
	return &fakeExamStore{
		exams:     map[uuid.UUID]*model.Exam{},
		questions: map[uuid.UUID][]model.Question{},
	}
}

func (f *fakeExamStore) Create(_ context.Context, e *model.Exam) error {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	f.exams[e.ID] = e
	return nil
}

func (f *fakeExamStore) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	if e, ok := f.exams[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeExamStore) List(_ context.Context, activeOnly bool) ([]model.Exam, error) {
	var out []model.Exam
	for _, e := range f.exams {
		if activeOnly && !e.IsActive {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeExamStore) Update(_ context.Context, e *model.Exam, _ []uuid.UUID, _ []string) error {
	if _, ok := f.exams[e.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *e
	f.exams[e.ID] = &copied
	return nil
}

func (f *fakeExamStore) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := f.exams[id]; !ok {
		return false, nil
	}
	delete(f.exams, id)
	return true, nil
}

func (f *fakeExamStore) ListQuestions(_ context.Context, examID uuid.UUID) ([]model.Question, error) {
	return f.questions[examID], nil
}

type allowAllCategories struct{}

func (allowAllCategories) Exists(_ context.Context, _ string) (bool, error) { return true, nil }

type examFixture struct {
	svc   *ExamService
	store *fakeExamStore
	opts  *fakeOptions
	mr    *miniredis.Miniredis
}

func newExamFixture(t *testing.T) *examFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	store := newFakeExamStore()
	opts := &fakeOptions{byQuestion: map[uuid.UUID][]model.Option{}}
	cfg := &config.Config{PaperCacheTTL: 5 * time.Minute}

	return &examFixture{
		svc:   NewExamService(store, opts, allowAllCategories{}, rdb, cfg, zerolog.Nop()),
		store: store,
		opts:  opts,
		mr:    mr,
	}
}

func (f *examFixture) seedExam(active bool) uuid.UUID {
	examID := uuid.New()
	f.store.exams[examID] = &model.Exam{
		ID:              examID,
		Title:           "CET Mock",
		Description:     "practice run",
		DurationMinutes: 60,
		IsActive:        active,
	}

	qID := uuid.New()
	f.store.questions[examID] = []model.Question{{
		ID:          qID,
		Text:        "What does CPU stand for?",
		Category:    model.CategoryComputerConcepts,
		Explanation: "central processing unit",
	}}
	f.opts.byQuestion[qID] = []model.Option{
		{OptionID: "1", Text: "Central Processing Unit", IsCorrect: true},
		{OptionID: "2", Text: "Computer Primary Unit"},
	}
	return examID
}

func TestGetPaperStripsAnswerKey(t *testing.T) {
	f := newExamFixture(t)
	examID := f.seedExam(true)

	paper, err := f.svc.GetPaper(context.Background(), examID)
	require.NoError(t, err)

	require.Equal(t, examID, paper.ExamID)
	require.Len(t, paper.Questions, 1)
	q := paper.Questions[0]
	require.Len(t, q.Options, 2)
	// PaperOption carries no correctness flag and PaperQuestion no
	// explanation, so the answer key cannot leak through this endpoint.
	require.Equal(t, "1", q.Options[0].OptionID)
	require.Equal(t, "Central Processing Unit", q.Options[0].Text)
}

func TestGetPaperServedFromCache(t *testing.T) {
	f := newExamFixture(t)
	examID := f.seedExam(true)

	first, err := f.svc.GetPaper(context.Background(), examID)
	require.NoError(t, err)

	// Change the stored title; the cached paper must still win.
	f.store.exams[examID].Title = "Renamed"

	second, err := f.svc.GetPaper(context.Background(), examID)
	require.NoError(t, err)
	require.Equal(t, first.Title, second.Title)
}

func TestGetPaperCacheExpires(t *testing.T) {
	f := newExamFixture(t)
	examID := f.seedExam(true)

	_, err := f.svc.GetPaper(context.Background(), examID)
	require.NoError(t, err)

	f.store.exams[examID].Title = "Renamed"
	f.mr.FastForward(10 * time.Minute)

	paper, err := f.svc.GetPaper(context.Background(), examID)
	require.NoError(t, err)
	require.Equal(t, "Renamed", paper.Title)
}

func TestUpdateInvalidatesCachedPaper(t *testing.T) {
	f := newExamFixture(t)
	examID := f.seedExam(true)

	_, err := f.svc.GetPaper(context.Background(), examID)
	require.NoError(t, err)

	newTitle := "Season Two"
	_, err = f.svc.Update(context.Background(), examID, &model.UpdateExamRequest{Title: &newTitle})
	require.NoError(t, err)

	paper, err := f.svc.GetPaper(context.Background(), examID)
	require.NoError(t, err)
	require.Equal(t, newTitle, paper.Title)
}

func TestGetPaperInactiveExam(t *testing.T) {
	f := newExamFixture(t)
	examID := f.seedExam(false)

	_, err := f.svc.GetPaper(context.Background(), examID)
	require.ErrorIs(t, err, ErrExamNotActive)
}

func TestGetPaperUnknownExam(t *testing.T) {
	f := newExamFixture(t)

	_, err := f.svc.GetPaper(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrExamNotFound)
}
