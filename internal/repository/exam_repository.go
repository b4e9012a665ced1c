package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cetlabs/cetexam-backend/internal/model"
)

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// Create inserts an exam with its category set and ordered question
// references in one transaction. Question ids that do not resolve to a
// bank question are skipped silently.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO exams (title, description, duration_minutes, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		e.Title, e.Description, e.DurationMinutes, e.IsActive,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return err
	}

	if err := replaceCategories(ctx, tx, e.ID, e.Categories); err != nil {
		return err
	}
	attached, err := replaceQuestions(ctx, tx, e.ID, e.QuestionIDs)
	if err != nil {
		return err
	}
	e.QuestionIDs = attached

	return tx.Commit(ctx)
}

func replaceCategories(ctx context.Context, tx pgx.Tx, examID uuid.UUID, categories []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM exam_categories WHERE exam_id = $1`, examID); err != nil {
		return err
	}
	for _, cat := range categories {
		if _, err := tx.Exec(ctx,
			`INSERT INTO exam_categories (exam_id, category) VALUES ($1, $2)
			 ON CONFLICT (exam_id, category) DO NOTHING`,
			examID, cat); err != nil {
			return err
		}
	}
	return nil
}

// replaceQuestions rewrites the exam's ordered question list, dropping ids
// that do not exist in the bank. Returns the ids actually attached.
func replaceQuestions(ctx context.Context, tx pgx.Tx, examID uuid.UUID, questionIDs []uuid.UUID) ([]uuid.UUID, error) {
	if _, err := tx.Exec(ctx, `DELETE FROM exam_questions WHERE exam_id = $1`, examID); err != nil {
		return nil, err
	}

	attached := make([]uuid.UUID, 0, len(questionIDs))
	for i, qid := range questionIDs {
		tag, err := tx.Exec(ctx,
			`INSERT INTO exam_questions (exam_id, question_id, question_order)
			 SELECT $1, id, $3 FROM questions WHERE id = $2
			 ON CONFLICT (exam_id, question_id) DO NOTHING`,
			examID, qid, i)
		if err != nil {
			return nil, err
		}
		if tag.RowsAffected() > 0 {
			attached = append(attached, qid)
		}
	}
	return attached, nil
}

// GetByID retrieves an exam with its categories and ordered question ids.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, duration_minutes, is_active, created_at, updated_at
		 FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.Description, &e.DurationMinutes, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := r.loadRelations(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *ExamRepository) loadRelations(ctx context.Context, e *model.Exam) error {
	rows, err := r.pool.Query(ctx,
		`SELECT category FROM exam_categories WHERE exam_id = $1 ORDER BY id`, e.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	e.Categories = []string{}
	for rows.Next() {
		var cat string
		if err := rows.Scan(&cat); err != nil {
			return err
		}
		e.Categories = append(e.Categories, cat)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	qRows, err := r.pool.Query(ctx,
		`SELECT question_id FROM exam_questions WHERE exam_id = $1 ORDER BY question_order`, e.ID)
	if err != nil {
		return err
	}
	defer qRows.Close()
	e.QuestionIDs = []uuid.UUID{}
	for qRows.Next() {
		var qid uuid.UUID
		if err := qRows.Scan(&qid); err != nil {
			return err
		}
		e.QuestionIDs = append(e.QuestionIDs, qid)
	}
	return qRows.Err()
}

// List retrieves exams, optionally restricted to active ones.
func (r *ExamRepository) List(ctx context.Context, activeOnly bool) ([]model.Exam, error) {
	query := `SELECT id, title, description, duration_minutes, is_active, created_at, updated_at
	          FROM exams`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.DurationMinutes,
			&e.IsActive, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range exams {
		if err := r.loadRelations(ctx, &exams[i]); err != nil {
			return nil, err
		}
	}
	return exams, nil
}

// Update persists exam fields; non-nil question or category lists replace
// the stored ones wholesale, within the same transaction.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam, questions []uuid.UUID, categories []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE exams
		 SET title = $1, description = $2, duration_minutes = $3, is_active = $4, updated_at = NOW()
		 WHERE id = $5`,
		e.Title, e.Description, e.DurationMinutes, e.IsActive, e.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if categories != nil {
		if err := replaceCategories(ctx, tx, e.ID, categories); err != nil {
			return err
		}
		e.Categories = categories
	}
	if questions != nil {
		attached, err := replaceQuestions(ctx, tx, e.ID, questions)
		if err != nil {
			return err
		}
		e.QuestionIDs = attached
	}

	return tx.Commit(ctx)
}

// Delete removes an exam. Categories, question references and results
// cascade at the database level.
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListQuestions returns the exam's questions in stored order, without
// options. References to questions no longer in the bank drop out of the
// join silently.
func (r *ExamRepository) ListQuestions(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.text, q.category, q.explanation, q.difficulty_level, q.created_at, q.updated_at
		 FROM exam_questions eq
		 JOIN questions q ON q.id = eq.question_id
		 WHERE eq.exam_id = $1
		 ORDER BY eq.question_order`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Category, &q.Explanation,
			&q.DifficultyLevel, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
