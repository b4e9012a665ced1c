package repository

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cetlabs/cetexam-backend/internal/model"
)

// QuestionRepository handles question-bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// Create inserts a question and its options in one transaction.
// Option ids are assigned positionally ("1", "2", ...).
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question, options []model.OptionInput) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO questions (text, category, explanation, difficulty_level)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		q.Text, q.Category, q.Explanation, q.DifficultyLevel,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return err
	}

	if err := insertOptions(ctx, tx, q, options); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func insertOptions(ctx context.Context, tx pgx.Tx, q *model.Question, options []model.OptionInput) error {
	q.Options = q.Options[:0]
	for i, opt := range options {
		optionID := strconv.Itoa(i + 1)
		if _, err := tx.Exec(ctx,
			`INSERT INTO options (question_id, option_id, text, is_correct)
			 VALUES ($1, $2, $3, $4)`,
			q.ID, optionID, opt.Text, opt.IsCorrect,
		); err != nil {
			return err
		}
		q.Options = append(q.Options, model.Option{
			OptionID:  optionID,
			Text:      opt.Text,
			IsCorrect: opt.IsCorrect,
		})
	}
	return nil
}

// GetByID retrieves a question with its options.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, text, category, explanation, difficulty_level, created_at, updated_at
		 FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.Text, &q.Category, &q.Explanation, &q.DifficultyLevel, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}

	opts, err := r.ListOptions(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	q.Options = opts
	return q, nil
}

// ListOptions returns a question's options in storage order. The grading
// pipeline relies on this order for the first-correct-option tie-break.
func (r *QuestionRepository) ListOptions(ctx context.Context, questionID uuid.UUID) ([]model.Option, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT option_id, text, is_correct FROM options
		 WHERE question_id = $1 ORDER BY id`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opts []model.Option
	for rows.Next() {
		var o model.Option
		if err := rows.Scan(&o.OptionID, &o.Text, &o.IsCorrect); err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}

// List returns questions, optionally filtered by category (empty = all),
// each with options populated.
func (r *QuestionRepository) List(ctx context.Context, category string) ([]model.Question, error) {
	query := `SELECT id, text, category, explanation, difficulty_level, created_at, updated_at
	          FROM questions`
	var args []any
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, args...)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range questions {
		opts, err := r.ListOptions(ctx, questions[i].ID)
		if err != nil {
			return nil, err
		}
		questions[i].Options = opts
	}
	return questions, nil
}

// Update persists question fields; a non-nil options slice replaces the
// stored options wholesale, within the same transaction.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question, options []model.OptionInput) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE questions
		 SET text = $1, category = $2, explanation = $3, difficulty_level = $4, updated_at = NOW()
		 WHERE id = $5`,
		q.Text, q.Category, q.Explanation, q.DifficultyLevel, q.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if options != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM options WHERE question_id = $1`, q.ID); err != nil {
			return err
		}
		if err := insertOptions(ctx, tx, q, options); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Delete removes a question. Options, exam references and result answers
// cascade at the database level.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
