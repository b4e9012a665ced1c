package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cetlabs/cetexam-backend/internal/model"
)

// ResultRepository handles graded-result persistence.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// CreateGraded writes the whole result graph — result row, per-question
// answers, per-category scores and recommendations — in one transaction.
// On any failure nothing is visible. Fills in the generated result id and
// completion timestamp.
func (r *ResultRepository) CreateGraded(ctx context.Context, g *model.GradedResult) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO exam_results (user_id, exam_id, score, max_score)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, completed_at`,
		g.UserID, g.ExamID, g.Score, g.MaxScore,
	).Scan(&g.ID, &g.CompletedAt)
	if err != nil {
		return err
	}

	for _, a := range g.Answers {
		if _, err := tx.Exec(ctx,
			`INSERT INTO result_answers (result_id, question_id, selected_option, is_correct)
			 VALUES ($1, $2, $3, $4)`,
			g.ID, a.QuestionID, a.SelectedOption, a.IsCorrect,
		); err != nil {
			return err
		}
	}

	for _, cs := range g.CategoryScores {
		if _, err := tx.Exec(ctx,
			`INSERT INTO category_scores (result_id, category, score)
			 VALUES ($1, $2, $3)`,
			g.ID, cs.Category, cs.Score,
		); err != nil {
			return err
		}
	}

	for _, rec := range g.Recommendations {
		if _, err := tx.Exec(ctx,
			`INSERT INTO recommendations (result_id, category, recommendation_text)
			 VALUES ($1, $2, $3)`,
			g.ID, rec.Category, rec.Text,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetDetail retrieves a stored result with answers, category scores and
// recommendations assembled into the API shape.
func (r *ResultRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.ResultDetail, error) {
	d := &model.ResultDetail{
		Answers:        map[string]*string{},
		CategoryScores: map[string]float64{},
		Recommendation: model.RecommendationSet{
			Overall:    []string{},
			ByCategory: map[string][]string{},
		},
	}

	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, exam_id, score, max_score, completed_at
		 FROM exam_results WHERE id = $1`, id,
	).Scan(&d.ID, &d.UserID, &d.ExamID, &d.Score, &d.MaxScore, &d.CompletedAt)
	if err != nil {
		return nil, err
	}

	aRows, err := r.pool.Query(ctx,
		`SELECT question_id, selected_option FROM result_answers WHERE result_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer aRows.Close()
	for aRows.Next() {
		var qid uuid.UUID
		var selected *string
		if err := aRows.Scan(&qid, &selected); err != nil {
			return nil, err
		}
		d.Answers[qid.String()] = selected
	}
	if err := aRows.Err(); err != nil {
		return nil, err
	}

	cRows, err := r.pool.Query(ctx,
		`SELECT category, score FROM category_scores WHERE result_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer cRows.Close()
	for cRows.Next() {
		var cat string
		var score float64
		if err := cRows.Scan(&cat, &score); err != nil {
			return nil, err
		}
		d.CategoryScores[cat] = score
	}
	if err := cRows.Err(); err != nil {
		return nil, err
	}

	rRows, err := r.pool.Query(ctx,
		`SELECT category, recommendation_text FROM recommendations WHERE result_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rRows.Close()
	for rRows.Next() {
		var cat *string
		var text string
		if err := rRows.Scan(&cat, &text); err != nil {
			return nil, err
		}
		if cat == nil {
			d.Recommendation.Overall = append(d.Recommendation.Overall, text)
		} else {
			d.Recommendation.ByCategory[*cat] = append(d.Recommendation.ByCategory[*cat], text)
		}
	}
	return d, rRows.Err()
}

// ListByUser returns summary rows for all of a user's results, newest first.
func (r *ResultRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Result, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, exam_id, score, max_score, completed_at
		 FROM exam_results WHERE user_id = $1
		 ORDER BY completed_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Result
	for rows.Next() {
		var res model.Result
		if err := rows.Scan(&res.ID, &res.UserID, &res.ExamID, &res.Score,
			&res.MaxScore, &res.CompletedAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
