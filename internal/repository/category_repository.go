package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cetlabs/cetexam-backend/internal/model"
)

// CategoryRepository handles the subject category registry.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// List returns all registered categories in registration order.
func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT key, label, created_at FROM categories ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.Key, &c.Label, &c.CreatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// Exists reports whether a category key is registered.
func (r *CategoryRepository) Exists(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE key = $1)`, key).Scan(&exists)
	return exists, err
}

// Create registers a new category.
func (r *CategoryRepository) Create(ctx context.Context, c *model.Category) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO categories (key, label) VALUES ($1, $2) RETURNING created_at`,
		c.Key, c.Label,
	).Scan(&c.CreatedAt)
}

// UpdateLabel renames a category label.
func (r *CategoryRepository) UpdateLabel(ctx context.Context, key, label string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET label = $1 WHERE key = $2`, label, key)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// QuestionCount returns how many bank questions reference the category.
func (r *CategoryRepository) QuestionCount(ctx context.Context, key string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE category = $1`, key).Scan(&n)
	return n, err
}

// Delete removes a category from the registry.
func (r *CategoryRepository) Delete(ctx context.Context, key string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE key = $1`, key)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
