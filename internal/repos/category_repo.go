package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type CategoryRepo struct{ db sqlx.ExtContext }

func NewCategoryRepo(db sqlx.ExtContext) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
	  SELECT id, name, COALESCE(image,'') AS image
	  FROM categories
	  ORDER BY name
	`)
	return out, err
}

// Get returns sql.ErrNoRows when the category does not exist.
func (r *CategoryRepo) Get(ctx context.Context, id int64) (domain.Category, error) {
	var c domain.Category
	err := sqlx.GetContext(ctx, r.db, &c, `
	  SELECT id, name, COALESCE(image,'') AS image
	  FROM categories
	  WHERE id = ?
	`, id)
	return c, err
}
