package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type ProductRepo struct{ db sqlx.ExtContext }

func NewProductRepo(db sqlx.ExtContext) *ProductRepo { return &ProductRepo{db: db} }

const productColumns = `id, category_id, name, price, description, COALESCE(image,'') AS image`

func (r *ProductRepo) ListByCategory(ctx context.Context, catID int64) ([]domain.Product, error) {
	out := []domain.Product{}
	err := sqlx.SelectContext(ctx, r.db, &out, `
	  SELECT `+productColumns+`
	  FROM products
	  WHERE category_id = ?
	  ORDER BY name
	`, catID)
	return out, err
}

func (r *ProductRepo) Get(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, r.db, &p, `
	  SELECT `+productColumns+`
	  FROM products
	  WHERE id = ?
	`, id)
	return p, err
}
