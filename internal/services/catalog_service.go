package services

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.Cats.List(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	c, err := s.Cats.Get(ctx, id)
	return c, notFound(err, "category")
}

// ListProductsByCategory yields an empty list for unknown categories.
func (s *CatalogService) ListProductsByCategory(ctx context.Context, catID int64) ([]domain.Product, error) {
	return s.Prods.ListByCategory(ctx, catID)
}
