package category

import (
	"context"

	"grocery-commerce/internal/domain"
)

// Repository persists the brand and category taxonomies.
type Repository interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListBrands(ctx context.Context) ([]domain.Brand, error)
	UpsertCategory(ctx context.Context, c domain.Category) error
	UpsertBrand(ctx context.Context, b domain.Brand) error
}
