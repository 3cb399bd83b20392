package catalog

import (
	"context"
	"fmt"

	"grocery-commerce/internal/domain"
)

type productLister interface {
	List(ctx context.Context) ([]domain.Product, error)
}

type taxonomyLister interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListBrands(ctx context.Context) ([]domain.Brand, error)
}

type repositorySource struct {
	products productLister
	taxonomy taxonomyLister
}

// FromRepositories reads the dataset from the product and taxonomy tables.
func FromRepositories(products productLister, taxonomy taxonomyLister) Source {
	return repositorySource{products: products, taxonomy: taxonomy}
}

func (s repositorySource) Load(ctx context.Context) (Dataset, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return Dataset{}, fmt.Errorf("list products: %w", err)
	}
	cats, err := s.taxonomy.ListCategories(ctx)
	if err != nil {
		return Dataset{}, fmt.Errorf("list categories: %w", err)
	}
	brands, err := s.taxonomy.ListBrands(ctx)
	if err != nil {
		return Dataset{}, fmt.Errorf("list brands: %w", err)
	}
	return Dataset{Brands: brands, Categories: cats, Products: products}, nil
}
