package usecase

import (
	"context"

	"storefront/internal/feature/catalog/domain/entity"
)

// ProductRepository abstracts the persistence layer for catalog products.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type ProductRepository interface {
	// List returns every product with its images in insertion order.
	List(ctx context.Context) ([]entity.Product, error)
	// Count returns the number of stored products.
	Count(ctx context.Context) (int64, error)
	// CreateAll inserts products and their images in a single transaction.
	CreateAll(ctx context.Context, products []entity.Product) error
}

// CatalogUsecase provides read access to the catalog.
type CatalogUsecase struct {
	repo ProductRepository
}

// NewCatalogUsecase creates a new CatalogUsecase with the given repository.
func NewCatalogUsecase(r ProductRepository) *CatalogUsecase {
	return &CatalogUsecase{repo: r}
}

// List returns all products. Filtering and search are left to the client.
func (u *CatalogUsecase) List(ctx context.Context) ([]entity.Product, error) {
	return u.repo.List(ctx)
}
