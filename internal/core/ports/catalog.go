package ports

import (
	"context"

	"github.com/baketrak/order-system/internal/core/domain"
)

// CatalogService exposes the public product listing.
type CatalogService interface {
	List(ctx context.Context) ([]domain.Product, error)
}

// ProductRepository defines persistence operations for the catalog.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	// FindByIDs resolves the given product ids, keyed by id. Missing ids are
	// simply absent from the result.
	FindByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
}

// CatalogCache is a read-through cache in front of the product listing.
// A miss is not an error; implementations report it with ok=false.
type CatalogCache interface {
	Get(ctx context.Context) (products []domain.Product, ok bool, err error)
	Set(ctx context.Context, products []domain.Product) error
}
