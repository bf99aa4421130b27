package product

import (
	"context"

	"storefront/internal/domain"
)

// ListFilter narrows product listings. Empty fields are ignored.
type ListFilter struct {
	Category string
	Search   string
}

type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
	SetQuantity(ctx context.Context, id string, quantity int) (*domain.Product, error)
}
