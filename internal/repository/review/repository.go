package review

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// Create returns domain.ErrAlreadyExists when the user already reviewed the product.
	Create(ctx context.Context, r domain.Review) (*domain.Review, error)
	Exists(ctx context.Context, userID, productID string) (bool, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
}
