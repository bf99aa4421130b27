// Package review gates review creation on a delivered purchase.
package review

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
)

type reviewRepo interface {
	Create(ctx context.Context, rv domain.Review) (*domain.Review, error)
	Exists(ctx context.Context, userID, productID string) (bool, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type purchaseChecker interface {
	HasDelivered(ctx context.Context, userID, productID string) (bool, error)
}

type Service struct {
	reviews   reviewRepo
	products  productRepo
	purchases purchaseChecker
}

func New(reviews reviewRepo, products productRepo, purchases purchaseChecker) *Service {
	return &Service{reviews: reviews, products: products, purchases: purchases}
}

type SubmitInput struct {
	ProductID string `json:"product"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// Submit stores the user's single review of a product they received.
func (s *Service) Submit(ctx context.Context, userID string, in SubmitInput) (*domain.Review, error) {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return nil, domain.Invalid("product", "required")
	}
	if in.Rating < domain.MinRating || in.Rating > domain.MaxRating {
		return nil, domain.Invalid("rating", "must be between %d and %d", domain.MinRating, domain.MaxRating)
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	delivered, err := s.purchases.HasDelivered(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !delivered {
		return nil, domain.ErrNotEligibleToReview
	}
	exists, err := s.reviews.Exists(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrAlreadyReviewed
	}

	rv, err := s.reviews.Create(ctx, domain.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil, domain.ErrAlreadyReviewed
	}
	return rv, err
}

func (s *Service) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.reviews.ListByProduct(ctx, productID)
}
