// Package catalog serves products and categories. Writes are limited to staff.
package catalog

import (
	"context"
	"strings"

	"storefront/internal/domain"
	categoryrepo "storefront/internal/repository/category"
	productrepo "storefront/internal/repository/product"
)

type Service struct {
	products   productrepo.Repository
	categories categoryrepo.Repository
}

func New(products productrepo.Repository, categories categoryrepo.Repository) *Service {
	return &Service{products: products, categories: categories}
}

func (s *Service) ListProducts(ctx context.Context, filter productrepo.ListFilter) ([]domain.Product, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Search = strings.TrimSpace(filter.Search)
	return s.products.List(ctx, filter)
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *Service) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	return s.categories.GetByID(ctx, id)
}

type ProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
	// Category is a category name, created on first use.
	Category string `json:"category"`
	Image    string `json:"image"`
}

// SaveProduct creates or replaces a product by name.
func (s *Service) SaveProduct(ctx context.Context, p domain.Principal, in ProductInput) (*domain.Product, error) {
	if !domain.IsPrivileged(p) {
		return nil, domain.ErrPermissionDenied
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "required")
	}
	cents, err := domain.ParsePrice(in.Price)
	if err != nil {
		return nil, err
	}
	if in.Quantity < 0 {
		return nil, domain.Invalid("quantity", "must not be negative")
	}

	product := domain.Product{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		PriceCents:  cents,
		Quantity:    in.Quantity,
		Image:       strings.TrimSpace(in.Image),
	}
	if c := strings.TrimSpace(in.Category); c != "" {
		cat, err := s.categories.Upsert(ctx, c)
		if err != nil {
			return nil, err
		}
		product.CategoryID = &cat.ID
	}
	return s.products.Upsert(ctx, product)
}

// SetStock overwrites a product's quantity. Availability follows from it.
func (s *Service) SetStock(ctx context.Context, p domain.Principal, id string, quantity int) (*domain.Product, error) {
	if !domain.IsPrivileged(p) {
		return nil, domain.ErrPermissionDenied
	}
	if quantity < 0 {
		return nil, domain.Invalid("quantity", "must not be negative")
	}
	return s.products.SetQuantity(ctx, id, quantity)
}
