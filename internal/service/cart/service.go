package cart

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
)

// Service keeps one active cart per user. Adding a product already in the
// cart merges quantities unless the caller asks to override.
type Service struct {
	repo        cartRepo
	productRepo productRepo
}

type cartRepo interface {
	GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error)
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	GetItem(ctx context.Context, itemID string) (*domain.CartLine, string, error)
	UpsertItem(ctx context.Context, cartID, productID string, quantity int) (*domain.CartLine, error)
	MergeItem(ctx context.Context, cartID, productID string, quantity int) (*domain.CartLine, error)
	UpdateItemQuantity(ctx context.Context, itemID string, quantity int) (*domain.CartLine, error)
	DeleteItem(ctx context.Context, itemID string) error
	Clear(ctx context.Context, cartID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo cartRepo, productRepo productRepo) *Service {
	return &Service{repo: repo, productRepo: productRepo}
}

type AddItemInput struct {
	ProductID string `json:"product_id"`
	// Quantity defaults to 1 when omitted.
	Quantity *int `json:"quantity,omitempty"`
	// Override replaces the existing line quantity instead of adding to it.
	Override bool `json:"override_quantity,omitempty"`
}

// Get returns the user's cart. A user who never added anything gets an empty cart.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	c, err := s.repo.GetByUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.Cart{UserID: userID, Lines: []domain.CartLine{}}, nil
	}
	return c, err
}

func (s *Service) AddItem(ctx context.Context, userID string, in AddItemInput) (*domain.CartLine, error) {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return nil, domain.Invalid("product_id", "required")
	}
	qty := 1
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	if qty <= 0 {
		return nil, domain.Invalid("quantity", "must be positive")
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if qty > product.Quantity {
		return nil, stockError(*product, qty)
	}
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Override {
		return s.repo.UpsertItem(ctx, cart.ID, product.ID, qty)
	}

	existing := 0
	for _, l := range cart.Lines {
		if l.Product.ID == product.ID {
			existing = l.Quantity
			break
		}
	}
	if qty > product.Quantity-existing {
		return nil, stockError(*product, existing+qty)
	}
	line, err := s.repo.MergeItem(ctx, cart.ID, product.ID, qty)
	if errors.Is(err, cartrepo.ErrStockExceeded) {
		// another add for this product landed in between
		return nil, stockError(*product, existing+qty)
	}
	return line, err
}

// UpdateQuantity sets a line's quantity. Non-positive values and values
// above current stock are rejected without touching the line.
func (s *Service) UpdateQuantity(ctx context.Context, p domain.Principal, itemID string, quantity int) (*domain.CartLine, error) {
	if quantity <= 0 {
		return nil, domain.Invalid("quantity", "must be positive")
	}
	line, err := s.ownedLine(ctx, p, itemID)
	if err != nil {
		return nil, err
	}
	if err := checkStock(line.Product, quantity); err != nil {
		return nil, err
	}
	return s.repo.UpdateItemQuantity(ctx, itemID, quantity)
}

func (s *Service) RemoveItem(ctx context.Context, p domain.Principal, itemID string) error {
	if _, err := s.ownedLine(ctx, p, itemID); err != nil {
		return err
	}
	return s.repo.DeleteItem(ctx, itemID)
}

// Clear empties the user's cart. Clearing a cart that does not exist is a no-op.
func (s *Service) Clear(ctx context.Context, userID string) error {
	c, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.repo.Clear(ctx, c.ID)
}

func (s *Service) ownedLine(ctx context.Context, p domain.Principal, itemID string) (*domain.CartLine, error) {
	line, owner, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !domain.CanMutate(p, owner) {
		return nil, domain.ErrPermissionDenied
	}
	return line, nil
}

func checkStock(p domain.Product, quantity int) error {
	if quantity > p.Quantity {
		return stockError(p, quantity)
	}
	return nil
}

func stockError(p domain.Product, requested int) error {
	return &domain.InsufficientStockError{
		ProductID:   p.ID,
		ProductName: p.Name,
		Requested:   requested,
		Available:   p.Quantity,
	}
}
