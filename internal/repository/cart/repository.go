package cart

import (
	"context"
	"errors"

	"storefront/internal/domain"
)

// ErrStockExceeded is returned by MergeItem when the merged quantity would
// exceed the product's stock. The line is left unchanged.
var ErrStockExceeded = errors.New("merged quantity exceeds stock")

type Repository interface {
	// GetOrCreate returns the user's cart, creating it on first use.
	GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error)
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	// GetItem returns a line together with the id of the user owning its cart.
	GetItem(ctx context.Context, itemID string) (*domain.CartLine, string, error)
	// UpsertItem sets the quantity of productID in the cart, inserting the line if needed.
	UpsertItem(ctx context.Context, cartID, productID string, quantity int) (*domain.CartLine, error)
	// MergeItem adds quantity to the line of productID, inserting it if needed.
	// The increment happens in one statement, guarded by current stock.
	MergeItem(ctx context.Context, cartID, productID string, quantity int) (*domain.CartLine, error)
	UpdateItemQuantity(ctx context.Context, itemID string, quantity int) (*domain.CartLine, error)
	DeleteItem(ctx context.Context, itemID string) error
	Clear(ctx context.Context, cartID string) error
}
