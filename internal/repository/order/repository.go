package order

import (
	"context"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// UpdateStatus moves the order from -> to, failing with
	// domain.ErrIllegalTransition if the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error)
	// HasDelivered reports whether userID has a delivered order containing productID.
	HasDelivered(ctx context.Context, userID, productID string) (bool, error)

	// WithinTx runs a checkout in one transaction; any error rolls back every write made through tx.
	WithinTx(ctx context.Context, fn func(tx CheckoutTx) error) error
}

// CheckoutTx is the set of reads and writes that convert a cart into an order.
type CheckoutTx interface {
	productrepo.StockTx
	// LockCart loads the user's cart and holds its row lock for the rest of the transaction.
	LockCart(ctx context.Context, userID string) (*domain.Cart, error)
	CreateOrder(ctx context.Context, userID string, status domain.OrderStatus) (*domain.Order, error)
	CreateOrderItem(ctx context.Context, item domain.OrderItem) (*domain.OrderItem, error)
	ClearCart(ctx context.Context, cartID string) error
}
