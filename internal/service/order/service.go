// Package order turns carts into orders and drives the order lifecycle.
package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/service/inventory"
)

type reserver interface {
	Reserve(ctx context.Context, tx productrepo.StockTx, lines []inventory.Line) (map[string]domain.Product, error)
}

type Service struct {
	repo      orderrepo.Repository
	inventory reserver
	logger    *log.Logger
}

func New(repo orderrepo.Repository, inv reserver, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, inventory: inv, logger: logger}
}

// Place converts the user's cart into a Pending order. Stock reservation,
// order creation and cart clearing commit together or not at all.
func (s *Service) Place(ctx context.Context, userID string) (*domain.Order, error) {
	var placed *domain.Order
	err := s.repo.WithinTx(ctx, func(tx orderrepo.CheckoutTx) error {
		cart, err := tx.LockCart(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrEmptyCart
			}
			return err
		}
		if cart.IsEmpty() {
			return domain.ErrEmptyCart
		}

		lines := make([]inventory.Line, 0, len(cart.Lines))
		for _, l := range cart.Lines {
			lines = append(lines, inventory.Line{ProductID: l.Product.ID, Quantity: l.Quantity})
		}
		products, err := s.inventory.Reserve(ctx, tx, lines)
		if err != nil {
			return err
		}

		o, err := tx.CreateOrder(ctx, userID, domain.OrderPending)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		for _, l := range cart.Lines {
			p := products[l.Product.ID]
			item, err := tx.CreateOrderItem(ctx, domain.OrderItem{
				OrderID:     o.ID,
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    l.Quantity,
				PriceCents:  p.PriceCents,
			})
			if err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
			o.Items = append(o.Items, *item)
		}
		if err := tx.ClearCart(ctx, cart.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		placed = o
		return nil
	})
	if err != nil {
		metrics.CheckoutFailures.WithLabelValues(failureReason(err)).Inc()
		s.logger.Printf("order service: place user=%s error=%v", userID, err)
		return nil, err
	}
	metrics.OrdersPlaced.Inc()
	s.logger.Printf("order service: placed id=%s user=%s items=%d total=%s", placed.ID, userID, len(placed.Items), domain.FormatCents(placed.TotalCents()))
	return placed, nil
}

// List returns the caller's orders, or every order for staff.
func (s *Service) List(ctx context.Context, p domain.Principal) ([]domain.Order, error) {
	if domain.IsPrivileged(p) {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListByUser(ctx, p.UserID)
}

// Get returns an order visible to p. Orders of other users read as not found.
func (s *Service) Get(ctx context.Context, p domain.Principal, id string) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanView(p, o.UserID) {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// UpdateStatus moves an order to status after checking ownership and the
// lifecycle rules.
func (s *Service) UpdateStatus(ctx context.Context, p domain.Principal, id, status string) (*domain.Order, error) {
	to, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeTransition(p, *o, to); err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateStatus(ctx, id, o.Status, to)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("order service: status id=%s %s -> %s by=%s", id, o.Status, to, p.UserID)
	return updated, nil
}

func failureReason(err error) string {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	case errors.As(err, &stockErr):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
