// Package inventory reserves product stock for a set of requested lines.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

// Line is a requested quantity of one product.
type Line struct {
	ProductID string
	Quantity  int
}

type Service struct{}

func New() *Service {
	return &Service{}
}

// Reserve locks every product referenced by lines, verifies all of them
// are in stock and only then decrements stock. Either every line is
// reserved or none is. Lines naming the same product are summed.
//
// The returned map holds the products as read under lock, before the
// decrement, keyed by id.
func (s *Service) Reserve(ctx context.Context, tx productrepo.StockTx, lines []Line) (map[string]domain.Product, error) {
	if len(lines) == 0 {
		return map[string]domain.Product{}, nil
	}

	totals := make(map[string]int, len(lines))
	order := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, domain.Invalid("quantity", "must be positive")
		}
		if _, seen := totals[l.ProductID]; !seen {
			order = append(order, l.ProductID)
		}
		totals[l.ProductID] += l.Quantity
	}

	products, err := tx.LockProducts(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}

	for _, id := range order {
		p, ok := products[id]
		if !ok {
			return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		if want := totals[id]; want > p.Quantity {
			return nil, &domain.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   want,
				Available:   p.Quantity,
			}
		}
	}

	for _, id := range order {
		if err := tx.DecrementStock(ctx, id, totals[id]); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				p := products[id]
				return nil, &domain.InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Requested:   totals[id],
					Available:   p.Quantity,
				}
			}
			return nil, err
		}
	}
	return products, nil
}
