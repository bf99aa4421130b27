package product

import (
	"context"
	"fmt"

	"storefront/internal/db"
	"storefront/internal/domain"
)

// StockTx exposes the stock operations that must run inside a caller's transaction.
type StockTx interface {
	// LockProducts row-locks the given products until the transaction ends.
	// Missing ids are absent from the result.
	LockProducts(ctx context.Context, ids []string) (map[string]domain.Product, error)
	// DecrementStock subtracts quantity, failing if stock would go negative.
	DecrementStock(ctx context.Context, productID string, quantity int) error
}

type stockTx struct {
	q db.Querier
}

// NewStockTx binds stock operations to q, normally a pgx.Tx.
func NewStockTx(q db.Querier) StockTx {
	return &stockTx{q: q}
}

func (s *stockTx) LockProducts(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	// Locking in id order keeps concurrent checkouts from deadlocking.
	const q = `SELECT ` + Columns + ` FROM products p WHERE p.id = ANY($1::text[]::uuid[]) ORDER BY p.id FOR UPDATE`
	rows, err := s.q.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]domain.Product, len(ids))
	for rows.Next() {
		p, err := Scan(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = *p
	}
	return out, rows.Err()
}

func (s *stockTx) DecrementStock(ctx context.Context, productID string, quantity int) error {
	cmd, err := s.q.Exec(ctx, `
UPDATE products
SET quantity = quantity - $2, modified_at = now()
WHERE id = $1 AND quantity >= $2
`, productID, quantity)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("decrement stock product=%s quantity=%d: %w", productID, quantity, domain.ErrNotFound)
	}
	return nil
}
