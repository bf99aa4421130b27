package order

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/db"
	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
	productrepo "storefront/internal/repository/product"
)

const orderColumns = `id::text, user_id::text, status, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *postgresRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	items, err := fetchItems(ctx, r.pool, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error) {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET status = $3 WHERE id = $1 AND status = $2`, id, string(from), string(to))
	if err != nil {
		r.logger.Printf("order repo: update status id=%s error=%v", id, err)
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.ErrIllegalTransition
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) HasDelivered(ctx context.Context, userID, productID string) (bool, error) {
	const q = `
SELECT EXISTS (
    SELECT 1
    FROM order_items oi
    JOIN orders o ON o.id = oi.order_id
    WHERE o.user_id = $1 AND oi.product_id = $2 AND o.status = $3
)
`
	var ok bool
	err := r.pool.QueryRow(ctx, q, userID, productID, string(domain.OrderDelivered)).Scan(&ok)
	return ok, err
}

func (r *postgresRepo) WithinTx(ctx context.Context, fn func(tx CheckoutTx) error) error {
	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&checkoutTx{StockTx: productrepo.NewStockTx(tx), q: tx})
	})
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("order repo: list error=%v", err)
		return nil, err
	}
	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := fetchItems(ctx, r.pool, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

type checkoutTx struct {
	productrepo.StockTx
	q db.Querier
}

func (t *checkoutTx) LockCart(ctx context.Context, userID string) (*domain.Cart, error) {
	return cartrepo.FetchCart(ctx, t.q, userID, true)
}

func (t *checkoutTx) CreateOrder(ctx context.Context, userID string, status domain.OrderStatus) (*domain.Order, error) {
	return scanOrder(t.q.QueryRow(ctx, `
INSERT INTO orders (user_id, status)
VALUES ($1, $2)
RETURNING `+orderColumns, userID, string(status)))
}

func (t *checkoutTx) CreateOrderItem(ctx context.Context, item domain.OrderItem) (*domain.OrderItem, error) {
	const q = `
INSERT INTO order_items (order_id, product_id, product_name, quantity, price_cents)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text
`
	out := item
	if err := t.q.QueryRow(ctx, q, item.OrderID, item.ProductID, item.ProductName, item.Quantity, item.PriceCents).Scan(&out.ID); err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *checkoutTx) ClearCart(ctx context.Context, cartID string) error {
	return cartrepo.ClearLines(ctx, t.q, cartID)
}

func fetchItems(ctx context.Context, q db.Querier, orderID string) ([]domain.OrderItem, error) {
	rows, err := q.Query(ctx, `
SELECT id::text, order_id::text, product_id::text, product_name, quantity, price_cents
FROM order_items
WHERE order_id = $1
ORDER BY product_name ASC, id ASC
`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.PriceCents); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	if err := row.Scan(&o.ID, &o.UserID, &status, &o.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}
