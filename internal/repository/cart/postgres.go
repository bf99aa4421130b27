package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/db"
	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

const lineQuery = `
SELECT ci.id::text, ci.cart_id::text, ci.quantity, ci.added_at, ` + productrepo.Columns + `
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	// The no-op update lets RETURNING yield the existing row on conflict.
	const q = `
INSERT INTO carts (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
RETURNING id::text, user_id::text, created_at
`
	var cart domain.Cart
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt); err != nil {
		return nil, err
	}
	lines, err := FetchLines(ctx, r.pool, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Lines = lines
	return &cart, nil
}

func (r *postgresRepo) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	return FetchCart(ctx, r.pool, userID, false)
}

func (r *postgresRepo) GetItem(ctx context.Context, itemID string) (*domain.CartLine, string, error) {
	const q = `
SELECT c.user_id::text, ci.id::text, ci.cart_id::text, ci.quantity, ci.added_at, ` + productrepo.Columns + `
FROM cart_items ci
JOIN carts c ON c.id = ci.cart_id
JOIN products p ON p.id = ci.product_id
WHERE ci.id = $1
`
	var owner string
	line, err := scanLine(r.pool.QueryRow(ctx, q, itemID), &owner)
	if err != nil {
		return nil, "", err
	}
	return line, owner, nil
}

func (r *postgresRepo) UpsertItem(ctx context.Context, cartID, productID string, quantity int) (*domain.CartLine, error) {
	const q = `
INSERT INTO cart_items (cart_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity
RETURNING id::text
`
	var itemID string
	if err := r.pool.QueryRow(ctx, q, cartID, productID, quantity).Scan(&itemID); err != nil {
		return nil, err
	}
	return r.fetchLine(ctx, itemID)
}

func (r *postgresRepo) MergeItem(ctx context.Context, cartID, productID string, quantity int) (*domain.CartLine, error) {
	const q = `
INSERT INTO cart_items (cart_id, product_id, quantity)
SELECT $1::uuid, p.id, $3::int
FROM products p
WHERE p.id = $2::uuid AND p.quantity >= $3::int
ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
WHERE cart_items.quantity::bigint + EXCLUDED.quantity <= (SELECT quantity FROM products WHERE id = EXCLUDED.product_id)
RETURNING id::text
`
	var itemID string
	if err := r.pool.QueryRow(ctx, q, cartID, productID, quantity).Scan(&itemID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStockExceeded
		}
		return nil, err
	}
	return r.fetchLine(ctx, itemID)
}

func (r *postgresRepo) UpdateItemQuantity(ctx context.Context, itemID string, quantity int) (*domain.CartLine, error) {
	cmd, err := r.pool.Exec(ctx, `UPDATE cart_items SET quantity = $1 WHERE id = $2`, quantity, itemID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.fetchLine(ctx, itemID)
}

func (r *postgresRepo) DeleteItem(ctx context.Context, itemID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Clear(ctx context.Context, cartID string) error {
	return ClearLines(ctx, r.pool, cartID)
}

func (r *postgresRepo) fetchLine(ctx context.Context, itemID string) (*domain.CartLine, error) {
	return scanLine(r.pool.QueryRow(ctx, lineQuery+`WHERE ci.id = $1`, itemID), nil)
}

// FetchCart loads the cart of userID with its lines. With forUpdate the cart
// row stays locked until the surrounding transaction ends.
func FetchCart(ctx context.Context, q db.Querier, userID string, forUpdate bool) (*domain.Cart, error) {
	cartQuery := `SELECT id::text, user_id::text, created_at FROM carts WHERE user_id = $1`
	if forUpdate {
		cartQuery += ` FOR UPDATE`
	}
	var cart domain.Cart
	if err := q.QueryRow(ctx, cartQuery, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	lines, err := FetchLines(ctx, q, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Lines = lines
	return &cart, nil
}

// FetchLines returns the lines of cartID, oldest first.
func FetchLines(ctx context.Context, q db.Querier, cartID string) ([]domain.CartLine, error) {
	rows, err := q.Query(ctx, lineQuery+`WHERE ci.cart_id = $1 ORDER BY ci.added_at ASC, ci.id ASC`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		line, err := scanLine(rows, nil)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}
	return lines, rows.Err()
}

// ClearLines deletes every line of cartID.
func ClearLines(ctx context.Context, q db.Querier, cartID string) error {
	_, err := q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}

func scanLine(row pgx.Row, owner *string) (*domain.CartLine, error) {
	var line domain.CartLine
	p := &line.Product
	dest := []any{
		&line.ID,
		&line.CartID,
		&line.Quantity,
		&line.AddedAt,
		&p.ID,
		&p.CategoryID,
		&p.Name,
		&p.Description,
		&p.PriceCents,
		&p.Quantity,
		&p.IsAvailable,
		&p.Image,
		&p.CreatedAt,
		&p.ModifiedAt,
	}
	if owner != nil {
		dest = append([]any{owner}, dest...)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &line, nil
}
