package product

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

// Columns shared by every product query, including those run inside checkout.
const Columns = `p.id::text, p.category_id::text, p.name, p.description, p.price_cents, p.quantity, p.is_available, p.image, p.created_at, p.modified_at`

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

func (r *postgresRepo) List(ctx context.Context, filter ListFilter) ([]domain.Product, error) {
	const q = `
SELECT ` + Columns + `
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
WHERE ($1 = '' OR c.name ILIKE '%' || $1 || '%')
  AND ($2 = '' OR p.name ILIKE '%' || $2 || '%' OR p.description ILIKE '%' || $2 || '%')
ORDER BY p.name ASC
`
	rows, err := r.pool.Query(ctx, q, filter.Category, filter.Search)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := Scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, err
	}
	r.logger.Printf("product repo: list category=%q search=%q count=%d", filter.Category, filter.Search, len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `SELECT ` + Columns + ` FROM products p WHERE p.id = $1`
	p, err := Scan(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("product repo: get id=%s not found", id)
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products AS p (category_id, name, description, price_cents, quantity, image)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (name) DO UPDATE SET
    category_id = EXCLUDED.category_id,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    quantity = EXCLUDED.quantity,
    image = EXCLUDED.image,
    modified_at = now()
RETURNING ` + Columns
	res, err := Scan(r.pool.QueryRow(ctx, q,
		product.CategoryID,
		product.Name,
		product.Description,
		product.PriceCents,
		product.Quantity,
		product.Image,
	))
	if err != nil {
		r.logger.Printf("product repo: upsert name=%s error=%v", product.Name, err)
		return nil, err
	}
	r.logger.Printf("product repo: upserted name=%s id=%s quantity=%d", res.Name, res.ID, res.Quantity)
	return res, nil
}

func (r *postgresRepo) SetQuantity(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	const q = `
UPDATE products AS p
SET quantity = $2, modified_at = now()
WHERE p.id = $1
RETURNING ` + Columns
	res, err := Scan(r.pool.QueryRow(ctx, q, id, quantity))
	if err != nil {
		r.logger.Printf("product repo: set quantity id=%s error=%v", id, err)
		return nil, err
	}
	return res, nil
}

// Scan reads one row selected with Columns.
func Scan(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
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
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
