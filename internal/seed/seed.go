package seed

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/db"
)

type productSeed struct {
	Name        string
	Description string
	PriceCents  int64
	Quantity    int
	Category    string
}

// Admin describes the superuser account created by Apply. An empty Email
// skips it.
type Admin struct {
	Email    string
	Password string
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool, admin Admin) error {
	products := []productSeed{
		{
			Name:        "Demo T-Shirt",
			Description: "Soft cotton tee for demo purposes",
			PriceCents:  1999,
			Quantity:    25,
			Category:    "Apparel",
		},
		{
			Name:        "Demo Mug",
			Description: "Ceramic mug with demo logo",
			PriceCents:  1299,
			Quantity:    10,
			Category:    "Kitchen",
		},
		{
			Name:        "Demo Poster",
			Description: "Sold out on purpose",
			PriceCents:  500,
			Quantity:    0,
			Category:    "Prints",
		},
	}

	categories := map[string]string{}
	for _, p := range products {
		id, ok := categories[p.Category]
		if !ok {
			var err error
			id, err = ensureCategory(ctx, pool, p.Category)
			if err != nil {
				return fmt.Errorf("ensure category %s: %w", p.Category, err)
			}
			categories[p.Category] = id
		}
		if err := upsertProduct(ctx, pool, id, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
	}

	if admin.Email != "" {
		if err := ensureAdmin(ctx, pool, admin); err != nil {
			return fmt.Errorf("ensure admin %s: %w", admin.Email, err)
		}
	}
	return nil
}

func ensureCategory(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	const q = `
INSERT INTO categories (name)
VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, name).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, categoryID string, p productSeed) error {
	const q = `
INSERT INTO products (category_id, name, description, price_cents, quantity)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (name) DO UPDATE
SET category_id = EXCLUDED.category_id,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    quantity = EXCLUDED.quantity,
    modified_at = now()
`
	_, err := pool.Exec(ctx, q, categoryID, p.Name, p.Description, p.PriceCents, p.Quantity)
	return err
}

// ensureAdmin creates or promotes the admin user along with the wallet and
// referral code every registered user owns.
func ensureAdmin(ctx context.Context, pool *pgxpool.Pool, admin Admin) error {
	if len(admin.Password) < 8 {
		return errors.New("admin password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	code, err := referralCode()
	if err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(admin.Email))
	return db.InTx(ctx, pool, func(tx pgx.Tx) error {
		const userQ = `
INSERT INTO users (email, password_hash, is_staff, is_superuser)
VALUES ($1, $2, TRUE, TRUE)
ON CONFLICT ((lower(email))) DO UPDATE
SET password_hash = EXCLUDED.password_hash,
    is_active = TRUE,
    is_staff = TRUE,
    is_superuser = TRUE
RETURNING id::text
`
		var id string
		if err := tx.QueryRow(ctx, userQ, email, string(hash)).Scan(&id); err != nil {
			return fmt.Errorf("upsert user: %w", err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO wallets (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, id); err != nil {
			return fmt.Errorf("ensure wallet: %w", err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO referral_codes (user_id, code) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING`, id, code); err != nil {
			return fmt.Errorf("ensure referral code: %w", err)
		}
		return nil
	})
}

func referralCode() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate referral code: %w", err)
	}
	return hex.EncodeToString(b), nil
}
