package seed

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"storefront/internal/db/dbtest"
)

func TestApply_Idempotent(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)

	admin := Admin{Email: "Admin@Example.com", Password: "s3cretpass"}
	for i := 0; i < 2; i++ {
		if err := Apply(ctx, pool, admin); err != nil {
			t.Fatalf("apply #%d: %v", i+1, err)
		}
	}

	var products, categories, users, wallets, codes int
	row := pool.QueryRow(ctx, `SELECT
 (SELECT count(*) FROM products),
 (SELECT count(*) FROM categories),
 (SELECT count(*) FROM users),
 (SELECT count(*) FROM wallets),
 (SELECT count(*) FROM referral_codes)`)
	if err := row.Scan(&products, &categories, &users, &wallets, &codes); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if products != 3 || categories != 3 {
		t.Fatalf("expected 3 products and 3 categories, got %d and %d", products, categories)
	}
	if users != 1 || wallets != 1 || codes != 1 {
		t.Fatalf("expected a single admin with wallet and code, got users=%d wallets=%d codes=%d", users, wallets, codes)
	}

	var hash string
	var staff, super bool
	if err := pool.QueryRow(ctx, `SELECT password_hash, is_staff, is_superuser FROM users WHERE email = 'admin@example.com'`).Scan(&hash, &staff, &super); err != nil {
		t.Fatalf("load admin: %v", err)
	}
	if !staff || !super {
		t.Fatalf("expected admin flags, got staff=%v superuser=%v", staff, super)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(admin.Password)); err != nil {
		t.Fatalf("password hash mismatch: %v", err)
	}

	var available bool
	if err := pool.QueryRow(ctx, `SELECT is_available FROM products WHERE name = 'Demo Poster'`).Scan(&available); err != nil {
		t.Fatalf("load poster: %v", err)
	}
	if available {
		t.Fatalf("expected sold-out product to be unavailable")
	}
}

func TestApply_RejectsShortAdminPassword(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)

	if err := Apply(ctx, pool, Admin{Email: "admin@example.com", Password: "short"}); err == nil {
		t.Fatalf("expected error for short password")
	}
}

func TestApply_SkipsAdminWithoutEmail(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)

	if err := Apply(ctx, pool, Admin{}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	var users int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&users); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if users != 0 {
		t.Fatalf("expected no users, got %d", users)
	}
}
