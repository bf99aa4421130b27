package product

import (
	"context"
	"testing"

	"storefront/internal/db/dbtest"
	"storefront/internal/domain"
)

func TestPostgres_ListAndGet(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)

	var catID string
	if err := pool.QueryRow(ctx, `INSERT INTO categories (name) VALUES ('Kitchen') RETURNING id::text`).Scan(&catID); err != nil {
		t.Fatalf("insert category: %v", err)
	}
	pid := dbtest.InsertProduct(ctx, t, pool, "Mug", 1299, 3)
	if _, err := pool.Exec(ctx, `UPDATE products SET category_id = $1, description = 'ceramic' WHERE id = $2`, catID, pid); err != nil {
		t.Fatalf("set category: %v", err)
	}
	dbtest.InsertProduct(ctx, t, pool, "Shirt", 1999, 0)

	repo := NewPostgres(pool, nil)

	all, err := repo.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 products, got %d", len(all))
	}

	byCategory, err := repo.List(ctx, ListFilter{Category: "kitch"})
	if err != nil || len(byCategory) != 1 || byCategory[0].ID != pid {
		t.Fatalf("category filter: %v %+v", err, byCategory)
	}
	bySearch, err := repo.List(ctx, ListFilter{Search: "CERAMIC"})
	if err != nil || len(bySearch) != 1 {
		t.Fatalf("search filter: %v %+v", err, bySearch)
	}

	got, err := repo.GetByID(ctx, pid)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.IsAvailable || got.Quantity != 3 {
		t.Fatalf("unexpected product %+v", got)
	}
}

func TestPostgres_AvailabilityFollowsQuantity(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	repo := NewPostgres(pool, nil)

	p, err := repo.Upsert(ctx, domain.Product{Name: "Lamp", PriceCents: 4500, Quantity: 1})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !p.IsAvailable {
		t.Fatalf("expected available product")
	}

	p, err = repo.SetQuantity(ctx, p.ID, 0)
	if err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if p.IsAvailable || p.Quantity != 0 {
		t.Fatalf("expected unavailable product, got %+v", p)
	}

	updated, err := repo.Upsert(ctx, domain.Product{Name: "Lamp", PriceCents: 5000, Quantity: 4})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if updated.ID != p.ID || !updated.IsAvailable || updated.PriceCents != 5000 {
		t.Fatalf("unexpected updated product %+v", updated)
	}
}
