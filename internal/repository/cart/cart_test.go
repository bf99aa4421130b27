package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront/internal/db/dbtest"
	"storefront/internal/domain"
)

func TestPostgres_OneCartPerUser(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	userID := dbtest.InsertUser(ctx, t, pool, "cart@example.com")

	repo := NewPostgres(pool)
	if _, err := repo.GetByUser(ctx, userID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected no cart yet, got %v", err)
	}
	first, err := repo.GetOrCreate(ctx, userID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	second, err := repo.GetOrCreate(ctx, userID)
	if err != nil {
		t.Fatalf("GetOrCreate again: %v", err)
	}
	if first.ID != second.ID || first.UserID != userID {
		t.Fatalf("expected the same cart, got %+v and %+v", first, second)
	}
}

func TestPostgres_ItemLifecycle(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	userID := dbtest.InsertUser(ctx, t, pool, "cart@example.com")
	productID := dbtest.InsertProduct(ctx, t, pool, "Mug", 1299, 10)

	repo := NewPostgres(pool)
	cart, err := repo.GetOrCreate(ctx, userID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	line, err := repo.UpsertItem(ctx, cart.ID, productID, 2)
	if err != nil {
		t.Fatalf("UpsertItem: %v", err)
	}
	again, err := repo.UpsertItem(ctx, cart.ID, productID, 5)
	if err != nil {
		t.Fatalf("UpsertItem again: %v", err)
	}
	if again.ID != line.ID || again.Quantity != 5 || again.Product.PriceCents != 1299 {
		t.Fatalf("unexpected line %+v", again)
	}

	got, owner, err := repo.GetItem(ctx, line.ID)
	if err != nil || owner != userID || got.Quantity != 5 {
		t.Fatalf("GetItem: %v owner=%s line=%+v", err, owner, got)
	}

	if _, err := repo.UpdateItemQuantity(ctx, line.ID, 3); err != nil {
		t.Fatalf("UpdateItemQuantity: %v", err)
	}
	loaded, err := repo.GetByUser(ctx, userID)
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if len(loaded.Lines) != 1 || loaded.TotalCents() != 3*1299 {
		t.Fatalf("unexpected cart %+v", loaded)
	}

	if err := repo.Clear(ctx, cart.ID); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := repo.DeleteItem(ctx, line.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after clear, got %v", err)
	}
}

func TestPostgres_MergeItemGuardsStock(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	userID := dbtest.InsertUser(ctx, t, pool, "cart@example.com")
	productID := dbtest.InsertProduct(ctx, t, pool, "Mug", 1299, 5)

	repo := NewPostgres(pool)
	cart, err := repo.GetOrCreate(ctx, userID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	line, err := repo.MergeItem(ctx, cart.ID, productID, 2)
	if err != nil {
		t.Fatalf("MergeItem: %v", err)
	}
	merged, err := repo.MergeItem(ctx, cart.ID, productID, 3)
	if err != nil {
		t.Fatalf("MergeItem again: %v", err)
	}
	if merged.ID != line.ID || merged.Quantity != 5 {
		t.Fatalf("expected one line with quantity 5, got %+v", merged)
	}
	if _, err := repo.MergeItem(ctx, cart.ID, productID, 1); !errors.Is(err, ErrStockExceeded) {
		t.Fatalf("expected stock exceeded, got %v", err)
	}

	other := dbtest.InsertProduct(ctx, t, pool, "Pot", 500, 1)
	if _, err := repo.MergeItem(ctx, cart.ID, other, 2); !errors.Is(err, ErrStockExceeded) {
		t.Fatalf("expected stock exceeded on insert, got %v", err)
	}
	loaded, err := repo.GetByUser(ctx, userID)
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if len(loaded.Lines) != 1 || loaded.Lines[0].Quantity != 5 {
		t.Fatalf("rejected merges must not change the cart, got %+v", loaded.Lines)
	}
}

func TestPostgres_MergeItemConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	userID := dbtest.InsertUser(ctx, t, pool, "cart@example.com")
	productID := dbtest.InsertProduct(ctx, t, pool, "Mug", 1299, 100)

	repo := NewPostgres(pool)
	cart, err := repo.GetOrCreate(ctx, userID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	const adds = 10
	var wg sync.WaitGroup
	errs := make(chan error, adds)
	for i := 0; i < adds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.MergeItem(ctx, cart.ID, productID, 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("MergeItem: %v", err)
	}

	loaded, err := repo.GetByUser(ctx, userID)
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if len(loaded.Lines) != 1 || loaded.Lines[0].Quantity != adds {
		t.Fatalf("expected one line with quantity %d, got %+v", adds, loaded.Lines)
	}
}
