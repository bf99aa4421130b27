package catalog

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

type stubProducts struct {
	lastFilter productrepo.ListFilter
	upserted   *domain.Product
	setID      string
	setQty     int
}

func (s *stubProducts) List(_ context.Context, f productrepo.ListFilter) ([]domain.Product, error) {
	s.lastFilter = f
	return nil, nil
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	return &domain.Product{ID: id}, nil
}

func (s *stubProducts) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.upserted = &p
	p.ID = "p1"
	return &p, nil
}

func (s *stubProducts) SetQuantity(_ context.Context, id string, qty int) (*domain.Product, error) {
	s.setID, s.setQty = id, qty
	return &domain.Product{ID: id, Quantity: qty, IsAvailable: qty > 0}, nil
}

type stubCategories struct {
	upserted []string
}

func (s *stubCategories) List(context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: "c1", Name: "Mugs"}}, nil
}

func (s *stubCategories) GetByID(_ context.Context, id string) (*domain.Category, error) {
	return nil, domain.ErrNotFound
}

func (s *stubCategories) Upsert(_ context.Context, name string) (*domain.Category, error) {
	s.upserted = append(s.upserted, name)
	return &domain.Category{ID: "cat-" + name, Name: name}, nil
}

var staff = domain.Principal{UserID: "s1", IsStaff: true}

func TestSaveProductRequiresStaff(t *testing.T) {
	svc := New(&stubProducts{}, &stubCategories{})
	_, err := svc.SaveProduct(context.Background(), domain.Principal{UserID: "u1"}, ProductInput{Name: "Mug", Price: "1"})
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
}

func TestSaveProductParsesPriceAndCategory(t *testing.T) {
	products := &stubProducts{}
	cats := &stubCategories{}
	svc := New(products, cats)

	got, err := svc.SaveProduct(context.Background(), staff, ProductInput{Name: " Mug ", Price: "12.50", Quantity: 4, Category: "Kitchen"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PriceCents != 1250 || got.Name != "Mug" {
		t.Fatalf("unexpected product %+v", got)
	}
	if got.CategoryID == nil || *got.CategoryID != "cat-Kitchen" {
		t.Fatalf("expected category to be linked, got %v", got.CategoryID)
	}
	if len(cats.upserted) != 1 {
		t.Fatalf("expected category upsert")
	}
}

func TestSaveProductValidation(t *testing.T) {
	svc := New(&stubProducts{}, &stubCategories{})
	cases := []ProductInput{
		{Name: "", Price: "1"},
		{Name: "Mug", Price: "x"},
		{Name: "Mug", Price: "1", Quantity: -1},
	}
	for _, in := range cases {
		_, err := svc.SaveProduct(context.Background(), staff, in)
		var vErr *domain.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("input %+v: expected validation error, got %v", in, err)
		}
	}
}

func TestSetStock(t *testing.T) {
	products := &stubProducts{}
	svc := New(products, &stubCategories{})

	if _, err := svc.SetStock(context.Background(), domain.Principal{UserID: "u1"}, "p1", 3); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	var vErr *domain.ValidationError
	if _, err := svc.SetStock(context.Background(), staff, "p1", -1); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	p, err := svc.SetStock(context.Background(), staff, "p1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.IsAvailable || products.setQty != 0 {
		t.Fatalf("expected unavailable product, got %+v", p)
	}
}

func TestListProductsTrimsFilter(t *testing.T) {
	products := &stubProducts{}
	svc := New(products, &stubCategories{})
	if _, err := svc.ListProducts(context.Background(), productrepo.ListFilter{Category: " mugs ", Search: " blue"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if products.lastFilter.Category != "mugs" || products.lastFilter.Search != "blue" {
		t.Fatalf("unexpected filter %+v", products.lastFilter)
	}
}
