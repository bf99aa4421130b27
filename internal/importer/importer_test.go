package importer

import (
	"context"
	"strings"
	"testing"

	"storefront/internal/domain"
)

type stubProductRepo struct {
	items []domain.Product
}

type stubCategoryRepo struct {
	items []string
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.items = append(s.items, p)
	return &p, nil
}

func (s *stubCategoryRepo) Upsert(_ context.Context, name string) (*domain.Category, error) {
	s.items = append(s.items, name)
	return &domain.Category{ID: "cat-" + strings.ToLower(name), Name: name}, nil
}

func TestCSVImporter_RunProducts(t *testing.T) {
	csvData := `name,description,price,quantity,category,image
Blue Mug,Ceramic,12.50,4,Kitchen,https://example.com/mug.jpg
,,,,,
Tea Pot,Cast iron,39,0,kitchen,
Poster,,5.00,,,`

	repo := &stubProductRepo{}
	catRepo := &stubCategoryRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, catRepo)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 products imported, got %d", count)
	}

	first := repo.items[0]
	if first.Name != "Blue Mug" || first.PriceCents != 1250 || first.Quantity != 4 || first.Image != "https://example.com/mug.jpg" {
		t.Fatalf("unexpected product data: %+v", first)
	}
	if first.CategoryID == nil || *first.CategoryID != "cat-kitchen" {
		t.Fatalf("expected category id, got %v", first.CategoryID)
	}
	if repo.items[1].PriceCents != 3900 || repo.items[1].Quantity != 0 {
		t.Fatalf("unexpected second product: %+v", repo.items[1])
	}
	if repo.items[2].CategoryID != nil {
		t.Fatalf("expected no category on third product")
	}
	if len(catRepo.items) != 1 {
		t.Fatalf("expected one category upsert for case-insensitive names, got %v", catRepo.items)
	}
}

func TestCSVImporter_RejectsBadRows(t *testing.T) {
	cases := map[string]string{
		"bad price":    "name,price\nMug,abc",
		"sub-cent":     "name,price\nMug,1.005",
		"neg quantity": "name,price,quantity\nMug,1,-2",
		"missing name": "name,price\n,1",
	}
	for label, data := range cases {
		imp := NewCSVImporter(strings.NewReader(data), &stubProductRepo{}, &stubCategoryRepo{})
		if _, err := imp.Run(context.Background()); err == nil {
			t.Fatalf("%s: expected error", label)
		} else if !strings.Contains(err.Error(), "row 2") {
			t.Fatalf("%s: expected row number in %v", label, err)
		}
	}
}

func TestCSVImporter_RunCategoriesFile(t *testing.T) {
	csvData := `name
Kitchen
Garden
`
	catRepo := &stubCategoryRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), nil, catRepo)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 || len(catRepo.items) != 2 || catRepo.items[1] != "Garden" {
		t.Fatalf("unexpected categories %v (count %d)", catRepo.items, count)
	}
}

func TestDetectKind(t *testing.T) {
	kind, err := DetectKind(strings.NewReader("name,description,price\nMug,,1"))
	if err != nil {
		t.Fatalf("detect product kind: %v", err)
	}
	if kind != KindProducts {
		t.Fatalf("expected product kind, got %s", kind)
	}

	kind, err = DetectKind(strings.NewReader("Name\nKitchen"))
	if err != nil {
		t.Fatalf("detect category kind: %v", err)
	}
	if kind != KindCategories {
		t.Fatalf("expected category kind, got %s", kind)
	}

	if _, err := DetectKind(strings.NewReader("sku,price\nA,1")); err == nil {
		t.Fatalf("expected error without name column")
	}
}
