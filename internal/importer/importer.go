package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type CategoryWriter interface {
	Upsert(ctx context.Context, name string) (*domain.Category, error)
}

// Kind is the type of catalog export a CSV file holds.
type Kind string

const (
	KindProducts   Kind = "products"
	KindCategories Kind = "categories"
)

// DetectKind inspects the header row. Files with a price column hold products.
func DetectKind(r io.Reader) (Kind, error) {
	headers, err := csv.NewReader(r).Read()
	if err != nil {
		return "", fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["name"]; !ok {
		return "", errors.New("unrecognised csv: missing name column")
	}
	if _, ok := index["price"]; ok {
		return KindProducts, nil
	}
	return KindCategories, nil
}

// CSVImporter reads catalog CSV exports and inserts/updates products by name.
type CSVImporter struct {
	reader       *csv.Reader
	productRepo  ProductWriter
	categoryRepo CategoryWriter
	categoryIDs  map[string]string
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:       csvr,
		productRepo:  products,
		categoryRepo: categories,
		categoryIDs:  map[string]string{},
	}
}

// Run imports every data row and returns how many records were written.
// Products and categories files are told apart by their header row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	_, isProducts := index["price"]
	if isProducts && i.productRepo == nil {
		return 0, errors.New("product writer required for a products file")
	}

	imported := 0
	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		if isProducts {
			err = i.saveProduct(ctx, record, index)
		} else {
			_, err = i.category(ctx, pick(record, index, "name"))
		}
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		imported++
	}
	return imported, nil
}

func (i *CSVImporter) saveProduct(ctx context.Context, record []string, index map[string]int) error {
	name := pick(record, index, "name")
	if name == "" {
		return errors.New("invalid product row (missing name)")
	}
	cents, err := domain.ParsePrice(pick(record, index, "price"))
	if err != nil {
		return fmt.Errorf("product %q: %w", name, err)
	}
	qty := 0
	if raw := pick(record, index, "quantity"); raw != "" {
		qty, err = strconv.Atoi(raw)
		if err != nil || qty < 0 {
			return fmt.Errorf("product %q: invalid quantity %q", name, raw)
		}
	}

	p := domain.Product{
		Name:        name,
		Description: pick(record, index, "description"),
		PriceCents:  cents,
		Quantity:    qty,
		Image:       pick(record, index, "image"),
	}
	if catName := pick(record, index, "category"); catName != "" {
		id, err := i.category(ctx, catName)
		if err != nil {
			return err
		}
		p.CategoryID = &id
	}

	if _, err := i.productRepo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", name, err)
	}
	return nil
}

// category upserts name once per run and returns its id.
func (i *CSVImporter) category(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", errors.New("invalid category row (missing name)")
	}
	if i.categoryRepo == nil {
		return "", errors.New("category writer required")
	}
	key := strings.ToLower(name)
	if id, ok := i.categoryIDs[key]; ok {
		return id, nil
	}
	c, err := i.categoryRepo.Upsert(ctx, name)
	if err != nil {
		return "", fmt.Errorf("upsert category %q: %w", name, err)
	}
	i.categoryIDs[key] = c.ID
	return c.ID, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
