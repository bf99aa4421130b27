package httpserver

import (
	"testing"

	"storefront/internal/domain"
)

func TestToProductDerivesAvailability(t *testing.T) {
	cases := []struct {
		product domain.Product
		want    bool
	}{
		{product: domain.Product{Quantity: 3}, want: true},
		{product: domain.Product{Quantity: 0, IsAvailable: true}, want: false},
	}
	for _, tc := range cases {
		got := toProduct(tc.product)
		if got.IsAvailable != tc.want {
			t.Fatalf("quantity %d: expected is_available=%v, got %v", tc.product.Quantity, tc.want, got.IsAvailable)
		}
	}
	if got := toProduct(domain.Product{PriceCents: 1250}); got.Price != "12.50" {
		t.Fatalf("expected price 12.50, got %s", got.Price)
	}
}
